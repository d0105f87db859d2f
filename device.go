package serial

import (
	"golang.org/x/sys/unix"
)

// device owns the open file descriptor and the terminal attributes that
// were in effect when the device was opened. Both the handle API (Port)
// and the stream API (Stream) sit on top of it.
type device struct {
	name   string
	fd     int
	saved  *unix.Termios // attributes captured at open, restored on close
	isOpen bool
}

// openDevice opens the device read-write, non-blocking, without becoming
// its controlling terminal, snapshots the current attributes for restore,
// enables the receiver, sets VMIN=0/VTIME=0 and flushes any stale input.
// On any step failure after the descriptor was obtained, the descriptor is
// closed so a failed open never leaks it.
func (d *device) openDevice() error {
	if d.isOpen {
		return ErrAlreadyOpen
	}

	fd, err := unix.Open(d.name, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return &OpenError{Step: "open " + d.name, Err: err}
	}

	fail := func(step string, err error) error {
		unix.Close(fd)
		return &OpenError{Step: step, Err: err}
	}

	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fail("save current attributes", err)
	}

	// Start from a clean attribute block: receiver enabled, modem control
	// lines ignored, reads return whatever is currently available.
	var settings unix.Termios
	settings.Cflag = unix.CREAD | unix.CLOCAL
	settings.Cc[unix.VMIN] = 0
	settings.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH); err != nil {
		return fail("flush input buffer", err)
	}
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &settings); err != nil {
		return fail("apply initial attributes", err)
	}

	d.fd = fd
	d.saved = saved
	d.isOpen = true
	return nil
}

// closeDevice restores the saved attributes (best-effort; a restore
// failure is not surfaced) and closes the descriptor.
func (d *device) closeDevice() error {
	if !d.isOpen {
		return ErrNotOpen
	}

	if d.saved != nil {
		unix.IoctlSetTermios(d.fd, unix.TCSETS, d.saved)
	}

	err := unix.Close(d.fd)
	d.fd = -1
	d.saved = nil
	d.isOpen = false
	return err
}

// IsOpen reports whether the device is currently open.
func (d *device) IsOpen() bool {
	return d.isOpen
}

// Name returns the device path this handle was created for.
func (d *device) Name() string {
	return d.name
}

func (d *device) read(p []byte) (int, error) {
	n, err := unix.Read(d.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (d *device) write(p []byte) (int, error) {
	n, err := unix.Write(d.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (d *device) getattr() (*unix.Termios, error) {
	return unix.IoctlGetTermios(d.fd, unix.TCGETS)
}

func (d *device) setattr(t *unix.Termios) error {
	return unix.IoctlSetTermios(d.fd, unix.TCSETS, t)
}
