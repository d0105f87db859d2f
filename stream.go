package serial

import (
	"io"

	"golang.org/x/sys/unix"
)

// Stream is a blocking, stream-oriented view of a serial device with a
// single byte of putback. Reads block until at least one byte is available
// (VMIN=1, VTIME=0), which makes it a natural fit behind bufio or any
// io.Reader consumer. Unlike Port there is no notification-driven receive
// buffer; bytes are read straight from the descriptor.
//
// A Stream is not safe for concurrent use by multiple goroutines.
type Stream struct {
	*device

	putback      byte
	putbackValid bool
}

// OpenStream opens the named device as a Stream and applies the
// configuration given through options. Options that inject a notifier or
// clock are accepted but have no effect on a Stream.
func OpenStream(name string, opts ...Option) (*Stream, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	s := &Stream{device: &device{name: name, fd: -1}}
	if err := s.openDevice(); err != nil {
		return nil, err
	}

	fail := func(step string, err error) (*Stream, error) {
		s.closeDevice()
		return nil, &OpenError{Step: step, Err: err}
	}

	cfg := o.config
	if _, err := s.SetBaudRate(cfg.BaudRate); err != nil {
		return fail("apply line configuration", err)
	}
	if _, err := s.SetCharSize(cfg.CharSize); err != nil {
		return fail("apply line configuration", err)
	}
	if _, err := s.SetParity(cfg.Parity); err != nil {
		return fail("apply line configuration", err)
	}
	if _, err := s.SetStopBits(cfg.StopBits); err != nil {
		return fail("apply line configuration", err)
	}
	if _, err := s.SetFlowControl(cfg.FlowControl); err != nil {
		return fail("apply line configuration", err)
	}

	// Block until at least one byte is available per read.
	if _, err := s.SetVMin(1); err != nil {
		return fail("set blocking read threshold", err)
	}
	if _, err := s.SetVTime(0); err != nil {
		return fail("set blocking read threshold", err)
	}
	if err := unix.SetNonblock(s.fd, false); err != nil {
		return fail("switch descriptor to blocking mode", err)
	}
	return s, nil
}

// Close restores the attributes saved at open and closes the device.
func (s *Stream) Close() error {
	s.putbackValid = false
	return s.closeDevice()
}

// Read fills p with up to len(p) bytes, blocking until at least one byte
// is available. A pending putback byte is delivered first.
func (s *Stream) Read(p []byte) (int, error) {
	if !s.isOpen {
		return 0, ErrNotOpen
	}
	if len(p) == 0 {
		return 0, nil
	}

	off := 0
	if s.putbackValid {
		p[0] = s.putback
		s.putbackValid = false
		off = 1
		if len(p) == 1 {
			return 1, nil
		}
		// Deliver only what is already pending rather than blocking for
		// more after the putback byte.
		pending, err := unix.IoctlGetInt(s.fd, unix.TIOCINQ)
		if err != nil || pending == 0 {
			return 1, nil
		}
		if pending > len(p)-1 {
			pending = len(p) - 1
		}
		p = p[1 : 1+pending]
	}

	n, err := s.read(p)
	if n == 0 && err == nil && off == 0 {
		return 0, io.EOF
	}
	return off + n, err
}

// Write writes all of p to the device, retrying on EAGAIN.
func (s *Stream) Write(p []byte) (int, error) {
	if !s.isOpen {
		return 0, ErrNotOpen
	}

	written := 0
	for written < len(p) {
		n, err := s.write(p[written:])
		written += n
		if err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Buffered returns the number of bytes that can be read without blocking,
// counting a pending putback byte. It returns -1 when the device cannot be
// queried.
func (s *Stream) Buffered() int {
	if !s.isOpen {
		return -1
	}
	if s.putbackValid {
		return 1
	}

	// Probe with a momentary non-blocking read; a byte obtained this way
	// becomes the putback byte so nothing is lost.
	if err := unix.SetNonblock(s.fd, true); err != nil {
		return -1
	}
	defer unix.SetNonblock(s.fd, false)

	var one [1]byte
	n, err := s.read(one[:])
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0
	}
	if err != nil || n == 0 {
		return 0
	}
	s.putback = one[0]
	s.putbackValid = true
	return 1
}

// Peek returns the next byte without consuming it, blocking until one is
// available.
func (s *Stream) Peek() (byte, error) {
	if !s.isOpen {
		return 0, ErrNotOpen
	}
	if s.putbackValid {
		return s.putback, nil
	}

	var one [1]byte
	n, err := s.read(one[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	s.putback = one[0]
	s.putbackValid = true
	return s.putback, nil
}

// ReadByte returns and consumes the next byte, blocking until one is
// available.
func (s *Stream) ReadByte() (byte, error) {
	if !s.isOpen {
		return 0, ErrNotOpen
	}
	if s.putbackValid {
		s.putbackValid = false
		return s.putback, nil
	}

	var one [1]byte
	n, err := s.read(one[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return one[0], nil
}

// UnreadByte pushes b back so the next read returns it first. Only one
// byte of putback is held; a second UnreadByte before the first is
// consumed returns ErrPutbackOccupied.
func (s *Stream) UnreadByte(b byte) error {
	if !s.isOpen {
		return ErrNotOpen
	}
	if s.putbackValid {
		return ErrPutbackOccupied
	}
	s.putback = b
	s.putbackValid = true
	return nil
}
