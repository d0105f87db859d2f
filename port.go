package serial

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/libserial/serial/internal/notify"
)

// Port is a handle on a serial device with buffered, notification-driven
// receive. Bytes arriving on the line are collected into an internal
// buffer as the notifier reports them ready, so the deadline-bounded read
// operations never block on the descriptor itself.
//
// A Port is not safe for concurrent use by multiple goroutines.
type Port struct {
	*device

	cfg      Config
	notifier notify.Notifier
	clk      clock.Clock
	buf      recvBuffer
	attached bool
}

// New creates a closed Port for the named device. The configuration given
// through options is applied when the port is opened.
func New(name string, opts ...Option) (*Port, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	return &Port{
		device:   &device{name: name, fd: -1},
		cfg:      o.config,
		notifier: o.notifier,
		clk:      o.clk,
	}, nil
}

// Open creates a Port and opens it in one step.
func Open(name string, opts ...Option) (*Port, error) {
	p, err := New(name, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.Open(); err != nil {
		return nil, err
	}
	return p, nil
}

// Open opens the device, applies the configured line settings and attaches
// the port to its notifier so inbound bytes start accumulating. Opening an
// already open port returns ErrAlreadyOpen.
func (p *Port) Open() error {
	if err := p.openDevice(); err != nil {
		return err
	}

	fail := func(step string, err error) error {
		p.closeDevice()
		return &OpenError{Step: step, Err: err}
	}

	if err := p.Configure(p.cfg); err != nil {
		return fail("apply line configuration", err)
	}

	p.buf.reset()
	if err := p.notifier.Attach(p.fd, p); err != nil {
		return fail("attach data-ready notifier", err)
	}
	p.attached = true
	return nil
}

// Close detaches the port from its notifier, restores the attributes that
// were in effect at open and closes the descriptor. Closing a port that is
// not open returns ErrNotOpen. The port can be opened again afterwards.
func (p *Port) Close() error {
	if !p.isOpen {
		return ErrNotOpen
	}

	var errs error
	if p.attached {
		errs = multierr.Append(errs, p.notifier.Detach(p.fd))
		p.attached = false
	}
	errs = multierr.Append(errs, p.closeDevice())
	p.buf.reset()
	return errs
}

// Configure applies all five line settings in one call. Each setting is
// applied through its own setter, so the device ends up exactly as if the
// individual setters had been called in sequence.
func (p *Port) Configure(cfg Config) error {
	if !p.isOpen {
		return ErrNotOpen
	}
	if _, err := p.SetBaudRate(cfg.BaudRate); err != nil {
		return err
	}
	if _, err := p.SetCharSize(cfg.CharSize); err != nil {
		return err
	}
	if _, err := p.SetParity(cfg.Parity); err != nil {
		return err
	}
	if _, err := p.SetStopBits(cfg.StopBits); err != nil {
		return err
	}
	if _, err := p.SetFlowControl(cfg.FlowControl); err != nil {
		return err
	}
	p.cfg = cfg
	return nil
}

// HandleDataReady collects bytes pending on the descriptor into the
// receive buffer. It is invoked by the notifier and is safe to call
// spuriously; when another goroutine holds the buffer lock the bytes are
// staged on a shadow queue instead of blocking.
func (p *Port) HandleDataReady() {
	if !p.isOpen {
		return
	}
	p.buf.collect(p.fd)
}

// IsDataAvailable reports whether buffered bytes are waiting to be read.
func (p *Port) IsDataAvailable() bool {
	if !p.isOpen {
		return false
	}
	return p.buf.dataAvailable()
}

// Buffered returns the number of bytes currently queued in the receive
// buffer.
func (p *Port) Buffered() int {
	if !p.isOpen {
		return 0
	}
	return p.buf.size()
}

// Write writes data to the port, retrying when the descriptor is
// temporarily unable to accept more. Only EAGAIN is retried; any other
// error aborts the write with the count written so far.
func (p *Port) Write(data []byte) (int, error) {
	if !p.isOpen {
		return 0, ErrNotOpen
	}

	written := 0
	for written < len(data) {
		n, err := p.write(data[written:])
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

// WriteByte writes a single byte to the port.
func (p *Port) WriteByte(b byte) error {
	_, err := p.Write([]byte{b})
	return err
}

// FlushInput discards bytes received but not yet read, both in the kernel
// queue and in the port's own receive buffer.
func (p *Port) FlushInput() error {
	if !p.isOpen {
		return ErrNotOpen
	}
	p.buf.reset()
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

// FlushOutput discards bytes written but not yet transmitted.
func (p *Port) FlushOutput() error {
	if !p.isOpen {
		return ErrNotOpen
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCOFLUSH)
}

// Flush discards all pending input and output.
func (p *Port) Flush() error {
	if !p.isOpen {
		return ErrNotOpen
	}
	p.buf.reset()
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIOFLUSH)
}

// Drain blocks until all written bytes have been transmitted.
func (p *Port) Drain() error {
	if !p.isOpen {
		return ErrNotOpen
	}
	return unix.IoctlSetInt(p.fd, unix.TCSBRK, 1)
}

// SetModemLine raises or lowers one of the output modem control lines.
func (p *Port) SetModemLine(line ModemLine, state bool) error {
	if !p.isOpen {
		return ErrNotOpen
	}
	bit := line.bit()
	if bit == 0 {
		return ErrInvalidArgument
	}
	req := uint(unix.TIOCMBIC)
	if state {
		req = unix.TIOCMBIS
	}
	return unix.IoctlSetPointerInt(p.fd, req, bit)
}

// GetModemLine reads the current state of one modem control line.
func (p *Port) GetModemLine(line ModemLine) (bool, error) {
	if !p.isOpen {
		return false, ErrNotOpen
	}
	bit := line.bit()
	if bit == 0 {
		return false, ErrInvalidArgument
	}
	status, err := unix.IoctlGetInt(p.fd, unix.TIOCMGET)
	if err != nil {
		return false, err
	}
	return status&bit != 0, nil
}

// SetDTR sets the Data Terminal Ready line.
func (p *Port) SetDTR(state bool) error {
	return p.SetModemLine(LineDTR, state)
}

// GetDTR returns the state of the Data Terminal Ready line.
func (p *Port) GetDTR() (bool, error) {
	return p.GetModemLine(LineDTR)
}

// SetRTS sets the Request To Send line.
func (p *Port) SetRTS(state bool) error {
	return p.SetModemLine(LineRTS, state)
}

// GetRTS returns the state of the Request To Send line.
func (p *Port) GetRTS() (bool, error) {
	return p.GetModemLine(LineRTS)
}

// GetCTS returns the state of the Clear To Send line.
func (p *Port) GetCTS() (bool, error) {
	return p.GetModemLine(LineCTS)
}

// GetDSR returns the state of the Data Set Ready line.
func (p *Port) GetDSR() (bool, error) {
	return p.GetModemLine(LineDSR)
}

// GetModemSignals returns the current state of all modem control signals.
func (p *Port) GetModemSignals() (ModemSignals, error) {
	if !p.isOpen {
		return ModemSignals{}, ErrNotOpen
	}
	status, err := unix.IoctlGetInt(p.fd, unix.TIOCMGET)
	if err != nil {
		return ModemSignals{}, err
	}
	return modemSignalsFromStatus(status), nil
}

// WaitModemChange blocks until one of the signals in mask changes state or
// the timeout expires. It returns the signal states after the change and a
// mask of which monitored signals changed. A timeout of zero waits
// indefinitely.
//
// The kernel wait (TIOCMIWAIT) cannot be interrupted portably, so it runs
// in a helper goroutine and the timeout is enforced on the caller side.
// The helper holds its own dup of the descriptor; on ErrSignalTimeout it
// remains blocked until the next line change, but a later Close and
// descriptor-number reuse cannot redirect the stray ioctl.
func (p *Port) WaitModemChange(mask SignalMask, timeout time.Duration) (ModemSignals, SignalMask, error) {
	if !p.isOpen {
		return ModemSignals{}, 0, ErrNotOpen
	}
	bits := signalMaskToTIOCM(mask)
	if bits == 0 {
		return ModemSignals{}, 0, ErrInvalidSignalMask
	}

	before, err := unix.IoctlGetInt(p.fd, unix.TIOCMGET)
	if err != nil {
		return ModemSignals{}, 0, err
	}

	wfd, err := unix.Dup(p.fd)
	if err != nil {
		return ModemSignals{}, 0, err
	}

	type waitResult struct {
		status int
		err    error
	}
	done := make(chan waitResult, 1)
	go func() {
		defer unix.Close(wfd)
		if err := unix.IoctlSetInt(wfd, unix.TIOCMIWAIT, bits); err != nil {
			done <- waitResult{err: err}
			return
		}
		status, err := unix.IoctlGetInt(wfd, unix.TIOCMGET)
		done <- waitResult{status: status, err: err}
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		t := p.clk.Timer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case res := <-done:
		if res.err != nil {
			return ModemSignals{}, 0, res.err
		}
		changed := detectSignalChanges(before, res.status) & mask
		return modemSignalsFromStatus(res.status), changed, nil
	case <-timer:
		return ModemSignals{}, 0, ErrSignalTimeout
	}
}
