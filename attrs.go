package serial

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// XON/XOFF control characters installed for software flow control.
const (
	xonChar  = 0x11 // ^Q
	xoffChar = 0x13 // ^S
)

// The attribute codec below always operates read-modify-write against the
// live descriptor: every setter fetches a fresh attribute snapshot, applies
// its change, writes it back, and returns the value re-read from the
// device. No configuration state is cached anywhere; the device is the
// single source of truth.

// SetBaudRate sets the input and output speed to the same rate and returns
// the rate the device actually accepted.
func (d *device) SetBaudRate(rate BaudRate) (BaudRate, error) {
	if !d.isOpen {
		return BaudInvalid, ErrNotOpen
	}
	bits, ok := baudBits[rate]
	if !ok {
		return BaudInvalid, fmt.Errorf("%w: %d", ErrUnsupportedBaudRate, int(rate))
	}
	tio, err := d.getattr()
	if err != nil {
		return BaudInvalid, fmt.Errorf("get attributes: %w", err)
	}
	// Clearing CIBAUD makes the input speed track the output speed.
	tio.Cflag = tio.Cflag&^(unix.CBAUD|unix.CIBAUD) | bits
	tio.Ispeed = bits
	tio.Ospeed = bits
	if err := d.setattr(tio); err != nil {
		return BaudInvalid, fmt.Errorf("%w: %v", ErrUnsupportedBaudRate, err)
	}
	return d.GetBaudRate()
}

// GetBaudRate re-reads the device speed from the CBAUD bits of the
// control flags (TCGETS does not fill in the speed fields). It returns
// BaudInvalid when the input and output speeds differ or when the rate is
// not one this library knows about.
func (d *device) GetBaudRate() (BaudRate, error) {
	if !d.isOpen {
		return BaudInvalid, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return BaudInvalid, fmt.Errorf("get attributes: %w", err)
	}
	out := tio.Cflag & unix.CBAUD
	// CIBAUD carries a separate input speed; zero means "same as output".
	in := (tio.Cflag & unix.CIBAUD) >> unix.IBSHIFT
	if in != 0 && in != out {
		return BaudInvalid, nil
	}
	rate, ok := baudRates[out]
	if !ok {
		return BaudInvalid, nil
	}
	return rate, nil
}

// SetCharSize sets the character size. Sizes below 8 bits also enable
// input stripping so the unused high-order bits arrive as zero; size 8
// clears it, otherwise the MSB of every byte would be forced to zero.
func (d *device) SetCharSize(size CharacterSize) (CharacterSize, error) {
	if !d.isOpen {
		return CharSizeInvalid, ErrNotOpen
	}
	bits, ok := charSizeBits[size]
	if !ok {
		return CharSizeInvalid, fmt.Errorf("%w: character size %d", ErrInvalidArgument, int(size))
	}
	tio, err := d.getattr()
	if err != nil {
		return CharSizeInvalid, fmt.Errorf("get attributes: %w", err)
	}
	if size == CharSize8 {
		tio.Iflag &^= unix.ISTRIP
	} else {
		tio.Iflag |= unix.ISTRIP
	}
	tio.Cflag = tio.Cflag&^unix.CSIZE | bits
	if err := d.setattr(tio); err != nil {
		return CharSizeInvalid, fmt.Errorf("set character size: %w", err)
	}
	return d.GetCharSize()
}

// GetCharSize re-reads the character size from the device.
func (d *device) GetCharSize() (CharacterSize, error) {
	if !d.isOpen {
		return CharSizeInvalid, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return CharSizeInvalid, fmt.Errorf("get attributes: %w", err)
	}
	switch tio.Cflag & unix.CSIZE {
	case unix.CS5:
		return CharSize5, nil
	case unix.CS6:
		return CharSize6, nil
	case unix.CS7:
		return CharSize7, nil
	case unix.CS8:
		return CharSize8, nil
	default:
		return CharSizeInvalid, nil
	}
}

// SetParity sets the parity mode and returns the mode re-read from the
// device.
func (d *device) SetParity(parity Parity) (Parity, error) {
	if !d.isOpen {
		return ParityInvalid, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return ParityInvalid, fmt.Errorf("get attributes: %w", err)
	}
	switch parity {
	case ParityNone:
		tio.Cflag &^= unix.PARENB
	case ParityEven:
		tio.Cflag |= unix.PARENB
		tio.Cflag &^= unix.PARODD
	case ParityOdd:
		tio.Cflag |= unix.PARENB | unix.PARODD
	default:
		return ParityInvalid, fmt.Errorf("%w: parity %d", ErrInvalidArgument, int(parity))
	}
	if err := d.setattr(tio); err != nil {
		return ParityInvalid, fmt.Errorf("set parity: %w", err)
	}
	return d.GetParity()
}

// GetParity re-reads the parity mode. The parity-enable bit is
// authoritative: when it is clear the odd bit is ignored.
func (d *device) GetParity() (Parity, error) {
	if !d.isOpen {
		return ParityInvalid, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return ParityInvalid, fmt.Errorf("get attributes: %w", err)
	}
	if tio.Cflag&unix.PARENB == 0 {
		return ParityNone, nil
	}
	if tio.Cflag&unix.PARODD != 0 {
		return ParityOdd, nil
	}
	return ParityEven, nil
}

// SetStopBits sets the number of stop bits, 1 or 2.
func (d *device) SetStopBits(bits StopBits) (StopBits, error) {
	if !d.isOpen {
		return StopBitsInvalid, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return StopBitsInvalid, fmt.Errorf("get attributes: %w", err)
	}
	switch bits {
	case StopBits1:
		tio.Cflag &^= unix.CSTOPB
	case StopBits2:
		tio.Cflag |= unix.CSTOPB
	default:
		return StopBitsInvalid, fmt.Errorf("%w: stop bits %d", ErrInvalidArgument, int(bits))
	}
	if err := d.setattr(tio); err != nil {
		return StopBitsInvalid, fmt.Errorf("set stop bits: %w", err)
	}
	return d.GetStopBits()
}

// GetStopBits re-reads the stop bit count from the device.
func (d *device) GetStopBits() (StopBits, error) {
	if !d.isOpen {
		return StopBitsInvalid, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return StopBitsInvalid, fmt.Errorf("get attributes: %w", err)
	}
	if tio.Cflag&unix.CSTOPB != 0 {
		return StopBits2, nil
	}
	return StopBits1, nil
}

// SetFlowControl sets the flow control mode. Hardware flow control gates
// on RTS/CTS with the XON/XOFF characters disabled; software flow control
// enables XON/XOFF with ^Q/^S as the control codes.
func (d *device) SetFlowControl(flow FlowControl) (FlowControl, error) {
	if !d.isOpen {
		return FlowControlInvalid, ErrNotOpen
	}
	// Discard unwritten and unread data before changing the gating mode.
	if err := unix.IoctlSetInt(d.fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return FlowControlInvalid, fmt.Errorf("flush buffers: %w", err)
	}
	tio, err := d.getattr()
	if err != nil {
		return FlowControlInvalid, fmt.Errorf("get attributes: %w", err)
	}
	switch flow {
	case FlowControlHard:
		tio.Iflag &^= unix.IXON | unix.IXOFF
		tio.Cflag |= unix.CRTSCTS
		tio.Cc[unix.VSTART] = 0 // _POSIX_VDISABLE
		tio.Cc[unix.VSTOP] = 0
	case FlowControlSoft:
		tio.Iflag |= unix.IXON | unix.IXOFF
		tio.Cflag &^= unix.CRTSCTS
		tio.Cc[unix.VSTART] = xonChar
		tio.Cc[unix.VSTOP] = xoffChar
	case FlowControlNone:
		tio.Iflag &^= unix.IXON | unix.IXOFF
		tio.Cflag &^= unix.CRTSCTS
	default:
		return FlowControlInvalid, fmt.Errorf("%w: flow control %d", ErrInvalidArgument, int(flow))
	}
	if err := d.setattr(tio); err != nil {
		return FlowControlInvalid, fmt.Errorf("set flow control: %w", err)
	}
	return d.GetFlowControl()
}

// GetFlowControl re-reads the flow control mode. Soft is reported only
// when both XON and XOFF are enabled with the expected control codes;
// with neither enabled, the RTS/CTS gating bit decides between Hard and
// None. Any other combination is unsupported and reported as
// FlowControlInvalid.
func (d *device) GetFlowControl() (FlowControl, error) {
	if !d.isOpen {
		return FlowControlInvalid, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return FlowControlInvalid, fmt.Errorf("get attributes: %w", err)
	}
	xon := tio.Iflag&unix.IXON != 0
	xoff := tio.Iflag&unix.IXOFF != 0
	if xon && xoff && tio.Cc[unix.VSTART] == xonChar && tio.Cc[unix.VSTOP] == xoffChar {
		return FlowControlSoft, nil
	}
	if !xon && !xoff {
		if tio.Cflag&unix.CRTSCTS != 0 {
			return FlowControlHard, nil
		}
		return FlowControlNone, nil
	}
	return FlowControlInvalid, nil
}

// SetVMin sets the minimum character count for non-canonical reads.
// Valid values are 0 through 255.
func (d *device) SetVMin(vmin int) (int, error) {
	if !d.isOpen {
		return -1, ErrNotOpen
	}
	if vmin < 0 || vmin > 255 {
		return -1, fmt.Errorf("%w: VMIN %d", ErrInvalidArgument, vmin)
	}
	tio, err := d.getattr()
	if err != nil {
		return -1, fmt.Errorf("get attributes: %w", err)
	}
	tio.Cc[unix.VMIN] = uint8(vmin)
	if err := d.setattr(tio); err != nil {
		return -1, fmt.Errorf("set VMIN: %w", err)
	}
	return d.GetVMin()
}

// GetVMin re-reads the minimum character count.
func (d *device) GetVMin() (int, error) {
	if !d.isOpen {
		return -1, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return -1, fmt.Errorf("get attributes: %w", err)
	}
	return int(tio.Cc[unix.VMIN]), nil
}

// SetVTime sets the read timeout in deciseconds. Valid values are 0
// through 255.
func (d *device) SetVTime(vtime int) (int, error) {
	if !d.isOpen {
		return -1, ErrNotOpen
	}
	if vtime < 0 || vtime > 255 {
		return -1, fmt.Errorf("%w: VTIME %d", ErrInvalidArgument, vtime)
	}
	tio, err := d.getattr()
	if err != nil {
		return -1, fmt.Errorf("get attributes: %w", err)
	}
	tio.Cc[unix.VTIME] = uint8(vtime)
	if err := d.setattr(tio); err != nil {
		return -1, fmt.Errorf("set VTIME: %w", err)
	}
	return d.GetVTime()
}

// GetVTime re-reads the read timeout in deciseconds.
func (d *device) GetVTime() (int, error) {
	if !d.isOpen {
		return -1, ErrNotOpen
	}
	tio, err := d.getattr()
	if err != nil {
		return -1, fmt.Errorf("get attributes: %w", err)
	}
	return int(tio.Cc[unix.VTIME]), nil
}
