package serial

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// BaudRate is a supported line speed in bits per second. The zero value is
// not a valid rate; BaudInvalid is returned by getters when the device
// reports a speed this library does not know about, or when the input and
// output speeds differ.
type BaudRate int

const BaudInvalid BaudRate = -1

const (
	Baud50      BaudRate = 50
	Baud75      BaudRate = 75
	Baud110     BaudRate = 110
	Baud134     BaudRate = 134
	Baud150     BaudRate = 150
	Baud200     BaudRate = 200
	Baud300     BaudRate = 300
	Baud600     BaudRate = 600
	Baud1200    BaudRate = 1200
	Baud1800    BaudRate = 1800
	Baud2400    BaudRate = 2400
	Baud4800    BaudRate = 4800
	Baud9600    BaudRate = 9600
	Baud19200   BaudRate = 19200
	Baud38400   BaudRate = 38400
	Baud57600   BaudRate = 57600
	Baud115200  BaudRate = 115200
	Baud230400  BaudRate = 230400
	Baud460800  BaudRate = 460800
	Baud921600  BaudRate = 921600
	Baud1000000 BaudRate = 1000000
	Baud2000000 BaudRate = 2000000
	Baud4000000 BaudRate = 4000000
)

// baudBits maps a baud rate to the Bxxx constant used in the termios
// speed fields and CBAUD bits.
var baudBits = map[BaudRate]uint32{
	Baud50:      unix.B50,
	Baud75:      unix.B75,
	Baud110:     unix.B110,
	Baud134:     unix.B134,
	Baud150:     unix.B150,
	Baud200:     unix.B200,
	Baud300:     unix.B300,
	Baud600:     unix.B600,
	Baud1200:    unix.B1200,
	Baud1800:    unix.B1800,
	Baud2400:    unix.B2400,
	Baud4800:    unix.B4800,
	Baud9600:    unix.B9600,
	Baud19200:   unix.B19200,
	Baud38400:   unix.B38400,
	Baud57600:   unix.B57600,
	Baud115200:  unix.B115200,
	Baud230400:  unix.B230400,
	Baud460800:  unix.B460800,
	Baud921600:  unix.B921600,
	Baud1000000: unix.B1000000,
	Baud2000000: unix.B2000000,
	Baud4000000: unix.B4000000,
}

// baudRates is the reverse of baudBits.
var baudRates = func() map[uint32]BaudRate {
	m := make(map[uint32]BaudRate, len(baudBits))
	for rate, bits := range baudBits {
		m[bits] = rate
	}
	return m
}()

func (b BaudRate) String() string {
	if b == BaudInvalid {
		return "invalid"
	}
	return fmt.Sprintf("%d", int(b))
}

// CharacterSize is the number of data bits per character on the wire.
type CharacterSize int

const CharSizeInvalid CharacterSize = -1

const (
	CharSize5 CharacterSize = 5
	CharSize6 CharacterSize = 6
	CharSize7 CharacterSize = 7
	CharSize8 CharacterSize = 8
)

var charSizeBits = map[CharacterSize]uint32{
	CharSize5: unix.CS5,
	CharSize6: unix.CS6,
	CharSize7: unix.CS7,
	CharSize8: unix.CS8,
}

func (c CharacterSize) String() string {
	if c == CharSizeInvalid {
		return "invalid"
	}
	return fmt.Sprintf("%d", int(c))
}

// Parity represents the parity mode
type Parity int

const (
	ParityInvalid Parity = iota - 1
	ParityNone
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "invalid"
	}
}

// StopBits is the number of stop bits per character, 1 or 2.
type StopBits int

const StopBitsInvalid StopBits = -1

const (
	StopBits1 StopBits = 1
	StopBits2 StopBits = 2
)

func (s StopBits) String() string {
	if s == StopBitsInvalid {
		return "invalid"
	}
	return fmt.Sprintf("%d", int(s))
}

// FlowControl represents the flow control mode. FlowControlInvalid is
// returned by the getter when the device carries a flow control
// configuration this library does not support (for example XON without
// XOFF); it is detected, never silently coerced.
type FlowControl int

const (
	FlowControlInvalid FlowControl = iota - 1
	FlowControlNone
	FlowControlHard
	FlowControlSoft
)

func (f FlowControl) String() string {
	switch f {
	case FlowControlNone:
		return "none"
	case FlowControlHard:
		return "hardware"
	case FlowControlSoft:
		return "software"
	default:
		return "invalid"
	}
}

// ModemLine identifies one of the modem control lines. DTR and RTS are
// outputs and may be set; CTS and DSR are inputs and read-only.
type ModemLine int

const (
	LineDTR ModemLine = iota
	LineRTS
	LineCTS
	LineDSR
	LineRI
	LineDCD
)

func (l ModemLine) bit() int {
	switch l {
	case LineDTR:
		return unix.TIOCM_DTR
	case LineRTS:
		return unix.TIOCM_RTS
	case LineCTS:
		return unix.TIOCM_CTS
	case LineDSR:
		return unix.TIOCM_DSR
	case LineRI:
		return unix.TIOCM_RI
	case LineDCD:
		return unix.TIOCM_CAR
	default:
		return 0
	}
}

func (l ModemLine) String() string {
	switch l {
	case LineDTR:
		return "DTR"
	case LineRTS:
		return "RTS"
	case LineCTS:
		return "CTS"
	case LineDSR:
		return "DSR"
	case LineRI:
		return "RI"
	case LineDCD:
		return "DCD"
	default:
		return "unknown"
	}
}

// ModemSignals represents modem control signal states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
	RTS bool // Request To Send
	DTR bool // Data Terminal Ready
}

// SignalMask identifies which signals to monitor
type SignalMask int

const (
	SignalCTS SignalMask = 1 << iota
	SignalDSR
	SignalRI
	SignalDCD
)

// signalMaskToTIOCM converts SignalMask to unix TIOCM bits
func signalMaskToTIOCM(mask SignalMask) int {
	var bits int
	if mask&SignalCTS != 0 {
		bits |= unix.TIOCM_CTS
	}
	if mask&SignalDSR != 0 {
		bits |= unix.TIOCM_DSR
	}
	if mask&SignalRI != 0 {
		bits |= unix.TIOCM_RI
	}
	if mask&SignalDCD != 0 {
		bits |= unix.TIOCM_CAR
	}
	return bits
}

// detectSignalChanges compares old and new signal states to determine what changed
func detectSignalChanges(oldStatus, newStatus int) SignalMask {
	var changed SignalMask
	if (oldStatus&unix.TIOCM_CTS != 0) != (newStatus&unix.TIOCM_CTS != 0) {
		changed |= SignalCTS
	}
	if (oldStatus&unix.TIOCM_DSR != 0) != (newStatus&unix.TIOCM_DSR != 0) {
		changed |= SignalDSR
	}
	if (oldStatus&unix.TIOCM_RI != 0) != (newStatus&unix.TIOCM_RI != 0) {
		changed |= SignalRI
	}
	if (oldStatus&unix.TIOCM_CAR != 0) != (newStatus&unix.TIOCM_CAR != 0) {
		changed |= SignalDCD
	}
	return changed
}

// modemSignalsFromStatus unpacks a TIOCMGET status word.
func modemSignalsFromStatus(status int) ModemSignals {
	return ModemSignals{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		RI:  status&unix.TIOCM_RI != 0,
		DCD: status&unix.TIOCM_CAR != 0,
		RTS: status&unix.TIOCM_RTS != 0,
		DTR: status&unix.TIOCM_DTR != 0,
	}
}
