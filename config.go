package serial

import (
	"github.com/benbjohnson/clock"
	"github.com/libserial/serial/internal/notify"
)

// Config holds the line configuration applied to a port when it is opened
// or reconfigured. The device itself remains the source of truth: Config
// describes what to apply, never what is currently in effect.
type Config struct {
	BaudRate    BaudRate
	CharSize    CharacterSize
	Parity      Parity
	StopBits    StopBits
	FlowControl FlowControl
}

// DefaultConfig returns a configuration with sensible defaults (115200 8N1,
// no flow control).
func DefaultConfig() Config {
	return Config{
		BaudRate:    Baud115200,
		CharSize:    CharSize8,
		Parity:      ParityNone,
		StopBits:    StopBits1,
		FlowControl: FlowControlNone,
	}
}

// options collects everything a handle needs at construction time.
type options struct {
	config   Config
	notifier notify.Notifier
	clk      clock.Clock
}

func defaultOptions() options {
	return options{
		config:   DefaultConfig(),
		notifier: notify.Shared(),
		clk:      clock.New(),
	}
}

// Option is a functional option for configuring a serial port handle
type Option func(*options) error

// WithBaudRate sets the baud rate
func WithBaudRate(rate BaudRate) Option {
	return func(o *options) error {
		if _, ok := baudBits[rate]; !ok {
			return ErrUnsupportedBaudRate
		}
		o.config.BaudRate = rate
		return nil
	}
}

// WithCharSize sets the character size (5, 6, 7, or 8 data bits)
func WithCharSize(size CharacterSize) Option {
	return func(o *options) error {
		if _, ok := charSizeBits[size]; !ok {
			return ErrInvalidArgument
		}
		o.config.CharSize = size
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(o *options) error {
		switch parity {
		case ParityNone, ParityEven, ParityOdd:
			o.config.Parity = parity
			return nil
		default:
			return ErrInvalidArgument
		}
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits StopBits) Option {
	return func(o *options) error {
		if bits != StopBits1 && bits != StopBits2 {
			return ErrInvalidArgument
		}
		o.config.StopBits = bits
		return nil
	}
}

// WithFlowControl sets the flow control mode
func WithFlowControl(flow FlowControl) Option {
	return func(o *options) error {
		switch flow {
		case FlowControlNone, FlowControlHard, FlowControlSoft:
			o.config.FlowControl = flow
			return nil
		default:
			return ErrInvalidArgument
		}
	}
}

// WithConfig replaces the whole configuration at once
func WithConfig(cfg Config) Option {
	return func(o *options) error {
		for _, opt := range []Option{
			WithBaudRate(cfg.BaudRate),
			WithCharSize(cfg.CharSize),
			WithParity(cfg.Parity),
			WithStopBits(cfg.StopBits),
			WithFlowControl(cfg.FlowControl),
		} {
			if err := opt(o); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithNotifier injects the data-ready notification service the port
// registers with at open. Defaults to the shared SIGIO dispatcher.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) error {
		if n == nil {
			return ErrInvalidArgument
		}
		o.notifier = n
		return nil
	}
}

// WithClock injects the clock used by the deadline-bounded read
// operations. Defaults to the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		if c == nil {
			return ErrInvalidArgument
		}
		o.clk = c
		return nil
	}
}
