package serial

import (
	"errors"
	"testing"

	"github.com/benbjohnson/clock"

	"github.com/libserial/serial/internal/notify"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != Baud115200 {
		t.Errorf("Expected BaudRate 115200, got %v", config.BaudRate)
	}
	if config.CharSize != CharSize8 {
		t.Errorf("Expected CharSize 8, got %v", config.CharSize)
	}
	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}
	if config.StopBits != StopBits1 {
		t.Errorf("Expected StopBits 1, got %v", config.StopBits)
	}
	if config.FlowControl != FlowControlNone {
		t.Errorf("Expected FlowControl None, got %v", config.FlowControl)
	}
}

func TestWithBaudRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    BaudRate
		wantErr error
	}{
		{"9600", Baud9600, nil},
		{"115200", Baud115200, nil},
		{"4000000 (max)", Baud4000000, nil},
		{"123456 (unsupported)", BaudRate(123456), ErrUnsupportedBaudRate},
		{"0", BaudRate(0), ErrUnsupportedBaudRate},
		{"negative", BaudRate(-300), ErrUnsupportedBaudRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			err := WithBaudRate(tt.rate)(&o)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("WithBaudRate(%v) error = %v, want %v", tt.rate, err, tt.wantErr)
			}
			if err == nil && o.config.BaudRate != tt.rate {
				t.Errorf("BaudRate = %v, want %v", o.config.BaudRate, tt.rate)
			}
		})
	}
}

func TestWithCharSize(t *testing.T) {
	tests := []struct {
		name    string
		size    CharacterSize
		wantErr error
	}{
		{"5 bits", CharSize5, nil},
		{"7 bits", CharSize7, nil},
		{"8 bits", CharSize8, nil},
		{"4 bits (too small)", CharacterSize(4), ErrInvalidArgument},
		{"9 bits (too large)", CharacterSize(9), ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			err := WithCharSize(tt.size)(&o)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("WithCharSize(%v) error = %v, want %v", tt.size, err, tt.wantErr)
			}
			if err == nil && o.config.CharSize != tt.size {
				t.Errorf("CharSize = %v, want %v", o.config.CharSize, tt.size)
			}
		})
	}
}

func TestWithParity(t *testing.T) {
	o := defaultOptions()
	if err := WithParity(ParityOdd)(&o); err != nil {
		t.Fatalf("WithParity(ParityOdd) error = %v", err)
	}
	if o.config.Parity != ParityOdd {
		t.Errorf("Parity = %v, want odd", o.config.Parity)
	}
	if err := WithParity(Parity(7))(&o); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("WithParity(7) error = %v, want %v", err, ErrInvalidArgument)
	}
}

func TestWithStopBits(t *testing.T) {
	o := defaultOptions()
	if err := WithStopBits(StopBits2)(&o); err != nil {
		t.Fatalf("WithStopBits(2) error = %v", err)
	}
	if o.config.StopBits != StopBits2 {
		t.Errorf("StopBits = %v, want 2", o.config.StopBits)
	}
	if err := WithStopBits(StopBits(3))(&o); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("WithStopBits(3) error = %v, want %v", err, ErrInvalidArgument)
	}
}

func TestWithFlowControl(t *testing.T) {
	o := defaultOptions()
	if err := WithFlowControl(FlowControlSoft)(&o); err != nil {
		t.Fatalf("WithFlowControl(soft) error = %v", err)
	}
	if o.config.FlowControl != FlowControlSoft {
		t.Errorf("FlowControl = %v, want soft", o.config.FlowControl)
	}
	if err := WithFlowControl(FlowControl(9))(&o); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("WithFlowControl(9) error = %v, want %v", err, ErrInvalidArgument)
	}
}

func TestWithConfig(t *testing.T) {
	cfg := Config{
		BaudRate:    Baud9600,
		CharSize:    CharSize7,
		Parity:      ParityEven,
		StopBits:    StopBits2,
		FlowControl: FlowControlSoft,
	}
	o := defaultOptions()
	if err := WithConfig(cfg)(&o); err != nil {
		t.Fatalf("WithConfig error = %v", err)
	}
	if o.config != cfg {
		t.Errorf("config = %+v, want %+v", o.config, cfg)
	}

	cfg.BaudRate = BaudRate(31337)
	if err := WithConfig(cfg)(&o); !errors.Is(err, ErrUnsupportedBaudRate) {
		t.Errorf("WithConfig with bad rate error = %v, want %v", err, ErrUnsupportedBaudRate)
	}
}

func TestWithNotifierAndClock(t *testing.T) {
	o := defaultOptions()
	if err := WithNotifier(nil)(&o); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("WithNotifier(nil) error = %v, want %v", err, ErrInvalidArgument)
	}
	if err := WithClock(nil)(&o); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("WithClock(nil) error = %v, want %v", err, ErrInvalidArgument)
	}

	n := notify.NewPoller(0)
	c := clock.NewMock()
	if err := WithNotifier(n)(&o); err != nil {
		t.Fatalf("WithNotifier error = %v", err)
	}
	if err := WithClock(c)(&o); err != nil {
		t.Fatalf("WithClock error = %v", err)
	}
	if o.notifier != notify.Notifier(n) {
		t.Error("notifier was not replaced")
	}
	if o.clk != clock.Clock(c) {
		t.Error("clock was not replaced")
	}
}
