package serial

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestSignalMaskToTIOCM(t *testing.T) {
	tests := []struct {
		name     string
		mask     SignalMask
		expected int
	}{
		{
			name:     "CTS only",
			mask:     SignalCTS,
			expected: unix.TIOCM_CTS,
		},
		{
			name:     "DSR only",
			mask:     SignalDSR,
			expected: unix.TIOCM_DSR,
		},
		{
			name:     "RI only",
			mask:     SignalRI,
			expected: unix.TIOCM_RI,
		},
		{
			name:     "DCD only",
			mask:     SignalDCD,
			expected: unix.TIOCM_CAR,
		},
		{
			name:     "Multiple signals",
			mask:     SignalCTS | SignalDSR,
			expected: unix.TIOCM_CTS | unix.TIOCM_DSR,
		},
		{
			name:     "All signals",
			mask:     SignalCTS | SignalDSR | SignalRI | SignalDCD,
			expected: unix.TIOCM_CTS | unix.TIOCM_DSR | unix.TIOCM_RI | unix.TIOCM_CAR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := signalMaskToTIOCM(tt.mask)
			if result != tt.expected {
				t.Errorf("signalMaskToTIOCM(%v) = %v, want %v", tt.mask, result, tt.expected)
			}
		})
	}
}

func TestDetectSignalChanges(t *testing.T) {
	tests := []struct {
		name      string
		oldStatus int
		newStatus int
		expected  SignalMask
	}{
		{
			name:      "No change",
			oldStatus: unix.TIOCM_CTS | unix.TIOCM_DSR,
			newStatus: unix.TIOCM_CTS | unix.TIOCM_DSR,
			expected:  0,
		},
		{
			name:      "CTS changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_CTS,
			expected:  SignalCTS,
		},
		{
			name:      "DSR changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_DSR,
			expected:  SignalDSR,
		},
		{
			name:      "RI changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_RI,
			expected:  SignalRI,
		},
		{
			name:      "DCD changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_CAR,
			expected:  SignalDCD,
		},
		{
			name:      "Multiple signals changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_CTS | unix.TIOCM_DSR,
			expected:  SignalCTS | SignalDSR,
		},
		{
			name:      "Signal went low",
			oldStatus: unix.TIOCM_CTS,
			newStatus: 0,
			expected:  SignalCTS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detectSignalChanges(tt.oldStatus, tt.newStatus)
			if result != tt.expected {
				t.Errorf("detectSignalChanges(%v, %v) = %v, want %v", tt.oldStatus, tt.newStatus, result, tt.expected)
			}
		})
	}
}

func TestModemSignalsFromStatus(t *testing.T) {
	status := unix.TIOCM_CTS | unix.TIOCM_CAR | unix.TIOCM_DTR
	signals := modemSignalsFromStatus(status)

	want := ModemSignals{CTS: true, DCD: true, DTR: true}
	if signals != want {
		t.Errorf("modemSignalsFromStatus(%#x) = %+v, want %+v", status, signals, want)
	}
}

func TestModemLineOpsOnClosedPort(t *testing.T) {
	p, err := New("/dev/null")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Run("GetModemSignals", func(t *testing.T) {
		if _, err := p.GetModemSignals(); !errors.Is(err, ErrNotOpen) {
			t.Errorf("GetModemSignals() error = %v, want %v", err, ErrNotOpen)
		}
	})

	t.Run("SetRTS", func(t *testing.T) {
		if err := p.SetRTS(true); !errors.Is(err, ErrNotOpen) {
			t.Errorf("SetRTS() error = %v, want %v", err, ErrNotOpen)
		}
	})

	t.Run("GetDTR", func(t *testing.T) {
		if _, err := p.GetDTR(); !errors.Is(err, ErrNotOpen) {
			t.Errorf("GetDTR() error = %v, want %v", err, ErrNotOpen)
		}
	})

	t.Run("WaitModemChange", func(t *testing.T) {
		if _, _, err := p.WaitModemChange(SignalCTS, time.Second); !errors.Is(err, ErrNotOpen) {
			t.Errorf("WaitModemChange() error = %v, want %v", err, ErrNotOpen)
		}
	})
}
