package serial

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrNotOpen             = errors.New("serial port not open")
	ErrAlreadyOpen         = errors.New("serial port already open")
	ErrOpenFailed          = errors.New("failed to open serial port")
	ErrUnsupportedBaudRate = errors.New("unsupported baud rate")
	ErrReadTimeout         = errors.New("read operation timed out")
	ErrInvalidArgument     = errors.New("invalid serial configuration value")
	ErrPutbackOccupied     = errors.New("putback byte already pending")
	ErrDeviceNotFound      = errors.New("serial device not found")

	// Signal monitoring errors
	ErrSignalTimeout     = errors.New("timeout waiting for signal change")
	ErrInvalidSignalMask = errors.New("invalid signal mask")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)

// OpenError wraps the OS error of the Open step that failed. It matches
// ErrOpenFailed with errors.Is.
type OpenError struct {
	Step string // which step of Open failed
	Err  error  // the underlying OS error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open serial port: %s: %v", e.Step, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

func (e *OpenError) Is(target error) bool { return target == ErrOpenFailed }
