package serial

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// ResetUSBDevice performs a USB-level reset of the device behind portPath.
// This can recover hardware that is in a hung or unresponsive state.
//
// The usbreset utility (from usbutils) must be installed and the caller
// needs permission to reset the device, typically root. Returns
// ErrUSBResetNotAvailable when the utility is missing and
// ErrUSBInfoNotAvailable when the port is not a USB device.
func ResetUSBDevice(portPath string) error {
	info, err := GetPortInfo(portPath)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}

	if info.BusNumber == "" || info.DeviceNumber == "" {
		return ErrUSBInfoNotAvailable
	}
	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	bus, err := strconv.Atoi(info.BusNumber)
	if err != nil {
		return ErrUSBInfoNotAvailable
	}
	dev, err := strconv.Atoi(info.DeviceNumber)
	if err != nil {
		return ErrUSBInfoNotAvailable
	}

	// usbreset expects zero-padded 3-digit bus and device numbers.
	usbPath := fmt.Sprintf("%03d/%03d", bus, dev)
	cmd := exec.Command("usbreset", usbPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	// Wait for the device to re-enumerate, which typically takes a second
	// or two.
	time.Sleep(2 * time.Second)
	return nil
}

// ResetUSBDeviceBySerial resets a USB device identified by its serial
// number. Useful when device paths change across reboots or when several
// devices are connected.
func ResetUSBDeviceBySerial(serialNumber string) error {
	ports, err := ListPorts()
	if err != nil {
		return err
	}

	for _, portPath := range ports {
		info, err := GetPortInfo(portPath)
		if err != nil {
			continue
		}
		if info.SerialNumber == serialNumber {
			return ResetUSBDevice(portPath)
		}
	}
	return fmt.Errorf("device with serial %s not found", serialNumber)
}

// IsUSBResetAvailable checks if the usbreset utility is available in PATH.
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}
