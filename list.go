package serial

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// serialDevicePatterns matches device names that represent real serial
// hardware under /dev.
var serialDevicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

// excludeDevicePatterns filters out virtual terminals and pseudo-terminals.
var excludeDevicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^tty\d+$`),
	regexp.MustCompile(`^console$`),
	regexp.MustCompile(`^ptmx$`),
	regexp.MustCompile(`^pty.*$`),
	regexp.MustCompile(`^pts/.*$`),
}

// ListPorts returns the serial devices present on the system, sorted by
// path. Virtual terminals and pseudo-terminals are excluded.
func ListPorts() ([]string, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()

		excluded := false
		for _, pattern := range excludeDevicePatterns {
			if pattern.MatchString(name) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		for _, pattern := range serialDevicePatterns {
			if pattern.MatchString(name) {
				fullPath := filepath.Join("/dev", name)
				if isCharacterDevice(fullPath) {
					ports = append(ports, fullPath)
				}
				break
			}
		}
	}

	sort.Strings(ports)
	return ports, nil
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// PortInfo describes a serial device, including USB metadata for devices
// that sit on a USB bus. Fields without a value are left empty.
type PortInfo struct {
	Name            string
	Path            string
	Description     string
	VendorID        string
	ProductID       string
	SerialNumber    string
	Manufacturer    string
	Product         string
	InterfaceNumber string
	BusNumber       string
	DeviceNumber    string
}

// IsUSB reports whether USB metadata was found for the device.
func (i *PortInfo) IsUSB() bool {
	return i.VendorID != ""
}

// GetPortInfo returns detailed information about a specific port.
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: portDescription(name),
	}

	if strings.HasPrefix(name, "ttyUSB") || strings.HasPrefix(name, "ttyACM") {
		enrichUSBInfo(info)
	}
	return info, nil
}

// portDescription provides human-readable descriptions for different port types
func portDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

// sysTTYRoot is the sysfs tree the USB metadata is read from. Overridable
// in tests.
var sysTTYRoot = "/sys/class/tty"

// enrichUSBInfo fills in USB metadata from sysfs. The tty's device node
// links into the USB interface directory; the USB device directory with
// idVendor, idProduct and friends is one of its ancestors. Walking up
// until idVendor appears handles both ttyUSB (extra converter level) and
// ttyACM layouts.
func enrichUSBInfo(info *PortInfo) {
	devLink := filepath.Join(sysTTYRoot, info.Name, "device")
	ifaceDir, err := filepath.EvalSymlinks(devLink)
	if err != nil {
		return
	}

	dir := ifaceDir
	for i := 0; i < 4; i++ {
		if info.InterfaceNumber == "" {
			if v, err := os.ReadFile(filepath.Join(dir, "bInterfaceNumber")); err == nil {
				info.InterfaceNumber = strings.TrimSpace(string(v))
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			break
		}
		dir = filepath.Dir(dir)
	}

	readAttr := func(name string) string {
		v, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(v))
	}

	info.VendorID = readAttr("idVendor")
	if info.VendorID == "" {
		return
	}
	info.ProductID = readAttr("idProduct")
	info.SerialNumber = readAttr("serial")
	info.Manufacturer = readAttr("manufacturer")
	info.Product = readAttr("product")
	info.BusNumber = readAttr("busnum")
	info.DeviceNumber = readAttr("devnum")

	if info.Product != "" {
		info.Description = info.Product
	}
}
