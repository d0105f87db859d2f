// Package serial provides access to POSIX serial (tty) devices on Linux.
//
// Two views of a device are offered. Port is a handle with buffered,
// notification-driven receive and deadline-bounded read operations:
//
//	port, err := serial.Open("/dev/ttyUSB0",
//		serial.WithBaudRate(serial.Baud115200),
//		serial.WithFlowControl(serial.FlowControlHard),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer port.Close()
//
//	line, err := port.ReadLine(2*time.Second, '\n')
//	if errors.Is(err, serial.ErrReadTimeout) {
//		// partial line is still in `line`
//	}
//
// Stream is a blocking io.Reader/io.Writer view with one byte of putback,
// suitable for wrapping in bufio:
//
//	s, err := serial.OpenStream("/dev/ttyUSB0", serial.WithBaudRate(serial.Baud9600))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//	r := bufio.NewReader(s)
//
// Both views share the same attribute accessors (baud rate, character
// size, parity, stop bits, flow control, VMIN/VTIME). Every setter applies
// the change and then reads it back from the device, returning what is
// actually in effect; getters report Invalid sentinel values for
// configurations the library does not recognize rather than guessing.
//
// Opening a device saves its termios attributes and closing restores
// them, so a finished program leaves the terminal as it found it.
// ListPorts and GetPortInfo enumerate devices with USB metadata read from
// sysfs.
package serial
