package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/libserial/serial"
	"github.com/libserial/serial/internal/tui/colors"
	"github.com/libserial/serial/internal/tui/styles"
)

// ConnectionInfo is the line configuration shown in the status bar.
type ConnectionInfo struct {
	BaudRate    serial.BaudRate
	CharSize    serial.CharacterSize
	Parity      serial.Parity
	StopBits    serial.StopBits
	FlowControl serial.FlowControl
}

func (c *ConnectionInfo) String() string {
	parity := "N"
	switch c.Parity {
	case serial.ParityEven:
		parity = "E"
	case serial.ParityOdd:
		parity = "O"
	}
	s := fmt.Sprintf("%d %d%s%d", int(c.BaudRate), int(c.CharSize), parity, int(c.StopBits))
	switch c.FlowControl {
	case serial.FlowControlHard:
		s += " RTS/CTS"
	case serial.FlowControlSoft:
		s += " XON/XOFF"
	}
	return s
}

// StatusBar renders a single-line bar with connection state, line
// configuration and the port path.
type StatusBar struct {
	title  string
	port   string
	width  int
	status styles.StatusType
	err    error
	info   *ConnectionInfo
}

func NewStatusBar(title, port string) *StatusBar {
	return &StatusBar{
		title:  title,
		port:   port,
		status: styles.StatusConnecting,
	}
}

func (s *StatusBar) SetWidth(width int) { s.width = width }

func (s *StatusBar) SetConnectionInfo(i *ConnectionInfo) { s.info = i }

func (s *StatusBar) SetConnecting() {
	s.status = styles.StatusConnecting
	s.err = nil
}

func (s *StatusBar) SetConnected() {
	s.status = styles.StatusConnected
	s.err = nil
}

func (s *StatusBar) SetDisconnected(err error) {
	s.status = styles.StatusDisconnected
	s.err = err
}

func (s *StatusBar) statusText() string {
	switch s.status {
	case styles.StatusConnected:
		return "CONNECTED"
	case styles.StatusConnecting:
		return "CONNECTING"
	default:
		if s.err != nil {
			return fmt.Sprintf("DISCONNECTED (%v)", s.err)
		}
		return "DISCONNECTED"
	}
}

// View renders the bar, padded to the configured width.
func (s *StatusBar) View() string {
	left := styles.TitleStyle.Render(s.title)
	status := styles.GetStatusStyle(s.status).Render(s.statusText())

	portStyle := lipgloss.NewStyle().Foreground(colors.Subtext0)
	segments := left + " " + status + " " + portStyle.Render(s.port)
	if s.info != nil {
		segments += " " + portStyle.Render(s.info.String())
	}

	bar := lipgloss.NewStyle().
		Background(colors.Surface0).
		Width(s.width)
	return bar.Render(segments)
}
