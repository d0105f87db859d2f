package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/libserial/serial"
	"github.com/libserial/serial/internal/tui/components"
	"github.com/libserial/serial/internal/tui/keys"
	"github.com/libserial/serial/internal/tui/styles"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen <port>",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port with a real-time TUI display.

This command opens the specified serial port and displays incoming data in
real-time. Features include:
- Real-time data streaming with timestamps
- ASCII and hex display modes
- Connection status indicators
- Configurable line settings via the global flags

Example usage:
  serial listen /dev/ttyUSB0
  serial listen /dev/ttyUSB0 --baud 9600
  serial listen /dev/ttyUSB0 --flow-control hardware`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		opts, err := portOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")

		if err := runListenTUI(portPath, noTimestamps, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().Bool("no-timestamps", false, "Hide timestamps from output")
}

// connectionStatusMsg reports the outcome of the background port open.
type connectionStatusMsg struct {
	err  error
	info *components.ConnectionInfo
}

// listenModel is the Bubble Tea model for the listen command.
type listenModel struct {
	log       *components.DataLog
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.ListenKeys

	ready     bool
	connected bool
	done      chan struct{}
}

func runListenTUI(portPath string, noTimestamps bool, opts ...serial.Option) error {
	port, err := serial.New(portPath, opts...)
	if err != nil {
		return err
	}

	m := &listenModel{
		log:       components.NewDataLog(80, 20),
		statusBar: components.NewStatusBar("Serial Listen", portPath),
		help:      help.New(),
		keys:      keys.NewListenKeys(),
		done:      make(chan struct{}),
	}
	if noTimestamps {
		m.log.ToggleTimestamps()
	}
	m.statusBar.SetConnecting()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Open the port and pump received data into the TUI in the background.
	go func() {
		if err := port.Open(); err != nil {
			p.Send(connectionStatusMsg{err: err})
			return
		}
		defer port.Close()

		var info *components.ConnectionInfo
		if rate, err := port.GetBaudRate(); err == nil {
			size, _ := port.GetCharSize()
			parity, _ := port.GetParity()
			stop, _ := port.GetStopBits()
			flow, _ := port.GetFlowControl()
			info = &components.ConnectionInfo{
				BaudRate:    rate,
				CharSize:    size,
				Parity:      parity,
				StopBits:    stop,
				FlowControl: flow,
			}
		}
		p.Send(connectionStatusMsg{info: info})

		for {
			select {
			case <-m.done:
				return
			default:
			}

			b, err := port.ReadByte(100 * time.Millisecond)
			if errors.Is(err, serial.ErrReadTimeout) {
				continue
			}
			if err != nil {
				p.Send(connectionStatusMsg{err: err})
				return
			}

			// Grab whatever else is already buffered in one chunk.
			rest, _ := port.Read(0, 0)
			data := append([]byte{b}, rest...)
			p.Send(components.DataReceivedMsg{
				Timestamp: time.Now(),
				Data:      data,
			})
		}
	}()

	_, err = p.Run()
	close(m.done)
	return err
}

func (m *listenModel) Init() tea.Cmd {
	return nil
}

func (m *listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		borderHeight := 1
		m.log.SetSize(msg.Width, msg.Height-statusBarHeight-borderHeight)
		m.statusBar.SetWidth(msg.Width)
		m.ready = true

	case connectionStatusMsg:
		if msg.err != nil {
			m.connected = false
			m.statusBar.SetDisconnected(msg.err)
		} else {
			m.connected = true
			m.statusBar.SetConnected()
			m.statusBar.SetConnectionInfo(msg.info)
		}

	case components.DataReceivedMsg:
		if !m.ready {
			m.log.SetSize(80, 20)
			m.ready = true
		}
		m.log.Add(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.log.Clear()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.ToggleHex):
			m.log.ToggleHex()

		case key.Matches(msg, m.keys.ToggleTimestamps):
			m.log.ToggleTimestamps()

		case key.Matches(msg, m.keys.ToggleFollow):
			m.log.ToggleFollow()
		}
	}

	// Let the viewport handle scrolling and resizes.
	cmds = append(cmds, m.log.Update(msg))

	return m, tea.Batch(cmds...)
}

func (m *listenModel) View() string {
	var content string
	if m.ready {
		content = m.log.View()
	} else {
		content = "Initializing..."
	}

	contentWithBorder := styles.ContentBorderStyle.Render(content)
	statusBar := m.statusBar.View()

	if m.help.ShowAll {
		helpStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Margin(1, 0)
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpStyle.Render(m.help.View(m.keys)),
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		statusBar,
	)
}
