package components

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/libserial/serial/internal/tui/styles"
)

// DataReceivedMsg carries a chunk of received bytes into the TUI.
type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
}

// DataLog is a scrollable log of received data chunks with togglable
// formatting. Raw chunks are retained so toggling a format option can
// re-render the whole history.
type DataLog struct {
	viewport viewport.Model

	chunks []DataReceivedMsg

	showTimestamps bool
	hexMode        bool
	follow         bool
}

func NewDataLog(width, height int) *DataLog {
	return &DataLog{
		viewport:       viewport.New(width, height),
		showTimestamps: true,
		follow:         true,
	}
}

func (d *DataLog) SetSize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = height
	d.refresh()
}

func (d *DataLog) Add(msg DataReceivedMsg) {
	d.chunks = append(d.chunks, msg)
	d.refresh()
}

func (d *DataLog) Clear() {
	d.chunks = nil
	d.refresh()
}

func (d *DataLog) ToggleHex() {
	d.hexMode = !d.hexMode
	d.refresh()
}

func (d *DataLog) ToggleTimestamps() {
	d.showTimestamps = !d.showTimestamps
	d.refresh()
}

func (d *DataLog) ToggleFollow() {
	d.follow = !d.follow
	if d.follow {
		d.viewport.GotoBottom()
	}
}

func (d *DataLog) Following() bool { return d.follow }

func (d *DataLog) refresh() {
	var sb strings.Builder
	for _, chunk := range d.chunks {
		sb.WriteString(d.formatChunk(chunk))
	}
	d.viewport.SetContent(sb.String())
	if d.follow {
		d.viewport.GotoBottom()
	}
}

func (d *DataLog) formatChunk(chunk DataReceivedMsg) string {
	var prefix string
	if d.showTimestamps {
		prefix = styles.TimestampStyle.Render(chunk.Timestamp.Format("15:04:05.000")) + " "
	}

	if d.hexMode {
		dump := hex.EncodeToString(chunk.Data)
		var pairs []string
		for i := 0; i < len(dump); i += 2 {
			pairs = append(pairs, dump[i:i+2])
		}
		return fmt.Sprintf("%s%s %s\n",
			prefix,
			styles.RxIndicatorStyle.Render("RX"),
			styles.HexStyle.Render(strings.Join(pairs, " ")))
	}

	text := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || (r >= 32 && r < 127) {
			return r
		}
		return '·'
	}, string(chunk.Data))
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if prefix == "" {
		return text
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Update forwards scroll and resize handling to the viewport.
func (d *DataLog) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd
}

func (d *DataLog) View() string {
	return d.viewport.View()
}
