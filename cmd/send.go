package cmd

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/libserial/serial"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port with configurable options.

This command sends data to the specified serial port. Data can be provided as:
- Command line argument: send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | serial send /dev/ttyUSB0
- Interactive mode: serial send /dev/ttyUSB0 (prompts for input)

Example usage:
  serial send "Hello World" /dev/ttyUSB0
  serial send "AT+GMR" /dev/ttyUSB0 --newline --response
  echo "test" | serial send /dev/ttyUSB0
  serial send "48656c6c6f" /dev/ttyUSB0 --hex`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var portPath string

		// Either "send data port" or "send port" with stdin/interactive input.
		if len(args) == 1 {
			portPath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portPath = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		readResponse, _ := cmd.Flags().GetBool("response")
		responseTimeout, _ := cmd.Flags().GetDuration("response-timeout")

		payload := []byte(data)
		if hexMode {
			decoded, err := parseHexString(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			payload = decoded
		}
		if addNewline && !hexMode {
			payload = append(payload, '\n')
		}

		opts, err := portOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := sendData(portPath, payload, readResponse, responseTimeout, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().BoolP("response", "r", false, "Wait for a response line after sending")
	sendCmd.Flags().Duration("response-timeout", 2*time.Second, "How long to wait for the response")
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func parseHexString(hexStr string) ([]byte, error) {
	hexStr = strings.ReplaceAll(hexStr, " ", "")
	hexStr = strings.ReplaceAll(hexStr, "0x", "")
	hexStr = strings.ReplaceAll(hexStr, "0X", "")
	return hex.DecodeString(hexStr)
}

func sendData(portPath string, payload []byte, readResponse bool, responseTimeout time.Duration, opts ...serial.Option) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

	port, err := serial.Open(portPath, opts...)
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))
	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(payload))

	n, err := port.Write(payload)
	if err != nil {
		return fmt.Errorf("failed to send data: %w", err)
	}
	if err := port.Drain(); err != nil {
		return fmt.Errorf("failed to drain output: %w", err)
	}

	fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), n)

	if readResponse {
		line, err := port.ReadLine(responseTimeout, '\n')
		if err != nil && !errors.Is(err, serial.ErrReadTimeout) {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if line == "" {
			fmt.Printf("%s No response within %v\n", infoStyle.Render("📥"), responseTimeout)
		} else {
			fmt.Printf("%s Response: %s\n", infoStyle.Render("📥"), printable(line))
		}
	}

	return nil
}

// printable replaces control characters for display.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, strings.TrimRight(s, "\r\n"))
}
