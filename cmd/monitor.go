package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/libserial/serial"
)

var (
	monitorSignals []string
	monitorTimeout time.Duration
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Monitor modem signal changes",
	Long: `Monitor modem control signal changes in real-time.

Watches specified signals and reports when they change state. Press Ctrl+C to stop.

Examples:
  serial monitor /dev/ttyUSB0
  serial monitor /dev/ttyUSB0 --signals cts,dsr
  serial monitor /dev/ttyUSB0 --signals dcd --wait 30s

Available signals: cts, dsr, ri, dcd`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		port, err := serial.Open(portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		mask, err := parseSignalMask(monitorSignals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing signals: %v\n", err)
			os.Exit(1)
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		fmt.Printf("Monitoring signals on %s (signals: %s)\n", portPath, strings.Join(monitorSignals, ", "))
		fmt.Println("Press Ctrl+C to stop")

		initial, err := port.GetModemSignals()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading initial signals: %v\n", err)
			os.Exit(1)
		}
		printSignalState("Initial", initial, mask)

		// The kernel wait is bounded so the stop channel gets checked at
		// least once a second even with no line activity.
		waitStep := time.Second
		if monitorTimeout > 0 && monitorTimeout < waitStep {
			waitStep = monitorTimeout
		}
		var idle time.Duration

		for {
			select {
			case <-stop:
				fmt.Println("\nStopping monitor...")
				return
			default:
			}

			signals, changed, err := port.WaitModemChange(mask, waitStep)
			if err != nil {
				if errors.Is(err, serial.ErrSignalTimeout) {
					idle += waitStep
					if monitorTimeout > 0 && idle >= monitorTimeout {
						fmt.Printf("[%s] Timeout - no signal changes\n", time.Now().Format("15:04:05"))
						idle = 0
					}
					continue
				}
				fmt.Fprintf(os.Stderr, "Error waiting for signal change: %v\n", err)
				os.Exit(1)
			}

			idle = 0
			printSignalChange(signals, changed)
		}
	},
}

func parseSignalMask(signalNames []string) (serial.SignalMask, error) {
	if len(signalNames) == 0 {
		return serial.SignalCTS | serial.SignalDSR | serial.SignalRI | serial.SignalDCD, nil
	}

	var mask serial.SignalMask
	for _, name := range signalNames {
		switch strings.ToLower(name) {
		case "cts":
			mask |= serial.SignalCTS
		case "dsr":
			mask |= serial.SignalDSR
		case "ri":
			mask |= serial.SignalRI
		case "dcd":
			mask |= serial.SignalDCD
		default:
			return 0, fmt.Errorf("unknown signal: %s (valid: cts, dsr, ri, dcd)", name)
		}
	}
	return mask, nil
}

func printSignalState(prefix string, signals serial.ModemSignals, mask serial.SignalMask) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] %s state:\n", timestamp, prefix)
	if mask&serial.SignalCTS != 0 {
		fmt.Printf("  CTS: %s\n", formatSignalState(signals.CTS))
	}
	if mask&serial.SignalDSR != 0 {
		fmt.Printf("  DSR: %s\n", formatSignalState(signals.DSR))
	}
	if mask&serial.SignalRI != 0 {
		fmt.Printf("  RI:  %s\n", formatSignalState(signals.RI))
	}
	if mask&serial.SignalDCD != 0 {
		fmt.Printf("  DCD: %s\n", formatSignalState(signals.DCD))
	}
	fmt.Println()
}

func printSignalChange(signals serial.ModemSignals, changed serial.SignalMask) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] Signal change detected:\n", timestamp)
	if changed&serial.SignalCTS != 0 {
		fmt.Printf("  CTS: %s\n", formatSignalState(signals.CTS))
	}
	if changed&serial.SignalDSR != 0 {
		fmt.Printf("  DSR: %s\n", formatSignalState(signals.DSR))
	}
	if changed&serial.SignalRI != 0 {
		fmt.Printf("  RI:  %s\n", formatSignalState(signals.RI))
	}
	if changed&serial.SignalDCD != 0 {
		fmt.Printf("  DCD: %s\n", formatSignalState(signals.DCD))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringSliceVarP(&monitorSignals, "signals", "s", []string{"cts", "dsr", "ri", "dcd"},
		"Signals to monitor (comma-separated: cts,dsr,ri,dcd)")
	monitorCmd.Flags().DurationVar(&monitorTimeout, "wait", 0,
		"Report when no change happens within this duration (0 = never)")
}
