package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/libserial/serial"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serial",
	Short: "Serial port toolbox",
	Long: `A toolbox for working with serial ports: list and inspect devices,
send and receive data, watch modem control signals and reset hung USB
serial adapters.

Line settings can be given per invocation with flags, set in a config
file (~/.config/serial/config.yaml) or through SERIAL_* environment
variables (e.g. SERIAL_BAUD=9600).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().IntP("baud", "b", 115200, "Baud rate")
	rootCmd.PersistentFlags().Int("char-size", 8, "Data bits per character (5-8)")
	rootCmd.PersistentFlags().String("parity", "none", "Parity: none, even, odd")
	rootCmd.PersistentFlags().Int("stop-bits", 1, "Stop bits (1 or 2)")
	rootCmd.PersistentFlags().StringP("flow-control", "f", "none", "Flow control: none, hardware, software")

	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("char-size", rootCmd.PersistentFlags().Lookup("char-size"))
	viper.BindPFlag("parity", rootCmd.PersistentFlags().Lookup("parity"))
	viper.BindPFlag("stop-bits", rootCmd.PersistentFlags().Lookup("stop-bits"))
	viper.BindPFlag("flow-control", rootCmd.PersistentFlags().Lookup("flow-control"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.config/serial")
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("serial")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()
}

// portOptions builds the serial options shared by every command that
// opens a port, from the resolved flag/env/config values.
func portOptions() ([]serial.Option, error) {
	opts := []serial.Option{
		serial.WithBaudRate(serial.BaudRate(viper.GetInt("baud"))),
		serial.WithCharSize(serial.CharacterSize(viper.GetInt("char-size"))),
		serial.WithStopBits(serial.StopBits(viper.GetInt("stop-bits"))),
	}

	switch strings.ToLower(viper.GetString("parity")) {
	case "none":
		opts = append(opts, serial.WithParity(serial.ParityNone))
	case "even":
		opts = append(opts, serial.WithParity(serial.ParityEven))
	case "odd":
		opts = append(opts, serial.WithParity(serial.ParityOdd))
	default:
		return nil, fmt.Errorf("invalid parity: %s (valid: none, even, odd)", viper.GetString("parity"))
	}

	switch strings.ToLower(viper.GetString("flow-control")) {
	case "none":
		opts = append(opts, serial.WithFlowControl(serial.FlowControlNone))
	case "hardware", "rtscts", "hard":
		opts = append(opts, serial.WithFlowControl(serial.FlowControlHard))
	case "software", "xonxoff", "soft":
		opts = append(opts, serial.WithFlowControl(serial.FlowControlSoft))
	default:
		return nil, fmt.Errorf("invalid flow control: %s (valid: none, hardware, software)", viper.GetString("flow-control"))
	}

	return opts, nil
}
