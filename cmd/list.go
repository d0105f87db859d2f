package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"github.com/libserial/serial"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

This command scans for communication-capable serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)
- And other platform-specific serial devices

Virtual terminals and pseudo-terminals are excluded from the listing.`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := serial.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filtered := filterPorts(ports, filterType)
		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		if tableFormat {
			renderPortTable(filtered)
		} else {
			for _, port := range filtered {
				fmt.Println(port)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("filter", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) []string {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		info, err := serial.GetPortInfo(port)
		if err != nil {
			continue
		}

		name := strings.ToLower(info.Name)
		switch strings.ToLower(filterType) {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, port)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, port)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, port)
			}
		}
	}
	return filtered
}

const (
	columnKeyPort        = "port"
	columnKeyDescription = "description"
	columnKeyVendor      = "vendor"
	columnKeySerial      = "serial"
)

// renderPortTable renders the port list as a styled table with USB
// metadata where available.
func renderPortTable(ports []string) {
	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 16),
		table.NewColumn(columnKeyDescription, "Description", 28),
		table.NewColumn(columnKeyVendor, "VID:PID", 10),
		table.NewColumn(columnKeySerial, "Serial", 14),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, port := range ports {
		info, err := serial.GetPortInfo(port)
		if err != nil {
			rows = append(rows, table.NewRow(table.RowData{
				columnKeyPort:        port,
				columnKeyDescription: fmt.Sprintf("Error: %v", err),
			}))
			continue
		}

		vidpid := ""
		if info.IsUSB() {
			vidpid = fmt.Sprintf("%s:%s", info.VendorID, info.ProductID)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:        info.Path,
			columnKeyDescription: info.Description,
			columnKeyVendor:      vidpid,
			columnKeySerial:      info.SerialNumber,
		}))
	}

	t := table.New(columns).WithRows(rows).BorderRounded()
	fmt.Println(t.View())
}
