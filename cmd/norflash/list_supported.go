package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/color"
)

var listSupportedCmd = &cobra.Command{
	Use:   "list-supported",
	Short: "List every chip in the catalog with its test status",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Vendor\tName\tSize\tProbe\tRead\tErase\tWrite")
		for _, d := range chip.All() {
			fmt.Fprintf(w, "%s\t%s\t%d KiB\t%s\t%s\t%s\t%s\n",
				d.Vendor, d.Name, d.TotalSizeKiB,
				testColor(d.Tested.Probe), testColor(d.Tested.Read),
				testColor(d.Tested.Erase), testColor(d.Tested.Write))
		}
		return w.Flush()
	},
}

// testColor marks a BAD test status in red and an OK status in green,
// falling back to plain text for untested/probe-only status.
func testColor(s chip.TestStatus) string {
	switch s {
	case chip.StatusBad:
		return color.Red(s.String())
	case chip.StatusOK:
		return color.Green(s.String())
	default:
		return s.String()
	}
}

func init() {
	rootCmd.AddCommand(listSupportedCmd)
}
