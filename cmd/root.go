package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "brew-notes",
	Short: "A coffee tasting journal that understands bag labels",
	Long: `brew-notes keeps a journal of the coffees you brew. Label text, typed or read
from a photo, is matched against a catalog of origins, regions, farms,
varieties, processes and roast levels so notes stay consistent.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
