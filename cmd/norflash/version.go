package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sercanarga/norflash/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("norflash %s\n", version.Version)
	},
}

var showWikiCmd = &cobra.Command{
	Use:   "show-wiki",
	Short: "Print the URL of the supported-chip wiki page",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("https://github.com/sercanarga/norflash/wiki")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd, showWikiCmd)
}
