package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/sercanarga/norflash/internal/chip/spiops" // registers the SPI opcode dispatch handlers the catalog's tags name
)

var rootCmd = &cobra.Command{
	Use:   "norflash",
	Short: "NOR flash memory programming utility",
	Long: `norflash identifies, reads, writes, erases and write-protects NOR flash
memory chips through a Linux MTD device or a USB SPI programmer.

It supports layout files and on-flash FMAP tables for partial
operations, and serializes every invocation against a filesystem big
lock so that two instances never touch the same chip at once.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "norflash: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&optConfigFile, "config", "", "config file (defaults to none)")
	flags.StringVar(&optChip, "chip", "", "chip name (required if more than one candidate probes present)")
	flags.StringVar(&optProgrammer, "programmer", "", "programmer spec: name[:k=v,...] (required)")
	flags.StringVar(&optLayout, "layout", "", "layout file describing named regions")
	flags.StringArrayVar(&optImages, "image", nil, "include a region: name or name:file (repeatable)")
	flags.BoolVar(&optForce, "force", false, "force operation even if probe/checks are inconclusive")
	flags.BoolVar(&optNoVerify, "noverify", false, "skip verification after write")
	flags.BoolVar(&optNoVerifyAll, "noverify-all", false, "restrict verification to written regions only (default: verify the whole chip)")
	flags.BoolVar(&optFastVerify, "fast-verify", false, "sample-verify instead of a full byte compare")
	flags.CountVarP(&optVerbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&optOutput, "output", "", "redirect logging to this file instead of stderr")
	flags.StringVar(&optDiff, "diff", "", "reference image for verify when no file argument is given (not used by write)")
	flags.BoolVar(&optDoNotDiff, "do-not-diff", false, "skip reading the chip before writing; treat it as already erased")
	flags.BoolVar(&optIgnoreFMAP, "ignore-fmap", false, "do not attempt on-flash FMAP discovery")
	flags.BoolVar(&optIgnoreLock, "ignore-lock", false, "skip the big-lock/powerd interlock (diagnostic use only)")
}

// Global flag-backed variables, bound once in this file's init() and read
// by every subcommand through the helpers in common.go.
var (
	optConfigFile string
	optChip       string
	optProgrammer string
	optLayout     string
	optImages     []string
	optForce      bool
	optNoVerify   bool
	optNoVerifyAll bool
	optFastVerify bool
	optVerbose    int
	optOutput     string
	optDiff       string
	optDoNotDiff  bool
	optIgnoreFMAP bool
	optIgnoreLock bool
)
