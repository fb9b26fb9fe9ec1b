package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sercanarga/norflash/internal/pipeline"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Verify chip contents against a reference image",
	Long: `Probes the chip and compares its contents against <file> (or --diff,
if given instead) over either the whole chip or the --layout's
included regions, reporting the first mismatching offset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := optDiff
		if len(args) == 1 {
			ref = args[0]
		}
		if ref == "" {
			return fmt.Errorf("verify: a reference file is required (positional argument or --diff)")
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.probe(); err != nil {
			return err
		}

		l, err := loadLayoutFile()
		if err != nil {
			return err
		}
		l, err = pipeline.ResolveLayout(s.master, s.handle, l, !optIgnoreFMAP, nil)
		if err != nil {
			return err
		}
		if _, err := applyIncludes(l); err != nil {
			return err
		}

		expected, err := readFileOrStdin(ref)
		if err != nil {
			return err
		}
		if uint64(len(expected)) != s.handle.TotalSize() {
			return fmt.Errorf("verify: reference image is %d bytes, chip is %d bytes", len(expected), s.handle.TotalSize())
		}

		return pipeline.Verify(s.master, s.handle, pipeline.VerifyOptions{
			Layout:   l,
			Expected: expected,
			Flags:    verifyFlags(),
		})
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
