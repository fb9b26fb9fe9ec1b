package main

import (
	"github.com/spf13/cobra"

	"github.com/sercanarga/norflash/internal/pipeline"
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase the whole chip or the included regions",
	Long: `Probes the chip, builds an erase-block-aligned plan covering the
whole chip (or the --layout's included regions), and erases each
block, retrying once per block on a verify mismatch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		return pipeline.Erase(s.master, s.handle, l)
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd)
}
