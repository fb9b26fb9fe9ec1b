package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sercanarga/norflash/internal/layout"
	"github.com/sercanarga/norflash/internal/pipeline"
)

var extractDir string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Read the full chip and write every layout region to its own file",
	Long: `Reads the full chip, then writes every region's bytes (not just the
included ones) to a file named after the region, spaces replaced with
underscores, inside --dir. Requires --layout or an FMAP-discoverable
chip.`,
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
		if len(l.Regions) == 0 {
			return fmt.Errorf("extract: no regions to extract (supply --layout or a chip with an on-flash FMAP)")
		}

		full, err := pipeline.Read(s.master, s.handle, pipeline.ReadOptions{Layout: &layout.Layout{}})
		if err != nil {
			return err
		}

		if err := os.MkdirAll(extractDir, 0755); err != nil {
			return err
		}
		return layout.ExtractRegions(l, full, func(name string, data []byte) error {
			return os.WriteFile(filepath.Join(extractDir, name), data, 0644)
		})
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractDir, "dir", ".", "destination directory for extracted region files")
	rootCmd.AddCommand(extractCmd)
}
