package main

import (
	"github.com/spf13/cobra"

	"github.com/sercanarga/norflash/internal/pipeline"
)

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Read chip contents to a file",
	Long: `Probes the chip, resolves the active layout (an explicit --layout
file, or an on-flash FMAP table unless --ignore-fmap is given), and
reads either the included regions or the whole chip into <file>
("-" for stdout).`,
	Args: cobra.ExactArgs(1),
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

		data, err := pipeline.Read(s.master, s.handle, pipeline.ReadOptions{Layout: l})
		if err != nil {
			return err
		}
		return writeFileOrStdout(args[0], data)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
