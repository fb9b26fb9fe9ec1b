package main

import (
	"github.com/spf13/cobra"

	"github.com/sercanarga/norflash/internal/pipeline"
)

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Write a full image or --image regions to the chip",
	Long: `Probes the chip, reads its current contents (unless --do-not-diff),
merges in <file> as the whole-chip image and any --image-attached
region files, erases and programs only the erase blocks that differ,
then verifies per --noverify/--noverify-all/--fast-verify.

<file> may be omitted if every included region supplies its own file
via --image name:file.`,
	Args: cobra.MaximumNArgs(1),
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
		fileContents, err := applyIncludes(l)
		if err != nil {
			return err
		}

		var newContents []byte
		if len(args) == 1 {
			newContents, err = readFileOrStdin(args[0])
			if err != nil {
				return err
			}
		}

		return pipeline.Write(s.master, s.handle, pipeline.WriteOptions{
			Layout:       l,
			NewContents:  newContents,
			FileContents: fileContents,
			DoNotDiff:    optDoNotDiff,
			Verify:       verifyFlags(),
		})
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
