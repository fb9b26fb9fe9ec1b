package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flashNameCmd = &cobra.Command{
	Use:   "flash-name",
	Short: "Print the probed chip's vendor and name",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.probe(); err != nil {
			return err
		}
		fmt.Printf("%s %s\n", s.handle.Descriptor.Vendor, s.handle.Descriptor.Name)
		return nil
	},
}

var flashSizeCmd = &cobra.Command{
	Use:   "flash-size",
	Short: "Print the probed chip's total size in bytes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.probe(); err != nil {
			return err
		}
		fmt.Println(s.handle.TotalSize())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flashNameCmd, flashSizeCmd)
}
