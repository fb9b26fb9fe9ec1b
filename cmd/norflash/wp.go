package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/pipeline"
	"github.com/sercanarga/norflash/internal/wp"
)

// wpHandler resolves the write-protect Handler for the probed chip, or a
// KindUnsupported error naming the chip ("unsupported by this
// chip" failure mode).
func (s *session) wpHandler() (*wp.Handler, error) {
	h, ok := wp.For(s.handle.Descriptor.WpTable)
	if !ok {
		return nil, norerr.New(norerr.KindUnsupported, "WP",
			fmt.Sprintf("chip %q has no write-protect table", s.handle.Descriptor.Name))
	}
	return h, nil
}

var wpStatusCmd = &cobra.Command{
	Use:   "wp-status",
	Short: "Print the chip's current write-protect status",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.probe(); err != nil {
			return err
		}
		h, err := s.wpHandler()
		if err != nil {
			return err
		}
		status, err := h.Status(s.master, s.handle)
		if err != nil {
			return err
		}
		fmt.Printf("BP=%d TB=%s SEC=%s CMP=%v SRP0=%v SRP1=%v busy=%v\n",
			status.BP, status.TB, status.SEC, status.CMP, status.SRP0, status.SRP1, status.Busy)
		if status.Range != nil {
			fmt.Printf("protected range: [%#x,%#x)\n", status.Range.Start, status.Range.Start+status.Range.Length)
		} else {
			fmt.Println("protected range: unknown (no table entry matches the current bits)")
		}
		return nil
	},
}

var wpListCmd = &cobra.Command{
	Use:   "wp-list",
	Short: "List every range this chip's write-protect table can express",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.probe(); err != nil {
			return err
		}
		h, err := s.wpHandler()
		if err != nil {
			return err
		}
		table, err := h.ListRanges(s.master, s.handle)
		if err != nil {
			return err
		}
		for _, e := range table {
			fmt.Println(e.String())
		}
		return nil
	},
}

var wpRangeCmd = &cobra.Command{
	Use:   "wp-range <start> <length>",
	Short: "Protect exactly the given byte range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			return fmt.Errorf("wp-range: invalid start %q: %w", args[0], err)
		}
		length, err := strconv.ParseUint(args[1], 0, 64)
		if err != nil {
			return fmt.Errorf("wp-range: invalid length %q: %w", args[1], err)
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.probe(); err != nil {
			return err
		}
		h, err := s.wpHandler()
		if err != nil {
			return err
		}
		return h.SetRange(s.master, s.handle, start, length)
	},
}

var wpRegionCmd = &cobra.Command{
	Use:   "wp-region <name>",
	Short: "Protect exactly the named layout region",
	Args:  cobra.ExactArgs(1),
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
		idx := -1
		for i, r := range l.Regions {
			if r.Name == args[0] {
				idx = i
				break
			}
		}
		if idx == -1 {
			return norerr.New(norerr.KindNotFound, "WP", fmt.Sprintf("no region named %q in the active layout", args[0]))
		}

		h, err := s.wpHandler()
		if err != nil {
			return err
		}
		region := l.Regions[idx]
		return h.SetRange(s.master, s.handle, region.Start, region.Size())
	},
}

var wpEnableCmd = &cobra.Command{
	Use:   "wp-enable [mode]",
	Short: "Enable write protection (mode: hardware, power-cycle, or permanent)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := wp.ModeHardware
		if len(args) == 1 {
			switch args[0] {
			case "hardware":
				mode = wp.ModeHardware
			case "power-cycle":
				mode = wp.ModePowerCycle
			case "permanent":
				mode = wp.ModePermanent
			default:
				return fmt.Errorf("wp-enable: unknown mode %q (want hardware, power-cycle, or permanent)", args[0])
			}
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.probe(); err != nil {
			return err
		}
		h, err := s.wpHandler()
		if err != nil {
			return err
		}
		return h.Enable(s.master, s.handle, mode)
	},
}

var wpDisableCmd = &cobra.Command{
	Use:   "wp-disable",
	Short: "Disable write protection",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		if err := s.probe(); err != nil {
			return err
		}
		h, err := s.wpHandler()
		if err != nil {
			return err
		}
		return h.Disable(s.master, s.handle)
	},
}

func init() {
	rootCmd.AddCommand(wpStatusCmd, wpListCmd, wpRangeCmd, wpRegionCmd, wpEnableCmd, wpDisableCmd)
}
