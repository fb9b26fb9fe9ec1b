package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/config"
	"github.com/sercanarga/norflash/internal/envelope"
	"github.com/sercanarga/norflash/internal/layout"
	"github.com/sercanarga/norflash/internal/logging"
	"github.com/sercanarga/norflash/internal/pipeline"
	"github.com/sercanarga/norflash/internal/programmer"
	"github.com/sercanarga/norflash/internal/programmer/linuxmtd"
	"github.com/sercanarga/norflash/internal/programmer/spidev"
)

// session bundles the resources most operations need: a resolved config, a
// logger, the process envelope (already acquired), and (once opened) the
// programmer master and probed chip handle.
type session struct {
	cfg *config.Config
	log *logging.Logger
	env *envelope.Session

	master programmer.Master
	handle *chip.FlashChipHandle
}

// openSession resolves config/logging/the envelope big lock, common setup
// every operation needs before it can touch a chip.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.New(cmd.Flags(), optConfigFile)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(optOutput, optVerbose)
	if err != nil {
		return nil, err
	}

	env := envelope.New("", "", optIgnoreLock)
	if err := env.Acquire(0); err != nil {
		log.Close()
		return nil, err
	}

	return &session{cfg: cfg, log: log, env: env}, nil
}

// close releases the master, the envelope, and the logger, in that order,
// on every exit path (normal or failure).
func (s *session) close() {
	if s.master != nil {
		s.master.Close()
	}
	s.env.Release()
	s.log.Close()
}

// openMaster opens the requested programmer transport. "spidev" speaks raw
// SPI over an FTDI MPSSE adapter; "linuxmtd" opens an MTD character device
// named by the spec's "path" parameter (or /dev/mtd0 if none given).
func (s *session) openMaster() error {
	spec, err := s.cfg.Programmer()
	if err != nil {
		return fmt.Errorf("--programmer: %w", err)
	}

	switch spec.Name {
	case "spidev":
		var hz int64
		if v, ok := spec.Params["clock"]; ok {
			hz, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("--programmer spidev:clock=%q: %w", v, err)
			}
		}
		m, err := spidev.Open(physic.Frequency(hz) * physic.Hertz)
		if err != nil {
			return err
		}
		s.master = m
		return nil
	case "linuxmtd":
		path := spec.Params["path"]
		if path == "" {
			path = "/dev/mtd0"
		}
		m, err := linuxmtd.Open(path)
		if err != nil {
			return err
		}
		s.master = m
		return nil
	default:
		return fmt.Errorf("unknown programmer %q (want spidev or linuxmtd)", spec.Name)
	}
}

// probe opens the master (if not already open) and resolves the chip
// handle via the probe pipeline.
func (s *session) probe() error {
	if s.master == nil {
		if err := s.openMaster(); err != nil {
			return err
		}
	}
	h, err := pipeline.Probe(s.master, s.cfg.ChipName(), optForce)
	if err != nil {
		return err
	}
	s.handle = h
	return nil
}

// loadLayoutFile parses --layout, if given. The result still needs FMAP
// resolution (pipeline.ResolveLayout) before --image includes can be
// applied, since an include may name a region that only an on-flash FMAP
// table defines (processing order: parse layout → add FMAP
// regions unless ignore-fmap or a layout file was provided → resolve
// includes).
func loadLayoutFile() (*layout.Layout, error) {
	if optLayout == "" {
		return nil, nil
	}
	f, err := os.Open(optLayout)
	if err != nil {
		return nil, fmt.Errorf("opening layout file: %w", err)
	}
	defer f.Close()
	return layout.ParseLayoutFile(f)
}

// applyIncludes resolves --image arguments against l, which must already
// have gone through pipeline.ResolveLayout (so FMAP regions, if any, are
// present). Returns the by-filename content map Write needs to merge
// per-region files.
func applyIncludes(l *layout.Layout) (map[string][]byte, error) {
	if len(optImages) == 0 {
		return nil, nil
	}
	if l == nil || len(l.Regions) == 0 {
		return nil, fmt.Errorf("--image requires --layout or an FMAP-discoverable chip")
	}

	includes := make([]layout.IncludeArg, 0, len(optImages))
	fileContents := map[string][]byte{}
	for _, raw := range optImages {
		inc, err := layout.ParseIncludeArg(raw)
		if err != nil {
			return nil, err
		}
		includes = append(includes, inc)
		if inc.File != "" {
			if _, ok := fileContents[inc.File]; ok {
				continue
			}
			data, err := readFileOrStdin(inc.File)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", inc.File, err)
			}
			fileContents[inc.File] = data
		}
	}
	if err := layout.ResolveIncludes(l, includes); err != nil {
		return nil, err
	}
	return fileContents, nil
}

// verifyFlags derives pipeline.VerifyFlags from the verify-related CLI
// modifiers.
func verifyFlags() pipeline.VerifyFlags {
	return pipeline.VerifyFlags{
		Skip:       optNoVerify,
		WholeChip:  !optNoVerifyAll,
		FastVerify: optFastVerify,
	}
}

// readFileOrStdin reads path, or stdin when path is "-" (filename
// convention).
func readFileOrStdin(path string) ([]byte, error) {
	if path == "-" {
		return readAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeFileOrStdout writes data to path, or stdout when path is "-".
func writeFileOrStdout(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readAll(f *os.File) ([]byte, error) {
	data, err := io.ReadAll(f)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}
