// Package pipeline implements the Read/Write/Verify/Erase orchestration:
// the linear probe → plan → act → verify sequences every top-level
// operation follows, built on top of internal/chip's dispatch tables,
// internal/eraser's block planner, internal/layout's region planner,
// and internal/fmap's on-flash discovery.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// maxCandidates caps how many catalog descriptors a probe pass reports
// before giving up, matching "filling up to eight candidates".
const maxCandidates = 8

// Probe runs the catalog probe pipeline against a single master: it asks
// every catalog descriptor compatible with the master's bus mask to probe
// itself, collecting up to maxCandidates matches.
//
//   - Exactly one match resolves directly.
//   - Zero matches with a non-empty chipName and force set performs the
//     blind forced-read path: finds chipName in the catalog, checks the
//     master supports one of its buses, and returns a handle without ever
//     having confirmed the chip is actually present.
//   - Zero matches otherwise, or more than one match with chipName empty,
//     is fatal failure modes.
//   - More than one match with chipName set picks the named one, if it's
//     among the candidates.
func Probe(m programmer.Master, chipName string, force bool) (*chip.FlashChipHandle, error) {
	candidates, err := probeCandidates(m)
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		if chipName != "" && force {
			return forcedHandle(m, chipName)
		}
		return nil, norerr.New(norerr.KindNotFound, "Probe", "no chip detected")
	case 1:
		if chipName != "" && !sameName(candidates[0], chipName) {
			return nil, norerr.New(norerr.KindNotFound, "Probe",
				fmt.Sprintf("detected chip %q does not match requested %q", candidates[0].Name, chipName))
		}
		return newHandle(m, candidates[0]), nil
	default:
		if chipName == "" {
			return nil, norerr.New(norerr.KindAmbiguous, "Probe",
				fmt.Sprintf("multiple chips detected (%s), select one with --chip", candidateNames(candidates)))
		}
		for _, c := range candidates {
			if sameName(c, chipName) {
				return newHandle(m, c), nil
			}
		}
		return nil, norerr.New(norerr.KindNotFound, "Probe",
			fmt.Sprintf("requested chip %q was not among the detected candidates (%s)", chipName, candidateNames(candidates)))
	}
}

func probeCandidates(m programmer.Master) ([]*chip.ChipDescriptor, error) {
	var found []*chip.ChipDescriptor
	for _, d := range chip.All() {
		if len(found) >= maxCandidates {
			break
		}
		if !d.SupportsBus(m.BusesSupported()) {
			continue
		}
		handler, ok := chip.Probe(d.Probe)
		if !ok {
			continue
		}
		present, err := handler(m, d)
		if err != nil {
			return nil, norerr.Wrap(norerr.KindTransport, "Probe", fmt.Sprintf("probing %s", d.Name), err)
		}
		if present {
			found = append(found, d)
		}
	}
	return found, nil
}

// forcedHandle implements the "forced blind read" fallback: a
// named chip with no confirmed probe match still gets a handle, as long as
// the active master supports one of its buses. The caller is responsible
// for having surfaced force's "contents may be meaningless" warning.
func forcedHandle(m programmer.Master, chipName string) (*chip.FlashChipHandle, error) {
	d, err := chip.FindByName(chipName)
	if err != nil {
		return nil, err
	}
	if !d.SupportsBus(m.BusesSupported()) {
		return nil, norerr.New(norerr.KindUnsupported, "Probe",
			fmt.Sprintf("master %q does not support any bus chip %q requires", m.Name(), d.Name))
	}
	return newHandle(m, d), nil
}

func newHandle(m programmer.Master, d *chip.ChipDescriptor) *chip.FlashChipHandle {
	return &chip.FlashChipHandle{
		Descriptor: d,
		MasterName: m.Name(),
	}
}

func sameName(d *chip.ChipDescriptor, name string) bool {
	return strings.EqualFold(d.Name, name)
}

func candidateNames(candidates []*chip.ChipDescriptor) string {
	out := ""
	for i, c := range candidates {
		if i > 0 {
			out += ", "
		}
		out += c.Name
	}
	return out
}
