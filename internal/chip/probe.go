package chip

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// FindByName looks up a descriptor by its catalog name, case-insensitively.
func FindByName(name string) (*ChipDescriptor, error) {
	lower := strings.ToLower(name)
	for i := range registry {
		if strings.ToLower(registry[i].Name) == lower {
			return &registry[i], nil
		}
	}
	return nil, norerr.New(norerr.KindNotFound, "Chip", fmt.Sprintf("unknown chip %q", name))
}

// All returns every catalog descriptor, in declaration order, as pointers
// into the static registry (never mutated after init).
func All() []*ChipDescriptor {
	out := make([]*ChipDescriptor, len(registry))
	for i := range registry {
		out[i] = &registry[i]
	}
	return out
}

// Lookup returns every descriptor whose (manufacturer, model) ID pair
// matches. More than one result means an "evil twin": two catalog entries
// that probe identically and must be told apart some other way.
func Lookup(manufactureID, modelID uint32) []ChipDescriptor {
	var out []ChipDescriptor
	for i := range registry {
		if registry[i].ManufactureID == manufactureID && registry[i].ModelID == modelID {
			out = append(out, registry[i])
		}
	}
	return out
}

// LookupOne wraps Lookup for the common single-result case. It returns
// norerr.KindNotFound for zero matches and norerr.KindAmbiguous for more than one,
// naming every candidate so the caller can report them (or call
// Disambiguate itself).
func LookupOne(manufactureID, modelID uint32) (*ChipDescriptor, error) {
	matches := Lookup(manufactureID, modelID)
	switch len(matches) {
	case 0:
		return nil, norerr.New(norerr.KindNotFound, "Chip",
			fmt.Sprintf("no catalog entry for manufacturer 0x%02x model 0x%04x", manufactureID, modelID))
	case 1:
		return &matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return nil, norerr.New(norerr.KindAmbiguous, "Chip",
			fmt.Sprintf("manufacturer 0x%02x model 0x%04x matches multiple chips: %s",
				manufactureID, modelID, strings.Join(names, ", ")))
	}
}

// Disambiguate resolves an evil twin: given several candidates that share a
// JEDEC ID, it runs each candidate's own Probe tag against m in turn and
// returns the first one whose probe reports present ("catalog
// iterator... per-candidate disambiguation closure"). A candidate with no
// registered probe handler is skipped rather than treated as a failure,
// since the catalog may list entries this build's dispatch table doesn't
// carry a prober for.
func Disambiguate(m programmer.Master, candidates []ChipDescriptor) (*ChipDescriptor, error) {
	var tried []string
	for i := range candidates {
		c := &candidates[i]
		handler, ok := Probe(c.Probe)
		if !ok {
			continue
		}
		tried = append(tried, c.Name)
		present, err := handler(m, c)
		if err != nil {
			return nil, norerr.Wrap(norerr.KindTransport, "Chip", fmt.Sprintf("probing %s", c.Name), err)
		}
		if present {
			return c, nil
		}
	}
	if len(tried) == 0 {
		return nil, norerr.New(norerr.KindUnsupported, "Chip",
			"no candidate in this evil-twin group has a registered probe handler")
	}
	return nil, norerr.New(norerr.KindAmbiguous, "Chip",
		fmt.Sprintf("none of the candidate probes matched: %s", strings.Join(tried, ", ")))
}

// EnumerateVoltages builds the fixed, sorted, deduplicated table of
// operating-voltage ranges advertised by every catalog entry supporting at
// least one bus in mask.
func EnumerateVoltages(mask BusType) []VoltageRange {
	seen := map[VoltageRange]bool{}
	var out []VoltageRange
	for i := range registry {
		d := &registry[i]
		if !d.SupportsBus(mask) {
			continue
		}
		if seen[d.Voltage] {
			continue
		}
		seen[d.Voltage] = true
		out = append(out, d.Voltage)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MinMV != out[j].MinMV {
			return out[i].MinMV < out[j].MinMV
		}
		return out[i].MaxMV < out[j].MaxMV
	})
	return out
}
