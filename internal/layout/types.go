// Package layout implements the region/layout planner: merging
// a user-supplied layout file or an on-flash FMAP table with include
// filters to decide which address ranges a read/write/verify operation
// touches, and how to merge new content with what's already on the chip.
package layout

import "fmt"

// MaxRegions bounds how many regions a single Layout may hold. A design
// constant, not derived from any catalog value.
const MaxRegions = 256

// MaxNameLen is the longest a region name may be.
const MaxNameLen = 256

// LayoutRegion is one named address range, inclusive of both endpoints.
type LayoutRegion struct {
	Start    uint64
	End      uint64
	Name     string
	Included bool
	File     string // non-empty if an include argument attached a file
}

// Size returns the region's byte length ([Start, End] inclusive).
func (r LayoutRegion) Size() uint64 { return r.End - r.Start + 1 }

// Layout is the full set of regions for one operation, owned by the
// pipeline for its duration.
type Layout struct {
	Regions []LayoutRegion
}

// Add appends a region, enforcing MaxRegions and MaxNameLen.
func (l *Layout) Add(r LayoutRegion) error {
	if len(l.Regions) >= MaxRegions {
		return fmt.Errorf("layout: region maximum (%d) exceeded", MaxRegions)
	}
	if len(r.Name) > MaxNameLen {
		return fmt.Errorf("layout: region name %q exceeds %d characters", r.Name, MaxNameLen)
	}
	l.Regions = append(l.Regions, r)
	return nil
}

// IncludeArg is one parsed --image argument: "name" or "name:file".
type IncludeArg struct {
	Name string
	File string
}
