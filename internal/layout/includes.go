package layout

import (
	"fmt"

	"github.com/sercanarga/norflash/internal/norerr"
)

// AddFMAPRegions appends FMAP-derived regions to the layout (// processing order: "add FMAP regions unless ignore-fmap or a layout file
// was provided"); the caller decides whether to call this at all.
func (l *Layout) AddFMAPRegions(regions []LayoutRegion) error {
	for _, r := range regions {
		if err := l.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// ResolveIncludes marks the first region matching each include argument's
// name as included, attaching its file if one was given.
// Duplicate names among the include arguments themselves are rejected; an
// include naming a region absent from the layout is a NotFound error.
func ResolveIncludes(l *Layout, includes []IncludeArg) error {
	seen := make(map[string]bool, len(includes))
	for _, inc := range includes {
		if seen[inc.Name] {
			return norerr.New(norerr.KindArgument, "Layout",
				fmt.Sprintf("duplicate include argument %q", inc.Name))
		}
		seen[inc.Name] = true

		idx := -1
		for i := range l.Regions {
			if l.Regions[i].Name == inc.Name {
				idx = i
				break
			}
		}
		if idx == -1 {
			return norerr.New(norerr.KindNotFound, "Layout",
				fmt.Sprintf("no region named %q in layout", inc.Name))
		}
		l.Regions[idx].Included = true
		l.Regions[idx].File = inc.File
	}
	return nil
}
