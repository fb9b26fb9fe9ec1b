package pipeline

import (
	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/fmap"
	"github.com/sercanarga/norflash/internal/layout"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// ReadOptions configures a Read operation.
type ReadOptions struct {
	Layout      *layout.Layout // nil if no layout file and no FMAP resolution
	ResolveFMAP bool           // --ignore-fmap unset: try discovering an on-flash FMAP
	FMAPHint    *uint64        // platform-advertised FMAP base offset, if any
}

// Read implements the Read contract: probe → optionally resolve
// FMAP → for each included region (or the whole chip if none), read
// through the chip's dispatched read function; the union is returned as a
// single chip-sized buffer (bytes outside any included region are left
// zero), ready for the caller to write to its output file.
func Read(m programmer.Master, h *chip.FlashChipHandle, opts ReadOptions) ([]byte, error) {
	l, err := resolveLayout(m, h, opts.Layout, opts.ResolveFMAP, opts.FMAPHint)
	if err != nil {
		return nil, err
	}

	out := make([]byte, h.TotalSize())
	included := l.EnumerateIncluded()
	if len(included) == 0 {
		return readFullChip(m, h)
	}
	for _, r := range included {
		if err := readChip(m, h, r.Start, out[r.Start:r.End+1]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ResolveLayout is the exported form of resolveLayout, for callers (e.g.
// the extract operation) that need the resolved layout itself rather than
// just the bytes Read() produces from it.
func ResolveLayout(m programmer.Master, h *chip.FlashChipHandle, l *layout.Layout, resolveFMAP bool, hint *uint64) (*layout.Layout, error) {
	return resolveLayout(m, h, l, resolveFMAP, hint)
}

// resolveLayout returns l if non-nil, otherwise attempts FMAP discovery
// when requested, otherwise an empty layout (meaning "whole chip").
// A not-found FMAP is not an error: the operation proceeds as
// if no layout had been given at all.
func resolveLayout(m programmer.Master, h *chip.FlashChipHandle, l *layout.Layout, resolveFMAP bool, hint *uint64) (*layout.Layout, error) {
	if l != nil {
		return l, nil
	}
	if !resolveFMAP {
		return &layout.Layout{}, nil
	}
	size := int(h.TotalSize())
	reader := func(offset, length int) ([]byte, error) {
		buf := make([]byte, length)
		if err := readChip(m, h, uint64(offset), buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	discovered, err := fmap.Discover(reader, size, hint)
	if err != nil {
		if norerr.Is(err, norerr.KindNotFound) {
			return &layout.Layout{}, nil
		}
		return nil, err
	}
	for i := range discovered.Regions {
		discovered.Regions[i].Included = true
	}
	return discovered, nil
}
