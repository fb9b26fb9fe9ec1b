package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sercanarga/norflash/internal/eraser"
	"github.com/sercanarga/norflash/internal/norerr"
)

// Normalize validates every region against the chip's total size: any
// included region whose [start,end] exceeds the chip fails, and any
// region (included or not) with start > end fails, since a malformed
// bound is never legal regardless of whether it's ever read.
func (l *Layout) Normalize(chipTotalSize uint64) error {
	for _, r := range l.Regions {
		if r.Start > r.End {
			return norerr.New(norerr.KindLayoutInvalid, "Layout",
				fmt.Sprintf("region %q has start 0x%x > end 0x%x", r.Name, r.Start, r.End))
		}
		if r.Included && r.End >= chipTotalSize {
			return norerr.New(norerr.KindLayoutInvalid, "Layout",
				fmt.Sprintf("included region %q end 0x%x exceeds chip size 0x%x", r.Name, r.End, chipTotalSize))
		}
	}
	return nil
}

// OverlapsInIncluded reports whether any two included regions overlap:
// an O(n²) pairwise check restricted to included regions, since only
// included regions need be disjoint.
func (l *Layout) OverlapsInIncluded() bool {
	included := l.includedUnsorted()
	for i := 0; i < len(included); i++ {
		for j := i + 1; j < len(included); j++ {
			a, b := included[i], included[j]
			if a.Start <= b.End && b.Start <= a.End {
				return true
			}
		}
	}
	return false
}

func (l *Layout) includedUnsorted() []LayoutRegion {
	var out []LayoutRegion
	for _, r := range l.Regions {
		if r.Included {
			out = append(out, r)
		}
	}
	return out
}

// EnumerateIncluded returns the included regions sorted ascending by
// start, ties broken by declaration order.
func (l *Layout) EnumerateIncluded() []LayoutRegion {
	out := l.includedUnsorted()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// BuildNewImage produces the buffer to program. With no
// included regions it returns newContents unchanged. Otherwise, bytes
// outside any included region come from oldContents; bytes inside an
// included region come from the region's file (if one is attached — the
// documented conflict policy: a region's file wins over a caller-supplied
// whole-image newContents), else — in eraseMode — from the chip's erase
// value, else from newContents.
func BuildNewImage(l *Layout, oldContents, newContents []byte, fileContents map[string][]byte, eraseValue byte, eraseMode bool) ([]byte, error) {
	included := l.EnumerateIncluded()
	if len(included) == 0 {
		out := make([]byte, len(newContents))
		copy(out, newContents)
		return out, nil
	}

	size := len(oldContents)
	if len(newContents) > size {
		size = len(newContents)
	}
	out := make([]byte, size)
	copy(out, oldContents)

	for _, r := range included {
		if r.End >= uint64(size) {
			return nil, norerr.New(norerr.KindLayoutInvalid, "Layout",
				fmt.Sprintf("region %q end 0x%x exceeds image size %d", r.Name, r.End, size))
		}
		n := r.Size()
		switch {
		case r.File != "":
			data, ok := fileContents[r.File]
			if !ok {
				return nil, norerr.New(norerr.KindArgument, "Layout",
					fmt.Sprintf("region %q references file %q with no contents supplied", r.Name, r.File))
			}
			if uint64(len(data)) < n {
				return nil, norerr.New(norerr.KindArgument, "Layout",
					fmt.Sprintf("file %q for region %q is shorter than the region (%d < %d)", r.File, r.Name, len(data), n))
			}
			copy(out[r.Start:r.Start+n], data[:n])
		case eraseMode:
			for i := r.Start; i <= r.End; i++ {
				out[i] = eraseValue
			}
		default:
			if r.Start+n > uint64(len(newContents)) {
				return nil, norerr.New(norerr.KindArgument, "Layout",
					fmt.Sprintf("new image contents too short to cover region %q", r.Name))
			}
			copy(out[r.Start:r.Start+n], newContents[r.Start:r.Start+n])
		}
	}
	return out, nil
}

// ReadFunc reads aligned bytes from the live chip or source image into buf.
type ReadFunc func(buf []byte, alignedStart, alignedLength uint64) error

// WriteFileFunc persists name's bytes to wherever the caller's output
// destination is (a real file, stdout for "-", ...).
type WriteFileFunc func(name string, data []byte) error

// HandlePartialRead aligns each included region to the erase granularity
// and reads it through readFn, optionally dumping the region's own
// bytes to its attached file.
func HandlePartialRead(l *Layout, granularity uint32, readFn ReadFunc, writeFile WriteFileFunc) error {
	for _, r := range l.EnumerateIncluded() {
		alignedStart, alignedLength := eraser.Align(r.Start, r.Size(), granularity)
		buf := make([]byte, alignedLength)
		if err := readFn(buf, alignedStart, alignedLength); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Layout", fmt.Sprintf("reading region %q", r.Name), err)
		}
		if writeFile == nil {
			continue
		}
		offsetInBuf := r.Start - alignedStart
		regionBytes := buf[offsetInBuf : offsetInBuf+r.Size()]
		if err := writeFile(sanitizeFilename(r.Name), regionBytes); err != nil {
			return norerr.Wrap(norerr.KindEnvironment, "Layout", fmt.Sprintf("writing region %q", r.Name), err)
		}
	}
	return nil
}

// ExtractRegions writes every region's bytes (not just included ones) out
// of a full chip image, one file per region.
func ExtractRegions(l *Layout, fullChipContents []byte, writeFile WriteFileFunc) error {
	for _, r := range l.Regions {
		if r.End >= uint64(len(fullChipContents)) {
			return norerr.New(norerr.KindLayoutInvalid, "Layout",
				fmt.Sprintf("region %q end 0x%x exceeds image size %d", r.Name, r.End, len(fullChipContents)))
		}
		data := fullChipContents[r.Start : r.End+1]
		if err := writeFile(sanitizeFilename(r.Name), data); err != nil {
			return norerr.Wrap(norerr.KindEnvironment, "Layout", fmt.Sprintf("extracting region %q", r.Name), err)
		}
	}
	return nil
}

func sanitizeFilename(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
