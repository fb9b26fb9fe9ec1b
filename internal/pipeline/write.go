package pipeline

import (
	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/eraser"
	"github.com/sercanarga/norflash/internal/layout"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// WriteOptions configures a Write operation.
type WriteOptions struct {
	Layout       *layout.Layout
	NewContents  []byte            // whole-image contents from a primary --image file, or nil
	FileContents map[string][]byte // per-region file contents, keyed by IncludeArg.File
	DoNotDiff    bool              // skip reading old_contents; diff against an all-erased image
	Verify       VerifyFlags
}

// Write implements the Write contract: probe → read old_contents
// (unless DoNotDiff) → build merged new_contents via the planner → compute
// the eraseblocks in which old ≠ new → erase and program only those blocks
// → verify per the verify flags.
func Write(m programmer.Master, h *chip.FlashChipHandle, opts WriteOptions) error {
	l := opts.Layout
	if l == nil {
		l = &layout.Layout{}
	}
	if err := l.Normalize(h.TotalSize()); err != nil {
		return err
	}
	if l.OverlapsInIncluded() {
		return norerr.New(norerr.KindLayoutInvalid, "Write", "included regions overlap")
	}

	var old []byte
	var err error
	if opts.DoNotDiff {
		old = make([]byte, h.TotalSize())
		for i := range old {
			old[i] = eraseValue(h.Descriptor)
		}
	} else {
		old, err = readFullChip(m, h)
		if err != nil {
			return err
		}
	}

	merged, err := layout.BuildNewImage(l, old, opts.NewContents, opts.FileContents, eraseValue(h.Descriptor), false)
	if err != nil {
		return err
	}
	if uint64(len(merged)) != h.TotalSize() {
		return norerr.New(norerr.KindArgument, "Write", "merged image size does not match chip size")
	}

	granularity, err := eraser.Granularity(h.Descriptor.Erasers, availableFor(h.Descriptor))
	if err != nil {
		return err
	}
	diffRuns := diffRanges(old, merged, granularity)

	for _, run := range diffRuns {
		plan, err := eraser.Plan(h.Descriptor.Erasers, run.start, run.length, availableFor(h.Descriptor))
		if err != nil {
			return err
		}
		value := eraseValue(h.Descriptor)
		for _, block := range plan {
			if err := eraseBlockWithRetry(m, h, block, value); err != nil {
				return err
			}
			blockBuf := merged[block.Offset : block.Offset+uint64(block.Size)]
			if err := writeChip(m, h, block.Offset, blockBuf); err != nil {
				return norerr.Wrap(norerr.KindTransport, "Write", "programming failed", err)
			}
		}
	}

	return Verify(m, h, VerifyOptions{Layout: l, Expected: merged, Flags: opts.Verify})
}

// byteRange is a half-open [start, start+length) byte range.
type byteRange struct {
	start  uint64
	length uint64
}

// diffRanges walks old vs. new at granularity g and merges every block in
// which they differ into contiguous runs ("compute the set of
// eraseblocks in which old ≠ new, diffing at the erase-block granularity").
func diffRanges(old, newBuf []byte, g uint32) []byteRange {
	size := uint64(len(newBuf))
	var runs []byteRange
	var runStart uint64
	inRun := false

	for off := uint64(0); off < size; off += uint64(g) {
		end := off + uint64(g)
		if end > size {
			end = size
		}
		if blocksDiffer(old, newBuf, off, end) {
			if !inRun {
				runStart = off
				inRun = true
			}
			continue
		}
		if inRun {
			runs = append(runs, byteRange{start: runStart, length: off - runStart})
			inRun = false
		}
	}
	if inRun {
		runs = append(runs, byteRange{start: runStart, length: size - runStart})
	}
	return runs
}

func blocksDiffer(old, newBuf []byte, start, end uint64) bool {
	for i := start; i < end; i++ {
		var ob byte
		if i < uint64(len(old)) {
			ob = old[i]
		}
		if ob != newBuf[i] {
			return true
		}
	}
	return false
}
