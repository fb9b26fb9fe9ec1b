// Package eraser translates (offset, length) byte ranges into whole
// erase-block covers against a chip's EraserProfile set: the
// alignment helper partial reads/verifies use, the planner writes and
// erases use, and the granularity query both lean on.
package eraser

import (
	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/norerr"
)

// Block is one whole erase block in an ascending-by-offset plan.
type Block struct {
	Offset uint64
	Size   uint32
	Opcode chip.EraseFunc
}

// Available reports whether an erase opcode has a usable implementation.
// eraser.Plan/Granularity accept this as a parameter (rather than calling
// chip.Available directly) so they stay testable against a profile set
// with no dispatch table registered at all.
type Available func(chip.EraseFunc) bool

// AllAvailable treats every non-empty erase tag as usable; useful for tests
// and for callers that have already filtered profiles to supported ones.
func AllAvailable(tag chip.EraseFunc) bool { return tag != chip.None }

// Granularity returns the minimum block size across every profile whose
// erase opcode is usable (erase_granularity()). It fails if no
// profile has a usable eraser.
func Granularity(profiles []chip.EraserProfile, available Available) (uint32, error) {
	var g uint32
	found := false
	for _, p := range profiles {
		if p.EraseFn == "" || (available != nil && !available(p.EraseFn)) {
			continue
		}
		min := p.MinBlockSize()
		if min == 0 {
			continue
		}
		if !found || min < g {
			g = min
			found = true
		}
	}
	if !found {
		return 0, norerr.New(norerr.KindUnsupported, "Erase", "no usable eraser in this descriptor")
	}
	return g, nil
}

// Align rounds offset down and offset+length up to the boundaries of g, the
// profile set's erase granularity.
func Align(offset, length uint64, g uint32) (alignedOffset, alignedLength uint64) {
	gg := uint64(g)
	alignedOffset = (offset / gg) * gg
	end := offset + length
	alignedEnd := ((end + gg - 1) / gg) * gg
	return alignedOffset, alignedEnd - alignedOffset
}

// blockAt walks a profile's run-length list (laid out starting at offset 0
// in declaration order) and reports the block size and block start offset
// covering the given absolute offset. An offset past every declared run
// extrapolates using the last run's block size, so a request that extends
// beyond the profile's declared span is still covered instead of failing;
// ok is false only when the profile declares no runs at all.
func blockAt(p chip.EraserProfile, offset uint64) (blockSize uint32, blockStart uint64, ok bool) {
	var cur uint64
	for _, r := range p.Runs {
		runBytes := uint64(r.BlockSize) * uint64(r.BlockCount)
		if offset < cur+runBytes {
			idx := (offset - cur) / uint64(r.BlockSize)
			return r.BlockSize, cur + idx*uint64(r.BlockSize), true
		}
		cur += runBytes
	}
	if n := len(p.Runs); n > 0 {
		last := p.Runs[n-1]
		idx := (offset - cur) / uint64(last.BlockSize)
		return last.BlockSize, cur + idx*uint64(last.BlockSize), true
	}
	return 0, 0, false
}

// tiles reports whether profile p can cover [start, end) using only whole
// blocks from its own run layout with no splits: every block boundary the
// walk lands on must line up with the previous block's end, starting
// exactly at start. A request that runs past the profile's declared span
// (end > p.TotalSize()) is over-covered by the last run's block size
// rather than rejected; within the declared span a block must still land
// exactly on end.
func tiles(p chip.EraserProfile, start, end uint64) bool {
	total := p.TotalSize()
	pos := start
	for pos < end {
		size, blockStart, ok := blockAt(p, pos)
		if !ok || blockStart != pos {
			return false
		}
		pos += uint64(size)
		if pos >= end && pos > total {
			return true
		}
	}
	return pos == end
}

// Plan selects an ordered, ascending, whole-block cover of [offset,
// offset+length). It aligns the request to the profile set's granularity,
// then picks the coarsest available profile whose own block layout tiles
// the aligned range, falling back to finer profiles when a coarser one's
// blocks don't line up with the request (a 64 KiB profile can't serve a
// request that starts mid-block but a 4 KiB profile can). A request that
// runs past a profile's declared span is still covered by extending that
// profile's last run rather than treated as a failure.
func Plan(profiles []chip.EraserProfile, offset, length uint64, available Available) ([]Block, error) {
	g, err := Granularity(profiles, available)
	if err != nil {
		return nil, err
	}
	start, alignedLen := Align(offset, length, g)
	end := start + alignedLen

	// Candidates ordered coarsest-first; ties keep catalog declaration
	// order.
	order := make([]int, len(profiles))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := profiles[order[j-1]], profiles[order[j]]
			if a.MinBlockSize() < b.MinBlockSize() {
				order[j-1], order[j] = order[j], order[j-1]
			} else {
				break
			}
		}
	}

	for _, idx := range order {
		p := profiles[idx]
		if p.EraseFn == "" || (available != nil && !available(p.EraseFn)) {
			continue
		}
		if !tiles(p, start, end) {
			continue
		}
		return buildPlan(p, start, end), nil
	}
	return nil, norerr.New(norerr.KindUnsupported, "Erase",
		"no available erase profile tiles the requested range")
}

func buildPlan(p chip.EraserProfile, start, end uint64) []Block {
	var blocks []Block
	for pos := start; pos < end; {
		size, _, _ := blockAt(p, pos)
		blocks = append(blocks, Block{Offset: pos, Size: size, Opcode: p.EraseFn})
		pos += uint64(size)
	}
	return blocks
}
