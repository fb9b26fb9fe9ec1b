package pipeline

import (
	"fmt"

	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/eraser"
	"github.com/sercanarga/norflash/internal/layout"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// Erase implements the Erase contract: probe → build a plan
// covering the whole chip (or the included regions) → call block_erase per
// plan entry → after each block, verify its contents equal the chip's
// erase value, retrying the block once on mismatch before failing.
func Erase(m programmer.Master, h *chip.FlashChipHandle, l *layout.Layout) error {
	ranges := []byteRange{{start: 0, length: h.TotalSize()}}
	if l != nil {
		if included := l.EnumerateIncluded(); len(included) > 0 {
			ranges = ranges[:0]
			for _, r := range included {
				ranges = append(ranges, byteRange{start: r.Start, length: r.End + 1 - r.Start})
			}
		}
	}

	value := eraseValue(h.Descriptor)
	for _, rg := range ranges {
		plan, err := eraser.Plan(h.Descriptor.Erasers, rg.start, rg.length, availableFor(h.Descriptor))
		if err != nil {
			return err
		}
		for _, block := range plan {
			if err := eraseBlockWithRetry(m, h, block, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func availableFor(d *chip.ChipDescriptor) eraser.Available {
	return func(tag chip.EraseFunc) bool {
		_, ok := chip.Erase(tag)
		return ok
	}
}

// eraseBlockWithRetry issues block_erase and verifies the block reads back
// as the chip's erase value, retrying the whole block once on mismatch
// before failing (erase retry policy).
func eraseBlockWithRetry(m programmer.Master, h *chip.FlashChipHandle, block eraser.Block, value byte) error {
	fn, ok := chip.Erase(block.Opcode)
	if !ok {
		return norerr.New(norerr.KindUnsupported, "Erase", fmt.Sprintf("no erase handler for opcode tag %q", block.Opcode))
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := fn(m, h, uint32(block.Offset), block.Size); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Erase", fmt.Sprintf("erasing block at %#x", block.Offset), err)
		}
		ok, err := blockIsErased(m, h, block, value)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		lastErr = norerr.New(norerr.KindMismatch, "Erase",
			fmt.Sprintf("block at %#x did not read back as erased after %d attempt(s)", block.Offset, attempt+1))
	}
	return lastErr
}

func blockIsErased(m programmer.Master, h *chip.FlashChipHandle, block eraser.Block, value byte) (bool, error) {
	buf := make([]byte, block.Size)
	if err := readChip(m, h, block.Offset, buf); err != nil {
		return false, err
	}
	for _, b := range buf {
		if b != value {
			return false, nil
		}
	}
	return true, nil
}
