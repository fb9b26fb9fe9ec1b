package pipeline

import (
	"fmt"

	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/layout"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// VerifyFlags mirrors the CLI's verify-related modifiers:
// --noverify skips verification outright, WholeChip (set by the CLI unless
// --noverify-all is given) compares the whole chip instead of only the
// included regions, --fast-verify trades byte-exact comparison for a
// sample of the first and last byte of each 4 KiB window.
type VerifyFlags struct {
	Skip       bool
	WholeChip  bool
	FastVerify bool
}

// VerifyOptions configures a Verify operation. Expected, when non-nil, is
// the just-programmed reference buffer a Write hands to its own
// verify-after-write pass ("any verify-after-write uses the
// just-programmed new_contents as the reference"). Verify fails with
// KindArgument when Expected is nil, so callers driving a standalone
// `verify` operation must supply Expected.
type VerifyOptions struct {
	Layout   *layout.Layout
	Expected []byte
	Flags    VerifyFlags
}

// MismatchError reports the first diverging offset a Verify found.
type MismatchError struct {
	Offset uint64
	Got    byte
	Want   byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("verify mismatch at offset %#x: got %#02x want %#02x", e.Offset, e.Got, e.Want)
}

// Verify implements the Verify contract: read the chip and compare
// against Expected over either the included regions or the whole chip,
// reporting the first mismatching offset. A verify failure is fatal for
// the operation (wrapped in norerr.KindMismatch) but never retried.
func Verify(m programmer.Master, h *chip.FlashChipHandle, opts VerifyOptions) error {
	if opts.Flags.Skip {
		return nil
	}
	if opts.Expected == nil {
		return norerr.New(norerr.KindArgument, "Verify", "no reference contents supplied")
	}

	l := opts.Layout
	if l == nil {
		l = &layout.Layout{}
	}

	ranges := verifyRanges(l, opts.Flags.WholeChip, h.TotalSize())
	for _, r := range ranges {
		if err := verifyRange(m, h, r.start, r.length, opts.Expected, opts.Flags.FastVerify); err != nil {
			return err
		}
	}
	return nil
}

// verifyRanges picks the byte ranges to compare: the whole chip when
// wholeChip is set or no regions are included, else each included region.
func verifyRanges(l *layout.Layout, wholeChip bool, totalSize uint64) []byteRange {
	included := l.EnumerateIncluded()
	if wholeChip || len(included) == 0 {
		return []byteRange{{start: 0, length: totalSize}}
	}
	out := make([]byteRange, len(included))
	for i, r := range included {
		out[i] = byteRange{start: r.Start, length: r.End + 1 - r.Start}
	}
	return out
}

func verifyRange(m programmer.Master, h *chip.FlashChipHandle, start, length uint64, expected []byte, fast bool) error {
	buf := make([]byte, length)
	if err := readChip(m, h, start, buf); err != nil {
		return err
	}
	if fast {
		return verifySampled(start, buf, expected)
	}
	for i, b := range buf {
		off := start + uint64(i)
		if b != expected[off] {
			return norerr.Wrap(norerr.KindMismatch, "Verify", "content mismatch",
				&MismatchError{Offset: off, Got: b, Want: expected[off]})
		}
	}
	return nil
}

// verifySampled checks only the first and last byte of each 4 KiB sample
// window, trading completeness for speed (--fast-verify).
func verifySampled(start uint64, buf, expected []byte) error {
	const sample = 4096
	for i := 0; i < len(buf); i += sample {
		for _, idx := range []int{i, min(i+sample-1, len(buf)-1)} {
			off := start + uint64(idx)
			if buf[idx] != expected[off] {
				return norerr.Wrap(norerr.KindMismatch, "Verify", "content mismatch (fast verify)",
					&MismatchError{Offset: off, Got: buf[idx], Want: expected[off]})
			}
		}
	}
	return nil
}
