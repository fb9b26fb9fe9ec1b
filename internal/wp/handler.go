package wp

import (
	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// bitLayout pins down where each WpStatus field lives in the raw SR1/SR2
// bytes for one chip family. A bit index of -1 means "this family has no
// such bit" (e.g. TB on the 4-bit-BP large variant, where QE takes its
// place; ).
type bitLayout struct {
	bpShift uint8
	bpMask  uint8 // e.g. 0x07 for 3-bit BP, 0x0F for 4-bit BP

	tbBit  int8
	secBit int8
	srp0Bit uint8

	hasSR2  bool
	srp1Bit int8
	cmpBit  int8
	qeBit   int8
}

// Handler implements list_ranges/set_range/enable/disable/wp_status for one
// chip family. Each family owns one table per CMP value;
// the active table is selected by reading CMP out of SR2 (or, for MX/S25F
// parts, a config register) before any lookup.
type Handler struct {
	layout bitLayout

	// tableGen builds the WpRangeTable in effect for a chip of the given
	// total size and CMP value. Range fractions (top 1/32, 1/16, ...) are
	// family-invariant but their byte offsets scale with chip size, so the
	// table is generated rather than stored as one literal per family.
	tableGen func(totalSize uint64, cmp bool) WpRangeTable

	// readModifiers resolves the (tb, cmp) modifier pair for a chip whose
	// modifiers don't live in SR2 at the layout's bit positions (the S25F
	// distinct-register case). Nil for every other family.
	readModifiers func(m programmer.Master, h *chip.FlashChipHandle) (tb, cmp bool, err error)
}

var registry = map[chip.WpTableFunc]*Handler{}

// Register installs the handler for a WpTable tag. Called from init() in
// this package for the built-in families.
func Register(tag chip.WpTableFunc, h *Handler) {
	if _, dup := registry[tag]; dup {
		panic("wp: duplicate handler for " + string(tag))
	}
	registry[tag] = h
}

// For looks up the registered handler for a chip's WpTable tag. ok is
// false when the chip carries no WP table (failure taxonomy:
// "unsupported by this chip").
func For(tag chip.WpTableFunc) (*Handler, bool) {
	if tag == chip.None {
		return nil, false
	}
	h, ok := registry[tag]
	return h, ok
}

func readStatus(m programmer.Master, h *chip.FlashChipHandle) ([]byte, error) {
	fn, ok := chip.StatusRead(h.Descriptor.StatusRead)
	if !ok {
		return nil, norerr.New(norerr.KindUnsupported, "WP", "chip has no status-read opcode")
	}
	raw, err := fn(m, h)
	if err != nil {
		return nil, norerr.Wrap(norerr.KindTransport, "WP", "reading status register", err)
	}
	return raw, nil
}

func writeStatus(m programmer.Master, h *chip.FlashChipHandle, data []byte) error {
	fn, ok := chip.StatusWrite(h.Descriptor.StatusWrite)
	if !ok {
		return norerr.New(norerr.KindUnsupported, "WP", "chip has no status-write opcode")
	}
	if err := fn(m, h, data); err != nil {
		return norerr.Wrap(norerr.KindTransport, "WP", "writing status register", err)
	}
	return nil
}
