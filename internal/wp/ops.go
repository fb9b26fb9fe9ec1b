package wp

import (
	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// regs is the raw status-register state a Handler operates on: one or two
// status bytes plus, for families whose modifiers live elsewhere, the
// separately-read modifier bits.
type regs struct {
	sr1    byte
	sr2    byte
	haveSR2 bool
	tb, cmp bool
	haveMods bool
}

func (h *Handler) readRegs(m programmer.Master, handle *chip.FlashChipHandle) (*regs, error) {
	raw, err := readStatus(m, handle)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, norerr.New(norerr.KindTransport, "WP", "status-read returned no bytes")
	}
	r := &regs{sr1: raw[0]}
	if h.layout.hasSR2 {
		if len(raw) < 2 {
			return nil, norerr.New(norerr.KindTransport, "WP", "status-read returned SR1 only but chip family has SR2")
		}
		r.sr2, r.haveSR2 = raw[1], true
	}
	if h.readModifiers != nil {
		tb, cmp, err := h.readModifiers(m, handle)
		if err != nil {
			return nil, err
		}
		r.tb, r.cmp, r.haveMods = tb, cmp, true
	}
	return r, nil
}

func (r *regs) currentCMP(layout bitLayout) bool {
	if r.haveMods {
		return r.cmp
	}
	if layout.hasSR2 && layout.cmpBit >= 0 {
		return r.sr2&(1<<uint(layout.cmpBit)) != 0
	}
	return false
}

func (r *regs) decode(layout bitLayout) WpStatus {
	s := WpStatus{
		Busy:             r.sr1&0x01 != 0,
		WriteEnableLatch: r.sr1&0x02 != 0,
		BP:               (r.sr1 >> layout.bpShift) & layout.bpMask,
		SRP0:             r.sr1&(1<<layout.srp0Bit) != 0,
	}
	switch {
	case r.haveMods:
		s.TB = Care(r.tb)
	case layout.tbBit >= 0:
		s.TB = Care(r.sr1&(1<<uint(layout.tbBit)) != 0)
	default:
		s.TB = Any()
	}
	if layout.secBit >= 0 {
		s.SEC = Care(r.sr1&(1<<uint(layout.secBit)) != 0)
	} else {
		s.SEC = Any()
	}
	if r.haveMods {
		s.CMP = r.cmp
	} else if layout.hasSR2 && layout.cmpBit >= 0 {
		s.CMP = r.sr2&(1<<uint(layout.cmpBit)) != 0
	}
	if layout.hasSR2 && layout.srp1Bit >= 0 {
		s.SRP1 = r.sr2&(1<<uint(layout.srp1Bit)) != 0
	}
	if layout.hasSR2 && layout.qeBit >= 0 {
		s.QE = r.sr2&(1<<uint(layout.qeBit)) != 0
	}
	return s
}

// encodeSR1 returns orig with the BP field replaced by bp, and TB/SEC bits
// set when the corresponding Tri is Care (step 3: "set TB and
// SEC per the entry's modifiers when they are not don't-care").
func encodeSR1(layout bitLayout, orig byte, bp uint8, tb, sec Tri, srp0 *bool) byte {
	out := orig &^ (layout.bpMask << layout.bpShift)
	out |= (bp & layout.bpMask) << layout.bpShift
	if layout.tbBit >= 0 {
		if v, ok := tb.Value(); ok {
			out = setBit(out, uint(layout.tbBit), v)
		}
	}
	if layout.secBit >= 0 {
		if v, ok := sec.Value(); ok {
			out = setBit(out, uint(layout.secBit), v)
		}
	}
	if srp0 != nil {
		out = setBit(out, uint(layout.srp0Bit), *srp0)
	}
	return out
}

func encodeSR2(layout bitLayout, orig byte, srp1 *bool) byte {
	out := orig
	if srp1 != nil && layout.srp1Bit >= 0 {
		out = setBit(out, uint(layout.srp1Bit), *srp1)
	}
	return out
}

func setBit(b byte, bit uint, v bool) byte {
	if v {
		return b | (1 << bit)
	}
	return b &^ (1 << bit)
}

func (h *Handler) tableFor(r *regs, totalSize uint64) WpRangeTable {
	return h.tableGen(totalSize, r.currentCMP(h.layout))
}

// ListRanges returns the currently-active WpRangeTable: the one keyed by
// the chip's present CMP bit ("the active table is selected by
// ... examining modifier bits").
func (h *Handler) ListRanges(m programmer.Master, handle *chip.FlashChipHandle) (WpRangeTable, error) {
	r, err := h.readRegs(m, handle)
	if err != nil {
		return nil, err
	}
	return h.tableFor(r, handle.TotalSize()), nil
}

// SetRange looks up the requested [start, length) range in the chip's
// table and writes the BP/TB/SEC bits that select it. CMP is left as it
// is, so only ranges in the table for the chip's current CMP value can be
// selected.
func (h *Handler) SetRange(m programmer.Master, handle *chip.FlashChipHandle, start, length uint64) error {
	r, err := h.readRegs(m, handle)
	if err != nil {
		return err
	}
	table := h.tableFor(r, handle.TotalSize())
	entry, ok := table.LookupRange(start, length)
	if !ok {
		return norerr.New(norerr.KindNotFound, "WP", "requested range is not in this chip's WP table")
	}

	newSR1 := encodeSR1(h.layout, r.sr1, entry.BP, entry.TB, entry.SEC, nil)
	data := []byte{newSR1}
	if r.haveSR2 {
		data = append(data, r.sr2)
	}
	if err := writeStatus(m, handle, data); err != nil {
		return err
	}

	after, err := h.readRegs(m, handle)
	if err != nil {
		return err
	}
	mask := byte(h.layout.bpMask << h.layout.bpShift)
	if h.layout.tbBit >= 0 {
		mask |= 1 << uint(h.layout.tbBit)
	}
	if h.layout.secBit >= 0 {
		mask |= 1 << uint(h.layout.secBit)
	}
	if after.sr1&mask != newSR1&mask {
		return norerr.New(norerr.KindMismatch, "WP", "status read-back does not match the range just written")
	}
	return nil
}

// Enable turns on write protection in the given Mode (hardware,
// power-cycle, or permanent).
func (h *Handler) Enable(m programmer.Master, handle *chip.FlashChipHandle, mode Mode) error {
	r, err := h.readRegs(m, handle)
	if err != nil {
		return err
	}

	switch mode {
	case ModeHardware:
		f := false
		if r.haveSR2 {
			if err := writeStatus(m, handle, []byte{r.sr1, encodeSR2(h.layout, r.sr2, &f)}); err != nil {
				return err
			}
			r, err = h.readRegs(m, handle)
			if err != nil {
				return err
			}
		}
		t := true
		return writeStatus(m, handle, withSR2(h.layout, r, encodeSR1(h.layout, r.sr1, r.BP(h.layout), Any(), Any(), &t)))

	case ModePowerCycle:
		if !h.layout.hasSR2 {
			return norerr.New(norerr.KindUnsupported, "WP", "chip has no SR2, power-cycle mode is not available")
		}
		f := false
		if err := writeStatus(m, handle, []byte{encodeSR1(h.layout, r.sr1, r.BP(h.layout), Any(), Any(), &f), r.sr2}); err != nil {
			return err
		}
		r, err = h.readRegs(m, handle)
		if err != nil {
			return err
		}
		if r.haveSR2 && h.layout.srp1Bit >= 0 && r.sr2&(1<<uint(h.layout.srp1Bit)) != 0 {
			return norerr.New(norerr.KindMismatch, "WP", "power-cycle bit already latched")
		}
		t := true
		return writeStatus(m, handle, []byte{r.sr1, encodeSR2(h.layout, r.sr2, &t)})

	case ModePermanent:
		if !h.layout.hasSR2 {
			return norerr.New(norerr.KindUnsupported, "WP", "chip has no SR2, permanent mode is not available")
		}
		if h.layout.srp1Bit >= 0 && r.sr2&(1<<uint(h.layout.srp1Bit)) != 0 {
			return norerr.New(norerr.KindMismatch, "WP", "power-cycle/permanent bit already latched, refusing to re-arm permanent mode")
		}
		t := true
		if err := writeStatus(m, handle, []byte{encodeSR1(h.layout, r.sr1, r.BP(h.layout), Any(), Any(), &t), r.sr2}); err != nil {
			return err
		}
		r, err = h.readRegs(m, handle)
		if err != nil {
			return err
		}
		return writeStatus(m, handle, []byte{r.sr1, encodeSR2(h.layout, r.sr2, &t)})
	}
	return norerr.New(norerr.KindArgument, "WP", "unknown enable mode")
}

// Disable clears write protection, refusing if SRP1 is latched (which
// requires a power cycle to clear, per the registered WP behavior).
func (h *Handler) Disable(m programmer.Master, handle *chip.FlashChipHandle) error {
	r, err := h.readRegs(m, handle)
	if err != nil {
		return err
	}
	if r.haveSR2 && h.layout.srp1Bit >= 0 && r.sr2&(1<<uint(h.layout.srp1Bit)) != 0 {
		return norerr.New(norerr.KindMismatch, "WP", "SRP1 is latched, a power cycle is required before write protection can be disabled")
	}
	f := false
	newSR1 := encodeSR1(h.layout, r.sr1, r.BP(h.layout), Any(), Any(), &f)
	data := []byte{newSR1}
	if r.haveSR2 {
		data = append(data, r.sr2)
	}
	if err := writeStatus(m, handle, data); err != nil {
		return err
	}
	after, err := h.readRegs(m, handle)
	if err != nil {
		return err
	}
	if after.sr1&(1<<h.layout.srp0Bit) != 0 {
		return norerr.New(norerr.KindMismatch, "WP", "SRP0 read-back still set after disable")
	}
	return nil
}

// Status reads back the chip's current write-protect state and, if the
// active BP/TB/SEC bits match a known table entry, fills in its Range.
func (h *Handler) Status(m programmer.Master, handle *chip.FlashChipHandle) (*WpStatus, error) {
	r, err := h.readRegs(m, handle)
	if err != nil {
		return nil, err
	}
	s := r.decode(h.layout)
	tb, tbOK := s.TB.Value()
	sec, _ := s.SEC.Value()
	if !tbOK {
		tb = false
	}
	table := h.tableFor(r, handle.TotalSize())
	if entry, ok := table.ReverseLookup(s.BP, tb, sec); ok {
		s.Range = entry
	}
	return &s, nil
}

// BP extracts the current block-protect field straight out of sr1, used by
// Enable/Disable which need to preserve it across a write that otherwise
// only touches SRP bits.
func (r *regs) BP(layout bitLayout) uint8 {
	return (r.sr1 >> layout.bpShift) & layout.bpMask
}

func withSR2(layout bitLayout, r *regs, newSR1 byte) []byte {
	if r.haveSR2 {
		return []byte{newSR1, r.sr2}
	}
	return []byte{newSR1}
}
