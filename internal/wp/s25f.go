package wp

import (
	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// ModifierBits is the TB/CMP pair for families whose modifiers live in a
// register distinct from SR1/SR2 (certain MX and S25F parts, ).
type ModifierBits struct {
	TB  bool
	CMP bool
}

// s25fConfigRead/s25fConfigWrite are the opcode tags under which the
// config-register read/write pair S25F's modifier bits live behind is
// looked up, as an ordinary StatusRead/StatusWrite pair in the dispatch
// tables, so the same programmer-master transport carries it. No handler
// is registered under either tag in this repository, so GetModifierBits
// and SetModifierBits return KindUnsupported.
const (
	s25fConfigRead  chip.StatusReadFunc  = "s25f_cr_read"
	s25fConfigWrite chip.StatusWriteFunc = "s25f_cr_write"
)

const (
	s25fCRTBBit  = 5
	s25fCRCMPBit = 6
)

// GetModifierBits reads S25F's distinct config register and decodes TB/CMP
// out of it.
func GetModifierBits(m programmer.Master, h *chip.FlashChipHandle) (ModifierBits, error) {
	fn, ok := chip.StatusRead(s25fConfigRead)
	if !ok {
		return ModifierBits{}, norerr.New(norerr.KindUnsupported, "WP", "chip has no S25F config-register read opcode")
	}
	raw, err := fn(m, h)
	if err != nil {
		return ModifierBits{}, norerr.Wrap(norerr.KindTransport, "WP", "reading S25F config register", err)
	}
	if len(raw) == 0 {
		return ModifierBits{}, norerr.New(norerr.KindTransport, "WP", "S25F config-register read returned no bytes")
	}
	cr := raw[0]
	return ModifierBits{
		TB:  cr&(1<<s25fCRTBBit) != 0,
		CMP: cr&(1<<s25fCRCMPBit) != 0,
	}, nil
}

// SetModifierBits writes mb into S25F's distinct config register,
// preserving every other bit (: "set_modifier_bits(struct) ->
// result").
func SetModifierBits(m programmer.Master, h *chip.FlashChipHandle, mb ModifierBits) error {
	fn, ok := chip.StatusRead(s25fConfigRead)
	if !ok {
		return norerr.New(norerr.KindUnsupported, "WP", "chip has no S25F config-register read opcode")
	}
	raw, err := fn(m, h)
	if err != nil {
		return norerr.Wrap(norerr.KindTransport, "WP", "reading S25F config register", err)
	}
	if len(raw) == 0 {
		return norerr.New(norerr.KindTransport, "WP", "S25F config-register read returned no bytes")
	}
	cr := setBit(raw[0], s25fCRTBBit, mb.TB)
	cr = setBit(cr, s25fCRCMPBit, mb.CMP)

	writeFn, ok := chip.StatusWrite(s25fConfigWrite)
	if !ok {
		return norerr.New(norerr.KindUnsupported, "WP", "chip has no S25F config-register write opcode")
	}
	if err := writeFn(m, h, []byte{cr}); err != nil {
		return norerr.Wrap(norerr.KindTransport, "WP", "writing S25F config register", err)
	}
	return nil
}

// s25fReadModifiers adapts GetModifierBits to the Handler.readModifiers
// signature so the S25F handler can share the rest of the generic
// set_range/enable/disable machinery.
func s25fReadModifiers(m programmer.Master, h *chip.FlashChipHandle) (tb, cmp bool, err error) {
	mb, err := GetModifierBits(m, h)
	if err != nil {
		return false, false, err
	}
	return mb.TB, mb.CMP, nil
}

func init() {
	// s25f: MX/S25F-style parts whose TB/CMP live in a distinct config
	// register rather than SR2. Reuses the standard 3-bit-BP range
	// fractions; only modifier-bit sourcing differs.
	Register(chip.WpTableFunc("s25f_wp_table"), &Handler{
		layout: bitLayout{
			bpShift: 2, bpMask: 0x07,
			tbBit: -1, secBit: -1,
			srp0Bit: 7,
			hasSR2:  false,
			srp1Bit: -1, cmpBit: -1, qeBit: -1,
		},
		tableGen:      standardTable,
		readModifiers: s25fReadModifiers,
	})
}
