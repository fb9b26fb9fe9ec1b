package wp

import "github.com/sercanarga/norflash/internal/chip"

// fraction builds the top-of-chip (or bottom-of-chip, when bottom is true)
// protected range of totalSize/denominator bytes. BP=0 always means
// unprotected; the caller passes denominator=0 for that row.
func fraction(totalSize uint64, denominator uint64, bottom bool) (start, length uint64) {
	if denominator == 0 {
		return 0, 0
	}
	length = totalSize / denominator
	if bottom {
		return 0, length
	}
	return totalSize - length, length
}

// standardTable builds the classic Winbond-style 3-bit-BP top/bottom table:
// BP 0..5 double the protected fraction each step (none, then 1/32 .. 1/2), BP 6 and 7
// both protect the whole chip (6 without SEC, 7 with). bottom mirrors it
// for CMP=1.
func standardTable(totalSize uint64, bottom bool) WpRangeTable {
	denominators := []uint64{0, 32, 16, 8, 4, 2}
	t := make(WpRangeTable, 0, 8)
	for bp, den := range denominators {
		start, length := fraction(totalSize, den, bottom)
		t = append(t, WpRangeDescriptor{
			BP:     uint8(bp),
			TB:     Care(bottom),
			SEC:    Care(false),
			Start:  start,
			Length: length,
		})
	}
	t = append(t,
		WpRangeDescriptor{BP: 6, TB: Care(bottom), SEC: Care(false), Start: 0, Length: totalSize},
		WpRangeDescriptor{BP: 7, TB: Care(bottom), SEC: Care(true), Start: 0, Length: totalSize},
	)
	return t
}

// largeTable is the 4-bit-BP variant for chips >= 32 MiB: TB is
// not used (the bit is occupied by QE instead), so every row carries
// TB=Any().
func largeTable(totalSize uint64, _ bool) WpRangeTable {
	denominators := []uint64{0, 128, 64, 32, 16, 8, 4, 2}
	t := make(WpRangeTable, 0, len(denominators)+1)
	for bp, den := range denominators {
		start, length := fraction(totalSize, den, false)
		t = append(t, WpRangeDescriptor{BP: uint8(bp), TB: Any(), SEC: Care(false), Start: start, Length: length})
	}
	t = append(t, WpRangeDescriptor{BP: 15, TB: Any(), SEC: Care(false), Start: 0, Length: totalSize})
	return t
}

// genericTable is the conservative fallback for chips whose exact family
// isn't known precisely enough to model: BP=0 means unprotected, any
// nonzero BP means the whole chip, matching flashrom's "generic" WP
// handler's posture of never claiming false precision.
func genericTable(totalSize uint64, _ bool) WpRangeTable {
	return WpRangeTable{
		{BP: 0, TB: Any(), SEC: Any(), Start: 0, Length: 0},
		{BP: 1, TB: Any(), SEC: Any(), Start: 0, Length: totalSize},
	}
}

func init() {
	// w25: the original 3-bit-BP Winbond command set, SR1 only, no SR2 —
	// these parts predate the SR2/CMP scheme, so there is no SRP1 or CMP:
	// only the CMP=0 range table applies and only hardware-mode enable is
	// available.
	Register(chip.WpTableFunc("w25_wp_table"), &Handler{
		layout: bitLayout{
			bpShift: 2, bpMask: 0x07,
			tbBit: 5, secBit: -1,
			srp0Bit: 7,
			hasSR2:  false,
			srp1Bit: -1, cmpBit: -1, qeBit: -1,
		},
		tableGen: standardTable,
	})

	// w25q: adds SR2 with SRP1 and CMP (W25Q16).
	Register(chip.WpTableFunc("w25q_wp_table"), &Handler{
		layout: bitLayout{
			bpShift: 2, bpMask: 0x07,
			tbBit: 5, secBit: 6,
			srp0Bit: 7,
			hasSR2:  true,
			srp1Bit: 0, cmpBit: 6, qeBit: 1,
		},
		tableGen: standardTable,
	})

	// w25q_large: 4-bit BP for >=32 MiB parts; TB's bit position is reused
	// for QE, so TB is never meaningful on this family.
	Register(chip.WpTableFunc("w25q_large_wp_table"), &Handler{
		layout: bitLayout{
			bpShift: 2, bpMask: 0x0F,
			tbBit: -1, secBit: 6,
			srp0Bit: 7,
			hasSR2:  true,
			srp1Bit: 0, cmpBit: 6, qeBit: 5,
		},
		tableGen: largeTable,
	})

	// generic: SR1-only, 1-bit "any protection" posture for chips whose
	// exact BP semantics this build doesn't model.
	Register(chip.WpTableFunc("generic_wp_table"), &Handler{
		layout: bitLayout{
			bpShift: 2, bpMask: 0x01,
			tbBit: -1, secBit: -1,
			srp0Bit: 7,
			hasSR2:  false,
			srp1Bit: -1, cmpBit: -1, qeBit: -1,
		},
		tableGen: genericTable,
	})
}
