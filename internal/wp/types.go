package wp

import "fmt"

// WpRangeDescriptor is one entry in a WpRangeTable: a
// block-protect value together with the modifier bits and address range it
// corresponds to. SEC/TB are tri-valued so a table can express "this row
// applies regardless of SEC" without a sentinel.
type WpRangeDescriptor struct {
	SEC Tri
	TB  Tri
	BP  uint8

	Start  uint64
	Length uint64
}

func (d WpRangeDescriptor) String() string {
	return fmt.Sprintf("BP=%d TB=%s SEC=%s range=[%#x,%#x)", d.BP, d.TB, d.SEC, d.Start, d.Start+d.Length)
}

// WpRangeTable is a finite, ordered sequence of range descriptors. Forward
// lookup (set_range) matches on range; reverse lookup (wp_status) matches
// on BP/modifier bits with wildcards, first match wins.
type WpRangeTable []WpRangeDescriptor

// LookupRange returns the first entry whose range exactly equals
// (start, length), used by set_range step 2.
func (t WpRangeTable) LookupRange(start, length uint64) (*WpRangeDescriptor, bool) {
	for i := range t {
		if t[i].Start == start && t[i].Length == length {
			return &t[i], true
		}
	}
	return nil, false
}

// ReverseLookup returns the first entry whose BP matches exactly and whose
// TB/SEC modifiers match bp/tb/sec with wildcard semantics, used by
// wp_status to decode the currently active range.
func (t WpRangeTable) ReverseLookup(bp uint8, tb, sec bool) (*WpRangeDescriptor, bool) {
	for i := range t {
		e := &t[i]
		if e.BP != bp {
			continue
		}
		if !e.TB.Matches(tb) || !e.SEC.Matches(sec) {
			continue
		}
		return e, true
	}
	return nil, false
}

// ValidateAgainst checks that every WpRangeTable entry's start+length is
// within a chip's total byte size.
func (t WpRangeTable) ValidateAgainst(totalSize uint64) error {
	for _, e := range t {
		if e.Start+e.Length > totalSize {
			return fmt.Errorf("wp: range entry %s exceeds chip size %#x", e, totalSize)
		}
	}
	return nil
}

// InjectiveReverseMap checks that the reverse map (BP, modifiers) -> range
// is injective within a single table: no two entries may share an
// overlapping (BP, TB, SEC) selector, since that would make
// ReverseLookup's answer depend on table order rather than the chip state.
func (t WpRangeTable) InjectiveReverseMap() error {
	for i := range t {
		for j := i + 1; j < len(t); j++ {
			if t[i].BP != t[j].BP {
				continue
			}
			if triOverlap(t[i].TB, t[j].TB) && triOverlap(t[i].SEC, t[j].SEC) {
				return fmt.Errorf("wp: table entries %d and %d collide on (BP=%d, TB, SEC)", i, j, t[i].BP)
			}
		}
	}
	return nil
}

func triOverlap(a, b Tri) bool {
	if a.IsAny() || b.IsAny() {
		return true
	}
	av, _ := a.Value()
	bv, _ := b.Value()
	return av == bv
}

// Mode selects the write-protect enable mode.
type Mode int

const (
	ModeHardware Mode = iota
	ModePowerCycle
	ModePermanent
)

// WpStatus is the decoded, human-meaningful view over a chip's status
// register(s) plus optional config register. Which fields are
// meaningful is a per-family property: TB is Any() on chips where the bit
// position is occupied by QE instead.
type WpStatus struct {
	Busy            bool
	WriteEnableLatch bool

	BP uint8
	TB Tri
	SEC Tri

	SRP0 bool
	SRP1 bool
	CMP  bool
	QE   bool

	Range *WpRangeDescriptor // decoded active range, nil if no match found
}
