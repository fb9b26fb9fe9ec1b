package wp

import (
	"testing"
	"time"

	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// fakeMaster is a minimal programmer.Master stub whose only job is to let
// the StatusRead/StatusWrite dispatch handlers registered below manipulate
// a two-byte in-memory status register pair.
type fakeMaster struct{ sr1, sr2 byte }

func (f *fakeMaster) Name() string                        { return "fake" }
func (f *fakeMaster) BusesSupported() programmer.BusType   { return programmer.BusSPI }
func (f *fakeMaster) Read(uint32, []byte) error            { return nil }
func (f *fakeMaster) Write(uint32, []byte) error           { return nil }
func (f *fakeMaster) BlockErase(uint32, uint32) error      { return nil }
func (f *fakeMaster) StatusRead() ([]byte, error)          { return []byte{f.sr1, f.sr2}, nil }
func (f *fakeMaster) StatusWrite(data []byte) error {
	f.sr1 = data[0]
	if len(data) > 1 {
		f.sr2 = data[1]
	}
	return nil
}
func (f *fakeMaster) CheckAccess(uint32, uint32) error { return nil }
func (f *fakeMaster) MaxDataRead() uint32              { return 256 }
func (f *fakeMaster) MaxDataWrite() uint32             { return 256 }
func (f *fakeMaster) Delay(d time.Duration)            {}
func (f *fakeMaster) Close() error                     { return nil }

const (
	testStatusRead  chip.StatusReadFunc  = "test_sr_read"
	testStatusWrite chip.StatusWriteFunc = "test_sr_write"
)

func init() {
	chip.RegisterStatusRead(testStatusRead, func(m programmer.Master, h *chip.FlashChipHandle) ([]byte, error) {
		return m.(*fakeMaster).StatusRead()
	})
	chip.RegisterStatusWrite(testStatusWrite, func(m programmer.Master, h *chip.FlashChipHandle, data []byte) error {
		return m.(*fakeMaster).StatusWrite(data)
	})
}

func w25q16Handle(sr1, sr2 byte) (*fakeMaster, *chip.FlashChipHandle) {
	fm := &fakeMaster{sr1: sr1, sr2: sr2}
	desc := &chip.ChipDescriptor{
		Name:         "W25Q16",
		TotalSizeKiB: 2048, // 2 MiB
		StatusRead:   testStatusRead,
		StatusWrite:  testStatusWrite,
		WpTable:      "w25q_wp_table",
	}
	return fm, &chip.FlashChipHandle{Descriptor: desc}
}

// TestSetRangeW25Q16 reproduces scenario 5 exactly: W25Q16,
// SR2[CMP]=0, set_range(0x1E0000, 0x20000) must result in SR1 BP1 set,
// TB=0, SEC=0.
func TestSetRangeW25Q16(t *testing.T) {
	fm, h := w25q16Handle(0x00, 0x00) // CMP=0
	handler, ok := For(h.Descriptor.WpTable)
	if !ok {
		t.Fatal("no handler registered for w25q_wp_table")
	}
	if err := handler.SetRange(fm, h, 0x1E0000, 0x20000); err != nil {
		t.Fatalf("SetRange() error = %v", err)
	}

	const bpMask = 0x07 << 2
	const tbBit = 1 << 5
	const secBit = 1 << 6
	if fm.sr1&bpMask>>2 != 2 {
		t.Errorf("BP = %d, want 2 (BP1 set)", (fm.sr1&bpMask)>>2)
	}
	if fm.sr1&tbBit != 0 {
		t.Error("TB bit set, want clear")
	}
	if fm.sr1&secBit != 0 {
		t.Error("SEC bit set, want clear")
	}
}

func TestSetRangeUnknownRangeFails(t *testing.T) {
	fm, h := w25q16Handle(0x00, 0x00)
	handler, _ := For(h.Descriptor.WpTable)
	err := handler.SetRange(fm, h, 0x123, 0x456)
	if !norerr.Is(err, norerr.KindNotFound) {
		t.Errorf("SetRange() with an unlisted range: err = %v, want KindNotFound", err)
	}
}

// TestDisableFailsWhenSRP1Latched checks that disable() fails without
// writing anything when SRP1 is already latched.
func TestDisableFailsWhenSRP1Latched(t *testing.T) {
	fm, h := w25q16Handle(0x80, 0x01) // SRP0 set, SRP1 latched
	handler, _ := For(h.Descriptor.WpTable)

	before := fm.sr1
	err := handler.Disable(fm, h)
	if !norerr.Is(err, norerr.KindMismatch) {
		t.Fatalf("Disable() with SRP1 latched: err = %v, want KindMismatch", err)
	}
	if fm.sr1 != before {
		t.Error("Disable() wrote to SR1 despite failing the SRP1-latched check")
	}
}

func TestDisableClearsSRP0(t *testing.T) {
	fm, h := w25q16Handle(0x80, 0x00)
	handler, _ := For(h.Descriptor.WpTable)
	if err := handler.Disable(fm, h); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if fm.sr1&0x80 != 0 {
		t.Error("SRP0 still set after Disable()")
	}
}

// TestStandardTableInjectiveReverseMap checks that the reverse map
// (BP, modifiers) -> range is injective within a table.
func TestStandardTableInjectiveReverseMap(t *testing.T) {
	for _, bottom := range []bool{false, true} {
		table := standardTable(2*1024*1024, bottom)
		if err := table.InjectiveReverseMap(); err != nil {
			t.Errorf("standardTable(bottom=%v) not injective: %v", bottom, err)
		}
		if err := table.ValidateAgainst(2 * 1024 * 1024); err != nil {
			t.Errorf("standardTable(bottom=%v) out of range: %v", bottom, err)
		}
	}
}

func TestLargeTableInjectiveReverseMap(t *testing.T) {
	table := largeTable(64*1024*1024, false)
	if err := table.InjectiveReverseMap(); err != nil {
		t.Errorf("largeTable not injective: %v", err)
	}
}

// TestStatusRoundTrip sets a range then reads wp_status back and checks the
// reverse lookup recovers the same range.
func TestStatusRoundTrip(t *testing.T) {
	fm, h := w25q16Handle(0x00, 0x00)
	handler, _ := For(h.Descriptor.WpTable)
	if err := handler.SetRange(fm, h, 0x1E0000, 0x20000); err != nil {
		t.Fatalf("SetRange() error = %v", err)
	}
	status, err := handler.Status(fm, h)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Range == nil {
		t.Fatal("Status() did not decode an active range")
	}
	if status.Range.Start != 0x1E0000 || status.Range.Length != 0x20000 {
		t.Errorf("Status().Range = %+v, want start=0x1E0000 length=0x20000", status.Range)
	}
}

func TestTriMatches(t *testing.T) {
	if !Any().Matches(true) || !Any().Matches(false) {
		t.Error("Any() must match both true and false")
	}
	if !Care(true).Matches(true) || Care(true).Matches(false) {
		t.Error("Care(true) must match only true")
	}
}
