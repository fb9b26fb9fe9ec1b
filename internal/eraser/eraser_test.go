package eraser

import (
	"testing"

	"github.com/sercanarga/norflash/internal/chip"
)

func fourKAnd64KProfiles() []chip.EraserProfile {
	return []chip.EraserProfile{
		{EraseFn: "spi_block_erase_20", Runs: []chip.EraseRun{{BlockSize: 4096, BlockCount: 16}}},
		{EraseFn: "spi_block_erase_d8", Runs: []chip.EraseRun{{BlockSize: 64 * 1024, BlockCount: 1}}},
	}
}

func TestGranularity(t *testing.T) {
	g, err := Granularity(fourKAnd64KProfiles(), AllAvailable)
	if err != nil {
		t.Fatalf("Granularity() error = %v", err)
	}
	if g != 4096 {
		t.Errorf("Granularity() = %d, want 4096", g)
	}
}

func TestGranularityNoUsableEraser(t *testing.T) {
	profiles := fourKAnd64KProfiles()
	none := func(chip.EraseFunc) bool { return false }
	if _, err := Granularity(profiles, none); err == nil {
		t.Error("Granularity() with no available erasers should fail")
	}
}

func TestAlign(t *testing.T) {
	tests := []struct {
		offset, length uint64
		g              uint32
		wantOff        uint64
		wantLen        uint64
	}{
		{0x3000, 0xE000, 4096, 0x3000, 0xE000},
		{0x3001, 0xE000, 4096, 0x3000, 0xF000},
		{0, 1, 4096, 0, 4096},
	}
	for _, tt := range tests {
		off, length := Align(tt.offset, tt.length, tt.g)
		if off != tt.wantOff || length != tt.wantLen {
			t.Errorf("Align(0x%x, 0x%x, %d) = (0x%x, 0x%x), want (0x%x, 0x%x)",
				tt.offset, tt.length, tt.g, off, length, tt.wantOff, tt.wantLen)
		}
	}
}

// TestPlanEraseAlignmentScenario checks that a chip with erase profile
// [{4096,16},{65536,1}], erasing [0x3000, 0x11000), plans out the exact
// whole 4 KiB blocks covering
// that range, nothing more, nothing less, since the 64 KiB profile's only
// block starts at 0 and can't tile a request starting at 0x3000.
func TestPlanEraseAlignmentScenario(t *testing.T) {
	plan, err := Plan(fourKAnd64KProfiles(), 0x3000, 0x11000-0x3000, AllAvailable)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	var wantOffsets []uint64
	for off := uint64(0x3000); off < 0x11000; off += 0x1000 {
		wantOffsets = append(wantOffsets, off)
	}
	if len(plan) != len(wantOffsets) {
		t.Fatalf("Plan() produced %d blocks, want %d", len(plan), len(wantOffsets))
	}
	for i, b := range plan {
		if b.Offset != wantOffsets[i] {
			t.Errorf("plan[%d].Offset = 0x%x, want 0x%x", i, b.Offset, wantOffsets[i])
		}
		if b.Size != 4096 {
			t.Errorf("plan[%d].Size = %d, want 4096", i, b.Size)
		}
		if b.Opcode != "spi_block_erase_20" {
			t.Errorf("plan[%d].Opcode = %q, want spi_block_erase_20", i, b.Opcode)
		}
	}
}

// TestPlanCoversUnionInvariant checks that the plan's union always equals
// the aligned [floor(offset/g)*g, ceil((offset+length)/g)*g) range for
// any (offset, length).
func TestPlanCoversUnionInvariant(t *testing.T) {
	profiles := fourKAnd64KProfiles()
	cases := []struct{ offset, length uint64 }{
		{0x3000, 0xE000},
		{0, 4096},
		{100, 1},
		{0x10000, 0x10000},
	}
	for _, c := range cases {
		g, err := Granularity(profiles, AllAvailable)
		if err != nil {
			t.Fatal(err)
		}
		wantStart, wantLen := Align(c.offset, c.length, g)

		plan, err := Plan(profiles, c.offset, c.length, AllAvailable)
		if err != nil {
			t.Fatalf("Plan(0x%x, 0x%x) error = %v", c.offset, c.length, err)
		}
		if len(plan) == 0 {
			t.Fatalf("Plan(0x%x, 0x%x) produced no blocks", c.offset, c.length)
		}
		gotStart := plan[0].Offset
		gotEnd := plan[len(plan)-1].Offset + uint64(plan[len(plan)-1].Size)
		if gotStart != wantStart || gotEnd != wantStart+wantLen {
			t.Errorf("Plan(0x%x, 0x%x) union = [0x%x,0x%x), want [0x%x,0x%x)",
				c.offset, c.length, gotStart, gotEnd, wantStart, wantStart+wantLen)
		}
		// No block is split, ascending, no gaps.
		for i := 1; i < len(plan); i++ {
			if plan[i].Offset != plan[i-1].Offset+uint64(plan[i-1].Size) {
				t.Errorf("Plan(0x%x, 0x%x) has a gap/overlap at index %d", c.offset, c.length, i)
			}
		}
	}
}

func TestPlanPrefersCoarserWhenAligned(t *testing.T) {
	profiles := fourKAnd64KProfiles()
	plan, err := Plan(profiles, 0, 65536, AllAvailable)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan) != 1 || plan[0].Size != 64*1024 || plan[0].Opcode != "spi_block_erase_d8" {
		t.Errorf("Plan(0, 65536) = %+v, want a single 64 KiB block via spi_block_erase_d8", plan)
	}
}

func TestTotalSizeInvariant(t *testing.T) {
	for _, d := range chip.All() {
		for _, p := range d.Erasers {
			if p.TotalSize() != d.TotalSizeBytes() {
				t.Errorf("%s eraser %v: TotalSize() = %d, want %d (total_size x 1024)",
					d.Name, p.EraseFn, p.TotalSize(), d.TotalSizeBytes())
			}
		}
	}
}
