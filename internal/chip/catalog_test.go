package chip

import (
	"testing"

	"github.com/sercanarga/norflash/internal/norerr"
)

func TestFindByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"W25Q80", "W25Q80", false},
		{"w25q80", "W25Q80", false},
		{"W25Q128", "W25Q128", false},
		{"mx25l3205", "MX25L3205", false},
		{"GD25Q32", "GD25Q32", false},
		{"nonexistent", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FindByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
				return
			}
			if !tt.wantErr && d.Name != tt.want {
				t.Errorf("FindByName(%q).Name = %q, want %q", tt.name, d.Name, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("All() returned empty catalog")
	}
	for _, d := range all {
		if d.Name == "" {
			t.Error("descriptor with empty name found")
		}
		if d.TotalSizeKiB <= 0 {
			t.Errorf("descriptor %q has non-positive TotalSizeKiB", d.Name)
		}
		if len(d.Erasers) == 0 {
			t.Errorf("descriptor %q has no erase profiles", d.Name)
		}
		for _, e := range d.Erasers {
			if e.TotalSize() != d.TotalSizeBytes() {
				t.Errorf("descriptor %q eraser profile %v covers %d bytes, want %d",
					d.Name, e.Runs, e.TotalSize(), d.TotalSizeBytes())
			}
		}
	}
}

func TestLookupEvilTwin(t *testing.T) {
	matches := Lookup(0xEF, 0x4017)
	if len(matches) < 2 {
		t.Fatalf("Lookup(0xEF, 0x4017) = %d matches, want >= 2 (evil twin)", len(matches))
	}

	if _, err := LookupOne(0xEF, 0x4017); err == nil {
		t.Error("LookupOne on an evil-twin ID pair should fail ambiguous")
	} else if !norerr.Is(err, norerr.KindAmbiguous) {
		t.Errorf("LookupOne error = %v, want Ambiguous kind", err)
	}
}

func TestLookupOneUnique(t *testing.T) {
	d, err := LookupOne(0xC2, 0x2014)
	if err != nil {
		t.Fatalf("LookupOne(0xC2, 0x2014) error: %v", err)
	}
	if d.Name != "MX25L8005" {
		t.Errorf("LookupOne(0xC2, 0x2014).Name = %q, want MX25L8005", d.Name)
	}
}

func TestLookupOneNotFound(t *testing.T) {
	if _, err := LookupOne(0xAB, 0xCDEF); err == nil {
		t.Error("LookupOne on an unknown ID pair should fail not-found")
	}
}

func TestEnumerateVoltages(t *testing.T) {
	ranges := EnumerateVoltages(BusSPI)
	if len(ranges) == 0 {
		t.Fatal("EnumerateVoltages(BusSPI) returned nothing")
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i-1].MinMV > ranges[i].MinMV {
			t.Errorf("EnumerateVoltages not sorted: %v before %v", ranges[i-1], ranges[i])
		}
	}
	seen := map[VoltageRange]bool{}
	for _, r := range ranges {
		if seen[r] {
			t.Errorf("EnumerateVoltages returned duplicate %v", r)
		}
		seen[r] = true
	}
}
