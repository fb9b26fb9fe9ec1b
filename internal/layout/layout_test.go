package layout

import (
	"testing"

	"github.com/sercanarga/norflash/internal/norerr"
)

func sampleLayout() *Layout {
	return &Layout{Regions: []LayoutRegion{
		{Start: 0x1000, End: 0x1FFF, Name: "RW_VPD"},
		{Start: 0x0, End: 0xFFF, Name: "BOOT"},
		{Start: 0x2000, End: 0x2FFF, Name: "RO_VPD"},
	}}
}

func TestResolveIncludes(t *testing.T) {
	l := sampleLayout()
	err := ResolveIncludes(l, []IncludeArg{{Name: "BOOT"}, {Name: "RW_VPD", File: "vpd.bin"}})
	if err != nil {
		t.Fatalf("ResolveIncludes() error = %v", err)
	}

	for _, r := range l.Regions {
		switch r.Name {
		case "BOOT":
			if !r.Included {
				t.Error("BOOT should be included")
			}
		case "RW_VPD":
			if !r.Included || r.File != "vpd.bin" {
				t.Errorf("RW_VPD = %+v, want included with file vpd.bin", r)
			}
		case "RO_VPD":
			if r.Included {
				t.Error("RO_VPD should not be included")
			}
		}
	}
}

func TestResolveIncludesDuplicateRejected(t *testing.T) {
	l := sampleLayout()
	err := ResolveIncludes(l, []IncludeArg{{Name: "BOOT"}, {Name: "BOOT"}})
	if err == nil || !norerr.Is(err, norerr.KindArgument) {
		t.Errorf("ResolveIncludes() with duplicate names: err = %v, want KindArgument", err)
	}
}

func TestResolveIncludesUnknownRegion(t *testing.T) {
	l := sampleLayout()
	err := ResolveIncludes(l, []IncludeArg{{Name: "NOPE"}})
	if err == nil || !norerr.Is(err, norerr.KindNotFound) {
		t.Errorf("ResolveIncludes() with unknown region: err = %v, want KindNotFound", err)
	}
}

func TestNormalizeStartAfterEnd(t *testing.T) {
	l := &Layout{Regions: []LayoutRegion{{Start: 10, End: 5, Name: "BAD"}}}
	if err := l.Normalize(1024); err == nil || !norerr.Is(err, norerr.KindLayoutInvalid) {
		t.Errorf("Normalize() with start > end: err = %v, want KindLayoutInvalid", err)
	}
}

func TestNormalizeIncludedExceedsChip(t *testing.T) {
	l := &Layout{Regions: []LayoutRegion{{Start: 0, End: 2000, Name: "BIG", Included: true}}}
	if err := l.Normalize(1024); err == nil || !norerr.Is(err, norerr.KindLayoutInvalid) {
		t.Errorf("Normalize() with included region exceeding chip size: err = %v, want KindLayoutInvalid", err)
	}
}

func TestNormalizeNonIncludedExceedsChipOK(t *testing.T) {
	l := &Layout{Regions: []LayoutRegion{{Start: 0, End: 2000, Name: "BIG", Included: false}}}
	if err := l.Normalize(1024); err != nil {
		t.Errorf("Normalize() with non-included oversized region should pass: %v", err)
	}
}

func TestOverlapsInIncluded(t *testing.T) {
	l := &Layout{Regions: []LayoutRegion{
		{Start: 0, End: 0xFFF, Name: "A", Included: true},
		{Start: 0x500, End: 0x1FFF, Name: "B", Included: true},
	}}
	if !l.OverlapsInIncluded() {
		t.Error("OverlapsInIncluded() = false, want true")
	}

	l2 := &Layout{Regions: []LayoutRegion{
		{Start: 0, End: 0xFFF, Name: "A", Included: true},
		{Start: 0x1000, End: 0x1FFF, Name: "B", Included: true},
		{Start: 0x500, End: 0x1500, Name: "C", Included: false},
	}}
	if l2.OverlapsInIncluded() {
		t.Error("OverlapsInIncluded() = true, want false (non-included overlap doesn't count)")
	}
}

func TestEnumerateIncludedSortedByStart(t *testing.T) {
	l := sampleLayout()
	for i := range l.Regions {
		l.Regions[i].Included = true
	}
	included := l.EnumerateIncluded()
	for i := 1; i < len(included); i++ {
		if included[i-1].Start > included[i].Start {
			t.Errorf("EnumerateIncluded() not sorted: %+v before %+v", included[i-1], included[i])
		}
	}
	if included[0].Name != "BOOT" {
		t.Errorf("EnumerateIncluded()[0].Name = %q, want BOOT", included[0].Name)
	}
}

// TestBuildNewImageIdentityWhenEmpty checks that BuildNewImage with an
// empty include set is the identity on new_contents.
func TestBuildNewImageIdentityWhenEmpty(t *testing.T) {
	l := sampleLayout() // none included
	newContents := []byte("hello world, this is the new image contents")
	got, err := BuildNewImage(l, nil, newContents, nil, 0xFF, false)
	if err != nil {
		t.Fatalf("BuildNewImage() error = %v", err)
	}
	if string(got) != string(newContents) {
		t.Errorf("BuildNewImage() = %q, want identity %q", got, newContents)
	}
}

func TestBuildNewImageFileWinsOverNewContents(t *testing.T) {
	l := &Layout{Regions: []LayoutRegion{
		{Start: 0, End: 3, Name: "R", Included: true, File: "r.bin"},
	}}
	old := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	newContents := []byte{1, 1, 1, 1, 1, 1, 1, 1}
	files := map[string][]byte{"r.bin": {9, 9, 9, 9}}

	got, err := BuildNewImage(l, old, newContents, files, 0xFF, false)
	if err != nil {
		t.Fatalf("BuildNewImage() error = %v", err)
	}
	want := []byte{9, 9, 9, 9, 0, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("BuildNewImage()[%d] = %d, want %d (full: %v)", i, got[i], want[i], got)
			break
		}
	}
}

func TestBuildNewImageEraseMode(t *testing.T) {
	l := &Layout{Regions: []LayoutRegion{
		{Start: 0, End: 3, Name: "R", Included: true},
	}}
	old := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	newContents := []byte{0, 0, 0, 0, 0, 0, 0, 0}

	got, err := BuildNewImage(l, old, newContents, nil, 0xFF, true)
	if err != nil {
		t.Fatalf("BuildNewImage() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		if got[i] != 0xFF {
			t.Errorf("BuildNewImage()[%d] = 0x%02x, want 0xFF (erase value)", i, got[i])
		}
	}
	for i := 4; i < 8; i++ {
		if got[i] != old[i] {
			t.Errorf("BuildNewImage()[%d] = %d, want old contents %d (outside included region)", i, got[i], old[i])
		}
	}
}

func TestExtractRegions(t *testing.T) {
	l := &Layout{Regions: []LayoutRegion{
		{Start: 0, End: 3, Name: "region one"},
		{Start: 4, End: 7, Name: "REGION_TWO"},
	}}
	chip := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	written := map[string][]byte{}
	err := ExtractRegions(l, chip, func(name string, data []byte) error {
		written[name] = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		t.Fatalf("ExtractRegions() error = %v", err)
	}
	if _, ok := written["region_one"]; !ok {
		t.Error("ExtractRegions() did not sanitize \"region one\" to \"region_one\"")
	}
	if string(written["region_one"]) != string([]byte{1, 2, 3, 4}) {
		t.Errorf("region_one data = %v, want [1 2 3 4]", written["region_one"])
	}
	if string(written["REGION_TWO"]) != string([]byte{5, 6, 7, 8}) {
		t.Errorf("REGION_TWO data = %v, want [5 6 7 8]", written["REGION_TWO"])
	}
}

func TestHandlePartialRead(t *testing.T) {
	l := &Layout{Regions: []LayoutRegion{
		{Start: 0x1200, End: 0x12FF, Name: "R", Included: true},
	}}

	var gotStart, gotLen uint64
	readFn := func(buf []byte, alignedStart, alignedLength uint64) error {
		gotStart, gotLen = alignedStart, alignedLength
		for i := range buf {
			buf[i] = byte(i)
		}
		return nil
	}

	var writtenName string
	var writtenData []byte
	writeFile := func(name string, data []byte) error {
		writtenName = name
		writtenData = append([]byte(nil), data...)
		return nil
	}

	if err := HandlePartialRead(l, 0x1000, readFn, writeFile); err != nil {
		t.Fatalf("HandlePartialRead() error = %v", err)
	}
	if gotStart != 0x1000 || gotLen != 0x1000 {
		t.Errorf("HandlePartialRead() aligned to (0x%x, 0x%x), want (0x1000, 0x1000)", gotStart, gotLen)
	}
	if writtenName != "R" {
		t.Errorf("HandlePartialRead() wrote file %q, want R", writtenName)
	}
	if len(writtenData) != int(l.Regions[0].Size()) {
		t.Errorf("HandlePartialRead() wrote %d bytes, want %d", len(writtenData), l.Regions[0].Size())
	}
}
