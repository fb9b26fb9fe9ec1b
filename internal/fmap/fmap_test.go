package fmap

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func encodeNameField(name string) []byte {
	buf := make([]byte, nameFieldSize)
	copy(buf, name)
	return buf
}

func encodeHeader(verMajor, verMinor uint8, base uint64, size uint32, name string, nareas uint16) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:8], Signature)
	buf[8] = verMajor
	buf[9] = verMinor
	binary.LittleEndian.PutUint64(buf[10:18], base)
	binary.LittleEndian.PutUint32(buf[18:22], size)
	copy(buf[22:86], encodeNameField(name))
	binary.LittleEndian.PutUint16(buf[86:88], nareas)
	return buf
}

func encodeArea(offset, size uint32, name string, flags uint16) []byte {
	buf := make([]byte, areaSize)
	binary.LittleEndian.PutUint32(buf[0:4], offset)
	binary.LittleEndian.PutUint32(buf[4:8], size)
	copy(buf[8:72], encodeNameField(name))
	binary.LittleEndian.PutUint16(buf[72:74], flags)
	return buf
}

func buildValidFmap(areas []Area) []byte {
	size := uint32(headerSize + len(areas)*areaSize)
	buf := encodeHeader(1, 1, 0, size, "IMAGE", uint16(len(areas)))
	for _, a := range areas {
		buf = append(buf, encodeArea(a.Offset, a.Size, a.Name, a.Flags)...)
	}
	return buf
}

func TestParseHeaderValid(t *testing.T) {
	raw := buildValidFmap([]Area{{Offset: 0, Size: 0x1000, Name: "BOOT"}})
	h, err := ParseHeader(raw[:headerSize])
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.Name != "IMAGE" || h.NAreas != 1 {
		t.Errorf("ParseHeader() = %+v, want Name=IMAGE NAreas=1", h)
	}
}

func TestParseHeaderRejectsBadSignature(t *testing.T) {
	raw := buildValidFmap([]Area{{Offset: 0, Size: 0x1000, Name: "BOOT"}})
	copy(raw[0:8], "________")
	if _, err := ParseHeader(raw[:headerSize]); err == nil {
		t.Error("ParseHeader() with corrupted signature should fail")
	}
}

func TestParseHeaderRejectsUnsupportedVersion(t *testing.T) {
	raw := encodeHeader(9, 9, 0, uint32(headerSize), "IMAGE", 0)
	if _, err := ParseHeader(raw); err == nil {
		t.Error("ParseHeader() with version 9.9 should fail")
	}
}

// TestParseHeaderRejectsUndersizedDeclaration checks that any buffer whose
// signature matches and whose size < sizeof(header)+nareas*sizeof(area)
// is rejected.
func TestParseHeaderRejectsUndersizedDeclaration(t *testing.T) {
	raw := encodeHeader(1, 1, 0, uint32(headerSize), "IMAGE", 5) // claims 5 areas but size covers 0
	if _, err := ParseHeader(raw); err == nil {
		t.Error("ParseHeader() with undersized declared size should fail")
	}
}

func TestParseHeaderRejectsMissingNUL(t *testing.T) {
	raw := buildValidFmap(nil)
	for i := 22; i < 86; i++ {
		raw[i] = 'A' // no NUL anywhere in the name field
	}
	if _, err := ParseHeader(raw[:headerSize]); err == nil {
		t.Error("ParseHeader() with no NUL in name field should fail")
	}
}

func TestDiscoverFindsValidSkipsCorrupted(t *testing.T) {
	const imageSize = 4 * 1024 * 1024
	const validOffset = 0x1F0000
	const corruptOffset = 0x100000

	image := bytes.Repeat([]byte{0xFF}, imageSize)

	valid := buildValidFmap([]Area{
		{Offset: 0, Size: 0x10000, Name: "BOOT"},
		{Offset: 0x10000, Size: 0x1000, Name: "GBB"},
	})
	copy(image[validOffset:], valid)

	corrupted := buildValidFmap([]Area{{Offset: 0, Size: 0x1000, Name: "NEAR_MATCH"}})
	corrupted[9] = 0xFF // corrupt the minor version byte
	copy(image[corruptOffset:], corrupted)

	read := func(offset, length int) ([]byte, error) {
		return image[offset : offset+length], nil
	}

	l, err := Discover(read, imageSize, nil)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(l.Regions) != 2 {
		t.Fatalf("Discover() found %d regions, want 2", len(l.Regions))
	}
	if l.Regions[0].Name != "BOOT" || l.Regions[1].Name != "GBB" {
		t.Errorf("Discover() regions = %+v, want BOOT then GBB", l.Regions)
	}
}

func TestDiscoverNotFoundIsNotFatal(t *testing.T) {
	image := bytes.Repeat([]byte{0x00}, 4096)
	read := func(offset, length int) ([]byte, error) { return image[offset : offset+length], nil }

	l, err := Discover(read, len(image), nil)
	if err == nil {
		t.Fatal("Discover() on an image with no FMAP should return an error")
	}
	if l != nil {
		t.Error("Discover() should return a nil layout on not-found")
	}
}

func TestDiscoverHintShadowWindow(t *testing.T) {
	const imageSize = 1024 * 1024 // 1 MiB
	image := bytes.Repeat([]byte{0xFF}, imageSize)
	valid := buildValidFmap([]Area{{Offset: 0, Size: 0x1000, Name: "BOOT"}})
	copy(image[0:], valid)

	read := func(offset, length int) ([]byte, error) { return image[offset : offset+length], nil }

	// A platform hint expressed relative to the top of the 32-bit address
	// space: 0xFFF00000 on a 1 MiB image means offset 0.
	hint := uint64(0xFFF00000)
	l, err := Discover(read, imageSize, &hint)
	if err != nil {
		t.Fatalf("Discover() with shadow-window hint error = %v", err)
	}
	if len(l.Regions) != 1 || l.Regions[0].Name != "BOOT" {
		t.Errorf("Discover() = %+v, want one BOOT region", l.Regions)
	}
}
