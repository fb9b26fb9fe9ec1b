package fmap

import (
	"bytes"
	"fmt"

	"github.com/sercanarga/norflash/internal/util"
)

// ParseHeader decodes and validates an FMAP header from buf: the
// signature must match, both version numbers must be within what this
// build understands, the header's declared size field must be at least
// sizeof(header)+nareas*sizeof(area), and the name field must be printable
// and NUL-terminated. buf must be at least HeaderSize() bytes; the areas
// themselves are not read here.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("fmap: header buffer too short (%d < %d)", len(buf), headerSize)
	}
	if !bytes.Equal(buf[0:8], []byte(Signature)) {
		return nil, fmt.Errorf("fmap: signature mismatch")
	}

	verMajor := buf[8]
	verMinor := buf[9]
	if verMajor > SupportedMajor || verMinor > SupportedMinor {
		return nil, fmt.Errorf("fmap: unsupported version %d.%d (supported up to %d.%d)",
			verMajor, verMinor, SupportedMajor, SupportedMinor)
	}

	base := byteOrder.Uint64(buf[10:18])
	size := util.LEBytesToU32(buf[18:22])
	name, err := decodeNameField(buf[22:86])
	if err != nil {
		return nil, fmt.Errorf("fmap: %w", err)
	}
	nareas := util.LEBytesToU16(buf[86:88])

	if uint64(size) < uint64(headerSize)+uint64(nareas)*uint64(areaSize) {
		return nil, fmt.Errorf("fmap: declared size %d too small for header + %d areas", size, nareas)
	}

	return &Header{VerMajor: verMajor, VerMinor: verMinor, Base: base, Size: size, Name: name, NAreas: nareas}, nil
}

// ParseArea decodes one area record from buf, which must be at least
// AreaSize() bytes.
func ParseArea(buf []byte) (*Area, error) {
	if len(buf) < areaSize {
		return nil, fmt.Errorf("fmap: area buffer too short (%d < %d)", len(buf), areaSize)
	}
	offset := util.LEBytesToU32(buf[0:4])
	size := util.LEBytesToU32(buf[4:8])
	name, err := decodeNameField(buf[8:72])
	if err != nil {
		return nil, fmt.Errorf("fmap: area %w", err)
	}
	flags := util.LEBytesToU16(buf[72:74])
	return &Area{Offset: offset, Size: size, Name: name, Flags: flags}, nil
}
