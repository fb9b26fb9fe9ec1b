// Package fmap implements FMAP discovery: locating and
// validating the self-describing "__FMAP__" region table embedded in a
// flash image or on a live device, using encoding/binary little-endian
// accessors over the raw struct layout.
package fmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Signature is the 8-byte ASCII marker every FMAP header begins with.
const Signature = "__FMAP__"

const (
	nameFieldSize = 64

	// headerSize is sizeof(header): 8-byte signature, 1-byte major/minor
	// version, 8-byte base, 4-byte image size, 64-byte name, 2-byte area
	// count.
	headerSize = 8 + 1 + 1 + 8 + 4 + nameFieldSize + 2

	// areaSize is sizeof(area): 4-byte offset, 4-byte size, 64-byte name,
	// 2-byte flags.
	areaSize = 4 + 4 + nameFieldSize + 2
)

// SupportedMajor/SupportedMinor are the highest FMAP version this
// implementation understands ("major version ≤ supported, minor
// version ≤ supported"); a design constant, not derived from any catalog
// value.
const (
	SupportedMajor = 1
	SupportedMinor = 3
)

// Header is the decoded, in-memory form of an on-flash FMAP header.
type Header struct {
	VerMajor uint8
	VerMinor uint8
	Base     uint64
	Size     uint32
	Name     string
	NAreas   uint16
}

// Area is one decoded region record following the header.
type Area struct {
	Offset uint32
	Size   uint32
	Name   string
	Flags  uint16
}

// HeaderSize and AreaSize expose the wire sizes for callers sizing reads.
func HeaderSize() int { return headerSize }
func AreaSize() int   { return areaSize }

// decodeNameField NUL-clamps and validates a fixed-size name field:
// printable characters up to the first NUL, with a NUL required somewhere
// in the field.
func decodeNameField(buf []byte) (string, error) {
	nul := bytes.IndexByte(buf, 0)
	if nul < 0 {
		return "", fmt.Errorf("fmap: name field has no terminating NUL")
	}
	for _, b := range buf[:nul] {
		if b < 0x20 || b > 0x7e {
			return "", fmt.Errorf("fmap: name field contains non-printable byte 0x%02x", b)
		}
	}
	return string(buf[:nul]), nil
}

var byteOrder = binary.LittleEndian
