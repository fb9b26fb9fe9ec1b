package fmap

import (
	"bytes"
	"fmt"

	"github.com/sercanarga/norflash/internal/layout"
	"github.com/sercanarga/norflash/internal/norerr"
)

// top32BitWindow is the size of the address space a platform-advertised
// FMAP base is commonly expressed relative to: flash is memory-mapped at
// the top of the 32-bit space, so a hint like 0xFFF00000 on a 1 MiB image
// means "offset 0 in the image", not "offset 0xFFF00000 in the image"
// (step 1: "interpretable as an offset below a shadow window at
// the top of a 32-bit address space").
const top32BitWindow = 1 << 32

// ChunkReader reads length bytes starting at offset from the scan source
// (a file or a live flash chip — "the scanner owns its read-chunk
// callback, which is either from file or from flash").
type ChunkReader func(offset, length int) ([]byte, error)

// Discover implements the FMAP discovery procedure: try a
// platform hint first if one is given and plausible, otherwise scan every
// byte offset for the signature with a plain, non-backtracking search,
// validating each candidate until one passes.
func Discover(read ChunkReader, imageSize int, hint *uint64) (*layout.Layout, error) {
	if hint != nil {
		for _, candidate := range hintCandidates(*hint, imageSize) {
			if l, err := tryOffset(read, imageSize, candidate); err == nil {
				return l, nil
			}
		}
	}

	buf, err := read(0, imageSize)
	if err != nil {
		return nil, norerr.Wrap(norerr.KindTransport, "FMAP", "reading image for signature scan", err)
	}

	searchFrom := 0
	for {
		idx := bytes.Index(buf[searchFrom:], []byte(Signature))
		if idx < 0 {
			break
		}
		candidate := searchFrom + idx
		if l, err := buildLayout(buf, candidate); err == nil {
			return l, nil
		}
		searchFrom = candidate + 1
		if searchFrom >= len(buf) {
			break
		}
	}

	return nil, norerr.New(norerr.KindNotFound, "FMAP", "no valid FMAP signature found")
}

func hintCandidates(hint uint64, imageSize int) []int {
	var out []int
	if hint < uint64(imageSize) {
		out = append(out, int(hint))
	}
	if shadow := int64(hint) - (top32BitWindow - int64(imageSize)); shadow >= 0 && shadow < int64(imageSize) {
		out = append(out, int(shadow))
	}
	return out
}

func tryOffset(read ChunkReader, imageSize, offset int) (*layout.Layout, error) {
	if offset < 0 || offset+headerSize > imageSize {
		return nil, fmt.Errorf("fmap: hint offset %d out of range", offset)
	}
	hbuf, err := read(offset, headerSize)
	if err != nil {
		return nil, err
	}
	header, err := ParseHeader(hbuf)
	if err != nil {
		return nil, err
	}
	areasBuf, err := read(offset+headerSize, int(header.NAreas)*areaSize)
	if err != nil {
		return nil, err
	}
	full := append(append([]byte(nil), hbuf...), areasBuf...)
	return layoutFromParsed(header, full[headerSize:])
}

// buildLayout validates and decodes the header + area table starting at
// offset within an already-fully-read buffer.
func buildLayout(buf []byte, offset int) (*layout.Layout, error) {
	if offset+headerSize > len(buf) {
		return nil, fmt.Errorf("fmap: candidate at %d too close to end of buffer", offset)
	}
	header, err := ParseHeader(buf[offset : offset+headerSize])
	if err != nil {
		return nil, err
	}
	areasEnd := offset + headerSize + int(header.NAreas)*areaSize
	if areasEnd > len(buf) {
		return nil, fmt.Errorf("fmap: candidate at %d claims more areas than the buffer holds", offset)
	}
	return layoutFromParsed(header, buf[offset+headerSize:areasEnd])
}

// layoutFromParsed decodes nareas area records from areasBuf and converts
// each into a LayoutRegion (step 4), in declaration order.
func layoutFromParsed(header *Header, areasBuf []byte) (*layout.Layout, error) {
	l := &layout.Layout{}
	for i := 0; i < int(header.NAreas); i++ {
		rec := areasBuf[i*areaSize : (i+1)*areaSize]
		area, err := ParseArea(rec)
		if err != nil {
			return nil, err
		}
		start := uint64(area.Offset)
		end := start
		if area.Size > 0 {
			end = start + uint64(area.Size) - 1
		}
		if err := l.Add(layout.LayoutRegion{Start: start, End: end, Name: area.Name}); err != nil {
			return nil, err
		}
	}
	return l, nil
}
