package pipeline

import (
	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// readChip reads [addr, addr+len(buf)) through the handle's dispatched read
// function, chunked to the master's MaxDataRead so no single call exceeds
// what the transport can carry in one shot.
func readChip(m programmer.Master, h *chip.FlashChipHandle, addr uint64, buf []byte) error {
	fn, ok := chip.Read(h.Descriptor.Read)
	if !ok {
		return norerr.New(norerr.KindUnsupported, "Read", "chip has no read function")
	}
	chunk := m.MaxDataRead()
	if chunk == 0 {
		chunk = uint32(len(buf))
	}
	for off := 0; off < len(buf); {
		n := len(buf) - off
		if uint32(n) > chunk {
			n = int(chunk)
		}
		if err := fn(m, h, uint32(addr)+uint32(off), buf[off:off+n]); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Read", "chip read failed", err)
		}
		off += n
	}
	return nil
}

// writeChip programs [addr, addr+len(buf)) through the handle's dispatched
// write function, chunked to the master's MaxDataWrite.
func writeChip(m programmer.Master, h *chip.FlashChipHandle, addr uint64, buf []byte) error {
	fn, ok := chip.Write(h.Descriptor.Write)
	if !ok {
		return norerr.New(norerr.KindUnsupported, "Write", "chip has no write function")
	}
	chunk := m.MaxDataWrite()
	if chunk == 0 {
		chunk = uint32(len(buf))
	}
	for off := 0; off < len(buf); {
		n := len(buf) - off
		if uint32(n) > chunk {
			n = int(chunk)
		}
		if err := fn(m, h, uint32(addr)+uint32(off), buf[off:off+n]); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Write", "chip program failed", err)
		}
		off += n
	}
	return nil
}

// readFullChip reads the whole chip into a freshly allocated buffer.
func readFullChip(m programmer.Master, h *chip.FlashChipHandle) ([]byte, error) {
	buf := make([]byte, h.TotalSize())
	if err := readChip(m, h, 0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// eraseValue returns the byte a chip's erase operation leaves behind
// ("the chip's erase value"): every profile in this catalog
// erases to 0xFF except the few that advertise FeatureEraseToZero.
func eraseValue(d *chip.ChipDescriptor) byte {
	if d.Features.Has(chip.FeatureEraseToZero) {
		return 0x00
	}
	return 0xFF
}
