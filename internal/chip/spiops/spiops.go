// Package spiops implements the concrete opcode handlers the SPI chip
// catalog entries dispatch to (spi_rdid, spi_read, spi_byte_program,
// spi_block_erase_*, spi_chip_erase_*, spi_*_status_register,
// spi_disable_blockprotect, spi_prettyprint_status_register_wp_range,
// spi_enter_4ba_b7). These are transport-agnostic: they work against any
// programmer.SPIMaster, whether that is a real FTDI-attached chip
// (programmer/spidev) or a test double, the same way flashrom's spi25.c
// opcode layer sits above whichever spi_master a board registers.
package spiops

import (
	"time"

	"github.com/sercanarga/norflash/internal/chip"
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
	"github.com/sercanarga/norflash/internal/wp"
)

const (
	opRDID      = 0x9F
	opRead      = 0x03
	opRead4BA   = 0x13
	opWREN      = 0x06
	opEWSR      = 0x50
	opPageProg  = 0x02
	opChipErase = 0xC7
	opRDSR1     = 0x05
	opRDSR2     = 0x35
	opWRSR      = 0x01
	opEnter4BA  = 0xB7

	pollInterval = 100 * time.Microsecond
	pollTimeout  = 5 * time.Second
)

func asSPI(m programmer.Master) (programmer.SPIMaster, error) {
	sm, ok := m.(programmer.SPIMaster)
	if !ok {
		return nil, norerr.New(norerr.KindUnsupported, "SPI", "programmer master does not speak SPI")
	}
	return sm, nil
}

func addrBytes(addr uint32, fourByte bool) []byte {
	if fourByte {
		return []byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
	}
	return []byte{byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

func readSR1(sm programmer.SPIMaster) (byte, error) {
	buf := make([]byte, 2)
	if err := sm.Command([]byte{opRDSR1, 0}, buf); err != nil {
		return 0, err
	}
	return buf[1], nil
}

func busyWait(sm programmer.SPIMaster) error {
	deadline := time.Now().Add(pollTimeout)
	for {
		sr, err := readSR1(sm)
		if err != nil {
			return err
		}
		if sr&0x01 == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return norerr.New(norerr.KindTransport, "SPI", "timed out waiting for WIP to clear")
		}
		time.Sleep(pollInterval)
	}
}

func writeEnable(sm programmer.SPIMaster, f *chip.ChipDescriptor) error {
	op := byte(opWREN)
	if f.Features.Has(chip.FeatureWRSRviaEWSR) && !f.Features.Has(chip.FeatureWRSREither) {
		op = opEWSR
	}
	return sm.Command([]byte{op}, nil)
}

func probeRDID(m programmer.Master, d *chip.ChipDescriptor) (bool, error) {
	sm, err := asSPI(m)
	if err != nil {
		return false, err
	}
	buf := make([]byte, 4)
	if err := sm.Command([]byte{opRDID, 0, 0, 0}, buf); err != nil {
		return false, norerr.Wrap(norerr.KindTransport, "Probe", "RDID command failed", err)
	}
	mfg := uint32(buf[1])
	model := uint32(buf[2])<<8 | uint32(buf[3])
	return mfg == d.ManufactureID && model == d.ModelID, nil
}

// probeRDIDDisambiguateLargeSR is the evil-twin prober for large-SR
// variants sharing a JEDEC ID with a plain-SR sibling: it matches RDID the
// same way, then additionally requires SR2 to be readable (chip.Disambiguate
// tries each candidate's own probe tag in turn, so the plain-SR sibling's
// plain probeRDID will also match — catalog order and the chip package's
// ambiguity reporting are what keeps this from silently picking one).
func probeRDIDDisambiguateLargeSR(m programmer.Master, d *chip.ChipDescriptor) (bool, error) {
	ok, err := probeRDID(m, d)
	if err != nil || !ok {
		return ok, err
	}
	sm, err := asSPI(m)
	if err != nil {
		return false, err
	}
	buf := make([]byte, 2)
	if err := sm.Command([]byte{opRDSR2, 0}, buf); err != nil {
		return false, norerr.Wrap(norerr.KindTransport, "Probe", "SR2 read failed during large-SR disambiguation", err)
	}
	return true, nil
}

// ensureAddrMode issues the chip's 4-byte-addressing-entry opcode once, if
// the chip both supports it and the address being targeted needs it.
func ensureAddrMode(sm programmer.SPIMaster, h *chip.FlashChipHandle, addr uint32) (fourByte bool, err error) {
	fourByte = h.Descriptor.FourByteEnter != chip.None && addr > 0xFFFFFF
	if !fourByte {
		return false, nil
	}
	if err := sm.Command([]byte{opEnter4BA}, nil); err != nil {
		return false, norerr.Wrap(norerr.KindTransport, "Probe", "entering 4-byte addressing mode", err)
	}
	return true, nil
}

func spiRead(m programmer.Master, h *chip.FlashChipHandle, addr uint32, buf []byte) error {
	sm, err := asSPI(m)
	if err != nil {
		return err
	}
	fourByte, err := ensureAddrMode(sm, h, addr)
	if err != nil {
		return err
	}
	op := byte(opRead)
	if fourByte {
		op = opRead4BA
	}
	cmd := append([]byte{op}, addrBytes(addr, fourByte)...)
	writeBuf := append(cmd, make([]byte, len(buf))...)
	readBuf := make([]byte, len(writeBuf))
	if err := sm.Command(writeBuf, readBuf); err != nil {
		return norerr.Wrap(norerr.KindTransport, "Read", "read command failed", err)
	}
	copy(buf, readBuf[len(cmd):])
	return nil
}

func spiByteProgram(m programmer.Master, h *chip.FlashChipHandle, addr uint32, buf []byte) error {
	sm, err := asSPI(m)
	if err != nil {
		return err
	}
	fourByte, err := ensureAddrMode(sm, h, addr)
	if err != nil {
		return err
	}
	const pageSize = 256
	for off := 0; off < len(buf); {
		n := len(buf) - off
		// Never let a page program cross a 256-byte page boundary.
		room := pageSize - int((addr+uint32(off))%pageSize)
		if n > room {
			n = room
		}
		if err := writeEnable(sm, h.Descriptor); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Write", "write-enable failed", err)
		}
		cmd := append([]byte{opPageProg}, addrBytes(addr+uint32(off), fourByte)...)
		cmd = append(cmd, buf[off:off+n]...)
		if err := sm.Command(cmd, nil); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Write", "page program failed", err)
		}
		if err := busyWait(sm); err != nil {
			return err
		}
		off += n
	}
	return nil
}

func eraseWith(opcode byte) chip.EraseHandler {
	return func(m programmer.Master, h *chip.FlashChipHandle, addr uint32, blockSize uint32) error {
		sm, err := asSPI(m)
		if err != nil {
			return err
		}
		fourByte, err := ensureAddrMode(sm, h, addr)
		if err != nil {
			return err
		}
		if err := writeEnable(sm, h.Descriptor); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Erase", "write-enable failed", err)
		}
		cmd := append([]byte{opcode}, addrBytes(addr, fourByte)...)
		if err := sm.Command(cmd, nil); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Erase", "erase command failed", err)
		}
		return busyWait(sm)
	}
}

func chipEraseWith(opcode byte) chip.EraseHandler {
	return func(m programmer.Master, h *chip.FlashChipHandle, addr uint32, blockSize uint32) error {
		sm, err := asSPI(m)
		if err != nil {
			return err
		}
		if err := writeEnable(sm, h.Descriptor); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Erase", "write-enable failed", err)
		}
		if err := sm.Command([]byte{opcode}, nil); err != nil {
			return norerr.Wrap(norerr.KindTransport, "Erase", "chip-erase command failed", err)
		}
		return busyWait(sm)
	}
}

func statusRead(large bool) chip.StatusReadHandler {
	return func(m programmer.Master, h *chip.FlashChipHandle) ([]byte, error) {
		sm, err := asSPI(m)
		if err != nil {
			return nil, err
		}
		sr1, err := readSR1(sm)
		if err != nil {
			return nil, norerr.Wrap(norerr.KindTransport, "WP", "SR1 read failed", err)
		}
		if !large {
			return []byte{sr1}, nil
		}
		buf := make([]byte, 2)
		if err := sm.Command([]byte{opRDSR2, 0}, buf); err != nil {
			return nil, norerr.Wrap(norerr.KindTransport, "WP", "SR2 read failed", err)
		}
		return []byte{sr1, buf[1]}, nil
	}
}

func statusWrite(m programmer.Master, h *chip.FlashChipHandle, data []byte) error {
	sm, err := asSPI(m)
	if err != nil {
		return err
	}
	if err := writeEnable(sm, h.Descriptor); err != nil {
		return norerr.Wrap(norerr.KindTransport, "WP", "write-enable failed", err)
	}
	cmd := append([]byte{opWRSR}, data...)
	if err := sm.Command(cmd, nil); err != nil {
		return norerr.Wrap(norerr.KindTransport, "WP", "WRSR command failed", err)
	}
	return busyWait(sm)
}

func disableBlockprotect(m programmer.Master, h *chip.FlashChipHandle) error {
	handler, ok := wp.For(h.Descriptor.WpTable)
	if !ok {
		return norerr.New(norerr.KindUnsupported, "Unlock", "chip has no WP handler to clear block protection through")
	}
	return handler.Disable(m, h)
}

func prettyprintWPRange(m programmer.Master, h *chip.FlashChipHandle) (string, error) {
	handler, ok := wp.For(h.Descriptor.WpTable)
	if !ok {
		return "", norerr.New(norerr.KindUnsupported, "WP", "chip has no WP handler")
	}
	status, err := handler.Status(m, h)
	if err != nil {
		return "", err
	}
	rangeStr := "none decoded"
	if status.Range != nil {
		rangeStr = status.Range.String()
	}
	return "SRP0=" + boolStr(status.SRP0) + " SRP1=" + boolStr(status.SRP1) +
		" CMP=" + boolStr(status.CMP) + " BP=" + byteStr(status.BP) + " range=" + rangeStr, nil
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func byteStr(b uint8) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[b>>4], hex[b&0xf]})
}

func init() {
	chip.RegisterProbe("spi_rdid", probeRDID)
	chip.RegisterProbe("spi_rdid_disambiguate_large_sr", probeRDIDDisambiguateLargeSR)

	chip.RegisterRead("spi_read", spiRead)
	chip.RegisterWrite("spi_byte_program", spiByteProgram)

	chip.RegisterErase("spi_block_erase_20", eraseWith(0x20))
	chip.RegisterErase("spi_block_erase_52", eraseWith(0x52))
	chip.RegisterErase("spi_block_erase_d8", eraseWith(0xD8))
	chip.RegisterErase("spi_chip_erase_c7", chipEraseWith(opChipErase))
	chip.RegisterErase("spi_chip_erase_60", chipEraseWith(0x60))

	chip.RegisterStatusRead("spi_read_status_register", statusRead(false))
	chip.RegisterStatusRead("spi_read_status_register_large", statusRead(true))
	chip.RegisterStatusWrite("spi_write_status_register", statusWrite)
	chip.RegisterStatusWrite("spi_write_status_register_large", statusWrite)

	chip.RegisterUnlock("spi_disable_blockprotect", disableBlockprotect)
	chip.RegisterPrintlock("spi_prettyprint_status_register_wp_range", prettyprintWPRange)
}
