package pipeline

import (
	"testing"
	"time"

	_ "github.com/sercanarga/norflash/internal/chip/spiops" // registers spi_rdid and friends
	"github.com/sercanarga/norflash/internal/norerr"
	"github.com/sercanarga/norflash/internal/programmer"
)

// spiRDIDOnly answers RDID for a single JEDEC ID and nothing else,
// exercising Probe() against the real catalog through the real spi_rdid
// prober (chip/spiops) rather than a synthetic dispatch tag.
type spiRDIDOnly struct {
	mfg, model uint32
}

func (s *spiRDIDOnly) Name() string                       { return "spi-fake" }
func (s *spiRDIDOnly) BusesSupported() programmer.BusType { return programmer.BusSPI }
func (s *spiRDIDOnly) Read(uint32, []byte) error          { return nil }
func (s *spiRDIDOnly) Write(uint32, []byte) error         { return nil }
func (s *spiRDIDOnly) BlockErase(uint32, uint32) error    { return nil }
func (s *spiRDIDOnly) StatusRead() ([]byte, error)        { return []byte{0}, nil }
func (s *spiRDIDOnly) StatusWrite([]byte) error           { return nil }
func (s *spiRDIDOnly) CheckAccess(uint32, uint32) error   { return nil }
func (s *spiRDIDOnly) MaxDataRead() uint32                { return 65536 }
func (s *spiRDIDOnly) MaxDataWrite() uint32               { return 256 }
func (s *spiRDIDOnly) Delay(time.Duration)                {}
func (s *spiRDIDOnly) Close() error                       { return nil }

func (s *spiRDIDOnly) Command(writeBuf, readBuf []byte) error {
	if writeBuf[0] == 0x9F { // RDID
		readBuf[1] = byte(s.mfg)
		readBuf[2] = byte(s.model >> 8)
		readBuf[3] = byte(s.model)
	}
	return nil
}

func (s *spiRDIDOnly) MultiCommand(cmds []programmer.SPICommand) error {
	return programmer.DefaultMultiCommand(s.Command, cmds)
}

func TestProbeIdentifiesW25Q80(t *testing.T) {
	m := &spiRDIDOnly{mfg: 0xEF, model: 0x4014}
	h, err := Probe(m, "", false)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if h.Descriptor.Name != "W25Q80" {
		t.Errorf("Probe() found %q, want W25Q80", h.Descriptor.Name)
	}
}

func TestProbeNoneDetected(t *testing.T) {
	m := &spiRDIDOnly{mfg: 0xAA, model: 0xBBCC} // no catalog entry matches
	_, err := Probe(m, "", false)
	if !norerr.Is(err, norerr.KindNotFound) {
		t.Errorf("Probe() with nothing present: err = %v, want KindNotFound", err)
	}
}

func TestProbeForcedReadWithNamedChip(t *testing.T) {
	m := &spiRDIDOnly{mfg: 0xAA, model: 0xBBCC} // probe won't match anything
	h, err := Probe(m, "W25Q80", true)
	if err != nil {
		t.Fatalf("Probe() forced: err = %v", err)
	}
	if h.Descriptor.Name != "W25Q80" {
		t.Errorf("Probe() forced found %q, want W25Q80", h.Descriptor.Name)
	}
}
