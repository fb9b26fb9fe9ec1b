package chip

import (
	"testing"
	"time"

	"github.com/sercanarga/norflash/internal/programmer"
)

// fakeMaster is a minimal programmer.Master stand-in for probe dispatch
// tests; only the methods the tests exercise need real behavior.
type fakeMaster struct {
	name string
}

func (f *fakeMaster) Name() string                         { return f.name }
func (f *fakeMaster) BusesSupported() programmer.BusType    { return BusSPI }
func (f *fakeMaster) Read(addr uint32, buf []byte) error    { return nil }
func (f *fakeMaster) Write(addr uint32, buf []byte) error   { return nil }
func (f *fakeMaster) BlockErase(addr, size uint32) error    { return nil }
func (f *fakeMaster) StatusRead() ([]byte, error)           { return nil, nil }
func (f *fakeMaster) StatusWrite(data []byte) error         { return nil }
func (f *fakeMaster) CheckAccess(addr, size uint32) error   { return nil }
func (f *fakeMaster) MaxDataRead() uint32                   { return 65536 }
func (f *fakeMaster) MaxDataWrite() uint32                  { return 256 }
func (f *fakeMaster) Delay(d time.Duration)                 {}
func (f *fakeMaster) Close() error                          { return nil }

func TestDisambiguate(t *testing.T) {
	const probeAlways = ProbeFunc("test_probe_always_true")
	const probeNever = ProbeFunc("test_probe_always_false")

	RegisterProbe(probeAlways, func(m programmer.Master, d *ChipDescriptor) (bool, error) {
		return true, nil
	})
	RegisterProbe(probeNever, func(m programmer.Master, d *ChipDescriptor) (bool, error) {
		return false, nil
	})

	candidates := []ChipDescriptor{
		{Name: "Decoy", Probe: probeNever},
		{Name: "RealOne", Probe: probeAlways},
	}

	got, err := Disambiguate(&fakeMaster{name: "fake"}, candidates)
	if err != nil {
		t.Fatalf("Disambiguate() error = %v", err)
	}
	if got.Name != "RealOne" {
		t.Errorf("Disambiguate() = %q, want RealOne", got.Name)
	}
}

func TestDisambiguateNoneMatch(t *testing.T) {
	const probeNever2 = ProbeFunc("test_probe_never_2")
	RegisterProbe(probeNever2, func(m programmer.Master, d *ChipDescriptor) (bool, error) {
		return false, nil
	})

	candidates := []ChipDescriptor{
		{Name: "A", Probe: probeNever2},
	}
	if _, err := Disambiguate(&fakeMaster{name: "fake"}, candidates); err == nil {
		t.Error("Disambiguate() with no matching probe should fail")
	}
}

func TestDisambiguateUnregisteredTag(t *testing.T) {
	candidates := []ChipDescriptor{
		{Name: "Unregistered", Probe: ProbeFunc("no_such_tag_registered")},
	}
	if _, err := Disambiguate(&fakeMaster{name: "fake"}, candidates); err == nil {
		t.Error("Disambiguate() with an unregistered probe tag should fail")
	}
}
