// Package chip holds the static chip catalog and capability database: the
// set of descriptors norflash can probe for, keyed by manufacturer/model
// ID, together with their erase-block layouts and the tagged
// probe/read/write/erase/unlock/print-lock operations a handler can
// carry out on a live FlashChipHandle.
package chip

import (
	"fmt"

	"github.com/sercanarga/norflash/internal/programmer"
)

// BusType is a bitmask of buses a chip or programmer master can speak.
// A chip may legitimately advertise more than one (most SPI chips only
// advertise SPI, but some legacy parts are dual-wired). It is an alias of
// programmer.BusType: both chip.ChipDescriptor and programmer.Master need
// the same bitmask, and chip already imports programmer for dispatch, so
// the type lives there to avoid a cycle.
type BusType = programmer.BusType

const (
	BusParallel = programmer.BusParallel
	BusLPC      = programmer.BusLPC
	BusFWH      = programmer.BusFWH
	BusSPI      = programmer.BusSPI
	BusOpaque   = programmer.BusOpaque
)

// Feature is a bit-set of per-chip capability flags.
type Feature uint32

const (
	FeatureShortReset Feature = 1 << iota
	FeatureEitherReset
	FeatureLongReset
	FeatureAddr2AA
	FeatureAddrAAA
	FeatureAddrShifted
	FeatureRegisterMap
	FeatureWRSRviaWREN
	FeatureWRSRviaEWSR
	FeatureWRSREither
	FeatureOTP
	FeatureEraseToZero
	Feature4BAEntryRequired
)

// Has reports whether all bits in want are set.
func (f Feature) Has(want Feature) bool { return f&want == want }

// TestStatus records how well-exercised a given operation is for a
// descriptor, matching flashrom's TEST_OK_* / TEST_BAD_* convention.
type TestStatus uint8

const (
	StatusUntested TestStatus = iota
	StatusOK
	StatusBad
	StatusOKProbe
	StatusOKPreReadEraseWrite
)

func (s TestStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusBad:
		return "BAD"
	case StatusOKProbe:
		return "OK(probe)"
	case StatusOKPreReadEraseWrite:
		return "OK(read/erase/write)"
	default:
		return "untested"
	}
}

// TestedStatus bundles the per-operation TestStatus fields.
type TestedStatus struct {
	Probe TestStatus
	Read  TestStatus
	Erase TestStatus
	Write TestStatus
}

// Function tags name the operation a descriptor dispatches to; the actual
// implementation lives in the dispatch tables in dispatch.go. Modeling
// these as string tags rather than function pointers keeps the catalog a
// plain data literal.
type (
	ProbeFunc     string
	ReadFunc      string
	WriteFunc     string
	EraseFunc     string
	UnlockFunc    string
	PrintlockFunc string
	StatusReadFunc  string
	StatusWriteFunc string
	FourByteAddrFunc string
	WpTableFunc   string
)

// None is the zero value for every function-tag type: "this chip has no
// such capability" ("opcodes in a descriptor may be disabled").
const None = ""

// VoltageRange is an inclusive operating-voltage window in millivolts.
type VoltageRange struct {
	MinMV int
	MaxMV int
}

func (v VoltageRange) String() string {
	return fmt.Sprintf("%.2f-%.2fV", float64(v.MinMV)/1000, float64(v.MaxMV)/1000)
}

// EraseRun is one run of equally-sized erase blocks within an EraserProfile.
type EraseRun struct {
	BlockSize  uint32
	BlockCount uint32
}

// EraserProfile partitions a chip's address space into ordered runs of
// equally sized erase blocks. AllOnes marks a profile that erases
// the whole chip in one opcode ("chip erase").
type EraserProfile struct {
	Runs      []EraseRun
	EraseFn   EraseFunc
	AllOnes   bool
}

// TotalSize returns Σ blocksize·blockcount across all runs, in bytes.
func (p EraserProfile) TotalSize() uint64 {
	var total uint64
	for _, r := range p.Runs {
		total += uint64(r.BlockSize) * uint64(r.BlockCount)
	}
	return total
}

// MinBlockSize returns the smallest BlockSize across all runs, or 0 if the
// profile has no runs.
func (p EraserProfile) MinBlockSize() uint32 {
	var min uint32
	for i, r := range p.Runs {
		if i == 0 || r.BlockSize < min {
			min = r.BlockSize
		}
	}
	return min
}

// ChipDescriptor is an immutable catalog entry. The catalog is a
// process-wide read-only slice; nothing here is ever mutated after
// construction.
type ChipDescriptor struct {
	Vendor  string
	Name    string
	Buses   BusType

	ManufactureID uint32
	ModelID       uint32

	// TotalSizeKiB is the catalog's native unit; TotalSizeBytes() converts
	// it to bytes on each call (nothing is cached on the descriptor).
	TotalSizeKiB int
	PageSize     int // bytes

	Features Feature
	Tested   TestedStatus

	Probe      ProbeFunc
	ProbeTimingUS int // 0 = none, negative = "ignored"/"fixme" sentinel

	Erasers []EraserProfile

	PrintLock      PrintlockFunc
	Unlock         UnlockFunc
	Write          WriteFunc
	Read           ReadFunc
	StatusRead     StatusReadFunc
	StatusWrite    StatusWriteFunc
	FourByteEnter  FourByteAddrFunc
	WpTable        WpTableFunc

	Voltage VoltageRange
}

// TotalSizeBytes normalizes the catalog's KiB field to bytes.
func (d *ChipDescriptor) TotalSizeBytes() uint64 {
	return uint64(d.TotalSizeKiB) * 1024
}

// SupportsBus reports whether the descriptor advertises any bus in mask.
func (d *ChipDescriptor) SupportsBus(mask BusType) bool {
	return d.Buses.Intersects(mask)
}

// FlagSet is the mutable per-session behavior flags attached to a
// FlashChipHandle. Each handle owns its own copy.
type FlagSet struct {
	Force           bool
	DoDiff          bool
	VerifyWholeChip bool
	VerifyAfterWrite bool
}

// FlashChipHandle is the live, probed chip: a non-owning reference to its
// catalog descriptor plus the programmer-assigned addressing and mutable
// flags. Created by the probe pipeline, destroyed on shutdown.
type FlashChipHandle struct {
	Descriptor *ChipDescriptor

	VirtMemBase uint64
	VirtRegBase uint64

	MasterName string

	Flags FlagSet
}

// TotalSize is a convenience forward to the descriptor's normalized size.
func (h *FlashChipHandle) TotalSize() uint64 {
	if h.Descriptor == nil {
		return 0
	}
	return h.Descriptor.TotalSizeBytes()
}
