// Package linuxmtd implements programmer.Master over a Linux MTD character
// device (/dev/mtd0, ...). Unlike the SPI-transport masters, this one talks
// to a kernel driver that already abstracts the chip's opcode set, so it
// advertises programmer.BusOpaque: the whole point of an opaque master is
// that norflash's opcode-level chip/spiops layer never runs against it —
// read/write/erase are plain file and ioctl operations.
package linuxmtd

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/sercanarga/norflash/internal/programmer"
)

// MTD ioctl requests, from <linux/mtd/mtd-abi.h>. golang.org/x/sys/unix
// doesn't carry these (they're filesystem-driver-specific, not general
// POSIX), so the request numbers are computed the same way the kernel
// header does: _IOR/_IOW(type, nr, size).
const iocMagicM = 'M'

const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocDirWrite = 1
	iocDirRead  = 2
)

// iocNR computes an ioctl request number the way <asm-generic/ioctl.h>'s
// _IOR/_IOW macros do. It can't be a const expression (Go constants don't
// evaluate user functions), so the request numbers it produces are package
// vars, computed once at init.
func iocNR(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

var (
	iocMemGetInfo = iocNR(iocDirRead, iocMagicM, 1, unsafe.Sizeof(mtdInfoUser{}))
	iocMemErase   = iocNR(iocDirWrite, iocMagicM, 2, unsafe.Sizeof(eraseInfoUser{}))
	iocMemLock    = iocNR(iocDirWrite, iocMagicM, 5, unsafe.Sizeof(eraseInfoUser{}))
	iocMemUnlock  = iocNR(iocDirWrite, iocMagicM, 6, unsafe.Sizeof(eraseInfoUser{}))
)

// mtdInfoUser mirrors struct mtd_info_user: type, flags, total size,
// erase-block size, write granularity, OOB size, and an 8-byte padding
// field the kernel ABI reserves.
type mtdInfoUser struct {
	Type      uint8
	_         [3]byte // alignment padding before the uint32 fields
	Flags     uint32
	Size      uint32
	EraseSize uint32
	WriteSize uint32
	OOBSize   uint32
	_         uint64 // reserved
}

// eraseInfoUser mirrors struct erase_info_user: a byte offset and length.
type eraseInfoUser struct {
	Start  uint32
	Length uint32
}

// Device is a programmer.Master backed by an open MTD character device.
type Device struct {
	f    *os.File
	info mtdInfoUser
}

// Open opens path (e.g. "/dev/mtd0") and reads its MEMGETINFO geometry.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("linuxmtd: opening %s: %w", path, err)
	}
	d := &Device{f: f}
	if err := d.ioctl(iocMemGetInfo, unsafe.Pointer(&d.info)); err != nil {
		f.Close()
		return nil, fmt.Errorf("linuxmtd: MEMGETINFO on %s: %w", path, err)
	}
	return d, nil
}

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *Device) Name() string { return d.f.Name() }

func (d *Device) BusesSupported() programmer.BusType { return programmer.BusOpaque }

func (d *Device) Read(addr uint32, buf []byte) error {
	n, err := d.f.ReadAt(buf, int64(addr))
	if err != nil {
		return fmt.Errorf("linuxmtd: read at %#x: %w", addr, err)
	}
	if n != len(buf) {
		return fmt.Errorf("linuxmtd: short read at %#x: got %d want %d", addr, n, len(buf))
	}
	return nil
}

func (d *Device) Write(addr uint32, buf []byte) error {
	n, err := d.f.WriteAt(buf, int64(addr))
	if err != nil {
		return fmt.Errorf("linuxmtd: write at %#x: %w", addr, err)
	}
	if n != len(buf) {
		return fmt.Errorf("linuxmtd: short write at %#x: wrote %d want %d", addr, n, len(buf))
	}
	return nil
}

// BlockErase issues MEMERASE, which blocks in-kernel until the erase
// completes on modern MTD drivers.
func (d *Device) BlockErase(addr, size uint32) error {
	ei := eraseInfoUser{Start: addr, Length: size}
	if err := d.ioctl(iocMemErase, unsafe.Pointer(&ei)); err != nil {
		return fmt.Errorf("linuxmtd: MEMERASE at %#x/%#x: %w", addr, size, err)
	}
	return nil
}

// Lock and Unlock wrap MEMLOCK/MEMUNLOCK: on MTD, write-protect is a
// kernel-mediated range lock rather than raw status-register bits, so
// these stand in for the chip/wp package's set_range on this transport.
func (d *Device) Lock(addr, size uint32) error {
	ei := eraseInfoUser{Start: addr, Length: size}
	return d.ioctl(iocMemLock, unsafe.Pointer(&ei))
}

func (d *Device) Unlock(addr, size uint32) error {
	ei := eraseInfoUser{Start: addr, Length: size}
	return d.ioctl(iocMemUnlock, unsafe.Pointer(&ei))
}

// StatusRead/StatusWrite have no MTD equivalent: the kernel driver already
// owns the chip's status register. Callers needing WP state should use
// Lock/Unlock instead.
func (d *Device) StatusRead() ([]byte, error) {
	return nil, fmt.Errorf("linuxmtd: raw status-register access is not exposed by the MTD layer, use Lock/Unlock")
}

func (d *Device) StatusWrite([]byte) error {
	return fmt.Errorf("linuxmtd: raw status-register access is not exposed by the MTD layer, use Lock/Unlock")
}

func (d *Device) CheckAccess(addr, size uint32) error {
	if uint64(addr)+uint64(size) > uint64(d.info.Size) {
		return fmt.Errorf("linuxmtd: range %#x/%#x exceeds device size %#x", addr, size, d.info.Size)
	}
	return nil
}

func (d *Device) MaxDataRead() uint32  { return d.info.EraseSize }
func (d *Device) MaxDataWrite() uint32 { return d.info.WriteSize }

func (d *Device) Delay(dur time.Duration) { time.Sleep(dur) }

func (d *Device) Close() error { return d.f.Close() }

// Size returns the device's total addressable size in bytes.
func (d *Device) Size() uint64 { return uint64(d.info.Size) }

// EraseSize returns the device's native erase-block size in bytes.
func (d *Device) EraseSize() uint32 { return d.info.EraseSize }
