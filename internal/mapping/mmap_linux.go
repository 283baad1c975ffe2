//go:build linux
// +build linux

package mapping

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mmap is a Region whose pages carry real kernel protections. The whole
// range is reserved once with PROT_NONE; Map, Protect, and Unmap are
// mprotect transitions within the reservation, so a page's accessibility
// is enforced by the MMU and not just by bookkeeping.
type Mmap struct {
	data     []byte
	pageSize int
}

func NewMmap(numPages, pageSize int) (*Mmap, error) {
	if sys := unix.Getpagesize(); pageSize%sys != 0 {
		return nil, fmt.Errorf("page size %v is not a multiple of the system page size %v", pageSize, sys)
	}
	data, err := unix.Mmap(-1, 0, numPages*pageSize,
		unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap reserve: %w", err)
	}
	return &Mmap{data: data, pageSize: pageSize}, nil
}

func newMmap(numPages, pageSize int) (Region, error) {
	return NewMmap(numPages, pageSize)
}

func (mm *Mmap) Base() uintptr { return uintptr(unsafe.Pointer(&mm.data[0])) }
func (mm *Mmap) Size() int     { return len(mm.data) }

func (mm *Mmap) Map(page int) error {
	b := mm.slice(page)
	if err := unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return mapError{"map", page, err}
	}
	// The slot may hold a stale image from a prior residency.
	for i := range b {
		b[i] = 0
	}
	return nil
}

func (mm *Mmap) Unmap(page int) error {
	if err := unix.Mprotect(mm.slice(page), unix.PROT_NONE); err != nil {
		return mapError{"unmap", page, err}
	}
	return nil
}

func (mm *Mmap) Protect(page int, prot Prot) error {
	if err := unix.Mprotect(mm.slice(page), sysProt(prot)); err != nil {
		return mapError{"protect", page, err}
	}
	return nil
}

func sysProt(prot Prot) int {
	switch prot {
	case ProtRead:
		return unix.PROT_READ
	case ProtReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE
	}
	return unix.PROT_NONE
}

func (mm *Mmap) Slice(page int) []byte { return mm.slice(page) }

func (mm *Mmap) Close() error { return unix.Munmap(mm.data) }

func (mm *Mmap) slice(page int) []byte {
	off := page * mm.pageSize
	return mm.data[off : off+mm.pageSize]
}
