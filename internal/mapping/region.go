// Package mapping provides the live memory range backing the simulated
// address space: a contiguous run of fixed-size pages that can be mapped,
// unmapped, and re-protected one page at a time.
package mapping

import (
	"errors"
	"fmt"
)

// Prot is the protection applied to a mapped page.
type Prot int

const (
	ProtNone Prot = iota
	ProtRead
	ProtReadWrite
)

func (p Prot) String() string {
	switch p {
	case ProtNone:
		return "PROT_NONE"
	case ProtRead:
		return "PROT_READ"
	case ProtReadWrite:
		return "PROT_READ|PROT_WRITE"
	}
	return fmt.Sprintf("Prot(%d)", int(p))
}

// Region is the reserved address range. Map establishes a zero-filled
// read-write mapping; Protect narrows or widens it; Unmap removes it
// entirely. Slice is valid only while the page is mapped with at least
// read protection.
type Region interface {
	Base() uintptr
	Size() int
	Map(page int) error
	Unmap(page int) error
	Protect(page int, prot Prot) error
	Slice(page int) []byte
	Close() error
}

// Open returns the named Region backend sized to numPages pages of
// pageSize bytes. The "slab" backend works everywhere; "mmap" carries
// real kernel protections and requires linux.
func Open(backend string, numPages, pageSize int) (Region, error) {
	switch backend {
	case "", "slab":
		return NewSlab(numPages, pageSize), nil
	case "mmap":
		return newMmap(numPages, pageSize)
	}
	return nil, fmt.Errorf("unknown mapping backend %q", backend)
}

var (
	errMapped    = errors.New("page already mapped")
	errNotMapped = errors.New("page not mapped")
	errRange     = errors.New("page out of range")
)

type mapError struct {
	op   string
	page int
	err  error
}

func (me mapError) Error() string {
	return fmt.Sprintf("%v page %v: %v", me.op, me.page, me.err)
}

func (me mapError) Unwrap() error { return me.err }
