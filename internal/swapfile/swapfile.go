// Package swapfile implements the disk-backed store behind the simulated
// memory: one fixed-size slot per page, slot i at byte offset i*pageSize,
// contiguous, no header. Slot contents are authoritative while a page is
// non-resident.
package swapfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a slot-array backing store. The underlying file is unlinked as
// soon as it is sized, so it exists only as long as the process holds it
// open and is reclaimed at exit or crash.
type File struct {
	f        *os.File
	numPages int
	pageSize int
}

// Create opens, sizes, and unlinks a swap file under dir with numPages
// slots of pageSize bytes each. Capacity is established once by a single
// sentinel write at the final offset.
func Create(dir string, numPages, pageSize int) (*File, error) {
	name := filepath.Join(dir, fmt.Sprintf("gopaged_%05d", os.Getpid()))
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(name); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Seek(int64(numPages)*int64(pageSize), io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Write([]byte{'x'}); err != nil {
		f.Close()
		return nil, fmt.Errorf("extend %v: %w", name, err)
	}
	return &File{f: f, numPages: numPages, pageSize: pageSize}, nil
}

// ReadSlot fills buf with the page's slot contents. buf must be exactly
// one slot long; a short transfer is an error, never a partial result.
func (sf *File) ReadSlot(page int, buf []byte) error {
	if err := sf.seekSlot("read", page, len(buf)); err != nil {
		return err
	}
	if n, err := io.ReadFull(sf.f, buf); err != nil {
		return slotError{"read", page, n, err}
	}
	return nil
}

// WriteSlot replaces the page's slot contents with buf, which must be
// exactly one slot long.
func (sf *File) WriteSlot(page int, buf []byte) error {
	if err := sf.seekSlot("write", page, len(buf)); err != nil {
		return err
	}
	n, err := sf.f.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return slotError{"write", page, n, err}
	}
	return nil
}

func (sf *File) seekSlot(op string, page, n int) error {
	if page < 0 || page >= sf.numPages {
		panic(rangeError{page, sf.numPages})
	}
	if n != sf.pageSize {
		return slotError{op, page, n, errSlotSize}
	}
	if _, err := sf.f.Seek(int64(page)*int64(sf.pageSize), io.SeekStart); err != nil {
		return slotError{op, page, 0, err}
	}
	return nil
}

func (sf *File) Close() error { return sf.f.Close() }

var errSlotSize = fmt.Errorf("buffer is not a full slot")

type slotError struct {
	op   string
	page int
	n    int
	err  error
}

func (se slotError) Error() string {
	return fmt.Sprintf("%v slot %v (%v bytes done): %v", se.op, se.page, se.n, se.err)
}

func (se slotError) Unwrap() error { return se.err }

type rangeError struct{ page, numPages int }

func (re rangeError) Error() string {
	return fmt.Sprintf("slot %v out of range (%v slots)", re.page, re.numPages)
}
