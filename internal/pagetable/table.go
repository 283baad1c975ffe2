// Package pagetable implements the per-page state of the paging
// simulation: one entry per page packing residency, accessed, and dirty
// bits alongside the live permission.
package pagetable

import "fmt"

// Perm is the protection actually enforced on a page's live memory.
// The constants are ordered so that a wider permission compares greater.
type Perm uint8

const (
	PermNone Perm = iota
	PermRead
	PermReadWrite
)

func (p Perm) String() string {
	switch p {
	case PermNone:
		return "---"
	case PermRead:
		return "r--"
	case PermReadWrite:
		return "rw-"
	}
	return fmt.Sprintf("Perm(%d)", uint8(p))
}

const (
	permMask     = 0x03
	flagResident = 0x04
	flagAccessed = 0x08
	flagDirty    = 0x10
)

// Protector applies a protection change to a page's live mapping.
// SetPermission refuses to record a permission the protector did not
// first enforce, so table and mapping never disagree.
type Protector interface {
	Protect(page int, perm Perm) error
}

// Table holds one entry per page. Entries start zeroed: non-resident,
// untouched, PermNone.
type Table struct {
	prot    Protector
	entries []uint8
}

func New(numPages int, prot Protector) *Table {
	return &Table{prot: prot, entries: make([]uint8, numPages)}
}

func (t *Table) NumPages() int { return len(t.entries) }

func (t *Table) check(page int) {
	if page < 0 || page >= len(t.entries) {
		panic(rangeError{page, len(t.entries)})
	}
}

// Resident reports whether the page's bytes currently occupy live memory.
func (t *Table) Resident(page int) bool {
	t.check(page)
	return t.entries[page]&flagResident != 0
}

func (t *Table) SetResident(page int) {
	t.check(page)
	t.entries[page] |= flagResident
}

// Accessed reports whether the page has been touched since last cleared.
func (t *Table) Accessed(page int) bool {
	t.check(page)
	return t.entries[page]&flagAccessed != 0
}

func (t *Table) SetAccessed(page int) {
	t.check(page)
	t.entries[page] |= flagAccessed
}

func (t *Table) ClearAccessed(page int) {
	t.check(page)
	t.entries[page] &^= flagAccessed
}

// Dirty reports whether the page has been written since it was loaded.
func (t *Table) Dirty(page int) bool {
	t.check(page)
	return t.entries[page]&flagDirty != 0
}

func (t *Table) SetDirty(page int) {
	t.check(page)
	t.entries[page] |= flagDirty
}

func (t *Table) ClearDirty(page int) {
	t.check(page)
	t.entries[page] &^= flagDirty
}

// Permission returns the page's stored permission with the other bits
// masked out.
func (t *Table) Permission(page int) Perm {
	t.check(page)
	return Perm(t.entries[page] & permMask)
}

// SetPermission first applies perm to the page's live mapping, then
// records it, leaving the other bits unmodified. If the protection
// change fails the stored value is untouched.
func (t *Table) SetPermission(page int, perm Perm) error {
	t.check(page)
	if perm > PermReadWrite {
		panic(permError(perm))
	}
	if err := t.prot.Protect(page, perm); err != nil {
		return err
	}
	t.entries[page] = t.entries[page]&^permMask | uint8(perm)
	return nil
}

// Clear resets every bit of the page's entry to its initial zero state.
func (t *Table) Clear(page int) {
	t.check(page)
	t.entries[page] = 0
}

type rangeError struct{ page, numPages int }

func (re rangeError) Error() string {
	return fmt.Sprintf("page %v out of range (%v pages)", re.page, re.numPages)
}

type permError Perm

func (pe permError) Error() string {
	return fmt.Sprintf("invalid permission value %d", uint8(pe))
}
