package main

import "fmt"

// vmHaltError wraps the cause of a halt; the simulation models kernel
// invariant violations, none of which are survivable.
type vmHaltError struct{ error }

func (err vmHaltError) Error() string { return fmt.Sprintf("halted: %v", err.error) }
func (err vmHaltError) Unwrap() error { return err.error }

type segfaultError uintptr

func (addr segfaultError) Error() string {
	return fmt.Sprintf("segmentation fault at address %#x", uintptr(addr))
}

type pageRangeError int

func (page pageRangeError) Error() string {
	return fmt.Sprintf("page %v out of range (%v pages)", int(page), numPages)
}

type budgetError struct{ resident, max int }

func (be budgetError) Error() string {
	return fmt.Sprintf("exceeded physical memory: resident pages = %v, max resident = %v",
		be.resident, be.max)
}

type victimError int

func (page victimError) Error() string {
	return fmt.Sprintf("policy chose non-resident victim page %v", int(page))
}

type evictError int

func (page evictError) Error() string {
	return fmt.Sprintf("victim page %v still resident after eviction", int(page))
}

type residencyError struct {
	page     int
	resident bool
}

func (re residencyError) Error() string {
	if re.resident {
		return fmt.Sprintf("page %v already resident", re.page)
	}
	return fmt.Sprintf("page %v not resident", re.page)
}

type widenError int

func (page widenError) Error() string {
	return fmt.Sprintf("permission fault on read-write page %v", int(page))
}

type reentrantError uintptr

func (addr reentrantError) Error() string {
	return fmt.Sprintf("re-entrant fault at address %#x", uintptr(addr))
}

type trapCodeError Trap

func (code trapCodeError) Error() string {
	return fmt.Sprintf("unhandled trap code %v", Trap(code))
}
