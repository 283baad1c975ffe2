package main

import "gopaged/internal/pagetable"

// Trap identifies the protection-violation code delivered with a trap,
// mirroring the SEGV_MAPERR / SEGV_ACCERR split.
type Trap int

const (
	// TrapMapErr reports a fault on an address with no live mapping:
	// the page was never loaded, or has been evicted.
	TrapMapErr Trap = iota

	// TrapAccErr reports an access that exceeded a resident page's
	// current permission.
	TrapAccErr
)

func (code Trap) String() string {
	switch code {
	case TrapMapErr:
		return "SEGV_MAPERR"
	case TrapAccErr:
		return "SEGV_ACCERR"
	}
	return "UNKNOWN"
}

// Load reads the byte at addr, faulting the page in as needed.
func (vm *VM) Load(addr uintptr) byte {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	page := vm.admit(addr, pagetable.PermRead)
	return vm.region.Slice(page)[vm.offset(addr)]
}

// Stor writes val at addr, faulting and widening permissions as needed.
func (vm *VM) Stor(addr uintptr, val byte) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	page := vm.admit(addr, pagetable.PermReadWrite)
	vm.region.Slice(page)[vm.offset(addr)] = val
}

// Fault delivers a synthetic protection trap, exactly as the trap source
// does on a violating access.
func (vm *VM) Fault(addr uintptr, code Trap) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.fault(addr, code)
}

// admit is the trap source: it retries the access until the page's live
// permission admits it, raising a trap for each denial. The retry loop
// stands in for the hardware re-executing the faulting instruction.
// Caller holds vm.mu.
func (vm *VM) admit(addr uintptr, need pagetable.Perm) int {
	for {
		if addr < vm.Base() || addr >= vm.End() {
			vm.fault(addr, TrapMapErr) // halts: genuine segfault
		}
		page := int((addr - vm.Base()) / pageSize)
		if !vm.table.Resident(page) {
			vm.fault(addr, TrapMapErr)
			continue
		}
		if vm.table.Permission(page) < need {
			vm.fault(addr, TrapAccErr)
			continue
		}
		return page
	}
}

func (vm *VM) offset(addr uintptr) int {
	return int(addr-vm.Base()) % pageSize
}
