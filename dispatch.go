package main

import "gopaged/internal/pagetable"

// fault is the protection-trap handler: it classifies the trap and
// either evicts+loads or widens permissions so that the faulting access
// can be retried. Caller holds vm.mu, which also suspends timer ticks
// for the handler's duration.
func (vm *VM) fault(addr uintptr, code Trap) {
	if addr < vm.Base() || addr >= vm.End() {
		// not ours: a genuine segmentation fault
		vm.halt(segfaultError(addr))
	}
	if vm.inFault {
		// the handler's own code touched simulated memory
		vm.halt(reentrantError(addr))
	}
	vm.inFault = true
	defer func() { vm.inFault = false }()

	vm.numFaults++
	page := int((addr - vm.Base()) / pageSize)
	vm.logf("%v @%#x page %v", code, addr, page)

	switch code {
	case TrapMapErr:
		if vm.numResident > vm.maxResident {
			vm.halt(budgetError{vm.numResident, vm.maxResident})
		}
		if vm.numResident == vm.maxResident {
			victim := vm.policy.ChooseVictim()
			if !vm.table.Resident(victim) {
				vm.halt(victimError(victim))
			}
			vm.unmapPage(victim)
			if vm.table.Resident(victim) {
				vm.halt(evictError(victim))
			}
		}
		// eviction strictly precedes loading: there is room now
		vm.mapPage(page, pagetable.PermNone)

	case TrapAccErr:
		// whatever the access was, the page has now been touched
		vm.table.SetAccessed(page)

		switch perm := vm.table.Permission(page); perm {
		case pagetable.PermNone:
			// Cannot tell a read from a write here; grant read and let
			// a write re-fault immediately.
			vm.setPermission(page, pagetable.PermRead)
		case pagetable.PermRead:
			// By elimination this trap must be a write.
			vm.setPermission(page, pagetable.PermReadWrite)
			vm.table.SetDirty(page)
		default:
			vm.halt(widenError(page))
		}

	default:
		vm.halt(trapCodeError(code))
	}
}
