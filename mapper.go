package main

import "gopaged/internal/pagetable"

// mapPage brings page in from its swap slot: establish a zero-filled
// read-write mapping at the page's address, stream the slot in, mark the
// entry resident, then narrow the live permission down to perm. Caller
// holds vm.mu; page must not be resident and the budget must have room.
func (vm *VM) mapPage(page int, perm pagetable.Perm) {
	if vm.table.Resident(page) {
		vm.halt(residencyError{page, true})
	}
	vm.numResident++
	if vm.numResident > vm.maxResident {
		vm.halt(budgetError{vm.numResident, vm.maxResident})
	}

	// full access while the slot streams in; narrowed just below
	vm.haltif(vm.region.Map(page))
	vm.haltif(vm.swap.ReadSlot(page, vm.region.Slice(page)))

	vm.table.SetResident(page)
	vm.setPermission(page, perm)

	vm.numLoads++
	vm.policy.PageMapped(page)
	vm.logf("mapped page %v %v, resident %v/%v", page, perm, vm.numResident, vm.maxResident)
}

// unmapPage evicts page: flush the live bytes to the swap slot when
// dirty, remove the mapping, and clear the page table entry. Caller
// holds vm.mu; page must be resident.
func (vm *VM) unmapPage(page int) {
	if !vm.table.Resident(page) {
		vm.halt(residencyError{page, false})
	}

	if vm.table.Dirty(page) {
		// need read access to stream the live bytes out
		vm.setPermission(page, pagetable.PermRead)
		vm.haltif(vm.swap.WriteSlot(page, vm.region.Slice(page)))
	}

	vm.haltif(vm.region.Unmap(page))
	vm.table.Clear(page)
	vm.numResident--
	vm.policy.PageUnmapped(page)
	vm.logf("unmapped page %v, resident %v/%v", page, vm.numResident, vm.maxResident)
}

// setPermission applies the protection to the live mapping and records
// it in the table; disagreement between the two is unsurvivable.
func (vm *VM) setPermission(page int, perm pagetable.Perm) {
	vm.haltif(vm.table.SetPermission(page, perm))
}
