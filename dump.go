package main

import (
	"fmt"
	"io"
	"strings"
)

// vmDumper renders the paging state for trace logs and failing tests.
type vmDumper struct {
	vm  *VM
	out io.Writer
}

func (dump vmDumper) dump() {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  range: %#x..%#x (%v pages of %v bytes)\n",
		vm.Base(), vm.End(), numPages, pageSize)
	fmt.Fprintf(dump.out, "  resident: %v/%v faults: %v loads: %v\n",
		vm.numResident, vm.maxResident, vm.numFaults, vm.numLoads)
	for page := 0; page < numPages; page++ {
		if !vm.table.Resident(page) {
			continue
		}
		var flags []string
		if vm.table.Accessed(page) {
			flags = append(flags, "accessed")
		}
		if vm.table.Dirty(page) {
			flags = append(flags, "dirty")
		}
		fmt.Fprintf(dump.out, "  page %3v: %v %v\n",
			page, vm.table.Permission(page), strings.Join(flags, " "))
	}
}

func dumpString(vm *VM) string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	var sb strings.Builder
	vmDumper{vm: vm, out: &sb}.dump()
	return sb.String()
}
