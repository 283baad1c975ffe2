package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gopaged/internal/mapping"
	"gopaged/internal/pagetable"
	"gopaged/internal/policy"
	"gopaged/internal/swapfile"
)

// Fixed geometry of the simulated address range: numPages pages of
// pageSize bytes, reserved once at initialization.
const (
	numPages = 64
	pageSize = 4096
)

// defaultTickInterval matches the original 10ms timer slice.
const defaultTickInterval = 10 * time.Millisecond

// swapStore is what the mapper needs from the backing store; tests wrap
// the real swap file to observe slot traffic.
type swapStore interface {
	ReadSlot(page int, buf []byte) error
	WriteSlot(page int, buf []byte) error
	Close() error
}

// VM owns all state of the paging simulation: the page table, the swap
// store, the live mapping region, the injected replacement policy, and
// the fault/load accounting. All of it mutates only under mu, inside
// trap resolution or a timer tick.
type VM struct {
	logging

	mu sync.Mutex

	table  *pagetable.Table
	swap   swapStore
	region mapping.Region
	policy policy.Policy

	maxResident int
	numResident int

	numFaults int
	numLoads  int

	inFault bool

	tickInterval time.Duration
	tickStop     chan struct{}
	tickDone     chan struct{}

	closers []io.Closer

	// option staging, consumed by New
	swapDir   string
	backend   string
	newPolicy func(t *pagetable.Table) (policy.Policy, error)
}

// New reserves the simulated address range, creates and unlinks the swap
// store, initializes the page table and policy, and arms the periodic
// timer. The returned VM's Base is the start of the reserved range.
func New(opts ...VMOption) (*VM, error) {
	var vm VM
	vm.apply(opts...)

	region, err := mapping.Open(vm.backend, numPages, pageSize)
	if err != nil {
		return nil, err
	}
	vm.region = region
	vm.closers = append(vm.closers, region)

	vm.table = pagetable.New(numPages, regionProtector{region})

	swap, err := swapfile.Create(vm.swapDir, numPages, pageSize)
	if err != nil {
		vm.Close()
		return nil, err
	}
	vm.swap = swap
	vm.closers = append(vm.closers, swap)

	pol, err := vm.newPolicy(vm.table)
	if err != nil {
		vm.Close()
		return nil, err
	}
	if err := pol.Init(); err != nil {
		vm.Close()
		return nil, fmt.Errorf("policy init: %w", err)
	}
	vm.policy = pol

	vm.logf("\"physical memory\" is %#x..%#x, %v pages total, %v resident max",
		vm.Base(), vm.End(), numPages, vm.maxResident)

	if vm.tickInterval > 0 {
		vm.armTimer()
	}
	return &vm, nil
}

// Close disarms the timer and releases the swap store and the region.
func (vm *VM) Close() (err error) {
	vm.stopTimer()
	for i := len(vm.closers) - 1; i >= 0; i-- {
		if cerr := vm.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	vm.closers = nil
	return err
}

// Base returns the first address of the simulated range.
func (vm *VM) Base() uintptr { return vm.region.Base() }

// End returns one past the last address of the simulated range.
func (vm *VM) End() uintptr { return vm.region.Base() + uintptr(vm.region.Size()) }

// NumFaults counts every trap observed since initialization. It exceeds
// NumLoads because traps also detect accesses and writes.
func (vm *VM) NumFaults() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.numFaults
}

// NumLoads counts pages actually loaded from swap; this is the number a
// replacement policy tries to minimize.
func (vm *VM) NumLoads() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.numLoads
}

// PageAddr returns the address of the start of page.
func (vm *VM) PageAddr(page int) uintptr {
	if page < 0 || page >= numPages {
		panic(pageRangeError(page))
	}
	return vm.Base() + uintptr(page)*pageSize
}

// AddrPage returns the page containing addr.
func (vm *VM) AddrPage(addr uintptr) int {
	if addr < vm.Base() || addr >= vm.End() {
		panic(segfaultError(addr))
	}
	return int((addr - vm.Base()) / pageSize)
}

func (vm *VM) halt(err error) {
	vm.logf("halt error: %v", err)
	panic(vmHaltError{err})
}

func (vm *VM) haltif(err error) {
	if err != nil {
		vm.halt(err)
	}
}

// regionProtector couples the page table to the live mapping: permission
// stores go through the region's protection first.
type regionProtector struct{ region mapping.Region }

func (rp regionProtector) Protect(page int, perm pagetable.Perm) error {
	return rp.region.Protect(page, protFor(perm))
}

func protFor(perm pagetable.Perm) mapping.Prot {
	switch perm {
	case pagetable.PermRead:
		return mapping.ProtRead
	case pagetable.PermReadWrite:
		return mapping.ProtReadWrite
	}
	return mapping.ProtNone
}

type logging struct {
	logfn func(mess string, args ...interface{})
}

func (log logging) logf(mess string, args ...interface{}) {
	if log.logfn != nil {
		log.logfn(mess, args...)
	}
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	if logfn != nil {
		log.logfn = func(mess string, args ...interface{}) {
			logfn(prefix+mess, args...)
		}
	}
	return func() {
		log.logfn = logfn
	}
}
