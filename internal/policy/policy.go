// Package policy defines the replacement-policy contract the paging core
// consumes, and the stock algorithms that satisfy it. Policies observe
// page state only through the page-table accessor ABI; the core never
// inspects how victims are chosen, only that ChooseVictim returns a
// currently resident page.
package policy

import (
	"fmt"

	"gopaged/internal/pagetable"
)

// Policy decides eviction victims and observes mapping, unmapping, and
// timer events. All hooks fire synchronously from the trap and timer
// dispatchers, so implementations need no locking of their own.
type Policy interface {
	// Init prepares internal bookkeeping before any other hook fires.
	Init() error

	// ChooseVictim returns a resident page to evict. It is only ever
	// invoked when the resident set is full.
	ChooseVictim() int

	// PageMapped fires after page becomes resident.
	PageMapped(page int)

	// PageUnmapped fires after page is evicted.
	PageUnmapped(page int)

	// TimerTick fires on each periodic timer tick.
	TimerTick()
}

// New returns the named stock policy bound to the core's page table.
func New(name string, table *pagetable.Table) (Policy, error) {
	switch name {
	case "fifo":
		return NewFIFO(), nil
	case "clock":
		return NewClock(table), nil
	case "random":
		return NewRandom(0), nil
	case "aging":
		return NewAging(table), nil
	}
	return nil, fmt.Errorf("unknown replacement policy %q", name)
}

// Names lists the stock policies in registry order.
func Names() []string { return []string{"fifo", "clock", "random", "aging"} }

func remove(pages []int, page int) []int {
	for i, p := range pages {
		if p == page {
			return append(pages[:i], pages[i+1:]...)
		}
	}
	return pages
}
