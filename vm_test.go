package main

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"gopaged/internal/mapping"
	"gopaged/internal/pagetable"
	"gopaged/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVM(t *testing.T, opts ...VMOption) *VM {
	t.Helper()
	vm, err := New(append([]VMOption{
		WithSwapDir(t.TempDir()),
		WithTickInterval(0),
		WithPolicy("fifo"),
		WithMaxResident(2),
	}, opts...)...)
	require.NoError(t, err, "must create vm")
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("%v", dumpString(vm))
		}
		vm.Close()
	})
	return vm
}

func isolateTestRun(t *testing.T, name string, f func(t *testing.T)) bool {
	return t.Run(name, f)
}

// countingSwap observes slot traffic between the mapper and the store.
type countingSwap struct {
	swapStore
	reads  int
	writes int
}

func (cs *countingSwap) ReadSlot(page int, buf []byte) error {
	cs.reads++
	return cs.swapStore.ReadSlot(page, buf)
}

func (cs *countingSwap) WriteSlot(page int, buf []byte) error {
	cs.writes++
	return cs.swapStore.WriteSlot(page, buf)
}

// spyPolicy checks the victim-selection contract on every call.
type spyPolicy struct {
	policy.Policy
	t       *testing.T
	vm      *VM
	victims []int
}

func (sp *spyPolicy) ChooseVictim() int {
	require.Equal(sp.t, sp.vm.maxResident, sp.vm.numResident,
		"victim requested while below capacity")
	victim := sp.Policy.ChooseVictim()
	require.True(sp.t, sp.vm.table.Resident(victim),
		"policy returned non-resident victim %v", victim)
	sp.victims = append(sp.victims, victim)
	return victim
}

func Test_faultScenario(t *testing.T) {
	// NUM_PAGES >= 4, max_resident = 2: the canonical walk through the
	// trap state machine.
	vm := newTestVM(t)

	type step struct {
		name string
		f    func(t *testing.T, vm *VM)
	}
	for _, step := range []step{
		{"read page 0 loads it", func(t *testing.T, vm *VM) {
			require.Equal(t, byte(0), vm.Load(vm.PageAddr(0)), "fresh page must read zero")
			assert.True(t, vm.table.Resident(0))
			assert.True(t, vm.table.Accessed(0))
			assert.False(t, vm.table.Dirty(0))
			assert.Equal(t, pagetable.PermRead, vm.table.Permission(0),
				"first access must stop at read permission")
			assert.Equal(t, 2, vm.NumFaults(), "one map fault plus one access fault")
			assert.Equal(t, 1, vm.NumLoads())
			assert.Equal(t, 1, vm.numResident)
		}},

		{"write page 0 widens and dirties", func(t *testing.T, vm *VM) {
			vm.Stor(vm.PageAddr(0), 0x42)
			assert.Equal(t, pagetable.PermReadWrite, vm.table.Permission(0))
			assert.True(t, vm.table.Dirty(0))
			assert.Equal(t, 3, vm.NumFaults(), "a write on a read page is one more trap")
			assert.Equal(t, 1, vm.NumLoads(), "permission upgrade must not reload")
		}},

		{"read page 1 fills the budget", func(t *testing.T, vm *VM) {
			vm.Load(vm.PageAddr(1))
			assert.Equal(t, pagetable.PermRead, vm.table.Permission(1))
			assert.Equal(t, 5, vm.NumFaults())
			assert.Equal(t, 2, vm.NumLoads())
			assert.Equal(t, 2, vm.numResident)
		}},

		{"read page 2 evicts the fifo victim", func(t *testing.T, vm *VM) {
			vm.Load(vm.PageAddr(2))
			assert.False(t, vm.table.Resident(0), "fifo must have evicted page 0")
			assert.True(t, vm.table.Resident(1))
			assert.True(t, vm.table.Resident(2))
			assert.Equal(t, pagetable.PermRead, vm.table.Permission(2),
				"fresh load re-faults from none to read on the same access")
			assert.Equal(t, 7, vm.NumFaults())
			assert.Equal(t, 3, vm.NumLoads())
			assert.Equal(t, 2, vm.numResident, "budget must hold after eviction")
		}},

		{"evicted page reads back its byte", func(t *testing.T, vm *VM) {
			require.Equal(t, byte(0x42), vm.Load(vm.PageAddr(0)),
				"dirty eviction must have flushed to swap")
			assert.Equal(t, 4, vm.NumLoads())
		}},
	} {
		if !isolateTestRun(t, step.name, func(t *testing.T) {
			step.f(t, vm)
		}) {
			break
		}
	}
}

func Test_permissionWidening(t *testing.T) {
	vm := newTestVM(t)
	addr := vm.PageAddr(3)

	// a pure write on a fresh page pays the full widening ladder:
	// map fault, none->read fault, read->read-write fault
	vm.Stor(addr, 9)
	assert.Equal(t, 3, vm.NumFaults())
	assert.Equal(t, pagetable.PermReadWrite, vm.table.Permission(3))
	assert.True(t, vm.table.Dirty(3))

	// settled permissions fault no further
	vm.Stor(addr+1, 8)
	vm.Load(addr + 2)
	assert.Equal(t, 3, vm.NumFaults(), "read-write page must not trap again")

	// widening restarts from none after a reload
	vm.Load(vm.PageAddr(4))
	vm.Load(vm.PageAddr(5)) // evicts page 3
	require.False(t, vm.table.Resident(3))
	vm.Load(addr)
	assert.Equal(t, pagetable.PermRead, vm.table.Permission(3),
		"reloaded page must start the ladder over")
	assert.False(t, vm.table.Dirty(3), "reloaded page must be clean")
}

func Test_swapRoundTrip(t *testing.T) {
	vm := newTestVM(t)

	want := []byte{0xde, 0xad, 0xbe, 0xef}
	base := vm.PageAddr(0)
	for i, b := range want {
		vm.Stor(base+uintptr(i*7), b)
	}

	// exhaust the budget with other pages to force page 0 out
	vm.Load(vm.PageAddr(1))
	vm.Load(vm.PageAddr(2))
	require.False(t, vm.table.Resident(0), "page 0 must have been evicted")

	for i, b := range want {
		assert.Equal(t, b, vm.Load(base+uintptr(i*7)),
			"byte %v must survive the eviction round trip", i)
	}
}

func Test_evictionFlush(t *testing.T) {
	vm := newTestVM(t)
	cs := &countingSwap{swapStore: vm.swap}
	vm.swap = cs

	// two clean residents, then a third page: the clean victim must not
	// be flushed
	vm.Load(vm.PageAddr(0))
	vm.Load(vm.PageAddr(1))
	vm.Load(vm.PageAddr(2))
	require.False(t, vm.table.Resident(0))
	assert.Equal(t, 0, cs.writes, "clean eviction must not write its slot")

	// dirty the fifo head, then evict it: exactly one full-slot write
	vm.Stor(vm.PageAddr(1), 1)
	vm.Load(vm.PageAddr(3))
	require.False(t, vm.table.Resident(1))
	assert.Equal(t, 1, cs.writes, "dirty eviction must write exactly once")
	assert.Equal(t, 4, cs.reads, "every load reads its slot")
}

func Test_residentBudgetInvariant(t *testing.T) {
	var spy *spyPolicy
	vm := newTestVM(t,
		WithMaxResident(3),
		WithPolicyFunc(func(tbl *pagetable.Table) (policy.Policy, error) {
			spy = &spyPolicy{Policy: policy.NewFIFO(), t: t}
			return spy, nil
		}))
	spy.vm = vm

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 512; i++ {
		addr := vm.PageAddr(rng.Intn(numPages)) + uintptr(rng.Intn(pageSize))
		if rng.Intn(2) == 0 {
			vm.Load(addr)
		} else {
			vm.Stor(addr, byte(i))
		}
		require.LessOrEqual(t, vm.numResident, vm.maxResident,
			"resident count must respect the budget after every access")
	}
	assert.NotEmpty(t, spy.victims, "the workload must have forced evictions")
}

func Test_genuineSegfault(t *testing.T) {
	vm := newTestVM(t)
	ctx := context.Background()

	err := vm.Run(ctx, func(ctx context.Context, vm *VM) error {
		vm.Load(vm.End())
		return nil
	})
	require.Error(t, err, "out-of-range access must halt")
	var seg segfaultError
	require.True(t, errors.As(err, &seg), "expected a segfault, got %v", err)
	assert.Equal(t, vm.End(), uintptr(seg), "fault must report the offending address")

	err = vm.Run(ctx, func(ctx context.Context, vm *VM) error {
		vm.Load(vm.Base() - 1)
		return nil
	})
	assert.Error(t, err, "access below the range must halt")
}

func Test_faultOnReadWritePage(t *testing.T) {
	vm := newTestVM(t)
	addr := vm.PageAddr(0)
	vm.Stor(addr, 1) // page 0 is now read-write

	err := vm.Run(context.Background(), func(ctx context.Context, vm *VM) error {
		vm.Fault(addr, TrapAccErr)
		return nil
	})
	require.Error(t, err, "an access fault on a read-write page is a state machine bug")
	var we widenError
	assert.True(t, errors.As(err, &we), "expected a widen error, got %v", err)
}

// reentrantPolicy raises a fault from inside victim selection, which
// the dispatcher must refuse.
type reentrantPolicy struct {
	policy.Policy
	vm *VM
}

func (rp *reentrantPolicy) ChooseVictim() int {
	rp.vm.fault(rp.vm.PageAddr(0), TrapMapErr)
	return 0
}

func Test_reentrantFault(t *testing.T) {
	var rp *reentrantPolicy
	vm := newTestVM(t, WithPolicyFunc(func(tbl *pagetable.Table) (policy.Policy, error) {
		rp = &reentrantPolicy{Policy: policy.NewFIFO()}
		return rp, nil
	}))
	rp.vm = vm

	err := vm.Run(context.Background(), func(ctx context.Context, vm *VM) error {
		vm.Load(vm.PageAddr(0))
		vm.Load(vm.PageAddr(1))
		vm.Load(vm.PageAddr(2)) // full budget: victim selection fires
		return nil
	})
	require.Error(t, err, "a fault inside fault resolution must halt")
	var re reentrantError
	assert.True(t, errors.As(err, &re), "expected a re-entrancy error, got %v", err)
}

func Test_tickForwarding(t *testing.T) {
	var ticks int
	vm := newTestVM(t, WithPolicyFunc(func(tbl *pagetable.Table) (policy.Policy, error) {
		return tickCounter{inner: policy.NewFIFO(), ticks: &ticks}, nil
	}))

	vm.Tick()
	vm.Tick()
	vm.Tick()
	assert.Equal(t, 3, ticks, "every tick must reach the policy")
}

type tickCounter struct {
	inner policy.Policy
	ticks *int
}

func (tc tickCounter) Init() error           { return tc.inner.Init() }
func (tc tickCounter) ChooseVictim() int     { return tc.inner.ChooseVictim() }
func (tc tickCounter) PageMapped(page int)   { tc.inner.PageMapped(page) }
func (tc tickCounter) PageUnmapped(page int) { tc.inner.PageUnmapped(page) }
func (tc tickCounter) TimerTick()            { *tc.ticks++ }

func Test_timerArmed(t *testing.T) {
	var ticks int
	vm, err := New(
		WithSwapDir(t.TempDir()),
		WithTickInterval(time.Millisecond),
		WithPolicyFunc(func(tbl *pagetable.Table) (policy.Policy, error) {
			return tickCounter{inner: policy.NewFIFO(), ticks: &ticks}, nil
		}))
	require.NoError(t, err, "must create vm")

	deadline := time.Now().Add(time.Second)
	for {
		vm.mu.Lock()
		n := ticks
		vm.mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, vm.Close())
	assert.Greater(t, ticks, 0, "armed timer must deliver ticks")
}

func Test_protectionAgreement(t *testing.T) {
	vm := newTestVM(t, WithMaxResident(3))
	slab := vm.region.(*mapping.Slab)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 128; i++ {
		addr := vm.PageAddr(rng.Intn(8)) + uintptr(rng.Intn(pageSize))
		if rng.Intn(2) == 0 {
			vm.Load(addr)
		} else {
			vm.Stor(addr, byte(i))
		}
	}

	for page := 0; page < numPages; page++ {
		if vm.table.Resident(page) {
			assert.Equal(t, protFor(vm.table.Permission(page)), slab.Prot(page),
				"live protection must agree with the table on page %v", page)
		} else {
			assert.Equal(t, mapping.ProtNone, slab.Prot(page),
				"non-resident page %v must be inaccessible", page)
		}
	}
}

func Test_dump(t *testing.T) {
	vm := newTestVM(t)
	vm.Stor(vm.PageAddr(1), 1)

	s := dumpString(vm)
	assert.Contains(t, s, "# VM Dump")
	assert.Contains(t, s, "resident: 1/2")
	assert.Contains(t, s, "page   1: rw- accessed dirty")
}
