package main

import (
	"context"
	"errors"
	"time"

	"gopaged/internal/pagetable"
	"gopaged/internal/policy"
)

// Run executes a workload against the simulated memory, converting any
// halt into an error return. The workload sees faults only as access
// latency, the way a real process would.
func (vm *VM) Run(ctx context.Context, workload func(ctx context.Context, vm *VM) error) error {
	err := isolate("workload", func() error {
		return workload(ctx, vm)
	})
	var vmErr vmHaltError
	if errors.As(err, &vmErr) {
		err = vmErr.error
	}
	return err
}

// WithMaxResident bounds how many pages may be resident at once.
func WithMaxResident(n int) VMOption { return withMaxResident(n) }

// WithSwapDir places the (immediately unlinked) swap file under dir.
func WithSwapDir(dir string) VMOption { return withSwapDir(dir) }

// WithBackend selects the live mapping backend ("slab" or "mmap").
func WithBackend(name string) VMOption { return withBackend(name) }

// WithPolicy selects a stock replacement policy by registry name.
func WithPolicy(name string) VMOption { return withPolicy(name) }

// WithPolicyFunc injects a custom replacement policy, constructed
// against the VM's page table.
func WithPolicyFunc(newPolicy func(t *pagetable.Table) (policy.Policy, error)) VMOption {
	return withPolicyFunc(newPolicy)
}

// WithTickInterval sets the policy timer period; 0 disarms the timer so
// that ticks can be driven explicitly through Tick.
func WithTickInterval(d time.Duration) VMOption { return withTickInterval(d) }

func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
