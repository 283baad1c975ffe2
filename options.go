package main

import (
	"os"
	"time"

	"gopaged/internal/pagetable"
	"gopaged/internal/policy"
)

type VMOption interface{ apply(vm *VM) }

var defaults = []VMOption{
	withMaxResident(numPages / 4),
	withSwapDir(os.TempDir()),
	withBackend("slab"),
	withPolicy("clock"),
	withTickInterval(defaultTickInterval),
}

func (vm *VM) apply(opts ...VMOption) {
	for _, opt := range defaults {
		if opt != nil {
			opt.apply(vm)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type maxResidentOption int
type swapDirOption string
type backendOption string
type tickIntervalOption time.Duration
type policyOption string
type policyFuncOption func(t *pagetable.Table) (policy.Policy, error)

func withMaxResident(n int) maxResidentOption      { return maxResidentOption(n) }
func withSwapDir(dir string) swapDirOption         { return swapDirOption(dir) }
func withBackend(name string) backendOption        { return backendOption(name) }
func withTickInterval(d time.Duration) tickIntervalOption {
	return tickIntervalOption(d)
}
func withPolicy(name string) policyOption { return policyOption(name) }
func withPolicyFunc(newPolicy func(t *pagetable.Table) (policy.Policy, error)) policyFuncOption {
	return policyFuncOption(newPolicy)
}

func (n maxResidentOption) apply(vm *VM) { vm.maxResident = int(n) }

func (dir swapDirOption) apply(vm *VM) { vm.swapDir = string(dir) }

func (name backendOption) apply(vm *VM) { vm.backend = string(name) }

func (d tickIntervalOption) apply(vm *VM) { vm.tickInterval = time.Duration(d) }

func (name policyOption) apply(vm *VM) {
	vm.newPolicy = func(t *pagetable.Table) (policy.Policy, error) {
		return policy.New(string(name), t)
	}
}

func (newPolicy policyFuncOption) apply(vm *VM) { vm.newPolicy = newPolicy }
