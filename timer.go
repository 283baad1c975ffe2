package main

import "time"

// Tick forwards one periodic timer tick to the replacement policy. The
// handler mutex makes ticks and fault resolution mutually exclusive, so
// a tick can never observe a half-finished transition.
func (vm *VM) Tick() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.policy.TimerTick()
}

func (vm *VM) armTimer() {
	vm.tickStop = make(chan struct{})
	vm.tickDone = make(chan struct{})
	ticker := time.NewTicker(vm.tickInterval)
	go func() {
		defer close(vm.tickDone)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				vm.Tick()
			case <-vm.tickStop:
				return
			}
		}
	}()
}

func (vm *VM) stopTimer() {
	if vm.tickStop != nil {
		close(vm.tickStop)
		<-vm.tickDone
		vm.tickStop = nil
	}
}
