package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gopaged/internal/logio"
	"gopaged/internal/policy"
)

type simConfig struct {
	maxResident int
	backend     string
	seed        int64
	interval    time.Duration
	trace       bool
}

type simResult struct {
	name   string
	faults int
	loads  int
}

func main() {
	ctx := context.Background()

	var cfg simConfig
	var policyName string
	var timeout time.Duration
	flag.StringVar(&policyName, "policy", "clock", "replacement policy (fifo|clock|random|aging|all)")
	flag.IntVar(&cfg.maxResident, "max-resident", numPages/4, "maximum resident pages")
	flag.StringVar(&cfg.backend, "backend", "slab", "mapping backend (slab|mmap)")
	flag.Int64Var(&cfg.seed, "seed", 1, "workload random seed")
	flag.DurationVar(&cfg.interval, "tick", defaultTickInterval, "policy timer interval (0 disarms)")
	flag.BoolVar(&cfg.trace, "trace", false, "enable trace logging")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.Parse()

	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	names := []string{policyName}
	if policyName == "all" {
		names = policy.Names()
	}

	var out logio.Logger
	out.SetOutput(os.Stdout)

	var group errgroup.Group
	results := make([]simResult, len(names))
	for i, name := range names {
		i, name := i, name
		group.Go(func() error {
			res, err := simulate(ctx, name, cfg)
			results[i] = res
			return err
		})
	}
	if err := group.Wait(); err != nil {
		out.Errorf("%+v", err)
		os.Exit(out.ExitCode())
	}

	for _, res := range results {
		out.Printf("", "%-8v faults %5v loads %5v", res.name, res.faults, res.loads)
	}
	os.Exit(out.ExitCode())
}

// simulate runs the standard teaching workload against one VM and
// reports its fault and load counts.
func simulate(ctx context.Context, name string, cfg simConfig) (simResult, error) {
	opts := []VMOption{
		WithPolicy(name),
		WithMaxResident(cfg.maxResident),
		WithBackend(cfg.backend),
		WithTickInterval(cfg.interval),
	}
	if cfg.trace {
		opts = append(opts, WithLogf(log.Printf))
	}

	vm, err := New(opts...)
	if err != nil {
		return simResult{}, fmt.Errorf("%v: %w", name, err)
	}
	defer vm.Close()
	vm.withLogPrefix(name + ": ")

	if err := vm.Run(ctx, workload(cfg.seed)); err != nil {
		return simResult{}, fmt.Errorf("%v: %w", name, err)
	}
	if cfg.trace {
		vm.logf("%v", dumpString(vm))
	}
	return simResult{name, vm.NumFaults(), vm.NumLoads()}, nil
}

// workload returns the standard teaching workload: a sequential write
// pass tagging every page, a mixed random pass, then a verification
// pass proving that no byte was lost across evictions.
func workload(seed int64) func(ctx context.Context, vm *VM) error {
	return func(ctx context.Context, vm *VM) error {
		rng := rand.New(rand.NewSource(seed))

		for page := 0; page < numPages; page++ {
			vm.Stor(vm.PageAddr(page), byte(page))
		}

		for i := 0; i < 8*numPages; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			page := rng.Intn(numPages)
			// offset 0 holds the page tag; leave it alone
			addr := vm.PageAddr(page) + 1 + uintptr(rng.Intn(pageSize-1))
			if rng.Intn(2) == 0 {
				vm.Load(addr)
			} else {
				vm.Stor(addr, byte(i))
			}
		}

		for page := 0; page < numPages; page++ {
			if got := vm.Load(vm.PageAddr(page)); got != byte(page) {
				return fmt.Errorf("page %v corrupted: got %#x want %#x", page, got, byte(page))
			}
		}
		return nil
	}
}
