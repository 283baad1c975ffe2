/* Package main: a user-space demand paging simulator.

gopaged simulates operating-system demand paging entirely in user space,
for teaching page-replacement algorithms without kernel privileges. A
process reserves a synthetic virtual memory range of fixed geometry;
touching a page that is not resident raises a protection trap that the
simulator resolves exactly as a kernel page-fault handler would, loading
and evicting pages against a disk-backed swap store that holds one slot
per page.

The moving parts, leaf first:

The swap store (internal/swapfile) is a plain file of fixed slots,
created, sized by a sentinel write at its final offset, and immediately
unlinked so it vanishes with the process.

The page table (internal/pagetable) packs per-page resident, accessed,
and dirty bits next to the live permission. Storing a permission applies
the protection to the live mapping first; the two can never disagree.

The live mapping (internal/mapping) is the "physical memory": a
contiguous range of pages that can be mapped, re-protected, and
unmapped one page at a time. The portable slab backend bookkeeps
protections; on linux the mmap backend makes them real mprotect
transitions, so the kernel's view of a page tracks the page table.

The replacement policy (internal/policy) is injected behind a five-hook
contract: init, choose a victim, observe map/unmap, observe timer
ticks. FIFO, clock, random, and an aging LRU approximation ship in the
registry; the core only ever assumes a returned victim is resident.

The VM here in the root package ties it together. All simulated
accesses go through the access shim (Load, Stor), which consults the
page table and raises a trap whenever the access is not admitted; after
the dispatcher resolves the trap the shim retries, standing in for the
hardware re-executing the faulting instruction. An unmapped-address
trap evicts (flushing a dirty victim) and loads with no permission; a
permission trap widens NONE to READ to READ-WRITE, reconstructing
read-versus-write intent from the fault sequence alone, so a write to a
fresh page deliberately pays two traps. A periodic timer forwards ticks
to the policy, and tick delivery is suspended while a fault is being
resolved.

Every failure below the simulation (mapping, protection, slot I/O) and
every broken accounting invariant models an unsurvivable kernel bug:
the VM halts, and Run reports the halt as an error.
*/
package main
