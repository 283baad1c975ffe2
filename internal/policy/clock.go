package policy

import "gopaged/internal/pagetable"

// Clock runs the second-chance algorithm: a hand sweeps the resident
// ring, clearing and skipping pages whose accessed bit is set, and picks
// the first page found untouched since its last chance.
type Clock struct {
	table *pagetable.Table
	ring  []int
	hand  int
}

func NewClock(table *pagetable.Table) *Clock { return &Clock{table: table} }

func (p *Clock) Init() error {
	p.ring = p.ring[:0]
	p.hand = 0
	return nil
}

func (p *Clock) ChooseVictim() int {
	// terminates: each pass over the ring clears accessed bits
	for {
		if p.hand >= len(p.ring) {
			p.hand = 0
		}
		page := p.ring[p.hand]
		if !p.table.Accessed(page) {
			return page
		}
		p.table.ClearAccessed(page)
		p.hand++
	}
}

func (p *Clock) PageMapped(page int) { p.ring = append(p.ring, page) }

func (p *Clock) PageUnmapped(page int) {
	for i, q := range p.ring {
		if q == page {
			p.ring = append(p.ring[:i], p.ring[i+1:]...)
			if i < p.hand {
				p.hand--
			}
			return
		}
	}
}

func (p *Clock) TimerTick() {}
