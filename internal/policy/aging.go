package policy

import "gopaged/internal/pagetable"

// Aging approximates LRU from the periodic timer: each tick stamps the
// pages whose accessed bit is set and clears the bit; the victim is the
// resident page with the oldest stamp.
type Aging struct {
	table    *pagetable.Table
	resident []int
	stamp    map[int]uint64
	now      uint64
}

func NewAging(table *pagetable.Table) *Aging { return &Aging{table: table} }

func (p *Aging) Init() error {
	p.resident = p.resident[:0]
	p.stamp = make(map[int]uint64)
	p.now = 0
	return nil
}

func (p *Aging) ChooseVictim() int {
	victim := p.resident[0]
	oldest := p.stamp[victim]
	for _, page := range p.resident[1:] {
		if s := p.stamp[page]; s < oldest {
			victim, oldest = page, s
		}
	}
	return victim
}

func (p *Aging) PageMapped(page int) {
	p.resident = append(p.resident, page)
	p.stamp[page] = p.now
}

func (p *Aging) PageUnmapped(page int) {
	p.resident = remove(p.resident, page)
	delete(p.stamp, page)
}

func (p *Aging) TimerTick() {
	p.now++
	for _, page := range p.resident {
		if p.table.Accessed(page) {
			p.table.ClearAccessed(page)
			p.stamp[page] = p.now
		}
	}
}
