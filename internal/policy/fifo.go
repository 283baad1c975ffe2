package policy

// FIFO evicts pages in the order they were mapped.
type FIFO struct {
	queue []int
}

func NewFIFO() *FIFO { return new(FIFO) }

func (p *FIFO) Init() error {
	p.queue = p.queue[:0]
	return nil
}

func (p *FIFO) ChooseVictim() int { return p.queue[0] }

func (p *FIFO) PageMapped(page int) { p.queue = append(p.queue, page) }

func (p *FIFO) PageUnmapped(page int) { p.queue = remove(p.queue, page) }

func (p *FIFO) TimerTick() {}
