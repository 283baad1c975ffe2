package policy

import (
	"math/rand"
	"time"
)

// Random picks victims uniformly from the resident set. It is the
// baseline the smarter policies are measured against.
type Random struct {
	rng      *rand.Rand
	resident []int
}

// NewRandom seeds the policy's own generator; seed 0 draws from the
// clock so repeated runs differ.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (p *Random) Init() error {
	p.resident = p.resident[:0]
	return nil
}

func (p *Random) ChooseVictim() int {
	return p.resident[p.rng.Intn(len(p.resident))]
}

func (p *Random) PageMapped(page int) { p.resident = append(p.resident, page) }

func (p *Random) PageUnmapped(page int) { p.resident = remove(p.resident, page) }

func (p *Random) TimerTick() {}
