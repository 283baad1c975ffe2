package mapping

// slabBase mirrors the fixed range start the simulation advertises; the
// slab enforces no real protection, so any address constant serves.
const slabBase = 0x20000000

// Slab is the portable Region: one anonymous byte slab with protection
// bookkeeping. Permission enforcement happens in the access shim; the
// slab asserts mapping discipline so that misuse surfaces as errors
// rather than silent corruption.
type Slab struct {
	pageSize int
	data     []byte
	prots    []Prot
	mapped   []bool
}

func NewSlab(numPages, pageSize int) *Slab {
	return &Slab{
		pageSize: pageSize,
		data:     make([]byte, numPages*pageSize),
		prots:    make([]Prot, numPages),
		mapped:   make([]bool, numPages),
	}
}

func (sl *Slab) Base() uintptr { return slabBase }
func (sl *Slab) Size() int     { return len(sl.data) }

func (sl *Slab) Map(page int) error {
	sl.check(page)
	if sl.mapped[page] {
		return mapError{"map", page, errMapped}
	}
	b := sl.slice(page)
	for i := range b {
		b[i] = 0
	}
	sl.mapped[page] = true
	sl.prots[page] = ProtReadWrite
	return nil
}

func (sl *Slab) Unmap(page int) error {
	sl.check(page)
	if !sl.mapped[page] {
		return mapError{"unmap", page, errNotMapped}
	}
	sl.mapped[page] = false
	sl.prots[page] = ProtNone
	return nil
}

func (sl *Slab) Protect(page int, prot Prot) error {
	sl.check(page)
	if !sl.mapped[page] {
		return mapError{"protect", page, errNotMapped}
	}
	sl.prots[page] = prot
	return nil
}

// Prot returns the bookkept protection; tests use it to check agreement
// with the page table.
func (sl *Slab) Prot(page int) Prot {
	sl.check(page)
	return sl.prots[page]
}

func (sl *Slab) Slice(page int) []byte {
	sl.check(page)
	if !sl.mapped[page] {
		panic(mapError{"slice", page, errNotMapped})
	}
	return sl.slice(page)
}

func (sl *Slab) Close() error { return nil }

func (sl *Slab) check(page int) {
	if page < 0 || page >= len(sl.mapped) {
		panic(mapError{"check", page, errRange})
	}
}

func (sl *Slab) slice(page int) []byte {
	off := page * sl.pageSize
	return sl.data[off : off+sl.pageSize]
}
