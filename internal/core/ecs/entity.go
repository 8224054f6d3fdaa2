package ecs

import "fmt"

// EntityID packs a 32-bit slot index (low bits) with a 32-bit generation (high
// bits). Destroying an entity bumps its slot generation, so stale ids held by
// timers or triggers fail Alive checks instead of addressing a reused slot.
type EntityID uint64

// NoEntity is never handed out by a Pool.
const NoEntity EntityID = 0

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == NoEntity }

func (id EntityID) String() string {
	return fmt.Sprintf("%d:%d", id.Index(), id.Generation())
}

// Pool allocates generational ids with slot reuse.
type Pool struct {
	generations []uint32
	free        []uint32
}

func NewPool() *Pool {
	return &Pool{
		// Slot 0 is reserved so the zero EntityID never names a live entity.
		generations: make([]uint32, 1, 256),
		free:        make([]uint32, 0, 64),
	}
}

func (p *Pool) Create() EntityID {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	return NewEntityID(idx, 0)
}

func (p *Pool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Destroy invalidates id. Stale or unknown ids are ignored.
func (p *Pool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return
	}
	idx := id.Index()
	p.generations[idx]++
	p.free = append(p.free, idx)
}

// Count returns the number of live entities.
func (p *Pool) Count() int {
	return len(p.generations) - 1 - len(p.free)
}
