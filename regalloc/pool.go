// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package regalloc

import (
	"log"

	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/memory"
)

// Allocatable general purpose registers. RAX is the helper call register
// and R15 holds the arena base.
var GPRS = []host.GPR{
	host.RCX, host.RDX, host.RBX, host.RSI, host.RDI,
	host.R8, host.R9, host.R10, host.R11, host.R12, host.R13, host.R14,
}

type slot struct {
	n        int
	ref      Ref
	bound    bool
	temp     bool
	dirty    bool
	pinned   bool
	retained bool
	lastUse  uint64
}

func (s *slot) free() bool {
	return !s.bound && !s.temp
}

// Stats counts allocator traffic.
type Stats struct {
	Loads     int
	Stores    int
	Evictions int
}

// Pool is the allocator of one block. Loads and stores are emitted into
// the block's builder.
type Pool struct {
	Verbose bool

	b      *host.Builder
	layout memory.Layout
	slots  [2][]*slot
	clock  uint64
	stats  Stats
}

var _ Allocator = (*Pool)(nil)

// NewPool returns an allocator emitting into b for a unit's layout.
func NewPool(b *host.Builder, layout memory.Layout) (pool *Pool) {
	pool = &Pool{b: b, layout: layout}
	for n := range host.XMM_COUNT {
		pool.slots[KIND_XMM] = append(pool.slots[KIND_XMM], &slot{n: n})
	}
	for _, gpr := range GPRS {
		pool.slots[KIND_GPR] = append(pool.slots[KIND_GPR], &slot{n: int(gpr)})
	}
	return
}

// Stats returns the traffic so far.
func (pool *Pool) Stats() Stats {
	return pool.stats
}

// Bound returns the host register of a binding, if any.
func (pool *Pool) Bound(ref Ref) (h Host, ok bool) {
	s := pool.find(ref)
	if s == nil {
		return
	}
	return Host{Kind: ref.Kind(), N: s.n}, true
}

func (pool *Pool) find(ref Ref) *slot {
	for _, s := range pool.slots[ref.Kind()] {
		if s.bound && s.ref == ref {
			return s
		}
	}
	return nil
}

func (pool *Pool) slotOf(h Host) *slot {
	for _, s := range pool.slots[h.Kind] {
		if s.n == h.N {
			return s
		}
	}
	panic(f("regalloc: %v%d is not allocatable", h.Kind, h.N))
}

func (pool *Pool) offset(ref Ref) int {
	switch ref.Class {
	case CLASS_VF:
		return pool.layout.VF(ref.Index)
	case CLASS_ACC:
		return pool.layout.ACC()
	}
	return pool.layout.VI(ref.Index)
}

func (pool *Pool) load(s *slot) {
	pool.stats.Loads++
	mem := host.At(pool.offset(s.ref))
	if s.ref.Kind() == KIND_GPR {
		pool.b.Load16(host.GPR(s.n), mem)
	} else {
		pool.b.LoadPS(host.XMM(s.n), mem)
	}
}

func (pool *Pool) store(s *slot) {
	pool.stats.Stores++
	mem := host.At(pool.offset(s.ref))
	if s.ref.Kind() == KIND_GPR {
		pool.b.Store16(mem, host.GPR(s.n))
	} else {
		pool.b.StorePS(mem, host.XMM(s.n))
	}
	s.dirty = false
}

// take finds a free slot, evicting the least recently used unpinned
// binding when there is none.
func (pool *Pool) take(kind Kind) *slot {
	var victim *slot
	for _, s := range pool.slots[kind] {
		if s.free() {
			return s
		}
		if s.bound && !s.pinned && (victim == nil || s.lastUse < victim.lastUse) {
			victim = s
		}
	}
	if victim == nil {
		panic(&ErrStarved{Kind: kind})
	}

	if pool.Verbose {
		log.Printf("regalloc: evict %v from %v%d", victim.ref, kind, victim.n)
	}
	pool.stats.Evictions++
	if victim.dirty {
		pool.store(victim)
	}
	*victim = slot{n: victim.n}
	return victim
}

func (pool *Pool) touch(s *slot) {
	pool.clock++
	s.lastUse = pool.clock
	s.pinned = true
}

// Bind implements Allocator.
func (pool *Pool) Bind(ref Ref, mode Mode) Host {
	s := pool.find(ref)
	if s == nil {
		s = pool.take(ref.Kind())
		s.ref = ref
		s.bound = true
		if mode&MODE_READ != 0 {
			pool.load(s)
		}
	}
	pool.touch(s)
	if mode&MODE_WRITE != 0 {
		s.dirty = true
	}
	return Host{Kind: ref.Kind(), N: s.n}
}

// Temp implements Allocator.
func (pool *Pool) Temp(kind Kind) Host {
	s := pool.take(kind)
	s.temp = true
	pool.touch(s)
	return Host{Kind: kind, N: s.n}
}

// Retain implements Allocator.
func (pool *Pool) Retain(h Host) {
	pool.slotOf(h).retained = true
}

// Release implements Allocator.
func (pool *Pool) Release(h Host) {
	s := pool.slotOf(h)
	if s.temp {
		*s = slot{n: s.n}
		return
	}
	s.pinned = false
	s.retained = false
}

// FlushIfDirty implements Allocator.
func (pool *Pool) FlushIfDirty(ref Ref) {
	if s := pool.find(ref); s != nil && s.dirty {
		pool.store(s)
	}
}

// FlushAll implements Allocator.
func (pool *Pool) FlushAll() {
	for _, kind := range []Kind{KIND_XMM, KIND_GPR} {
		for _, s := range pool.slots[kind] {
			if s.bound {
				if s.dirty {
					pool.store(s)
				}
				*s = slot{n: s.n}
			}
		}
	}
}

// EndInstruction implements Allocator.
func (pool *Pool) EndInstruction() {
	for _, kind := range []Kind{KIND_XMM, KIND_GPR} {
		for _, s := range pool.slots[kind] {
			switch {
			case s.retained:
			case s.temp:
				*s = slot{n: s.n}
			default:
				s.pinned = false
			}
		}
	}
}
