// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package block

import (
	"errors"
	"log"

	"github.com/ezrec/vurec/emit"
	"github.com/ezrec/vurec/flags"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/vu"
)

// Options tune a recompiler. They are fixed for its lifetime.
type Options struct {
	Caps          host.Capabilities
	Engine        flags.Engine
	Hacks         emit.Hacks
	MaxBlockPairs int         // Pairs per block without a branch, 0 for the default.
	CycleBudget   uint64      // Cycles per Execute, 0 to run until the program ends.
	CodeSize      int         // Code buffer bytes, 0 for the default.
	Kicker        emit.Kicker // XGKICK consumer, may be nil.
	Verbose       bool
}

// Recompiler is the dispatch record of a unit that runs compiled blocks.
type Recompiler struct {
	Options

	unit    *vu.Unit
	cache   *Cache
	tails   *Cache // Single pair blocks that end the program.
	code    *host.CodeBuffer
	running bool
}

var _ vu.Executor = (*Recompiler)(nil)

// New creates a recompiler for a unit.
func New(u *vu.Unit, opts Options) (r *Recompiler, err error) {
	size := opts.CodeSize
	if size <= 0 {
		size = host.CODE_BUFFER_SIZE
	}

	code, err := host.NewCodeBuffer(size)
	if err != nil {
		return
	}

	r = &Recompiler{
		Options: opts,
		unit:    u,
		cache:   NewCache(uint32(u.Layout.MicroSize)),
		tails:   NewCache(uint32(u.Layout.MicroSize)),
		code:    code,
	}
	return
}

// Unit returns the unit being run.
func (r *Recompiler) Unit() *vu.Unit {
	return r.unit
}

// Cache returns the block cache.
func (r *Recompiler) Cache() *Cache {
	return r.cache
}

// Running returns true if the last Execute stopped on the cycle budget
// rather than at the end of the program.
func (r *Recompiler) Running() bool {
	return r.running
}

// Reset discards every compiled block.
func (r *Recompiler) Reset() (err error) {
	if r.code == nil {
		return ErrShutdown
	}
	r.flush()
	r.running = false
	return
}

func (r *Recompiler) flush() {
	r.cache.Reset()
	r.tails.Reset()
	r.code.Reset()
}

// Clear invalidates the blocks compiled from a micro memory byte range.
func (r *Recompiler) Clear(addr uint32, size uint32) {
	count := r.cache.Clear(addr, size)
	r.tails.Clear(addr, size)
	if r.Verbose && count > 0 {
		log.Printf("vu%d: clear 0x%04x+0x%x: %d blocks", r.unit.Index, addr, size, count)
	}
}

// store is the store watch of compiled code, in arena offsets.
func (r *Recompiler) store(offset uint32, size uint32) {
	layout := r.unit.Layout
	micro := uint32(layout.Micro)
	if offset+size <= micro || offset >= micro+uint32(layout.MicroSize) {
		return
	}
	if offset < micro {
		size -= micro - offset
		offset = micro
	}
	r.Clear(offset-micro, size)
}

// block returns the compiled block at pc, compiling it if needed.
func (r *Recompiler) block(pc uint32, tail bool) (blk *Block, err error) {
	cache := r.cache
	if tail {
		cache = r.tails
	}

	blk = cache.Lookup(pc)
	if blk != nil {
		return
	}

	blk, err = r.compile(pc, tail)
	if errors.Is(err, host.ErrCodeBufferFull) {
		if r.Verbose {
			log.Printf("vu%d: code buffer full, flushing cache", r.unit.Index)
		}
		r.flush()
		blk, err = r.compile(pc, tail)
	}
	if err != nil {
		return
	}

	cache.Insert(blk)
	return
}

// Execute runs blocks from the unit's program counter until the program
// ends or the cycle budget is spent.
func (r *Recompiler) Execute() (err error) {
	if r.code == nil {
		return ErrShutdown
	}

	u := r.unit
	m := &host.Machine{Mem: u.Arena().Bytes()}
	start := u.Cycle

	r.running = true
	for r.running {
		var blk *Block
		blk, err = r.block(u.TPC(), u.EndPending)
		if err != nil {
			r.running = false
			return
		}

		blk.Runs++
		m.Run(blk.Ops)

		switch m.GPR[host.RAX] {
		case emit.EXIT_END:
			u.EndPending = false
			r.running = false
			continue
		case emit.EXIT_END_PENDING:
			u.EndPending = true
		}
		if r.CycleBudget != 0 && u.Cycle-start >= r.CycleBudget {
			return
		}
	}

	return
}

// Listing returns the native disassembly of the block at pc.
func (r *Recompiler) Listing(pc uint32) (text string, err error) {
	blk := r.cache.find(pc)
	if blk == nil {
		err = ErrNoBlock
		return
	}

	text = host.Disassemble(r.code.Code(blk.Native, blk.Size))
	return
}

// Shutdown releases the code buffer.
func (r *Recompiler) Shutdown() (err error) {
	if r.code == nil {
		return
	}
	r.cache.Reset()
	r.tails.Reset()
	err = r.code.Release()
	r.code = nil
	return
}
