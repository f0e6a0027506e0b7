package block

import (
	"log"

	"github.com/ezrec/vurec/emit"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/vu"
)

// DEFAULT_MAX_BLOCK_PAIRS bounds the pairs of a block without a branch.
const DEFAULT_MAX_BLOCK_PAIRS = 64

// compile translates the pairs starting at pc into a new block.
//
// The block ends after the delay slot of a branch, after the pair
// following an E bit pair, or at the pair limit. A tail block is the single
// pair that runs after an E bit in a delay slot, and always ends the
// program.
func (r *Recompiler) compile(pc uint32, tail bool) (blk *Block, err error) {
	u := r.unit

	defer func() {
		if rec := recover(); rec != nil {
			cause, ok := rec.(error)
			if !ok {
				panic(rec)
			}
			blk = nil
			err = &ErrBlock{Unit: u.Index, PC: pc, Err: cause}
		}
	}()

	ctx := emit.NewContext(u, r.Caps, r.Engine)
	ctx.Hacks = r.Hacks
	ctx.Kicker = r.Kicker
	ctx.Store = r.store
	ctx.Verbose = r.Verbose

	limit := r.MaxBlockPairs
	if limit <= 0 {
		limit = DEFAULT_MAX_BLOCK_PAIRS
	}

	blk = &Block{Start: pc}
	next := pc
	exit := emit.EXIT_CONTINUE
	last := tail
	if tail {
		exit = emit.EXIT_END
	}
	for {
		upper, lower := u.Fetch(next)
		var p vu.Pair
		p, err = vu.DecodePair(next, upper, lower)
		if err != nil {
			return nil, &ErrBlock{Unit: u.Index, PC: next, Err: err}
		}

		ctx.EmitPair(p)
		next = (next + memory.PAIR_SIZE) & u.PCMask()

		if last {
			if p.End() && exit == emit.EXIT_CONTINUE {
				// E bit in a delay slot.
				exit = emit.EXIT_END_PENDING
			}
			break
		}
		if p.End() {
			exit = emit.EXIT_END
			last = true
		} else if p.Branch() {
			last = true
		} else if ctx.Pairs() >= limit {
			break
		}
	}
	ctx.EmitExit(next, exit)

	blk.Pairs = ctx.Pairs()
	blk.Ops = ctx.B.Ops()

	native := ctx.B.Native()
	blk.Size = len(native)
	blk.Native, err = r.code.Append(native)
	if err != nil {
		return nil, err
	}

	if r.Verbose {
		stats := ctx.Stats()
		log.Printf("vu%d: compile 0x%04x (%d pairs, %d bytes, %d loads, %d stores, %d evictions)",
			u.Index, pc, blk.Pairs, blk.Size, stats.Loads, stats.Stores, stats.Evictions)
	}

	return
}
