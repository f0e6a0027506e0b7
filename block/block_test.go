package block

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vurec/flags"
	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/vu"
)

func newUnit(t *testing.T) *vu.Unit {
	arena, err := memory.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = arena.Shutdown() })

	u := vu.NewUnit(arena, 1, &vu.VifRegs{})
	u.Reset()
	return u
}

func newRecompiler(t *testing.T, u *vu.Unit, opts Options) *Recompiler {
	opts.Engine = flags.Engine{Mode: flags.MODE_FULL, Clamp: fpu.CLAMP_NORMAL}
	opts.CodeSize = 1 << 16

	r, err := New(u, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = r.Shutdown() })
	return r
}

func word(t *testing.T, op vu.Opcode, operands ...vu.Operand) vu.Word {
	t.Helper()
	w, err := vu.Encode(op, 0, 0, operands)
	if err != nil {
		t.Fatalf("%v: %v", op, err)
	}
	return w
}

func pair(upper, lower vu.Word) uint64 {
	return uint64(upper)<<32 | uint64(lower)
}

type program struct {
	t *testing.T
}

func (p program) nop() vu.Word {
	return word(p.t, vu.OP_NOP)
}

func (p program) end() vu.Word {
	return word(p.t, vu.OP_NOP) | vu.BIT_E
}

func (p program) idle() vu.Word {
	return word(p.t, vu.OP_MOVE, vu.Operand{}, vu.Operand{})
}

func (p program) inc(vi int) vu.Word {
	return word(p.t, vu.OP_IADDIU, vu.Operand{Reg: vi}, vu.Operand{Reg: vi}, vu.Operand{Imm: 1})
}

func TestLoop(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t)
	p := program{t}
	u.WriteMicro(0, []uint64{
		pair(p.nop(), p.inc(1)),
		pair(p.nop(), word(t, vu.OP_IBNE, vu.Operand{Reg: 1}, vu.Operand{Reg: 2}, vu.Operand{Imm: -2})),
		pair(p.nop(), p.inc(3)),
		pair(p.end(), p.idle()),
		pair(p.nop(), p.idle()),
	})
	u.SetVI(2, 3)

	r := newRecompiler(t, u, Options{})
	assert.NoError(r.Execute())
	assert.False(r.Running())

	assert.Equal(uint16(3), u.VI(1))
	assert.Equal(uint16(3), u.VI(3))
	assert.Equal(uint32(40), u.TPC())

	cache := r.Cache()
	assert.Equal(2, cache.Len())
	assert.Equal(Counters{Compiles: 2, Hits: 2}, cache.Counters())

	blk := cache.Lookup(0)
	if assert.NotNil(blk) {
		assert.Equal(3, blk.Pairs)
		assert.Equal(3, blk.Runs)
		assert.NotZero(blk.Size)
	}
	blk = cache.Lookup(24)
	if assert.NotNil(blk) {
		assert.Equal(2, blk.Pairs)
		assert.Equal(1, blk.Runs)
	}

	stats := cache.Stats()
	assert.Equal(2, stats.NRows())
	assert.Equal(STATE_COMPILED, cache.State(0))
	assert.Equal(STATE_NOT_COMPILED, cache.State(8))
}

func TestInvalidate(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t)
	p := program{t}
	u.WriteMicro(0, []uint64{
		pair(p.nop(), p.inc(1)),
		pair(p.end(), p.inc(1)),
		pair(p.nop(), p.idle()),
	})

	r := newRecompiler(t, u, Options{})
	assert.NoError(r.Execute())
	assert.Equal(uint16(2), u.VI(1))

	// Outside the block.
	r.Clear(24, 8)
	r.Clear(0x3ff0, 0x10)
	assert.Equal(STATE_COMPILED, r.Cache().State(0))

	// Replace the second increment.
	u.WriteMicro(8, []uint64{pair(p.end(), word(t, vu.OP_IADDIU, vu.Operand{Reg: 1}, vu.Operand{Reg: 1}, vu.Operand{Imm: 0x10}))})
	r.Clear(8, 8)
	assert.Equal(STATE_INVALIDATED, r.Cache().State(0))
	assert.Nil(r.Cache().Lookup(0))
	assert.Equal(1, r.Cache().Counters().Invalidations)

	u.SetTPC(0)
	assert.NoError(r.Execute())
	assert.Equal(uint16(0x13), u.VI(1))
	assert.Equal(STATE_COMPILED, r.Cache().State(0))

	// Stores into micro memory through the arena invalidate too.
	r.store(uint32(u.Layout.Micro+16), 4)
	assert.Equal(STATE_INVALIDATED, r.Cache().State(0))
	r.store(uint32(u.Layout.Data), memory.QWORD)
	assert.Equal(2, r.Cache().Counters().Invalidations)

	assert.NoError(r.Reset())
	assert.Zero(r.Cache().Len())
}

func TestStoreBelowMicro(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t)
	p := program{t}
	u.WriteMicro(0, []uint64{
		pair(p.end(), p.inc(1)),
		pair(p.nop(), p.idle()),
	})
	u.WriteMicro(0x3ff0, []uint64{
		pair(p.end(), p.inc(2)),
		pair(p.nop(), p.idle()),
	})

	r := newRecompiler(t, u, Options{})
	assert.NoError(r.Execute())
	u.SetTPC(0x3ff0)
	assert.NoError(r.Execute())
	assert.Equal(STATE_COMPILED, r.Cache().State(0))
	assert.Equal(STATE_COMPILED, r.Cache().State(0x3ff0))

	micro := uint32(u.Layout.Micro)

	// Ends right where micro memory starts.
	r.store(micro-16, 16)
	assert.Zero(r.Cache().Counters().Invalidations)

	// Only the first 8 bytes land in micro memory.
	r.store(micro-8, 16)
	assert.Equal(STATE_INVALIDATED, r.Cache().State(0))
	assert.Equal(STATE_COMPILED, r.Cache().State(0x3ff0))
	assert.Equal(1, r.Cache().Counters().Invalidations)
}

func TestOverlaps(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		start uint32
		pairs int
		addr  uint32
		size  uint32
		want  bool
	}{
		{0x100, 4, 0x100, 1, true},
		{0x100, 4, 0x11f, 1, true},
		{0x100, 4, 0x120, 8, false},
		{0x100, 4, 0x0f8, 8, false},
		{0x100, 4, 0x0f8, 9, true},
		{0x100, 4, 0x000, 0x1000, true},
		{0x100, 4, 0x100, 0, false},
		{0x3ff0, 4, 0x0008, 4, true},
		{0x3ff0, 4, 0x0010, 4, false},
		{0x0008, 2, 0x3ff8, 0x14, true},
	}

	for _, entry := range table {
		blk := &Block{Start: entry.start, Pairs: entry.pairs}
		assert.Equal(entry.want, blk.Overlaps(entry.addr, entry.size, memory.VU1_MEM_SIZE),
			"0x%04x+%d 0x%04x+0x%x", entry.start, entry.pairs, entry.addr, entry.size)
	}
}

func TestCycleBudget(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t)
	p := program{t}
	u.WriteMicro(0, []uint64{
		pair(p.nop(), word(t, vu.OP_B, vu.Operand{Imm: -1})),
		pair(p.nop(), p.inc(1)),
	})

	r := newRecompiler(t, u, Options{CycleBudget: 10})
	assert.NoError(r.Execute())
	assert.True(r.Running())
	assert.Equal(uint16(5), u.VI(1))
	assert.Equal(uint32(0), u.TPC())

	assert.NoError(r.Execute())
	assert.Equal(uint16(10), u.VI(1))
}

func TestEndInDelaySlot(t *testing.T) {
	table := []struct {
		name   string
		budget uint64
	}{
		{"unbounded", 0},
		{"budget spent before the destination", 2},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			u := newUnit(t)
			p := program{t}
			u.WriteMicro(0, []uint64{
				pair(p.nop(), word(t, vu.OP_B, vu.Operand{Imm: 2})),
				pair(p.end(), p.idle()),
				pair(p.nop(), p.inc(5)),
				pair(p.nop(), p.inc(1)),
				pair(p.nop(), p.inc(2)),
				pair(p.end(), p.idle()),
				pair(p.nop(), p.idle()),
			})

			r := newRecompiler(t, u, Options{CycleBudget: entry.budget})
			assert.NoError(r.Execute())
			if entry.budget != 0 {
				assert.True(r.Running())
				assert.True(u.EndPending)
				assert.Equal(uint32(24), u.TPC())
				assert.NoError(r.Execute())
			}

			assert.False(r.Running())
			assert.False(u.EndPending)
			assert.Equal(uint16(1), u.VI(1))
			assert.Equal(uint16(0), u.VI(2))
			assert.Equal(uint16(0), u.VI(5))
			assert.Equal(uint32(32), u.TPC())

			assert.Equal(1, r.Cache().Len())
			assert.Equal(1, r.tails.Len())

			// The destination still compiles as a normal block when
			// reached without a pending end.
			u.SetTPC(24)
			assert.NoError(r.Execute())
			assert.Equal(uint16(2), u.VI(1))
			assert.Equal(uint16(1), u.VI(2))
			assert.Equal(uint32(56), u.TPC())
		})
	}
}

func TestMaxBlockPairs(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t)
	p := program{t}
	u.WriteMicro(0, []uint64{
		pair(p.nop(), p.inc(1)),
		pair(p.nop(), p.inc(1)),
		pair(p.nop(), p.inc(1)),
		pair(p.nop(), p.inc(1)),
		pair(p.end(), p.idle()),
		pair(p.nop(), p.idle()),
	})

	r := newRecompiler(t, u, Options{MaxBlockPairs: 2})
	assert.NoError(r.Execute())
	assert.Equal(uint16(4), u.VI(1))
	assert.Equal(3, r.Cache().Len())
	for _, pc := range []uint32{0, 16, 32} {
		assert.Equal(STATE_COMPILED, r.Cache().State(pc), "0x%04x", pc)
	}
}

func TestListing(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t)
	p := program{t}
	u.WriteMicro(0, []uint64{
		pair(p.end(), p.inc(1)),
		pair(p.nop(), p.idle()),
	})

	r := newRecompiler(t, u, Options{})
	_, err := r.Listing(0)
	assert.ErrorIs(err, ErrNoBlock)

	assert.NoError(r.Execute())
	text, err := r.Listing(0)
	assert.NoError(err)
	assert.True(strings.HasSuffix(strings.TrimSpace(text), "ret"), text)
	assert.Contains(text, "call rax")
}

func TestBadPair(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t)
	p := program{t}
	u.WriteMicro(0, []uint64{
		pair(p.nop(), p.inc(1)),
		pair(p.nop(), vu.Word(0x80000036)),
	})

	r := newRecompiler(t, u, Options{})
	err := r.Execute()
	assert.ErrorIs(err, vu.ErrOpcodeDecode)

	var blockErr *ErrBlock
	if assert.ErrorAs(err, &blockErr) {
		assert.Equal(uint32(8), blockErr.PC)
		assert.Equal(1, blockErr.Unit)
	}
	assert.Equal(STATE_NOT_COMPILED, r.Cache().State(0))
	assert.Equal(uint16(0), u.VI(1))
}

func TestShutdown(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t)
	r, err := New(u, Options{Caps: host.BASELINE})
	assert.NoError(err)

	assert.NoError(r.Shutdown())
	assert.NoError(r.Shutdown())
	assert.ErrorIs(r.Execute(), ErrShutdown)
	assert.ErrorIs(r.Reset(), ErrShutdown)
}
