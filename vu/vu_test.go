package vu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vurec/memory"
)

func newUnit(t *testing.T, index int) (u *Unit) {
	arena, err := memory.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = arena.Shutdown() })

	u = NewUnit(arena, index, &VifRegs{Top: 0x100, ITop: 0x20})
	u.Reset()
	return
}

func TestMask(t *testing.T) {
	assert := assert.New(t)

	m, ok := ParseMask("xzw")
	assert.True(ok)
	assert.Equal(Mask(0xb), m)
	assert.Equal(3, m.Count())
	assert.Equal("xzw", m.String())
	assert.Equal(uint8(0xd), m.Blend())

	_, ok = ParseMask("xx")
	assert.False(ok)
	_, ok = ParseMask("q")
	assert.False(ok)
}

func TestWordFields(t *testing.T) {
	assert := assert.New(t)

	w := Word(0x01c42ffe)
	assert.Equal(VF(4), w.Ft())
	assert.Equal(VI(5), w.Is())
	assert.Equal(MASK_XYZ, w.Dest())
	assert.Equal(int32(-2), w.Imm11())

	assert.Equal(int32(-1), Word(0x1f<<6).Imm5())
	assert.Equal(int32(15), Word(0x0f<<6).Imm5())
	assert.Equal(uint32(0x1234), Word(0x10411234).Imm15())
	assert.Equal(uint32(0x800), Word(1<<21).Imm12())
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		op       Opcode
		dest     Mask
		bc       int
		operands []Operand
		word     Word
		text     string
	}{
		{OP_ADD, MASK_XYZW, 0, []Operand{{Reg: 1}, {Reg: 2}, {Reg: 3}}, 0x01e31068, "add.xyzw vf1, vf2, vf3"},
		{OP_ADDBC, MASK_X, 1, []Operand{{Reg: 1}, {Reg: 2}, {Reg: 3}}, 0x01031041, "addy.x vf1, vf2, vf3y"},
		{OP_NOP, 0, 0, []Operand{}, 0x000002ff, "nop"},
		{OP_MOVE, 0, 0, []Operand{{Reg: 0}, {Reg: 0}}, 0x8000033c, "move vf0, vf0"},
		{OP_IADDIU, 0, 0, []Operand{{Reg: 1}, {Reg: 2}, {Imm: 0x1234}}, 0x10411234, "iaddiu vi1, vi2, 4660"},
		{OP_LQ, MASK_XYZ, 0, []Operand{{Reg: 4}, {Reg: 5, Imm: -2}}, 0x01c42ffe, "lq.xyz vf4, -2(vi5)"},
		{OP_DIV, 0, 0, []Operand{{}, {Reg: 1, Lane: 0}, {Reg: 2, Lane: 3}}, 0x81820bbc, "div q, vf1x, vf2w"},
		{OP_XGKICK, 0, 0, []Operand{{Reg: 3}}, 0x80001efc, "xgkick vi3"},
	}

	for _, entry := range table {
		w, err := Encode(entry.op, entry.dest, entry.bc, entry.operands)
		if !assert.NoError(err, entry.text) {
			continue
		}
		assert.Equal(entry.word, w, entry.text)

		var op Opcode
		if entry.op.Info().Upper {
			op, err = DecodeUpper(w)
		} else {
			op, err = DecodeLower(w)
		}
		assert.NoError(err)
		assert.Equal(entry.op, op, entry.text)
		assert.Equal(entry.text, Disassemble(op, w))
	}

	_, err := Encode(OP_ADD, MASK_XYZW, 0, []Operand{{Reg: 1}})
	assert.ErrorIs(err, ErrOperandCount)
	_, err = Encode(OP_IADDI, 0, 0, []Operand{{Reg: 1}, {Reg: 2}, {Imm: 16}})
	assert.ErrorIs(err, ErrOperandRange)
	_, err = Encode(OP_IADD, 0, 0, []Operand{{Reg: 17}, {Reg: 2}, {Reg: 3}})
	assert.ErrorIs(err, ErrOperandRange)

	_, err = DecodeUpper(0x30)
	assert.ErrorIs(err, ErrOpcodeDecode)
	_, err = DecodeLower(0x80000036)
	assert.ErrorIs(err, ErrOpcodeDecode)
}

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	m, ok := Lookup("maddz")
	assert.True(ok)
	assert.Equal(Mnemonic{Op: OP_MADDBC, Bc: 2}, m)

	m, ok = Lookup("maxi")
	assert.True(ok)
	assert.Equal(OP_MAXI, m.Op)

	m, ok = Lookup("mula")
	assert.True(ok)
	assert.Equal(OP_MULA, m.Op)

	_, ok = Lookup("addbc")
	assert.False(ok)
}

func TestPairOrder(t *testing.T) {
	assert := assert.New(t)

	add, _ := Encode(OP_ADD, MASK_XYZW, 0, []Operand{{Reg: 1}, {Reg: 2}, {Reg: 3}})
	move1, _ := Encode(OP_MOVE, MASK_XYZW, 0, []Operand{{Reg: 4}, {Reg: 1}})
	move2, _ := Encode(OP_MOVE, MASK_XYZW, 0, []Operand{{Reg: 2}, {Reg: 1}})
	move3, _ := Encode(OP_MOVE, MASK_XYZW, 0, []Operand{{Reg: 4}, {Reg: 5}})

	p, err := DecodePair(0, add, move1)
	assert.NoError(err)
	assert.True(p.LowerFirst())
	assert.False(p.Conflict())

	p, _ = DecodePair(0, add, move2)
	assert.True(p.LowerFirst())
	assert.True(p.Conflict())

	p, _ = DecodePair(0, add, move3)
	assert.False(p.LowerFirst())

	p, _ = DecodePair(0, add|BIT_I, 0x3f800000)
	assert.True(p.Immediate())
	assert.Equal(OP_UNKNOWN, p.LowerOp)
	assert.False(p.LowerFirst())
}

func TestUnitRegisters(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t, 1)

	assert.Equal(VF0, u.VF(0))
	u.SetVF(0, [4]uint32{1, 2, 3, 4}, MASK_XYZW)
	assert.Equal(VF0, u.VF(0))

	u.SetVF(3, [4]uint32{1, 2, 3, 4}, MASK_XYZW)
	u.SetVF(3, [4]uint32{9, 9, 9, 9}, MASK_Y|MASK_W)
	assert.Equal([4]uint32{1, 9, 3, 9}, u.VF(3))

	u.SetVI(0, 5)
	assert.Equal(uint16(0), u.VI(0))
	u.SetVI(7, 0xfffe)
	assert.Equal(uint16(0xfffe), u.VI(7))

	u.SetTPC(0x4008)
	assert.Equal(uint32(0x0008), u.TPC())

	u.WriteMicro(0x10, []uint64{0x000002ff_8000033c})
	upper, lower := u.Fetch(0x10)
	assert.Equal(Word(0x000002ff), upper)
	assert.Equal(Word(0x8000033c), lower)
}

func TestPipelines(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t, 0)

	u.AddFDIV(0x40000000, 0x20, 7)
	assert.Equal(uint32(0x820), u.StatusLive)

	u.Cycle = 6
	u.TestPipes()
	assert.Equal(uint32(0), u.Ctrl(Q))
	u.Cycle = 7
	u.TestPipes()
	assert.Equal(uint32(0x40000000), u.Ctrl(Q))
	assert.Equal(uint32(0x820), u.Ctrl(STATUS))

	u.AddEFU(0x3f800000, 29)
	u.FlushEFU()
	assert.Equal(uint64(7+29), u.Cycle)
	assert.Equal(uint32(0x3f800000), u.Ctrl(P))

	u.MacLive = 0x0008
	u.AddFMAC(VFRef{Reg: 2, Mask: MASK_X}, false)
	u.Cycle++
	u.TestPipes()
	assert.Equal(uint32(0), u.Ctrl(MAC))

	// A read of the pending register stalls until the result lands.
	u.StallFMAC(VFRef{Reg: 2, Mask: MASK_XYZW})
	assert.Equal(uint32(0x0008), u.Ctrl(MAC))
	assert.Equal(uint64(7+29+FMAC_LATENCY), u.Cycle)
	assert.False(u.Pending())

	u.AddFMAC(VFRef{Reg: 1, Mask: MASK_W}, false)
	u.AddFDIV(0, 0, 13)
	u.FlushAll()
	assert.False(u.Pending())
}

func TestClipLatch(t *testing.T) {
	assert := assert.New(t)

	u := newUnit(t, 1)

	// Every committed clip judgement moves the old flags to CLIP_P, even
	// when the flags are unchanged.
	u.ClipLive = 0x03
	u.AddFMAC(VFRef{}, true)
	u.FlushAll()
	assert.Equal(uint32(0x03), u.Ctrl(CLIP))
	assert.Equal(uint32(0x00), u.Ctrl(CLIP_P))

	u.AddFMAC(VFRef{}, true)
	u.FlushAll()
	assert.Equal(uint32(0x03), u.Ctrl(CLIP))
	assert.Equal(uint32(0x03), u.Ctrl(CLIP_P))

	u.ClipLive = 0xc3
	u.AddFMAC(VFRef{}, true)
	u.FlushAll()
	assert.Equal(uint32(0xc3), u.Ctrl(CLIP))
	assert.Equal(uint32(0x03), u.Ctrl(CLIP_P))

	// Other FMAC results leave the latch alone.
	u.AddFMAC(VFRef{Reg: 1, Mask: MASK_X}, false)
	u.FlushAll()
	assert.Equal(uint32(0xc3), u.Ctrl(CLIP))
	assert.Equal(uint32(0x03), u.Ctrl(CLIP_P))
}
