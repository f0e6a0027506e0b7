package block

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vurec/vu"
)

func must(op vu.Opcode, dest vu.Mask, operands ...vu.Operand) uint32 {
	w, err := vu.Encode(op, dest, 0, operands)
	if err != nil {
		panic(err)
	}
	return uint32(w)
}

func FuzzRecompile(f *testing.F) {
	nop := must(vu.OP_NOP, 0)
	idle := must(vu.OP_MOVE, 0, vu.Operand{}, vu.Operand{})
	add := must(vu.OP_ADD, vu.MASK_XYZW, vu.Operand{Reg: 1}, vu.Operand{Reg: 2}, vu.Operand{Reg: 3})
	lq := must(vu.OP_LQ, vu.MASK_XYZW, vu.Operand{Reg: 4}, vu.Operand{Reg: 1, Imm: 2})
	sq := must(vu.OP_SQ, vu.MASK_X|vu.MASK_Z, vu.Operand{Reg: 1}, vu.Operand{Reg: 3, Imm: 1})
	inc := must(vu.OP_IADDIU, 0, vu.Operand{Reg: 1}, vu.Operand{Reg: 1}, vu.Operand{Imm: 1})
	div := must(vu.OP_DIV, 0, vu.Operand{}, vu.Operand{Reg: 1, Lane: 0}, vu.Operand{Reg: 2, Lane: 1})
	kick := must(vu.OP_XGKICK, 0, vu.Operand{Reg: 3})

	f.Add(nop, idle)
	f.Add(add, inc)
	f.Add(add, lq)
	f.Add(nop, sq)
	f.Add(add, div)
	f.Add(nop, kick)
	f.Add(nop|uint32(vu.BIT_I), uint32(0x3fc00000))

	f.Fuzz(func(t *testing.T, upper uint32, lower uint32) {
		assert := assert.New(t)

		u := newUnit(t)
		p := program{t}
		u.WriteMicro(0, []uint64{
			pair(vu.Word(upper), vu.Word(lower)),
			pair(p.end(), p.idle()),
			pair(p.nop(), p.idle()),
		})

		r := newRecompiler(t, u, Options{CycleBudget: 256})
		err := r.Execute()
		if err != nil {
			var blockErr *ErrBlock
			assert.ErrorAs(err, &blockErr)
		}
		assert.Equal(vu.VF0, u.VF(0))
	})
}
