package emit

import (
	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

// divide builds DIV, SQRT and RSQRT. The helper reads the operands from
// the arena, so pending writes to them are flushed first.
func divide(op vu.Opcode) Emitter {
	return func(ctx *Context, w vu.Word) {
		ctx.Alloc.FlushIfDirty(regalloc.VF(w.Fs()))
		ctx.Alloc.FlushIfDirty(regalloc.VF(w.Ft()))

		u := ctx.Unit
		fs, ft := w.Fs(), w.Ft()
		fsf, ftf := w.Fsf(), w.Ftf()
		cycles := op.Info().Cycles
		ctx.B.Call(op.String(), func(*host.Machine) {
			s, t := u.VF(fs)[fsf], u.VF(ft)[ftf]
			var q, flags uint32
			switch op {
			case vu.OP_DIV:
				q, flags = fpu.DIV(s, t)
			case vu.OP_SQRT:
				q, flags = fpu.SQRT(t)
			default:
				q, flags = fpu.RSQRT(s, t)
			}
			u.AddFDIV(q, flags, cycles)
		})
	}
}

func emitWAITQ(ctx *Context, w vu.Word) {
	u := ctx.Unit
	ctx.B.Call("waitq", func(*host.Machine) {
		u.FlushFDIV()
	})
}

func emitWAITP(ctx *Context, w vu.Word) {
	u := ctx.Unit
	ctx.B.Call("waitp", func(*host.Machine) {
		u.FlushEFU()
	})
}

// efuFunc computes P from the source register and the selected lane.
type efuFunc func(q [4]uint32, lane int) uint32

var efuFuncs = map[vu.Opcode]efuFunc{
	vu.OP_ESADD:   func(q [4]uint32, _ int) uint32 { return fpu.ESADD(q[0], q[1], q[2]) },
	vu.OP_ERSADD:  func(q [4]uint32, _ int) uint32 { return fpu.ERSADD(q[0], q[1], q[2]) },
	vu.OP_ELENG:   func(q [4]uint32, _ int) uint32 { return fpu.ELENG(q[0], q[1], q[2]) },
	vu.OP_ERLENG:  func(q [4]uint32, _ int) uint32 { return fpu.ERLENG(q[0], q[1], q[2]) },
	vu.OP_EATANXY: func(q [4]uint32, _ int) uint32 { return fpu.EATAN2(q[1], q[0]) },
	vu.OP_EATANXZ: func(q [4]uint32, _ int) uint32 { return fpu.EATAN2(q[2], q[0]) },
	vu.OP_ESUM:    func(q [4]uint32, _ int) uint32 { return fpu.ESUM(q[0], q[1], q[2], q[3]) },
	vu.OP_ERCPR:   func(q [4]uint32, lane int) uint32 { return fpu.ERCPR(q[lane]) },
	vu.OP_ESQRT:   func(q [4]uint32, lane int) uint32 { return fpu.ESQRT(q[lane]) },
	vu.OP_ERSQRT:  func(q [4]uint32, lane int) uint32 { return fpu.ERSQRT(q[lane]) },
	vu.OP_ESIN:    func(q [4]uint32, lane int) uint32 { return fpu.ESIN(q[lane]) },
	vu.OP_EATAN:   func(q [4]uint32, lane int) uint32 { return fpu.EATAN(q[lane]) },
	vu.OP_EEXP:    func(q [4]uint32, lane int) uint32 { return fpu.EEXP(q[lane]) },
}

// efu builds the EFU instructions, which only ever write P.
func efu(op vu.Opcode) Emitter {
	fn := efuFuncs[op]
	return func(ctx *Context, w vu.Word) {
		ctx.Alloc.FlushIfDirty(regalloc.VF(w.Fs()))

		u := ctx.Unit
		fs, fsf := w.Fs(), w.Fsf()
		cycles := op.Info().Cycles
		ctx.B.Call(op.String(), func(*host.Machine) {
			u.AddEFU(fn(u.VF(fs), fsf), cycles)
		})
	}
}

func emitMFP(ctx *Context, w vu.Word) {
	if skipVF(w.Ft(), w.Dest()) {
		return
	}
	ctx.writeVF(w.Ft(), ctx.scalar(vu.P), w.Dest())
}

// Random register constants.
const (
	R_EXPONENT = uint32(0x3f800000)
	R_MANTISSA = uint32(0x007fffff)
)

// seed sets R from one lane of fs, optionally mixed with the old R.
func seed(mix bool) Emitter {
	return func(ctx *Context, w vu.Word) {
		b := ctx.B

		x := ctx.tempXMM()
		b.Splat(x, ctx.readVF(w.Fs()), w.Fsf())
		t := ctx.tempGPR()
		b.MovDR(t, x)
		if mix {
			r := ctx.tempGPR()
			b.Load32(r, ctx.ctrl(vu.R))
			b.AluRR(host.ALU_XOR, t, r)
		}
		b.AluRI(host.ALU_AND, t, R_MANTISSA)
		b.AluRI(host.ALU_OR, t, R_EXPONENT)
		b.Store32(ctx.ctrl(vu.R), t)
	}
}

// emitRNEXT steps R: the XOR of bits 4 and 22 is shifted in at the bottom
// and the result is kept a float in [1, 2).
// emitRNEXT steps R. Nothing happens at all when the destination is VF0.
func emitRNEXT(ctx *Context, w vu.Word) {
	if w.Ft() == 0 {
		return
	}
	b := ctx.B

	r := ctx.tempGPR()
	b.Load32(r, ctx.ctrl(vu.R))
	x := ctx.tempGPR()
	b.MovRR(x, r)
	b.ShiftRI(host.SHIFT_SHR, x, 4)
	y := ctx.tempGPR()
	b.MovRR(y, r)
	b.ShiftRI(host.SHIFT_SHR, y, 22)
	b.AluRR(host.ALU_XOR, x, y)
	b.AluRI(host.ALU_AND, x, 1)
	b.ShiftRI(host.SHIFT_SHL, r, 1)
	b.AluRR(host.ALU_XOR, r, x)
	b.AluRI(host.ALU_AND, r, R_MANTISSA)
	b.AluRI(host.ALU_OR, r, R_EXPONENT)
	b.Store32(ctx.ctrl(vu.R), r)

	emitRGET(ctx, w)
}

func emitRGET(ctx *Context, w vu.Word) {
	if skipVF(w.Ft(), w.Dest()) {
		return
	}
	ctx.writeVF(w.Ft(), ctx.scalar(vu.R), w.Dest())
}
