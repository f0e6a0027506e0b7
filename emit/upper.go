package emit

import (
	"github.com/ezrec/vurec/flags"
	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

// Arith is the operation of an FMAC instruction.
type Arith int

const (
	ARITH_ADD  = Arith(0) // add
	ARITH_SUB  = Arith(1) // sub
	ARITH_MUL  = Arith(2) // mul
	ARITH_MADD = Arith(3) // madd
	ARITH_MSUB = Arith(4) // msub
	ARITH_MAX  = Arith(5) // max
	ARITH_MIN  = Arith(6) // mini
)

// Source is where the second FMAC operand comes from.
type Source int

const (
	SOURCE_FT = Source(0) // vft
	SOURCE_BC = Source(1) // one lane of vft
	SOURCE_Q  = Source(2) // q
	SOURCE_I  = Source(3) // i
)

// operand returns a scratch register with the second operand.
func (ctx *Context) operand(src Source, w vu.Word) host.XMM {
	switch src {
	case SOURCE_BC:
		res := ctx.tempXMM()
		ctx.B.Splat(res, ctx.readVF(w.Ft()), w.Bc())
		return res
	case SOURCE_Q:
		return ctx.scalar(vu.Q)
	case SOURCE_I:
		return ctx.scalar(vu.I)
	}
	return ctx.copyVF(w.Ft())
}

// finish runs the flag engine over an arithmetic result, then writes it.
func (ctx *Context) finish(ref regalloc.Ref, res host.XMM, dest vu.Mask, setFlags bool) {
	if setFlags {
		ctx.Flags.Emit(ctx.B, ctx.Alloc, ctx.Unit, res, dest)
	}
	ctx.write(ref, res, dest)
}

// arith builds the emitter of an FMAC arithmetic instruction.
func arith(op Arith, src Source, toACC bool) Emitter {
	return func(ctx *Context, w vu.Word) {
		b := ctx.B
		dest := w.Dest()

		ref := regalloc.VF(w.Fd())
		if toACC {
			ref = regalloc.ACC
		}

		setFlags := op != ARITH_MAX && op != ARITH_MIN
		if !setFlags && (ref.Index == 0 || dest == 0) {
			return
		}

		res := ctx.copyVF(w.Fs())
		t := ctx.operand(src, w)
		switch op {
		case ARITH_ADD:
			b.AddPS(res, t)
		case ARITH_SUB:
			b.SubPS(res, t)
		case ARITH_MUL:
			b.MulPS(res, t)
		case ARITH_MADD:
			b.MulPS(res, t)
			b.AddPS(res, ctx.Alloc.Bind(regalloc.ACC, regalloc.MODE_READ).XMM())
		case ARITH_MSUB:
			b.MulPS(res, t)
			b.MovAPS(t, ctx.Alloc.Bind(regalloc.ACC, regalloc.MODE_READ).XMM())
			b.SubPS(t, res)
			res = t
		case ARITH_MAX, ARITH_MIN:
			tmp := ctx.tempXMM()
			b.MaxMin(op == ARITH_MAX, res, t, tmp)
		}

		ctx.finish(ref, res, dest, setFlags)
	}
}

// outer builds OPMULA and OPMSUB: the cross product terms of fs and ft,
// into ACC or subtracted from ACC.
func outer(toACC bool) Emitter {
	return func(ctx *Context, w vu.Word) {
		b := ctx.B

		res := ctx.tempXMM()
		b.PShufD(res, ctx.readVF(w.Fs()), 0xc9) // y z x w
		t := ctx.tempXMM()
		b.PShufD(t, ctx.readVF(w.Ft()), 0xd2) // z x y w
		b.MulPS(res, t)

		if toACC {
			ctx.finish(regalloc.ACC, res, w.Dest(), true)
			return
		}

		b.MovAPS(t, ctx.Alloc.Bind(regalloc.ACC, regalloc.MODE_READ).XMM())
		b.SubPS(t, res)
		ctx.finish(regalloc.VF(w.Fd()), t, w.Dest(), true)
	}
}

var fixedScales = map[int]struct{ up, down uint32 }{
	4:  {0x41800000, 0x3d800000},
	12: {0x45800000, 0x39800000},
	15: {0x47000000, 0x38000000},
}

// itof builds ITOF0/4/12/15.
func itof(fraction int) Emitter {
	return func(ctx *Context, w vu.Word) {
		if skipVF(w.Ft(), w.Dest()) {
			return
		}

		res := ctx.tempXMM()
		ctx.B.CvtDQ2PS(res, ctx.readVF(w.Fs()))
		if scale, ok := fixedScales[fraction]; ok {
			t := ctx.tempXMM()
			ctx.B.Const(t, scale.down)
			ctx.B.MulPS(res, t)
		}
		ctx.writeVF(w.Ft(), res, w.Dest())
	}
}

// ftoi builds FTOI0/4/12/15. Conversions out of range saturate toward
// the sign of the source.
func ftoi(fraction int) Emitter {
	return func(ctx *Context, w vu.Word) {
		if skipVF(w.Ft(), w.Dest()) {
			return
		}
		b := ctx.B

		src := ctx.copyVF(w.Fs())
		if scale, ok := fixedScales[fraction]; ok {
			t := ctx.tempXMM()
			b.Const(t, scale.up)
			b.MulPS(src, t)
		}

		res := ctx.tempXMM()
		b.CvtTPS2DQ(res, src)

		// Positive lanes that came back indefinite become the int maximum.
		positive := ctx.tempXMM()
		b.MovAPS(positive, src)
		b.PSraD(positive, 31)
		indefinite := ctx.tempXMM()
		b.Const(indefinite, host.CVT_INDEFINITE)
		b.PCmpEqD(indefinite, res)
		b.PAndN(positive, indefinite)
		b.PXor(res, positive)

		ctx.writeVF(w.Ft(), res, w.Dest())
	}
}

func emitABS(ctx *Context, w vu.Word) {
	if skipVF(w.Ft(), w.Dest()) {
		return
	}

	res := ctx.copyVF(w.Fs())
	t := ctx.tempXMM()
	ctx.B.Const(t, ^fpu.SIGN)
	ctx.B.AndPS(res, t)
	ctx.writeVF(w.Ft(), res, w.Dest())
}

func emitCLIP(ctx *Context, w vu.Word) {
	flags.EmitClip(ctx.B, ctx.Unit, ctx.readVF(w.Fs()), ctx.readVF(w.Ft()))
}

func emitNOP(*Context, vu.Word) {}
