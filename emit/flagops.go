package emit

import (
	"github.com/ezrec/vurec/flags"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/vu"
)

// Masks of the committed flag registers as the flag instructions see them.
const (
	STATUS_BITS = flags.STATUS_MASK
	MAC_BITS    = uint32(0xffff)
	CLIP_BITS   = flags.CLIP_MASK
	FCGET_BITS  = uint32(0xfff)
)

// Flag is the operation of a flag test instruction.
type Flag int

const (
	FLAG_AND = Flag(0) // and
	FLAG_EQ  = Flag(1) // eq
	FLAG_OR  = Flag(2) // or
)

// setBool writes 1 to dst when the last comparison holds, else 0.
func (ctx *Context) setBool(dst host.GPR, cc host.Cond) {
	ctx.B.If(cc, func(b *host.Builder) {
		b.MovRI(dst, 1)
	}, func(b *host.Builder) {
		b.MovRI(dst, 0)
	})
}

// statusOp builds FSAND, FSEQ and FSOR against the committed status.
func statusOp(op Flag) Emitter {
	return func(ctx *Context, w vu.Word) {
		if w.It() == 0 {
			return
		}
		b := ctx.B

		imm := w.Imm12()
		t := ctx.tempGPR()
		b.Load32(t, ctx.ctrl(vu.STATUS))
		b.AluRI(host.ALU_AND, t, STATUS_BITS)
		it := ctx.writeVI(w.It())
		switch op {
		case FLAG_AND:
			b.AluRI(host.ALU_AND, t, imm)
			b.MovRR(it, t)
		case FLAG_OR:
			b.AluRI(host.ALU_OR, t, imm)
			b.MovRR(it, t)
		case FLAG_EQ:
			b.AluRI(host.ALU_CMP, t, imm)
			ctx.setBool(it, host.COND_E)
		}
	}
}

// emitFSSET replaces the sticky status bits, keeping the current ones.
func emitFSSET(ctx *Context, w vu.Word) {
	if ctx.Hacks.Applies(ctx, HACK_FSSET_AFTER_CLIP) {
		return
	}

	u := ctx.Unit
	imm := w.Imm12() & 0xfc0
	ctx.B.Call("fsset", func(*host.Machine) {
		u.StatusLive = imm | (u.Ctrl(vu.STATUS) & 0x3f)
	})
}

// macOp builds FMAND, FMEQ and FMOR against the committed MAC flags.
func macOp(op Flag) Emitter {
	return func(ctx *Context, w vu.Word) {
		if w.It() == 0 {
			return
		}
		b := ctx.B

		t := ctx.tempGPR()
		b.Load32(t, ctx.ctrl(vu.MAC))
		b.AluRI(host.ALU_AND, t, MAC_BITS)
		s := ctx.tempGPR()
		if w.Is() == 0 {
			b.MovRI(s, 0)
		} else {
			b.MovZX16(s, ctx.readVI(w.Is()))
		}

		switch op {
		case FLAG_AND:
			b.AluRR(host.ALU_AND, t, s)
			if ctx.Hacks.Applies(ctx, HACK_MAC_PRESERVE_LOW) {
				ctx.preserveLow(w.It(), t)
			}
			b.MovRR(ctx.writeVI(w.It()), t)
		case FLAG_OR:
			b.AluRR(host.ALU_OR, t, s)
			b.MovRR(ctx.writeVI(w.It()), t)
		case FLAG_EQ:
			it := ctx.writeVI(w.It())
			b.AluRR(host.ALU_CMP, t, s)
			ctx.setBool(it, host.COND_E)
		}
	}
}

// clipOp builds FCAND, FCEQ and FCOR, which set VI1 from the committed
// clip flags.
func clipOp(op Flag) Emitter {
	return func(ctx *Context, w vu.Word) {
		b := ctx.B

		imm := w.Imm24()
		t := ctx.tempGPR()
		b.Load32(t, ctx.ctrl(vu.CLIP))
		vi1 := ctx.writeVI(1)
		switch op {
		case FLAG_AND:
			b.AluRI(host.ALU_AND, t, imm)
			b.AluRI(host.ALU_CMP, t, 0)
			ctx.setBool(vi1, host.COND_NE)
		case FLAG_EQ:
			b.AluRI(host.ALU_AND, t, CLIP_BITS)
			b.AluRI(host.ALU_CMP, t, imm)
			ctx.setBool(vi1, host.COND_E)
		case FLAG_OR:
			b.AluRI(host.ALU_OR, t, imm)
			b.AluRI(host.ALU_AND, t, CLIP_BITS)
			b.AluRI(host.ALU_CMP, t, CLIP_BITS)
			ctx.setBool(vi1, host.COND_E)
		}
	}
}

// emitFCSET sets both the issue-side and the committed clip flags.
func emitFCSET(ctx *Context, w vu.Word) {
	u := ctx.Unit
	imm := w.Imm24()
	ctx.B.Call("fcset", func(*host.Machine) {
		u.ClipLive = imm
		u.SetCtrl(vu.CLIP, imm)
	})
}

func emitFCGET(ctx *Context, w vu.Word) {
	if w.It() == 0 {
		return
	}
	t := ctx.tempGPR()
	ctx.B.Load32(t, ctx.ctrl(vu.CLIP))
	ctx.B.AluRI(host.ALU_AND, t, FCGET_BITS)
	ctx.B.MovRR(ctx.writeVI(w.It()), t)
}
