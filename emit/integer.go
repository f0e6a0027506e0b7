package emit

import (
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/vu"
)

// integerOp builds IADD, ISUB, IAND and IOR. Results keep only their low
// halfword when written back.
func integerOp(op host.Alu) Emitter {
	return func(ctx *Context, w vu.Word) {
		if w.Id() == 0 {
			return
		}

		t := ctx.sext16(w.Is())
		if w.It() == 0 {
			ctx.B.AluRI(op, t, 0)
		} else {
			ctx.B.AluRR(op, t, ctx.readVI(w.It()))
		}
		ctx.B.MovRR(ctx.writeVI(w.Id()), t)
	}
}

// integerImm builds IADDI, IADDIU and ISUBIU.
func integerImm(op host.Alu, imm func(w vu.Word) uint32) Emitter {
	return func(ctx *Context, w vu.Word) {
		if w.It() == 0 {
			return
		}

		t := ctx.sext16(w.Is())
		ctx.B.AluRI(op, t, imm(w))
		ctx.B.MovRR(ctx.writeVI(w.It()), t)
	}
}

func imm5(w vu.Word) uint32 {
	return uint32(w.Imm5())
}

func imm15(w vu.Word) uint32 {
	return w.Imm15()
}
