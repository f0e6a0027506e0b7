package emit

import (
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

// Step is the address register update of a load or store.
type Step int

const (
	STEP_NONE = Step(0) // imm(vi)
	STEP_INC  = Step(1) // (vi++)
	STEP_DEC  = Step(2) // (--vi)
)

// translate turns the quadword index in t into an arena offset, in place.
func (ctx *Context) translate(t host.GPR) {
	b := ctx.B
	if ctx.Unit.Index == 1 {
		b.AluRI(host.ALU_AND, t, memory.VU1_WRAP_MASK)
	} else {
		b.AluRI(host.ALU_CMP, t, memory.VU0_ALIAS_THRESHOLD)
		b.If(host.COND_GE, func(b *host.Builder) {
			b.AluRI(host.ALU_AND, t, memory.VU0_ALIAS_MASK)
		}, func(b *host.Builder) {
			b.AluRI(host.ALU_AND, t, memory.VU0_WRAP_MASK)
		})
	}
	b.ShiftRI(host.SHIFT_SHL, t, 4)
	if data := ctx.Unit.Layout.Data; data != 0 {
		b.AluRI(host.ALU_ADD, t, uint32(data))
	}
}

// address computes the arena offset of a load or store into a scratch
// register, updating the address register for the stepping forms. VI0 is
// never updated.
func (ctx *Context) address(vi vu.VI, imm int32, step Step) host.GPR {
	b := ctx.B

	if vi != 0 && step == STEP_DEC {
		r := ctx.Alloc.Bind(regalloc.VI(vi), regalloc.MODE_RW).GPR()
		b.AluRI(host.ALU_SUB, r, 1)
	}

	t := ctx.sext16(vi)
	if imm != 0 {
		b.AluRI(host.ALU_ADD, t, uint32(imm))
	}
	ctx.translate(t)

	if vi != 0 && step == STEP_INC {
		r := ctx.Alloc.Bind(regalloc.VI(vi), regalloc.MODE_RW).GPR()
		b.AluRI(host.ALU_ADD, r, 1)
	}
	return t
}

// watch reports a store to the block cache.
func (ctx *Context) watch(t host.GPR, size uint32) {
	store := ctx.Store
	if store == nil {
		return
	}
	ctx.B.Call("watch", func(m *host.Machine) {
		store(m.GPR[t], size)
	})
}

func load(step Step) Emitter {
	return func(ctx *Context, w vu.Word) {
		var imm int32
		if step == STEP_NONE {
			imm = w.Imm11()
		}
		t := ctx.address(w.Is(), imm, step)
		if skipVF(w.Ft(), w.Dest()) {
			return
		}

		res := ctx.tempXMM()
		ctx.B.LoadPS(res, host.AtIndex(t))
		ctx.writeVF(w.Ft(), res, w.Dest())
	}
}

func store(step Step) Emitter {
	return func(ctx *Context, w vu.Word) {
		var imm int32
		if step == STEP_NONE {
			imm = w.Imm11()
		}
		b := ctx.B
		dest := w.Dest()

		fs := ctx.readVF(w.Fs())
		t := ctx.address(w.It(), imm, step)
		if dest == 0 {
			return
		}

		mem := host.AtIndex(t)
		if dest == vu.MASK_XYZW {
			b.StorePS(mem, fs)
		} else {
			old := ctx.tempXMM()
			b.LoadPS(old, mem)
			res := ctx.tempXMM()
			b.MovAPS(res, fs)
			ctx.merge(old, res, dest)
			b.StorePS(mem, old)
		}
		ctx.watch(t, memory.QWORD)
	}
}

// firstLane returns the lowest lane of a mask, x being lane 0.
func firstLane(mask vu.Mask) (lane int, ok bool) {
	for lane = range mask.Lanes() {
		return lane, true
	}
	return
}

// integerLoad builds ILW and ILWR, reading the low halfword of the first
// selected lane.
func integerLoad(indexed bool) Emitter {
	return func(ctx *Context, w vu.Word) {
		var imm int32
		if !indexed {
			imm = w.Imm11()
		}
		lane, ok := firstLane(w.Dest())
		if w.It() == 0 || !ok {
			return
		}

		t := ctx.address(w.Is(), imm, STEP_NONE)
		ctx.B.Load16(ctx.writeVI(w.It()), host.AtIndex(t).Plus(lane*4))
	}
}

// integerStore builds ISW and ISWR, writing the zero extended register to
// every selected lane.
func integerStore(indexed bool) Emitter {
	return func(ctx *Context, w vu.Word) {
		var imm int32
		if !indexed {
			imm = w.Imm11()
		}
		dest := w.Dest()
		if dest == 0 {
			return
		}

		b := ctx.B
		value := ctx.tempGPR()
		if w.It() == 0 {
			b.MovRI(value, 0)
		} else {
			b.MovZX16(value, ctx.readVI(w.It()))
		}
		t := ctx.address(w.Is(), imm, STEP_NONE)
		for lane := range dest.Lanes() {
			b.Store32(host.AtIndex(t).Plus(lane*4), value)
		}
		ctx.watch(t, memory.QWORD)
	}
}

func emitMOVE(ctx *Context, w vu.Word) {
	if skipVF(w.Ft(), w.Dest()) {
		return
	}
	ctx.writeVF(w.Ft(), ctx.copyVF(w.Fs()), w.Dest())
}

func emitMR32(ctx *Context, w vu.Word) {
	if skipVF(w.Ft(), w.Dest()) {
		return
	}
	res := ctx.tempXMM()
	ctx.B.PShufD(res, ctx.readVF(w.Fs()), 0x39) // y z w x
	ctx.writeVF(w.Ft(), res, w.Dest())
}

func emitMFIR(ctx *Context, w vu.Word) {
	if skipVF(w.Ft(), w.Dest()) {
		return
	}
	res := ctx.tempXMM()
	ctx.B.MovD(res, ctx.sext16(w.Is()))
	ctx.B.Splat(res, res, 0)
	ctx.writeVF(w.Ft(), res, w.Dest())
}

func emitMTIR(ctx *Context, w vu.Word) {
	if w.It() == 0 {
		return
	}
	res := ctx.tempXMM()
	ctx.B.Splat(res, ctx.readVF(w.Fs()), w.Fsf())
	ctx.B.MovDR(ctx.writeVI(w.It()), res)
}
