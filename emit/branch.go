package emit

import (
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

// Compare is the condition of a conditional branch.
type Compare int

const (
	COMPARE_EQ  = Compare(0) // ibeq
	COMPARE_NE  = Compare(1) // ibne
	COMPARE_LTZ = Compare(2) // ibltz
	COMPARE_GTZ = Compare(3) // ibgtz
	COMPARE_LEZ = Compare(4) // iblez
	COMPARE_GEZ = Compare(5) // ibgez
)

var compareCond = [...]host.Cond{
	COMPARE_EQ:  host.COND_E,
	COMPARE_NE:  host.COND_NE,
	COMPARE_LTZ: host.COND_L,
	COMPARE_GTZ: host.COND_G,
	COMPARE_LEZ: host.COND_LE,
	COMPARE_GEZ: host.COND_GE,
}

// target computes a relative branch destination, in bytes.
func (ctx *Context) target(w vu.Word) uint32 {
	pc := ctx.pair.PC + memory.PAIR_SIZE
	return ctx.pcMask(pc + uint32(w.Imm11()*memory.PAIR_SIZE))
}

// link writes the return address of BAL and JALR.
func (ctx *Context) link(vi vu.VI) {
	if vi == 0 {
		return
	}
	ret := (ctx.pair.PC + 2*memory.PAIR_SIZE) / memory.PAIR_SIZE
	ctx.B.MovRI(ctx.writeVI(vi), ret)
}

// branching returns false for a branch in a delay slot, which is ignored.
func (ctx *Context) branching() bool {
	return ctx.branch == nil
}

func emitB(ctx *Context, w vu.Word) {
	if !ctx.branching() {
		return
	}
	ctx.branch = &branch{target: ctx.target(w)}
}

func emitBAL(ctx *Context, w vu.Word) {
	if !ctx.branching() {
		return
	}
	ctx.link(w.It())
	ctx.branch = &branch{target: ctx.target(w)}
}

// jump builds JR and JALR. The target is read before the link is written.
func jump(link bool) Emitter {
	return func(ctx *Context, w vu.Word) {
		if !ctx.branching() {
			return
		}
		b := ctx.B

		reg := ctx.Alloc.Temp(regalloc.KIND_GPR)
		if w.Is() == 0 {
			b.MovRI(reg.GPR(), 0)
		} else {
			b.MovZX16(reg.GPR(), ctx.readVI(w.Is()))
		}
		b.ShiftRI(host.SHIFT_SHL, reg.GPR(), 3)
		b.AluRI(host.ALU_AND, reg.GPR(), ctx.Unit.PCMask())
		ctx.Alloc.Retain(reg)

		if link {
			ctx.link(w.It())
		}
		ctx.branch = &branch{dynamic: true, reg: reg}
	}
}

// conditional builds the IBxx branches. The comparison uses the register
// values from before the delay slot.
func conditional(cmp Compare) Emitter {
	return func(ctx *Context, w vu.Word) {
		if !ctx.branching() {
			return
		}
		b := ctx.B

		s := ctx.sext16(w.Is())
		switch cmp {
		case COMPARE_EQ, COMPARE_NE:
			t := ctx.sext16(w.It())
			b.AluRR(host.ALU_CMP, s, t)
		default:
			b.AluRI(host.ALU_CMP, s, 0)
		}

		taken := ctx.Alloc.Temp(regalloc.KIND_GPR)
		b.MovRI(taken.GPR(), 0)
		b.If(compareCond[cmp], func(b *host.Builder) {
			b.MovRI(taken.GPR(), 1)
		}, nil)
		ctx.Alloc.Retain(taken)

		ctx.branch = &branch{cond: true, target: ctx.target(w), taken: taken}
	}
}
