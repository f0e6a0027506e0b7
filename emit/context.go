// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emit

import (
	"log"

	"github.com/ezrec/vurec/flags"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

// Block exit codes, returned in RAX.
const (
	EXIT_CONTINUE    = uint32(0) // TPC holds the next pair to run
	EXIT_END         = uint32(1) // the program has ended
	EXIT_END_PENDING = uint32(2) // the program ends after the pair at TPC
)

// Kicker receives XGKICK packets.
type Kicker interface {
	// Kick copies the packet starting at a quadword of unit 1 data memory.
	Kick(data []byte, qword uint32)
}

// Emitter generates the host ops of one instruction word.
type Emitter func(ctx *Context, w vu.Word)

type branch struct {
	target  uint32        // Static target.
	dynamic bool          // Target is held in reg.
	reg     regalloc.Host // Dynamic target.
	cond    bool          // Conditional on taken.
	taken   regalloc.Host // Non-zero when the branch is taken.
}

// Context is the compilation state of one block.
type Context struct {
	Unit    *vu.Unit
	B       *host.Builder
	Alloc   regalloc.Allocator
	Flags   flags.Engine
	Hacks   Hacks
	Kicker  Kicker                  // XGKICK consumer, may be nil.
	Store   func(offset, size uint32) // Store watch, may be nil.
	Verbose bool

	pool   *regalloc.Pool
	pair   *vu.Pair
	prev   *vu.Pair
	shadow map[vu.VF]regalloc.Host
	branch *branch
	pairs  int
}

// NewContext starts a block for a unit.
func NewContext(u *vu.Unit, caps host.Capabilities, engine flags.Engine) (ctx *Context) {
	b := host.NewBuilder(caps)
	pool := regalloc.NewPool(b, u.Layout)
	ctx = &Context{
		Unit:   u,
		B:      b,
		Alloc:  pool,
		Flags:  engine,
		pool:   pool,
		shadow: map[vu.VF]regalloc.Host{},
	}
	return
}

// Stats returns the allocator traffic of the block so far.
func (ctx *Context) Stats() regalloc.Stats {
	return ctx.pool.Stats()
}

// Pairs returns the number of pairs emitted.
func (ctx *Context) Pairs() int {
	return ctx.pairs
}

// Pending returns true if a branch waits for its delay slot.
func (ctx *Context) Pending() bool {
	return ctx.branch != nil
}

func (ctx *Context) instruction(op vu.Opcode, w vu.Word) {
	emitter := emitters[op]
	if emitter == nil {
		panic(&ErrNoEmitter{Op: op})
	}
	emitter(ctx, w)
	ctx.Alloc.EndInstruction()
}

// EmitPair emits one instruction pair, bracketed by the pipeline checks.
func (ctx *Context) EmitPair(p vu.Pair) {
	if ctx.Verbose {
		log.Printf("vu%d: 0x%04x: %v", ctx.Unit.Index, p.PC, p)
	}

	ctx.prev, ctx.pair = ctx.pair, &p
	ctx.pairs++
	u := ctx.Unit

	ctx.B.Call("begin", func(*host.Machine) {
		u.SetCode(uint32(p.Upper))
		u.BeginPair(&p)
	})

	switch {
	case p.Immediate():
		ctx.B.MovRI(host.RAX, uint32(p.Lower))
		ctx.B.Store32(ctx.ctrl(vu.I), host.RAX)
		ctx.instruction(p.UpperOp, p.Upper)
	case p.Conflict():
		// The lower op overwrites a register the upper op still reads.
		vf := p.LowerRW.Write.Reg
		backup := ctx.Alloc.Temp(regalloc.KIND_XMM)
		ctx.B.MovAPS(backup.XMM(), ctx.readVF(vf))
		ctx.Alloc.Retain(backup)
		ctx.shadow[vf] = backup
		ctx.instruction(p.LowerOp, p.Lower)
		ctx.instruction(p.UpperOp, p.Upper)
		delete(ctx.shadow, vf)
		ctx.Alloc.Release(backup)
	case p.LowerFirst():
		ctx.instruction(p.LowerOp, p.Lower)
		ctx.instruction(p.UpperOp, p.Upper)
	default:
		ctx.instruction(p.UpperOp, p.Upper)
		ctx.instruction(p.LowerOp, p.Lower)
	}

	ctx.B.Call("end", func(*host.Machine) {
		u.EndPair(&p)
	})
}

// EmitExit ends the block: bindings are written back, TPC is set to the
// pending branch's destination or to next, and the exit code is returned.
// EXIT_END also lands every pipeline result.
func (ctx *Context) EmitExit(next uint32, code uint32) {
	b := ctx.B
	ctx.Alloc.FlushAll()

	next &= ctx.Unit.PCMask()
	switch br := ctx.branch; {
	case br == nil:
		b.MovRI(host.RAX, next)
	case br.dynamic:
		b.MovRR(host.RAX, br.reg.GPR())
		ctx.Alloc.Release(br.reg)
	case br.cond:
		b.Test(br.taken.GPR(), br.taken.GPR())
		b.If(host.COND_NE, func(b *host.Builder) {
			b.MovRI(host.RAX, br.target)
		}, func(b *host.Builder) {
			b.MovRI(host.RAX, next)
		})
		ctx.Alloc.Release(br.taken)
	default:
		b.MovRI(host.RAX, br.target)
	}
	b.Store32(ctx.ctrl(vu.TPC), host.RAX)
	ctx.branch = nil

	if code == EXIT_END {
		u := ctx.Unit
		b.Call("flush", func(*host.Machine) {
			u.FlushAll()
		})
	}
	b.MovRI(host.RAX, code)
	b.Ret()
}

// ctrl addresses a control register.
func (ctx *Context) ctrl(reg vu.VI) host.Mem {
	return host.At(ctx.Unit.Layout.VI(int(reg)))
}

// readVF binds a vector register for reading, or returns its backup
// while a conflicting pair runs its lower op first.
func (ctx *Context) readVF(vf vu.VF) host.XMM {
	if backup, ok := ctx.shadow[vf]; ok {
		return backup.XMM()
	}
	return ctx.Alloc.Bind(regalloc.VF(vf), regalloc.MODE_READ).XMM()
}

// readVI binds an integer register for reading.
func (ctx *Context) readVI(vi vu.VI) host.GPR {
	return ctx.Alloc.Bind(regalloc.VI(vi), regalloc.MODE_READ).GPR()
}

// writeVI binds an integer register for writing.
func (ctx *Context) writeVI(vi vu.VI) host.GPR {
	return ctx.Alloc.Bind(regalloc.VI(vi), regalloc.MODE_WRITE).GPR()
}

func (ctx *Context) tempXMM() host.XMM {
	return ctx.Alloc.Temp(regalloc.KIND_XMM).XMM()
}

func (ctx *Context) tempGPR() host.GPR {
	return ctx.Alloc.Temp(regalloc.KIND_GPR).GPR()
}

// copyVF returns a scratch copy of a vector register.
func (ctx *Context) copyVF(vf vu.VF) host.XMM {
	res := ctx.tempXMM()
	ctx.B.MovAPS(res, ctx.readVF(vf))
	return res
}

// scalar loads a control register into every lane of a scratch register.
func (ctx *Context) scalar(reg vu.VI) host.XMM {
	res := ctx.tempXMM()
	ctx.B.LoadSS(res, ctx.ctrl(reg))
	ctx.B.Splat(res, res, 0)
	return res
}

// sext16 returns a scratch register holding a sign extended integer
// register. VI0 reads as zero.
func (ctx *Context) sext16(vi vu.VI) host.GPR {
	t := ctx.tempGPR()
	if vi == 0 {
		ctx.B.MovRI(t, 0)
	} else {
		ctx.B.MovSX16(t, ctx.readVI(vi))
	}
	return t
}

// pcMask wraps a program counter.
func (ctx *Context) pcMask(pc uint32) uint32 {
	return pc & ctx.Unit.PCMask()
}
