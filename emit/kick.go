package emit

import (
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

// top builds XTOP and XITOP, which read the DMA interface registers.
func top(item bool) Emitter {
	return func(ctx *Context, w vu.Word) {
		if w.It() == 0 {
			return
		}

		u := ctx.Unit
		mask := uint16(memory.VU1_WRAP_MASK)
		if u.Index == 0 {
			mask = memory.VU0_WRAP_MASK
		}
		it := ctx.writeVI(w.It())
		ctx.B.Call("xtop", func(m *host.Machine) {
			value := u.Vif.Top
			if item {
				value = u.Vif.ITop
			}
			m.GPR[it] = uint32(value & mask)
		})
	}
}

// emitXGKICK hands the packet at VI[is] to the kick consumer. Every
// pending pipeline result lands first.
func emitXGKICK(ctx *Context, w vu.Word) {
	u := ctx.Unit
	kicker := ctx.Kicker
	if u.Index != 1 || kicker == nil {
		return
	}

	is := w.Is()
	ctx.Alloc.FlushIfDirty(regalloc.VI(is))
	ctx.B.Call("xgkick", func(*host.Machine) {
		u.FlushAll()
		kicker.Kick(u.Arena().Data(1), uint32(u.VI(is))&memory.VU1_WRAP_MASK)
	})
}
