package flags

import (
	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

// Emit finishes an FMAC result held in res. With flags enabled a helper
// updates the lanes and the unit's issue-side MAC and status; otherwise
// the result is clamped inline.
func (e Engine) Emit(b *host.Builder, alloc regalloc.Allocator, u *vu.Unit, res host.XMM, dest vu.Mask) {
	if e.Mode != MODE_NONE {
		b.Call("flags", func(m *host.Machine) {
			out, mac := e.Update(m.XMM[res], dest)
			m.XMM[res] = out
			u.MacLive = mac
			u.StatusLive = StatusFromMAC(u.StatusLive, mac)
		})
		return
	}

	e.EmitClamp(b, alloc, res)
}

// EmitClamp saturates res inline.
func (e Engine) EmitClamp(b *host.Builder, alloc regalloc.Allocator, res host.XMM) {
	if e.Clamp == fpu.CLAMP_NONE {
		return
	}

	tmp := alloc.Temp(regalloc.KIND_XMM)
	tmp2 := alloc.Temp(regalloc.KIND_XMM)
	b.Clamp(e.Clamp, res, tmp.XMM(), tmp2.XMM())
	alloc.Release(tmp2)
	alloc.Release(tmp)
}

// EmitClip records the clip judgement of fs against the w lane of ft.
func EmitClip(b *host.Builder, u *vu.Unit, fs, ft host.XMM) {
	b.Call("clip", func(m *host.Machine) {
		u.ClipLive = PackClip(u.ClipLive, m.XMM[fs], m.XMM[ft][3])
	})
}
