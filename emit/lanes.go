package emit

import (
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

// LaneMode is the write strategy picked by a destination mask.
type LaneMode int

const (
	LANE_NONE    = LaneMode(0) // none
	LANE_SCALAR  = LaneMode(1) // scalar
	LANE_PARTIAL = LaneMode(2) // partial
	LANE_FULL    = LaneMode(3) // full
)

var laneModeName = map[LaneMode]string{
	LANE_NONE:    "none",
	LANE_SCALAR:  "scalar",
	LANE_PARTIAL: "partial",
	LANE_FULL:    "full",
}

func (mode LaneMode) String() string {
	return laneModeName[mode]
}

// LaneModeOf classifies a destination mask.
func LaneModeOf(mask vu.Mask) LaneMode {
	switch mask.Count() {
	case 0:
		return LANE_NONE
	case 1:
		return LANE_SCALAR
	case 4:
		return LANE_FULL
	}
	return LANE_PARTIAL
}

type laneWriter func(ctx *Context, ref regalloc.Ref, res host.XMM, mask vu.Mask)

var laneWriters = [...]laneWriter{
	LANE_NONE: func(*Context, regalloc.Ref, host.XMM, vu.Mask) {},
	LANE_SCALAR: func(ctx *Context, ref regalloc.Ref, res host.XMM, mask vu.Mask) {
		dst := ctx.Alloc.Bind(ref, regalloc.MODE_RW).XMM()
		if mask == vu.MASK_X {
			ctx.B.MovSS(dst, res)
			return
		}
		ctx.merge(dst, res, mask)
	},
	LANE_PARTIAL: func(ctx *Context, ref regalloc.Ref, res host.XMM, mask vu.Mask) {
		dst := ctx.Alloc.Bind(ref, regalloc.MODE_RW).XMM()
		ctx.merge(dst, res, mask)
	},
	LANE_FULL: func(ctx *Context, ref regalloc.Ref, res host.XMM, mask vu.Mask) {
		dst := ctx.Alloc.Bind(ref, regalloc.MODE_WRITE).XMM()
		ctx.B.MovAPS(dst, res)
	},
}

// merge blends the masked lanes of res into dst. res may be clobbered.
func (ctx *Context) merge(dst, res host.XMM, mask vu.Mask) {
	tmp := ctx.Alloc.Temp(regalloc.KIND_XMM)
	ctx.B.Blend(dst, res, tmp.XMM(), mask.Blend())
	ctx.Alloc.Release(tmp)
}

// write stores the masked lanes of a scratch result into a register.
// Writes to VF0 are dropped.
func (ctx *Context) write(ref regalloc.Ref, res host.XMM, mask vu.Mask) {
	if ref.Class == regalloc.CLASS_VF && ref.Index == 0 {
		return
	}
	laneWriters[LaneModeOf(mask)](ctx, ref, res, mask)
}

// writeVF stores the masked lanes of a scratch result into a vector
// register.
func (ctx *Context) writeVF(vf vu.VF, res host.XMM, mask vu.Mask) {
	ctx.write(regalloc.VF(vf), res, mask)
}

// skipVF returns true when a vector write would be a no-op.
func skipVF(vf vu.VF, mask vu.Mask) bool {
	return vf == 0 || mask == 0
}
