package host

import (
	"github.com/ezrec/vurec/fpu"
)

// Const broadcasts a 32-bit pattern to every lane of dst, through RAX.
func (b *Builder) Const(dst XMM, v uint32) {
	b.MovRI(RAX, v)
	b.MovD(dst, RAX)
	b.PShufD(dst, dst, 0x00)
}

// Splat broadcasts lane n of src to every lane of dst.
func (b *Builder) Splat(dst, src XMM, n int) {
	b.PShufD(dst, src, uint8(n*0x55))
}

// LaneMask builds all ones in the lanes set in blend (bit n is lane n) and
// zero elsewhere.
func (b *Builder) LaneMask(dst XMM, blend uint8) {
	b.MovRI(RAX, 0xffffffff)
	b.MovD(dst, RAX)
	// Lane 0 is all ones, lane 1 is zero.
	var imm uint8
	for n := range 4 {
		if blend&(1<<n) == 0 {
			imm |= 1 << (2 * n)
		}
	}
	b.PShufD(dst, dst, imm)
}

// Blend moves the lanes set in blend from src into dst. Without SSE4.1 a
// partial blend clobbers src and tmp.
func (b *Builder) Blend(dst, src, tmp XMM, blend uint8) {
	blend &= 0xf
	switch {
	case blend == 0:
	case blend == 0xf:
		if dst != src {
			b.MovAPS(dst, src)
		}
	case blend == 0x1:
		b.MovSS(dst, src)
	case b.Caps.SSE41:
		b.BlendPS(dst, src, blend)
	default:
		b.LaneMask(tmp, blend)
		b.XorPS(src, dst)
		b.AndPS(src, tmp)
		b.XorPS(dst, src)
	}
}

// orderable maps float patterns onto signed integers with the same order.
func (b *Builder) orderable(x, tmp XMM) {
	b.MovAPS(tmp, x)
	b.PSraD(tmp, 31)
	b.PSrlD(tmp, 1)
	b.PXor(x, tmp)
}

// MaxMin leaves max(dst, src) (or min) in dst, comparing raw patterns so
// denormals are ordered and never flushed. src and tmp are clobbered.
func (b *Builder) MaxMin(isMax bool, dst, src, tmp XMM) {
	b.orderable(dst, tmp)
	b.orderable(src, tmp)
	switch {
	case b.Caps.SSE41 && isMax:
		b.PMaxSD(dst, src)
	case b.Caps.SSE41:
		b.PMinSD(dst, src)
	case isMax:
		b.MovAPS(tmp, dst)
		b.PCmpGtD(tmp, src)
		b.PAnd(dst, tmp)
		b.PAndN(tmp, src)
		b.POr(dst, tmp)
	default:
		b.MovAPS(tmp, dst)
		b.PCmpGtD(tmp, src)
		b.PAnd(src, tmp)
		b.PAndN(tmp, dst)
		b.POr(tmp, src)
		b.MovAPS(dst, tmp)
	}
	b.orderable(dst, tmp)
}

// Clamp saturates the maximum exponent to the signed finite maximum, in
// place. Sign mode clobbers both temporaries, normal mode only the first.
func (b *Builder) Clamp(mode fpu.ClampMode, x, tmp, tmp2 XMM) {
	switch mode {
	case fpu.CLAMP_NORMAL:
		b.Const(tmp, fpu.MAX)
		b.MinPS(x, tmp)
		b.Const(tmp, fpu.MIN)
		b.MaxPS(x, tmp)
	case fpu.CLAMP_SIGN:
		// tmp2: lanes with |x| beyond MAX.
		b.Const(tmp2, ^fpu.SIGN)
		b.PAnd(tmp2, x)
		b.Const(tmp, fpu.MAX)
		b.PCmpGtD(tmp2, tmp)
		b.PAnd(tmp, tmp2)
		// Keep only the sign of overflowed lanes, then merge MAX in.
		b.PSrlD(tmp2, 1)
		b.PAndN(tmp2, x)
		b.POr(tmp2, tmp)
		b.MovAPS(x, tmp2)
	}
}
