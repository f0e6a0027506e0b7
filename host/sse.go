package host

import (
	"math"

	"github.com/ezrec/vurec/fpu"
)

type laneFunc func(d, s uint32) uint32

// lanes emits a lane-wise register to register op.
func (b *Builder) lanes(name string, prefix byte, opcode []byte, dst, src XMM, fn laneFunc) {
	b.emit(name, encodeRR(prefix, opcode, int(dst), int(src)), func(m *Machine) {
		s := m.XMM[src]
		for n := range m.XMM[dst] {
			m.XMM[dst][n] = fn(m.XMM[dst][n], s[n])
		}
	})
}

// AddPS adds packed singles, rounding toward zero.
func (b *Builder) AddPS(dst, src XMM) {
	b.lanes("addps", PFX_NONE, []byte{0x0f, 0x58}, dst, src, fpu.Add)
}

// SubPS subtracts packed singles, rounding toward zero.
func (b *Builder) SubPS(dst, src XMM) {
	b.lanes("subps", PFX_NONE, []byte{0x0f, 0x5c}, dst, src, fpu.Sub)
}

// MulPS multiplies packed singles, rounding toward zero.
func (b *Builder) MulPS(dst, src XMM) {
	b.lanes("mulps", PFX_NONE, []byte{0x0f, 0x59}, dst, src, fpu.Mul)
}

func float32Of(v uint32) float32 {
	return math.Float32frombits(fpu.Flush(v))
}

// MinPS has the SSE semantics: the second operand wins unless the first
// compares strictly less, including for NaNs and zeros.
func (b *Builder) MinPS(dst, src XMM) {
	b.lanes("minps", PFX_NONE, []byte{0x0f, 0x5d}, dst, src, func(d, s uint32) uint32 {
		if float32Of(d) < float32Of(s) {
			return d
		}
		return s
	})
}

// MaxPS has the SSE semantics: the second operand wins unless the first
// compares strictly greater.
func (b *Builder) MaxPS(dst, src XMM) {
	b.lanes("maxps", PFX_NONE, []byte{0x0f, 0x5f}, dst, src, func(d, s uint32) uint32 {
		if float32Of(d) > float32Of(s) {
			return d
		}
		return s
	})
}

// AndPS is a bitwise and.
func (b *Builder) AndPS(dst, src XMM) {
	b.lanes("andps", PFX_NONE, []byte{0x0f, 0x54}, dst, src, func(d, s uint32) uint32 { return d & s })
}

// AndNPS computes ^dst & src.
func (b *Builder) AndNPS(dst, src XMM) {
	b.lanes("andnps", PFX_NONE, []byte{0x0f, 0x55}, dst, src, func(d, s uint32) uint32 { return ^d & s })
}

// OrPS is a bitwise or.
func (b *Builder) OrPS(dst, src XMM) {
	b.lanes("orps", PFX_NONE, []byte{0x0f, 0x56}, dst, src, func(d, s uint32) uint32 { return d | s })
}

// XorPS is a bitwise exclusive or.
func (b *Builder) XorPS(dst, src XMM) {
	b.lanes("xorps", PFX_NONE, []byte{0x0f, 0x57}, dst, src, func(d, s uint32) uint32 { return d ^ s })
}

// PAnd is a bitwise and in the integer domain.
func (b *Builder) PAnd(dst, src XMM) {
	b.lanes("pand", PFX_66, []byte{0x0f, 0xdb}, dst, src, func(d, s uint32) uint32 { return d & s })
}

// PAndN computes ^dst & src in the integer domain.
func (b *Builder) PAndN(dst, src XMM) {
	b.lanes("pandn", PFX_66, []byte{0x0f, 0xdf}, dst, src, func(d, s uint32) uint32 { return ^d & s })
}

// POr is a bitwise or in the integer domain.
func (b *Builder) POr(dst, src XMM) {
	b.lanes("por", PFX_66, []byte{0x0f, 0xeb}, dst, src, func(d, s uint32) uint32 { return d | s })
}

// PXor is a bitwise exclusive or in the integer domain.
func (b *Builder) PXor(dst, src XMM) {
	b.lanes("pxor", PFX_66, []byte{0x0f, 0xef}, dst, src, func(d, s uint32) uint32 { return d ^ s })
}

func mask(ok bool) uint32 {
	if ok {
		return 0xffffffff
	}
	return 0
}

// PCmpGtD sets each lane to all ones where dst > src as signed integers.
func (b *Builder) PCmpGtD(dst, src XMM) {
	b.lanes("pcmpgtd", PFX_66, []byte{0x0f, 0x66}, dst, src, func(d, s uint32) uint32 {
		return mask(int32(d) > int32(s))
	})
}

// PCmpEqD sets each lane to all ones where dst == src.
func (b *Builder) PCmpEqD(dst, src XMM) {
	b.lanes("pcmpeqd", PFX_66, []byte{0x0f, 0x76}, dst, src, func(d, s uint32) uint32 {
		return mask(d == s)
	})
}

// PMaxSD is the signed integer maximum. Requires SSE4.1.
func (b *Builder) PMaxSD(dst, src XMM) {
	b.lanes("pmaxsd", PFX_66, []byte{0x0f, 0x38, 0x3d}, dst, src, func(d, s uint32) uint32 {
		return uint32(max(int32(d), int32(s)))
	})
}

// PMinSD is the signed integer minimum. Requires SSE4.1.
func (b *Builder) PMinSD(dst, src XMM) {
	b.lanes("pminsd", PFX_66, []byte{0x0f, 0x38, 0x39}, dst, src, func(d, s uint32) uint32 {
		return uint32(min(int32(d), int32(s)))
	})
}

// MovAPS copies a register.
func (b *Builder) MovAPS(dst, src XMM) {
	b.emit("movaps", encodeRR(PFX_NONE, []byte{0x0f, 0x28}, int(dst), int(src)), func(m *Machine) {
		m.XMM[dst] = m.XMM[src]
	})
}

// MovSS copies the x lane, keeping the others.
func (b *Builder) MovSS(dst, src XMM) {
	b.emit("movss", encodeRR(PFX_F3, []byte{0x0f, 0x10}, int(dst), int(src)), func(m *Machine) {
		m.XMM[dst][0] = m.XMM[src][0]
	})
}

// LoadPS reads an aligned quadword from the arena.
func (b *Builder) LoadPS(dst XMM, mem Mem) {
	b.emit("movaps", encodeRM(PFX_NONE, []byte{0x0f, 0x28}, int(dst), mem), func(m *Machine) {
		m.XMM[dst] = m.load128(mem)
	})
}

// StorePS writes an aligned quadword to the arena.
func (b *Builder) StorePS(mem Mem, src XMM) {
	b.emit("movaps", encodeRM(PFX_NONE, []byte{0x0f, 0x29}, int(src), mem), func(m *Machine) {
		m.store128(mem, m.XMM[src])
	})
}

// LoadSS reads a word into the x lane, zeroing the others.
func (b *Builder) LoadSS(dst XMM, mem Mem) {
	b.emit("movss", encodeRM(PFX_F3, []byte{0x0f, 0x10}, int(dst), mem), func(m *Machine) {
		m.XMM[dst] = [4]uint32{m.load32(mem)}
	})
}

// StoreSS writes the x lane to the arena.
func (b *Builder) StoreSS(mem Mem, src XMM) {
	b.emit("movss", encodeRM(PFX_F3, []byte{0x0f, 0x11}, int(src), mem), func(m *Machine) {
		m.store32(mem, m.XMM[src][0])
	})
}

// MovD moves a general register into the x lane, zeroing the others.
func (b *Builder) MovD(dst XMM, src GPR) {
	b.emit("movd", encodeRR(PFX_66, []byte{0x0f, 0x6e}, int(dst), int(src)), func(m *Machine) {
		m.XMM[dst] = [4]uint32{m.GPR[src]}
	})
}

// MovDR moves the x lane into a general register.
func (b *Builder) MovDR(dst GPR, src XMM) {
	b.emit("movd", encodeRR(PFX_66, []byte{0x0f, 0x7e}, int(src), int(dst)), func(m *Machine) {
		m.GPR[dst] = m.XMM[src][0]
	})
}

// PShufD sets lane n of dst to lane (imm >> 2n) & 3 of src.
func (b *Builder) PShufD(dst, src XMM, imm uint8) {
	code := append(encodeRR(PFX_66, []byte{0x0f, 0x70}, int(dst), int(src)), imm)
	b.emit("pshufd", code, func(m *Machine) {
		s := m.XMM[src]
		for n := range m.XMM[dst] {
			m.XMM[dst][n] = s[(imm>>(2*n))&3]
		}
	})
}

// ShufPS takes the low two lanes from dst and the high two from src.
func (b *Builder) ShufPS(dst, src XMM, imm uint8) {
	code := append(encodeRR(PFX_NONE, []byte{0x0f, 0xc6}, int(dst), int(src)), imm)
	b.emit("shufps", code, func(m *Machine) {
		d, s := m.XMM[dst], m.XMM[src]
		m.XMM[dst] = [4]uint32{d[imm&3], d[(imm>>2)&3], s[(imm>>4)&3], s[(imm>>6)&3]}
	})
}

// BlendPS takes lane n from src where bit n of imm is set. Requires
// SSE4.1.
func (b *Builder) BlendPS(dst, src XMM, imm uint8) {
	code := append(encodeRR(PFX_66, []byte{0x0f, 0x3a, 0x0c}, int(dst), int(src)), imm)
	b.emit("blendps", code, func(m *Machine) {
		for n := range m.XMM[dst] {
			if imm&(1<<n) != 0 {
				m.XMM[dst][n] = m.XMM[src][n]
			}
		}
	})
}

func (b *Builder) shiftImm(name string, ext int, dst XMM, n uint8, fn func(v uint32) uint32) {
	code := append(encodeRR(PFX_66, []byte{0x0f, 0x72}, ext, int(dst)), n)
	b.emit(name, code, func(m *Machine) {
		for l := range m.XMM[dst] {
			m.XMM[dst][l] = fn(m.XMM[dst][l])
		}
	})
}

// PSrlD shifts each lane right, logically.
func (b *Builder) PSrlD(dst XMM, n uint8) {
	b.shiftImm("psrld", 2, dst, n, func(v uint32) uint32 {
		if n > 31 {
			return 0
		}
		return v >> n
	})
}

// PSraD shifts each lane right, arithmetically.
func (b *Builder) PSraD(dst XMM, n uint8) {
	b.shiftImm("psrad", 4, dst, n, func(v uint32) uint32 {
		return uint32(int32(v) >> min(n, 31))
	})
}

// PSllD shifts each lane left.
func (b *Builder) PSllD(dst XMM, n uint8) {
	b.shiftImm("pslld", 6, dst, n, func(v uint32) uint32 {
		if n > 31 {
			return 0
		}
		return v << n
	})
}

// CvtDQ2PS converts signed integers to singles, rounding toward zero.
func (b *Builder) CvtDQ2PS(dst, src XMM) {
	b.lanes("cvtdq2ps", PFX_NONE, []byte{0x0f, 0x5b}, dst, src, func(_, s uint32) uint32 {
		return fpu.ItoF(s, 0)
	})
}

// CVT_INDEFINITE is the result of an out of range conversion.
const CVT_INDEFINITE = uint32(0x80000000)

// CvtTPS2DQ truncates singles to signed integers. Out of range values and
// NaNs give CVT_INDEFINITE.
func (b *Builder) CvtTPS2DQ(dst, src XMM) {
	b.lanes("cvttps2dq", PFX_F3, []byte{0x0f, 0x5b}, dst, src, func(_, s uint32) uint32 {
		x := float64(float32Of(s))
		if math.IsNaN(x) || x >= math.MaxInt32+1 || x < math.MinInt32 {
			return CVT_INDEFINITE
		}
		return uint32(int32(x))
	})
}
