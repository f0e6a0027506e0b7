package vu

import (
	"iter"
	"strings"

	"github.com/ezrec/vurec/memory"
)

// VF is a vector float register index.
type VF int

// VI is an integer register index. Indices from 16 up name the control
// registers.
type VI int

// Control registers, stored in the integer register slots past VI15.
const (
	STATUS = VI(memory.CTRL_STATUS) // status
	MAC    = VI(memory.CTRL_MAC)    // mac
	CLIP   = VI(memory.CTRL_CLIP)   // clip
	R      = VI(memory.CTRL_R)      // r
	I      = VI(memory.CTRL_I)      // i
	Q      = VI(memory.CTRL_Q)      // q
	P      = VI(memory.CTRL_P)      // p
	TPC    = VI(memory.CTRL_TPC)    // tpc
	CLIP_P = VI(memory.CTRL_CLIP_P) // clip_p
)

// Mask selects the lanes written by an instruction. X is bit 3.
type Mask uint8

const (
	MASK_X    = Mask(8)   // x
	MASK_Y    = Mask(4)   // y
	MASK_Z    = Mask(2)   // z
	MASK_W    = Mask(1)   // w
	MASK_XYZ  = Mask(0xe) // xyz
	MASK_XYZW = Mask(0xf) // xyzw
)

// LaneMask returns the mask selecting a single lane, x being lane 0.
func LaneMask(lane int) Mask {
	return Mask(8 >> (lane & 3))
}

// Has returns true if the lane is selected.
func (m Mask) Has(lane int) bool {
	return m&LaneMask(lane) != 0
}

// Count returns the number of selected lanes.
func (m Mask) Count() (count int) {
	for lane := range 4 {
		if m.Has(lane) {
			count++
		}
	}
	return
}

// Lanes iterates over the selected lane numbers.
func (m Mask) Lanes() iter.Seq[int] {
	return func(yield func(int) bool) {
		for lane := range 4 {
			if m.Has(lane) && !yield(lane) {
				return
			}
		}
	}
}

// Blend returns the SSE blend immediate for the mask: lane n is bit n.
func (m Mask) Blend() (imm uint8) {
	for lane := range m.Lanes() {
		imm |= 1 << lane
	}
	return
}

func (m Mask) String() string {
	var sb strings.Builder
	for lane := range m.Lanes() {
		sb.WriteByte("xyzw"[lane])
	}
	return sb.String()
}

// ParseMask parses a lane suffix such as "xzw".
func ParseMask(text string) (m Mask, ok bool) {
	for _, c := range text {
		n := strings.IndexRune("xyzw", c)
		if n < 0 || m.Has(n) {
			return 0, false
		}
		m |= LaneMask(n)
	}
	ok = m != 0
	return
}

// Word is one 32-bit half of an instruction pair.
type Word uint32

// Upper word control bits.
const (
	BIT_I = Word(1 << 31) // lower word is an immediate for I
	BIT_E = Word(1 << 30) // end of program after the next pair
	BIT_M = Word(1 << 29) // VU0 interlock
	BIT_D = Word(1 << 28) // debug break
	BIT_T = Word(1 << 27) // debug halt
)

func (w Word) Ft() VF { return VF(w>>16) & 0x1f }
func (w Word) Fs() VF { return VF(w>>11) & 0x1f }
func (w Word) Fd() VF { return VF(w>>6) & 0x1f }
func (w Word) It() VI { return VI(w>>16) & 0xf }
func (w Word) Is() VI { return VI(w>>11) & 0xf }
func (w Word) Id() VI { return VI(w>>6) & 0xf }

// Dest is the lane mask field.
func (w Word) Dest() Mask { return Mask(w>>21) & 0xf }

// Bc is the broadcast lane of the bc instruction forms.
func (w Word) Bc() int { return int(w & 3) }

// Fsf and Ftf select a single lane of fs and ft.
func (w Word) Fsf() int { return int(w>>21) & 3 }
func (w Word) Ftf() int { return int(w>>23) & 3 }

// Imm5 is the signed IADDI immediate.
func (w Word) Imm5() int32 {
	return int32(w<<21) >> 27
}

// Imm11 is the signed load/store offset and branch displacement.
func (w Word) Imm11() int32 {
	return int32(w<<21) >> 21
}

// Imm12 is the status flag immediate.
func (w Word) Imm12() uint32 {
	return uint32((w>>21)&1)<<11 | uint32(w&0x7ff)
}

// Imm15 is the IADDIU/ISUBIU immediate.
func (w Word) Imm15() uint32 {
	return uint32((w>>10)&0x7800) | uint32(w&0x7ff)
}

// Imm24 is the clip flag immediate.
func (w Word) Imm24() uint32 {
	return uint32(w & 0xffffff)
}
