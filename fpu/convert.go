package fpu

import (
	"math"
)

// Fixed point scales for ITOF/FTOI, indexed by the instruction variant.
var fixedScale = map[int]float64{
	0:  1,
	4:  16,
	12: 4096,
	15: 32768,
}

// ItoF converts a fixed point integer with the given fraction bits to a
// float, truncating toward zero.
func ItoF(v uint32, fraction int) uint32 {
	scale, ok := fixedScale[fraction]
	if !ok {
		panic("fpu: bad fixed point scale")
	}
	r, _ := FromFloat64(float64(int32(v)) / scale)
	return r
}

// FtoI converts a float to a fixed point integer with the given fraction
// bits, truncating toward zero and saturating at the int32 range.
func FtoI(v uint32, fraction int) uint32 {
	scale, ok := fixedScale[fraction]
	if !ok {
		panic("fpu: bad fixed point scale")
	}
	x := Float(v) * scale
	switch {
	case x >= math.MaxInt32:
		return 0x7fffffff
	case x <= math.MinInt32:
		return 0x80000000
	}
	return uint32(int32(x))
}
