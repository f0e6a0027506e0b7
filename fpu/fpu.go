// Package fpu models the vector unit's floating point arithmetic.
//
// Values are carried as raw IEEE-754 single precision bit patterns. The
// hardware has no infinities, NaNs or denormals: operands are normalised
// first (zero exponent reads as signed zero, maximum exponent reads as the
// signed largest finite value), results are rounded toward zero, and a
// result beyond the finite range comes back with the maximum exponent so
// the flag engine can report the overflow before clamping.
package fpu

import (
	"math"
)

// Bit patterns of note.
const (
	SIGN     = uint32(0x80000000) // Sign bit.
	EXPONENT = uint32(0x7f800000) // Exponent field.
	MANTISSA = uint32(0x007fffff) // Mantissa field.
	MAX      = uint32(0x7f7fffff) // Largest finite positive value.
	MIN      = uint32(0xff7fffff) // Largest finite negative value.
	ONE      = uint32(0x3f800000) // 1.0
	INF      = uint32(0x7f800000) // Overflow marker, positive.
)

// Exp returns the biased exponent of a value.
func Exp(v uint32) uint32 {
	return (v >> 23) & 0xff
}

// IsZero returns true for a positive or negative zero.
func IsZero(v uint32) bool {
	return v&^SIGN == 0
}

// IsDenormal returns true for a zero exponent with a non-zero mantissa.
func IsDenormal(v uint32) bool {
	return Exp(v) == 0 && v&MANTISSA != 0
}

// IsOverflow returns true for the maximum exponent.
func IsOverflow(v uint32) bool {
	return Exp(v) == 0xff
}

// Operand normalises a register value before arithmetic.
func Operand(v uint32) uint32 {
	switch Exp(v) {
	case 0:
		return v & SIGN
	case 0xff:
		return (v & SIGN) | MAX
	}
	return v
}

// Float returns the float64 value of an operand, after normalisation.
func Float(v uint32) float64 {
	return float64(math.Float32frombits(Operand(v)))
}

// FromFloat64 truncates toward zero. Values at or beyond 2^128 in
// magnitude return the signed overflow marker. exact is false when bits
// were discarded.
func FromFloat64(x float64) (v uint32, exact bool) {
	b := math.Float64bits(x)
	sign := uint32(b>>63) << 31
	if x == 0 {
		v = sign
		exact = true
		return
	}

	exp := int((b>>52)&0x7ff) - 1023
	mant := b & (1<<52 - 1)
	e32 := exp + 127

	switch {
	case e32 >= 0xff:
		v = sign | INF
		exact = false
	case e32 <= 0:
		// Denormal range: 2^-149 is the smallest step.
		shift := 52 - (exp + 149)
		full := mant | 1<<52
		if shift >= 64 {
			v = sign
			exact = false
			return
		}
		v = sign | uint32(full>>shift)
		exact = full&(1<<shift-1) == 0
	default:
		v = sign | uint32(e32)<<23 | uint32(mant>>29)
		exact = mant&(1<<29-1) == 0
	}

	return
}

// towardZero moves a non-zero value one step toward zero.
func towardZero(v uint32) uint32 {
	if IsZero(v) {
		return v
	}
	return v - 1
}

func sameSign(a, b float64) bool {
	return math.Signbit(a) == math.Signbit(b)
}

// twoSum returns the float64 sum and its exact rounding error.
func twoSum(a, b float64) (s float64, e float64) {
	s = a + b
	bb := s - a
	e = (a - (s - bb)) + (b - bb)
	return
}

// Add returns a+b.
func Add(a, b uint32) uint32 {
	s, e := twoSum(Float(a), Float(b))
	v, exact := FromFloat64(s)
	if exact && e != 0 && !sameSign(e, s) {
		v = towardZero(v)
	}
	return v
}

// Sub returns a-b.
func Sub(a, b uint32) uint32 {
	return Add(a, Operand(b)^SIGN)
}

// Mul returns a*b. Single precision products are exact in float64.
func Mul(a, b uint32) uint32 {
	v, _ := FromFloat64(Float(a) * Float(b))
	return v
}

// MulAdd returns acc+a*b with the product rounded first, as the hardware
// does.
func MulAdd(acc, a, b uint32) uint32 {
	return Add(acc, Operand(Mul(a, b)))
}

// MulSub returns acc-a*b with the product rounded first.
func MulSub(acc, a, b uint32) uint32 {
	return Sub(acc, Operand(Mul(a, b)))
}

// Div returns a/b for a non-zero b.
func Div(a, b uint32) uint32 {
	fa, fb := Float(a), Float(b)
	v, exact := FromFloat64(fa / fb)
	if exact && !IsZero(v) && !IsOverflow(v) {
		// Check |v*b| <= |a| with an exact residual.
		fv := math.Abs(float64(math.Float32frombits(v)))
		if math.FMA(fv, math.Abs(fb), -math.Abs(fa)) > 0 {
			v = towardZero(v)
		}
	}
	return v
}

// Sqrt returns the square root of |a|.
func Sqrt(a uint32) uint32 {
	x := math.Abs(Float(a))
	v, exact := FromFloat64(math.Sqrt(x))
	if exact && !IsZero(v) {
		fv := float64(math.Float32frombits(v))
		if fv*fv > x {
			v = towardZero(v)
		}
	}
	return v
}

// Abs returns |a|.
func Abs(a uint32) uint32 {
	return Operand(a) &^ SIGN
}

// magnitude maps a sign-magnitude pattern onto an ordered integer. Negative
// zero orders just below positive zero.
func magnitude(v uint32) int64 {
	if v&SIGN != 0 {
		return -int64(v&^SIGN) - 1
	}
	return int64(v)
}

// Max returns the larger of two values, comparing raw patterns without
// flushing denormals.
func Max(a, b uint32) uint32 {
	if magnitude(a) >= magnitude(b) {
		return a
	}
	return b
}

// Min returns the smaller of two values, comparing raw patterns without
// flushing denormals.
func Min(a, b uint32) uint32 {
	if magnitude(a) <= magnitude(b) {
		return a
	}
	return b
}

// ClampMode selects how out-of-range results are saturated.
type ClampMode int

const (
	CLAMP_NONE   = ClampMode(0) // none
	CLAMP_NORMAL = ClampMode(1) // normal
	CLAMP_SIGN   = ClampMode(2) // sign
)

var clampModeName = map[ClampMode]string{
	CLAMP_NONE:   "none",
	CLAMP_NORMAL: "normal",
	CLAMP_SIGN:   "sign",
}

func (mode ClampMode) String() string {
	return clampModeName[mode]
}

// Clamp saturates infinities to the signed finite maximum. NaNs become
// +MAX in normal mode, and keep their sign in sign mode.
func Clamp(mode ClampMode, v uint32) uint32 {
	if mode == CLAMP_NONE || !IsOverflow(v) {
		return v
	}
	if v&MANTISSA != 0 && mode == CLAMP_NORMAL {
		return MAX
	}
	return (v & SIGN) | MAX
}

// Flush turns a denormal into a signed zero.
func Flush(v uint32) uint32 {
	if IsDenormal(v) {
		return v & SIGN
	}
	return v
}
