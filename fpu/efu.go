package fpu

import (
	"math"
)

// result rounds an EFU result to a register value.
func result(x float64) uint32 {
	v, _ := FromFloat64(x)
	return Operand(v)
}

func sumSquares(x, y, z uint32) float64 {
	fx, fy, fz := Float(x), Float(y), Float(z)
	return fx*fx + fy*fy + fz*fz
}

// ESADD returns x*x+y*y+z*z.
func ESADD(x, y, z uint32) uint32 {
	return result(sumSquares(x, y, z))
}

// ERSADD returns 1/(x*x+y*y+z*z), or zero for a zero sum.
func ERSADD(x, y, z uint32) uint32 {
	p := sumSquares(x, y, z)
	if p != 0 {
		p = 1 / p
	}
	return result(p)
}

// ELENG returns the length of the xyz vector.
func ELENG(x, y, z uint32) uint32 {
	return result(math.Sqrt(sumSquares(x, y, z)))
}

// ERLENG returns the reciprocal length of the xyz vector, or zero.
func ERLENG(x, y, z uint32) uint32 {
	p := math.Sqrt(sumSquares(x, y, z))
	if p != 0 {
		p = 1 / p
	}
	return result(p)
}

// EATAN2 returns atan2(y, x), or zero when x is zero.
func EATAN2(y, x uint32) uint32 {
	fx := Float(x)
	if fx == 0 {
		return 0
	}
	return result(math.Atan2(Float(y), fx))
}

// ESUM returns x+y+z+w.
func ESUM(x, y, z, w uint32) uint32 {
	return result(Float(x) + Float(y) + Float(z) + Float(w))
}

// ERCPR returns 1/x, or zero for zero.
func ERCPR(x uint32) uint32 {
	p := Float(x)
	if p != 0 {
		p = 1 / p
	}
	return result(p)
}

// ESQRT returns sqrt(x) for a non-negative x, else x unchanged.
func ESQRT(x uint32) uint32 {
	p := Float(x)
	if p >= 0 {
		p = math.Sqrt(p)
	}
	return result(p)
}

// ERSQRT returns 1/sqrt(x) for a positive x, zero for zero, else x.
func ERSQRT(x uint32) uint32 {
	p := Float(x)
	if p >= 0 {
		p = math.Sqrt(p)
		if p != 0 {
			p = 1 / p
		}
	}
	return result(p)
}

// ESIN returns sin(x).
func ESIN(x uint32) uint32 {
	return result(math.Sin(Float(x)))
}

// EATAN returns atan(x).
func EATAN(x uint32) uint32 {
	return result(math.Atan(Float(x)))
}

// EEXP returns exp(-x).
func EEXP(x uint32) uint32 {
	return result(math.Exp(-Float(x)))
}
