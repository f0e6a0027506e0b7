package fpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bits(f float32) uint32 {
	return math.Float32bits(f)
}

func TestOperand(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		in  uint32
		out uint32
	}{
		{0x00000000, 0x00000000},
		{0x80000000, 0x80000000},
		{0x00000001, 0x00000000},
		{0x807fffff, 0x80000000},
		{0x7f800000, MAX},
		{0xff800000, MIN},
		{0x7fc00000, MAX},
		{0xffc00001, MIN},
		{ONE, ONE},
	}

	for _, entry := range table {
		assert.Equal(entry.out, Operand(entry.in), "%08x", entry.in)
	}
}

func TestFromFloat64(t *testing.T) {
	assert := assert.New(t)

	v, exact := FromFloat64(1.0)
	assert.Equal(ONE, v)
	assert.True(exact)

	// One third truncates, where round-to-nearest would round up.
	v, exact = FromFloat64(1.0 / 3.0)
	assert.Equal(uint32(0x3eaaaaaa), v)
	assert.False(exact)
	v, _ = FromFloat64(-1.0 / 3.0)
	assert.Equal(uint32(0xbeaaaaaa), v)

	v, _ = FromFloat64(math.Ldexp(1, 128))
	assert.Equal(INF, v)
	v, _ = FromFloat64(-math.Ldexp(1, 200))
	assert.Equal(SIGN|INF, v)

	// Just below 2^128 truncates to MAX.
	v, _ = FromFloat64(math.Ldexp(1, 128) - math.Ldexp(1, 100))
	assert.Equal(MAX, v)

	v, exact = FromFloat64(math.Ldexp(1, -149))
	assert.Equal(uint32(1), v)
	assert.True(exact)
	v, exact = FromFloat64(math.Ldexp(1, -150))
	assert.Equal(uint32(0), v)
	assert.False(exact)
	v, _ = FromFloat64(math.Ldexp(1, -127))
	assert.Equal(uint32(0x00400000), v)

	v, exact = FromFloat64(math.Copysign(0, -1))
	assert.Equal(SIGN, v)
	assert.True(exact)
}

func TestArithmetic(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(bits(3), Add(bits(1), bits(2)))
	assert.Equal(bits(-1), Sub(bits(1), bits(2)))
	assert.Equal(bits(6), Mul(bits(2), bits(3)))
	assert.Equal(bits(0.5), Div(bits(1), bits(2)))
	assert.Equal(bits(3), Sqrt(bits(9)))
	assert.Equal(bits(3), Sqrt(bits(-9)))
	assert.Equal(bits(2), Abs(bits(-2)))
	assert.Equal(bits(7), MulAdd(bits(1), bits(2), bits(3)))
	assert.Equal(bits(-5), MulSub(bits(1), bits(2), bits(3)))

	// x - tiny truncates to the value just below x.
	assert.Equal(ONE-1, Sub(ONE, bits(1e-20)))
	// x + tiny stays at x.
	assert.Equal(ONE, Add(ONE, bits(1e-20)))

	// 1/3 truncates toward zero.
	assert.Equal(uint32(0x3eaaaaaa), Div(bits(1), bits(3)))
	// sqrt(2) truncates.
	assert.Equal(uint32(0x3fb504f3), Sqrt(bits(2)))

	// Denormal inputs read as zero.
	assert.Equal(bits(1), Add(bits(1), 0x00000001))
	assert.Equal(uint32(0), Mul(0x00400000, bits(2)))

	// Overflow comes back with the maximum exponent.
	assert.True(IsOverflow(Mul(MAX, bits(2))))
	assert.True(IsOverflow(Add(MAX, MAX)))

	// Results in the denormal range are not flushed here.
	assert.True(IsDenormal(Mul(bits(1e-30), bits(1e-9))))
}

func TestMaxMin(t *testing.T) {
	assert := assert.New(t)

	denormal := uint32(0x00000010)
	negDenormal := uint32(0x80000010)

	table := [...]struct {
		a, b     uint32
		max, min uint32
	}{
		{bits(1), bits(2), bits(2), bits(1)},
		{bits(-1), bits(-2), bits(-1), bits(-2)},
		{bits(-1), bits(2), bits(2), bits(-1)},
		{denormal, 0, denormal, 0},
		{denormal, uint32(0x00000008), denormal, uint32(0x00000008)},
		{negDenormal, 0, 0, negDenormal},
		{denormal, bits(1), bits(1), denormal},
		{negDenormal, bits(-1), negDenormal, bits(-1)},
		{0x7f800000, MAX, 0x7f800000, MAX},
		{SIGN, 0, 0, SIGN},
	}

	for _, entry := range table {
		assert.Equal(entry.max, Max(entry.a, entry.b), "max %08x %08x", entry.a, entry.b)
		assert.Equal(entry.max, Max(entry.b, entry.a), "max %08x %08x", entry.b, entry.a)
		assert.Equal(entry.min, Min(entry.a, entry.b), "min %08x %08x", entry.a, entry.b)
		assert.Equal(entry.min, Min(entry.b, entry.a), "min %08x %08x", entry.b, entry.a)
	}
}

func TestClamp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(INF, Clamp(CLAMP_NONE, INF))
	assert.Equal(MAX, Clamp(CLAMP_NORMAL, INF))
	assert.Equal(MIN, Clamp(CLAMP_NORMAL, SIGN|INF))
	assert.Equal(MAX, Clamp(CLAMP_NORMAL, 0xffc00000))
	assert.Equal(MIN, Clamp(CLAMP_SIGN, 0xffc00000))
	assert.Equal(ONE, Clamp(CLAMP_SIGN, ONE))
	assert.Equal("sign", CLAMP_SIGN.String())

	assert.Equal(SIGN, Flush(0x80000001))
	assert.Equal(ONE, Flush(ONE))
}

func TestConvert(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(bits(5), ItoF(5, 0))
	assert.Equal(bits(-5), ItoF(uint32(0xfffffffb), 0))
	assert.Equal(bits(1), ItoF(16, 4))
	assert.Equal(bits(0.5), ItoF(2048, 12))
	assert.Equal(bits(1), ItoF(32768, 15))

	assert.Equal(uint32(5), FtoI(bits(5.9), 0))
	assert.Equal(uint32(0xfffffffb), FtoI(bits(-5.9), 0))
	assert.Equal(uint32(24), FtoI(bits(1.5), 4))
	assert.Equal(uint32(0x7fffffff), FtoI(bits(3e9), 0))
	assert.Equal(uint32(0x80000000), FtoI(bits(-3e9), 0))
	assert.Equal(uint32(0x7fffffff), FtoI(0x7f800000, 0))

	assert.Panics(func() { ItoF(0, 3) })
	assert.Panics(func() { FtoI(0, 3) })
}

func TestDivideUnit(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		name  string
		fn    func() (uint32, uint32)
		q     uint32
		flags uint32
	}{
		{"div", func() (uint32, uint32) { return DIV(bits(6), bits(3)) }, bits(2), 0},
		{"div a/0", func() (uint32, uint32) { return DIV(bits(5), 0) }, MAX, FLAG_D},
		{"div -a/0", func() (uint32, uint32) { return DIV(bits(-5), 0) }, MIN, FLAG_D},
		{"div a/-0", func() (uint32, uint32) { return DIV(bits(5), SIGN) }, MIN, FLAG_D},
		{"div 0/0", func() (uint32, uint32) { return DIV(0, 0) }, MAX, FLAG_I},
		{"div a/denormal", func() (uint32, uint32) { return DIV(bits(5), 1) }, MAX, FLAG_D},
		{"div overflow", func() (uint32, uint32) { return DIV(MAX, bits(0.5)) }, MAX, 0},
		{"sqrt", func() (uint32, uint32) { return SQRT(bits(16)) }, bits(4), 0},
		{"sqrt neg", func() (uint32, uint32) { return SQRT(bits(-16)) }, bits(4), FLAG_I},
		{"sqrt -0", func() (uint32, uint32) { return SQRT(SIGN) }, 0, 0},
		{"rsqrt", func() (uint32, uint32) { return RSQRT(bits(8), bits(16)) }, bits(2), 0},
		{"rsqrt neg", func() (uint32, uint32) { return RSQRT(bits(8), bits(-16)) }, bits(2), FLAG_I},
		{"rsqrt a/0", func() (uint32, uint32) { return RSQRT(bits(-8), 0) }, MIN, FLAG_D},
		{"rsqrt 0/0", func() (uint32, uint32) { return RSQRT(SIGN, 0) }, SIGN, FLAG_I},
	}

	for _, entry := range table {
		q, flags := entry.fn()
		assert.Equal(entry.q, q, entry.name)
		assert.Equal(entry.flags, flags, entry.name)
	}
}

func TestEFU(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(bits(14), ESADD(bits(1), bits(2), bits(3)))
	assert.Equal(bits(0.25), ERSADD(bits(2), 0, 0))
	assert.Equal(uint32(0), ERSADD(0, 0, 0))
	assert.Equal(bits(5), ELENG(bits(3), bits(4), 0))
	assert.Equal(uint32(0x3e4ccccc), ERLENG(bits(3), bits(4), 0))
	assert.Equal(uint32(0), ERLENG(0, 0, 0))
	assert.Equal(uint32(0), EATAN2(bits(1), 0))
	assert.Equal(bits(10), ESUM(bits(1), bits(2), bits(3), bits(4)))
	assert.Equal(bits(0.5), ERCPR(bits(2)))
	assert.Equal(uint32(0), ERCPR(0))
	assert.Equal(bits(3), ESQRT(bits(9)))
	assert.Equal(bits(-9), ESQRT(bits(-9)))
	assert.Equal(bits(0.5), ERSQRT(bits(4)))
	assert.Equal(uint32(0), ESIN(0))
	assert.Equal(uint32(0), EATAN(0))
	assert.Equal(ONE, EEXP(0))
}
