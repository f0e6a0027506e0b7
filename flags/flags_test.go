package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/regalloc"
	"github.com/ezrec/vurec/vu"
)

func TestUpdate(t *testing.T) {
	assert := assert.New(t)

	full := Engine{Mode: MODE_FULL, Clamp: fpu.CLAMP_NORMAL, FlushDenormals: true}
	table := [](struct {
		engine Engine
		in     [4]uint32
		dest   vu.Mask
		out    [4]uint32
		mac    uint32
	}){
		// Zero in x, negative in y, positive z, negative zero in w.
		{full, [4]uint32{0, 0xbf800000, fpu.ONE, fpu.SIGN}, vu.MASK_XYZW,
			[4]uint32{0, 0xbf800000, fpu.ONE, fpu.SIGN}, 0x0009 | 0x0040},
		// Overflow in x is clamped, underflow in w is flushed.
		{full, [4]uint32{fpu.INF, 5, 6, 0x80000001}, vu.MASK_X | vu.MASK_W,
			[4]uint32{fpu.MAX, 5, 6, fpu.SIGN}, 0x8000 | 0x0100 | 0x0001},
		// Unwritten lanes keep their value and have no flags.
		{full, [4]uint32{0, 0, 0, 0}, vu.MASK_Y, [4]uint32{0, 0, 0, 0}, 0x0004},
		// Reduced mode has no overflow or underflow.
		{Engine{Mode: MODE_REDUCED, Clamp: fpu.CLAMP_SIGN}, [4]uint32{0xff800000, 0, 0, 0}, vu.MASK_X,
			[4]uint32{fpu.MIN, 0, 0, 0}, 0x0080},
		// Denormals stay when not flushed, and are not zero.
		{Engine{Mode: MODE_FULL}, [4]uint32{0x00000001, 0, 0, 0}, vu.MASK_X,
			[4]uint32{0x00000001, 0, 0, 0}, 0x0800},
	}

	for _, entry := range table {
		out, mac := entry.engine.Update(entry.in, entry.dest)
		assert.Equal(entry.out, out, "%08x", entry.in)
		assert.Equal(entry.mac, mac, "%08x", entry.in)
	}
}

func TestStatusFromMAC(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		status uint32
		mac    uint32
		out    uint32
	}){
		{0, 0, 0},
		{0, 0x0008, 0x041},
		{0, 0x00f0, 0x082},
		{0x041, 0x0100, 0x044 | 0x100},
		{0x030 | 0x0c0, 0x8000, 0x0f8 | 0x200},
		// Current bits are replaced, sticky bits accumulate.
		{0xfcf, 0, 0xfc0},
	}

	for _, entry := range table {
		assert.Equal(entry.out, StatusFromMAC(entry.status, entry.mac), "%03x %04x", entry.status, entry.mac)
	}
}

func TestPackClip(t *testing.T) {
	assert := assert.New(t)

	two := uint32(0x40000000)
	table := [](struct {
		clip uint32
		fs   [4]uint32
		w    uint32
		out  uint32
	}){
		{0, [4]uint32{0, 0, 0, 0}, two, 0},
		{0, [4]uint32{0x40400000, 0, 0, 0}, two, 0x01},
		{0, [4]uint32{0xc0400000, 0, 0, 0}, two, 0x02},
		{0, [4]uint32{0, 0x40400000, 0xc0400000, 0}, two, 0x04 | 0x20},
		// The sign of w does not matter.
		{0, [4]uint32{0x40400000, 0, 0, 0}, two | fpu.SIGN, 0x01},
		// Older judgements shift up and fall off after four.
		{0x3f, [4]uint32{0, 0, 0, 0}, two, 0xfc0},
		{0xfc0000, [4]uint32{0x40400000, 0, 0, 0}, two, 0x01},
		// Equal magnitudes are inside.
		{0, [4]uint32{two, two | fpu.SIGN, 0, 0}, two, 0},
	}

	for _, entry := range table {
		assert.Equal(entry.out, PackClip(entry.clip, entry.fs, entry.w), "%06x", entry.clip)
	}
}

func TestParseMode(t *testing.T) {
	assert := assert.New(t)

	for _, mode := range []Mode{MODE_FULL, MODE_REDUCED, MODE_NONE} {
		parsed, err := ParseMode(mode.String())
		assert.NoError(err)
		assert.Equal(mode, parsed)
	}

	_, err := ParseMode("some")
	var bad *ErrMode
	assert.ErrorAs(err, &bad)
}

func TestEmit(t *testing.T) {
	assert := assert.New(t)

	arena, err := memory.Allocate()
	assert.NoError(err)
	defer arena.Shutdown()
	u := vu.NewUnit(arena, 1, &vu.VifRegs{})

	for _, mode := range []Mode{MODE_FULL, MODE_NONE} {
		u.MacLive, u.StatusLive = 0, 0
		engine := Engine{Mode: mode, Clamp: fpu.CLAMP_NORMAL}
		b := host.NewBuilder(host.BASELINE)
		pool := regalloc.NewPool(b, u.Layout)
		res := pool.Temp(regalloc.KIND_XMM)
		engine.Emit(b, pool, u, res.XMM(), vu.MASK_XYZW)
		EmitClip(b, u, res.XMM(), res.XMM())

		m := &host.Machine{Mem: arena.Bytes()}
		m.XMM[res.N] = [4]uint32{fpu.INF, 0, 0xbf800000, fpu.ONE}
		m.Run(b.Ops())

		assert.Equal([4]uint32{fpu.MAX, 0, 0xbf800000, fpu.ONE}, m.XMM[res.N], "%v", mode)
		// MAX is beyond +1.
		assert.Equal(uint32(0x01), u.ClipLive&0x3f, "%v", mode)
		if mode == MODE_FULL {
			assert.Equal(uint32(0x8000|0x0004|0x0020), u.MacLive)
			assert.Equal(uint32(0x00b|0x2c0), u.StatusLive)
		} else {
			assert.Equal(uint32(0), u.MacLive)
		}
	}
}
