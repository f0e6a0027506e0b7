package memory

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newArena(t *testing.T) *Arena {
	arena, err := Allocate()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { arena.Shutdown() })
	return arena
}

func TestAllocate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(validate())

	arena := newArena(t)
	assert.Len(arena.Bytes(), ARENA_SIZE)
	assert.Len(arena.Data(0), VU0_MEM_SIZE)
	assert.Len(arena.Micro(0), VU0_MEM_SIZE)
	assert.Len(arena.Data(1), VU1_MEM_SIZE)
	assert.Len(arena.Micro(1), VU1_MEM_SIZE)
	assert.Len(arena.Regs(1), REGS_SIZE)

	arena.Store32(VU1_DATA, 0x12345678)
	assert.Equal(uint32(0x12345678), arena.Load32(VU1_DATA))
	arena.Reset()
	assert.Equal(uint32(0), arena.Load32(VU1_DATA))
}

func TestShutdown(t *testing.T) {
	assert := assert.New(t)

	arena, err := Allocate()
	assert.NoError(err)
	assert.NoError(arena.Shutdown())
	assert.ErrorIs(arena.Shutdown(), ErrShutdown)
	assert.ErrorIs(arena.Freeze(&bytes.Buffer{}, "vu"), ErrShutdown)
}

func TestUnitLayout(t *testing.T) {
	assert := assert.New(t)

	l := UnitLayout(1)
	assert.Equal(VU1_REGS, l.VF(0))
	assert.Equal(VU1_REGS+0x10, l.VF(1))
	assert.Equal(VU1_REGS+REG_VI+CTRL_STATUS*QWORD, l.VI(CTRL_STATUS))
	assert.Equal(VU1_REGS+REG_ACC, l.ACC())

	start, end := l.MicroRange(0x4008, 16)
	assert.Equal(VU1_MICRO+8, start)
	assert.Equal(VU1_MICRO+24, end)

	assert.Panics(func() { UnitLayout(2) })
}

func TestTranslate(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		unit    int
		index   int32
		offset  int
		aliased bool
	}{
		{0, 0x000, VU0_DATA, false},
		{0, 0x0ff, VU0_DATA + 0xff0, false},
		{0, 0x100, VU0_DATA, false},
		{0, VU0_ALIAS_THRESHOLD - 1, VU0_DATA + 0xff0, false},
		{0, VU0_ALIAS_THRESHOLD, VU1_REGS, true},
		{0, VU0_ALIAS_THRESHOLD + 1, VU1_REGS + 0x10, true},
		{0, 0x43f, VU1_REGS + 0x3f0, true},
		{0, 0x440, VU1_REGS, true},
		{0, -1, VU0_DATA + 0xff0, false},
		{1, 0x000, VU1_DATA, false},
		{1, 0x3ff, VU1_DATA + 0x3ff0, false},
		{1, 0x400, VU1_DATA, false},
		{1, -1, VU1_DATA + 0x3ff0, false},
	}

	for _, entry := range table {
		assert.Equal(entry.offset, Translate(entry.unit, entry.index), "%+v", entry)
		assert.Equal(entry.aliased, Aliased(entry.unit, entry.index), "%+v", entry)
	}

	// The alias exposes unit 1's VF and VI registers.
	l := UnitLayout(1)
	assert.Equal(l.VF(5), Translate(0, VU0_ALIAS_THRESHOLD+5))
	assert.Equal(l.VI(3), Translate(0, VU0_ALIAS_THRESHOLD+VF_COUNT+3))
}

func TestFreezeThaw(t *testing.T) {
	assert := assert.New(t)

	arena := newArena(t)
	for n := range arena.Bytes() {
		arena.Bytes()[n] = byte(n*7 + n>>8)
	}
	// Padding between regions is not part of the frame.
	saved := bytes.Clone(arena.Bytes())

	var buf bytes.Buffer
	assert.NoError(arena.Freeze(&buf, "vu"))

	frame := buf.Bytes()
	arena.Reset()

	assert.NoError(arena.Thaw(bytes.NewReader(frame), "vu"))
	for unit := range UNITS {
		l := UnitLayout(unit)
		assert.Equal(saved[l.Data:l.Data+l.DataSize], arena.Data(unit))
		assert.Equal(saved[l.Micro:l.Micro+l.MicroSize], arena.Micro(unit))
		assert.Equal(saved[l.VF(0):l.VF(0)+REG_VF_SIZE+REG_VI_SIZE], arena.Bytes()[l.VF(0):l.VF(0)+REG_VF_SIZE+REG_VI_SIZE])
		assert.Equal(saved[l.ACC():l.ACC()+REG_ACC_SIZE], arena.Bytes()[l.ACC():l.ACC()+REG_ACC_SIZE])
		assert.Equal(saved[l.Code():l.Code()+REG_CODE_SIZE], arena.Bytes()[l.Code():l.Code()+REG_CODE_SIZE])
	}

	// Refreezing gives the identical frame.
	var again bytes.Buffer
	assert.NoError(arena.Freeze(&again, "vu"))
	assert.Equal(frame, again.Bytes())
}

func TestThawRejects(t *testing.T) {
	assert := assert.New(t)

	arena := newArena(t)
	var buf bytes.Buffer
	assert.NoError(arena.Freeze(&buf, "vu"))
	frame := buf.Bytes()

	assert.ErrorIs(arena.Thaw(bytes.NewReader(frame), "other"), ErrFrameTag)

	bad := bytes.Clone(frame)
	bad[0] = 'X'
	assert.ErrorIs(arena.Thaw(bytes.NewReader(bad), "vu"), ErrFrameMagic)

	// Corrupt unit 0's data size: magic(4) version(4) tag(2+2) acc(4+16) code(4+4)
	arena.Store32(VU0_DATA, 0xdeadbeef)
	bad = bytes.Clone(frame)
	bad[4+4+2+2+4+16+4+4] = 0xff
	err := arena.Thaw(bytes.NewReader(bad), "vu")
	var esize *ErrFrameSize
	assert.True(errors.As(err, &esize))
	assert.Equal(0, esize.Unit)
	assert.Equal("data", esize.Field)
	// Rejected frames leave the arena untouched.
	assert.Equal(uint32(0xdeadbeef), arena.Load32(VU0_DATA))

	assert.Error(arena.Thaw(bytes.NewReader(frame[:100]), "vu"))
}
