package emulator

import (
	"bytes"
	"encoding/binary"
	"maps"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vurec/asm"
	"github.com/ezrec/vurec/block"
	"github.com/ezrec/vurec/config"
	"github.com/ezrec/vurec/kick"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/vu"
)

func newEmulator(t *testing.T, cfg config.Config, handler kick.Handler) *Emulator {
	emu, err := NewEmulator(cfg, handler)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = emu.Close() })
	return emu
}

func load(t *testing.T, emu *Emulator, unit int, lines ...string) *asm.Program {
	t.Helper()

	assembler := &asm.Assembler{}
	for key, value := range emu.Defines() {
		assembler.Predefine(key, value)
	}
	prog, err := assembler.Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	if err = emu.Load(unit, prog, 0); err != nil {
		t.Fatal(err)
	}
	return prog
}

func vec(x, y, z, w float32) [4]uint32 {
	return [4]uint32{math.Float32bits(x), math.Float32bits(y), math.Float32bits(z), math.Float32bits(w)}
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, config.Default(), nil)

	assert.False(emu.Verbose)
	for n, u := range emu.Unit {
		assert.Equal(n, u.Index)
		assert.Equal(vu.VF0, u.VF(0))
		assert.Same(&emu.Vif[n], u.Vif)
		assert.Equal(emu.Recompiler[n], emu.Exec[n])
	}

	defines := maps.Collect(emu.Defines())
	assert.Equal("2", defines["UNITS"])
	assert.Equal("0x4000", defines["VU1_MEM_SIZE"])

	_, err := emu.Run(2, 0)
	assert.ErrorIs(err, ErrUnit)
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, config.Default(), nil)
	load(t, emu, 1,
		"       add.xyzw vf3, vf1, vf2 | iaddiu vi2, vi0, 4",
		"loop:  nop | isubiu vi2, vi2, 1",
		"       nop | ibne vi2, vi0, loop",
		"       nop | iaddiu vi1, vi1, 1",
		"       nop[e]",
		"       nop",
	)

	u := emu.Unit[1]
	u.SetVF(1, vec(1.5, -2, 0, 1), vu.MASK_XYZW)
	u.SetVF(2, vec(2.25, 2, -1, 1), vu.MASK_XYZW)

	done, err := emu.Run(1, 0)
	assert.NoError(err)
	assert.True(done)

	assert.Equal(vec(3.75, 0, -1, 2), u.VF(3))
	assert.Equal(uint16(4), u.VI(1))
	assert.Equal(uint16(0), u.VI(2))
	assert.Equal(uint32(48), u.TPC())
	assert.Equal(0, emu.LineNo(1))

	stats, err := emu.Stats(1)
	assert.NoError(err)
	assert.Equal(3, stats.NRows())

	blk := emu.Recompiler[1].Cache().Lookup(8)
	if assert.NotNil(blk) {
		assert.Equal(3, blk.Runs)
	}

	text, err := emu.Listing(1, 0)
	assert.NoError(err)
	assert.Contains(text, "ret")

	// The other unit is untouched.
	assert.Equal(uint16(0), emu.Unit[0].VI(1))
}

func TestKick(t *testing.T) {
	assert := assert.New(t)

	var mutex sync.Mutex
	var packets []kick.Packet
	handler := func(p kick.Packet) {
		mutex.Lock()
		defer mutex.Unlock()
		p.Data = bytes.Clone(p.Data)
		packets = append(packets, p)
	}

	emu := newEmulator(t, config.Default(), handler)
	load(t, emu, 1,
		"nop | iaddiu vi3, vi0, 0x10",
		"nop[e] | xgkick vi3",
		"nop",
	)

	// PACKED, one register, two loops, end of packet.
	data := emu.Arena.Data(1)
	tag := uint64(2) | 1<<15 | 1<<60
	binary.LittleEndian.PutUint64(data[0x10*memory.QWORD:], tag)
	data[0x11*memory.QWORD] = 0xaa
	data[0x12*memory.QWORD] = 0xbb

	done, err := emu.Run(1, 0)
	assert.NoError(err)
	assert.True(done)

	emu.Sync()

	mutex.Lock()
	defer mutex.Unlock()
	if assert.Equal(1, len(packets)) {
		p := packets[0]
		assert.Equal(uint32(0x10), p.Qword)
		assert.Equal(3, p.Qwords())
		assert.Equal(byte(0xaa), p.Data[1*memory.QWORD])
		assert.Equal(byte(0xbb), p.Data[2*memory.QWORD])
	}
	assert.Equal(kick.Stats{Packets: 1, Qwords: 3}, emu.Kick.Stats())
}

func TestCycleBudget(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.CycleBudget = 100
	emu := newEmulator(t, cfg, nil)
	load(t, emu, 0,
		"spin: nop | b spin",
		"      nop | iaddiu vi1, vi1, 1",
	)

	done, err := emu.Run(0, 0)
	assert.NoError(err)
	assert.False(done)
	assert.Equal(uint16(50), emu.Unit[0].VI(1))

	done, err = emu.Continue(0)
	assert.NoError(err)
	assert.False(done)
	assert.Equal(uint16(100), emu.Unit[0].VI(1))
	assert.Equal(1, emu.LineNo(0))
}

func TestRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, config.Default(), nil)
	prog := load(t, emu, 0,
		"nop | iaddiu vi1, vi1, 1",
		"nop",
		"nop[e]",
		"nop",
	)
	nop := uint64(prog.Lines[1].Upper)
	assert.NoError(emu.WriteMicro(0, 8, []uint64{nop<<32 | 0x80000036}))

	_, err := emu.Run(0, 0)

	var runtime *ErrRuntime
	if assert.ErrorAs(err, &runtime) {
		assert.Equal(0, runtime.Unit)
		assert.Equal(1, runtime.LineNo)
	}
	var blockErr *block.ErrBlock
	if assert.ErrorAs(err, &blockErr) {
		assert.Equal(uint32(8), blockErr.PC)
	}
	assert.ErrorIs(err, vu.ErrOpcodeDecode)
}

func TestFreezeThaw(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, config.Default(), nil)
	load(t, emu, 1,
		"nop | iaddiu vi5, vi0, 0x1234",
		"nop[e] | iaddiu vi6, vi0, 0x55",
		"nop",
	)
	emu.Unit[1].SetVF(7, vec(1, 2, 3, 4), vu.MASK_XYZW)
	_, err := emu.Run(1, 0)
	assert.NoError(err)

	var frame bytes.Buffer
	assert.NoError(emu.Freeze(&frame, "test"))

	assert.NoError(emu.Reset())
	assert.Equal(uint16(0), emu.Unit[1].VI(5))
	assert.Zero(emu.Recompiler[1].Cache().Len())

	assert.NoError(emu.Thaw(bytes.NewReader(frame.Bytes()), "test"))
	u := emu.Unit[1]
	assert.Equal(uint16(0x1234), u.VI(5))
	assert.Equal(uint16(0x55), u.VI(6))
	assert.Equal(vec(1, 2, 3, 4), u.VF(7))

	// The thawed microcode runs again.
	u.SetVI(5, 0)
	_, err = emu.Run(1, 0)
	assert.NoError(err)
	assert.Equal(uint16(0x1234), u.VI(5))
}

func TestClose(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator(config.Default(), nil)
	assert.NoError(err)

	assert.NoError(emu.Close())
	assert.NoError(emu.Close())

	_, err = emu.Run(0, 0)
	assert.ErrorIs(err, ErrClosed)
	assert.ErrorIs(emu.Reset(), ErrClosed)
}
