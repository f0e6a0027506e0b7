package regalloc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/vu"
)

func newPool() (*host.Builder, *Pool, memory.Layout) {
	b := host.NewBuilder(host.BASELINE)
	layout := memory.UnitLayout(1)
	return b, NewPool(b, layout), layout
}

func TestBindLoadsOnce(t *testing.T) {
	assert := assert.New(t)

	b, pool, _ := newPool()
	h := pool.Bind(VF(1), MODE_READ)
	assert.Equal(KIND_XMM, h.Kind)
	assert.Equal(h, pool.Bind(VF(1), MODE_RW))
	pool.Bind(VF(2), MODE_WRITE)

	assert.Equal(Stats{Loads: 1}, pool.Stats())
	assert.Equal(1, b.Len())

	pool.FlushAll()
	assert.Equal(Stats{Loads: 1, Stores: 2}, pool.Stats())

	_, ok := pool.Bound(VF(1))
	assert.False(ok)
}

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)

	b, pool, layout := newPool()
	m := &host.Machine{Mem: make([]byte, memory.ARENA_SIZE)}
	for n := range 4 {
		binary.LittleEndian.PutUint32(m.Mem[layout.VF(3)+n*4:], uint32(n+1))
	}
	binary.LittleEndian.PutUint32(m.Mem[layout.VI(5):], 0xdead7fff)

	vf := pool.Bind(VF(3), MODE_READ)
	acc := pool.Bind(ACC, MODE_WRITE)
	b.MovAPS(acc.XMM(), vf.XMM())
	vi := pool.Bind(VI(5), MODE_RW)
	b.AluRI(host.ALU_ADD, vi.GPR(), 1)
	pool.EndInstruction()
	pool.FlushAll()
	m.Run(b.Ops())

	for n := range 4 {
		assert.Equal(uint32(n+1), binary.LittleEndian.Uint32(m.Mem[layout.ACC()+n*4:]))
	}
	assert.Equal(uint32(0xdead8000), binary.LittleEndian.Uint32(m.Mem[layout.VI(5):]))
}

func TestFlushIfDirty(t *testing.T) {
	assert := assert.New(t)

	_, pool, _ := newPool()
	pool.Bind(VI(2), MODE_READ)
	pool.FlushIfDirty(VI(2))
	assert.Equal(0, pool.Stats().Stores)

	pool.Bind(VI(2), MODE_WRITE)
	pool.FlushIfDirty(VI(2))
	pool.FlushIfDirty(VI(2))
	assert.Equal(1, pool.Stats().Stores)

	_, ok := pool.Bound(VI(2))
	assert.True(ok)
}

func TestEviction(t *testing.T) {
	assert := assert.New(t)

	_, pool, _ := newPool()
	for n := range host.XMM_COUNT {
		pool.Bind(VF(vu.VF(n)), MODE_WRITE)
	}
	assert.Panics(func() {
		pool.Bind(VF(20), MODE_READ)
	})

	pool.EndInstruction()
	pool.Bind(VF(15), MODE_READ)
	pool.Bind(VF(20), MODE_READ)

	_, ok := pool.Bound(VF(0))
	assert.False(ok)
	_, ok = pool.Bound(VF(15))
	assert.True(ok)
	assert.Equal(Stats{Loads: 1, Stores: 1, Evictions: 1}, pool.Stats())
}

func TestStarved(t *testing.T) {
	assert := assert.New(t)

	_, pool, _ := newPool()
	for range GPRS {
		pool.Temp(KIND_GPR)
	}

	defer func() {
		err, ok := recover().(*ErrStarved)
		assert.True(ok)
		assert.Equal(KIND_GPR, err.Kind)
	}()
	pool.Bind(VI(1), MODE_READ)
}

func TestTemps(t *testing.T) {
	assert := assert.New(t)

	_, pool, _ := newPool()
	keep := pool.Temp(KIND_GPR)
	pool.Retain(keep)
	drop := pool.Temp(KIND_GPR)
	assert.NotEqual(keep, drop)
	assert.NotEqual(host.RAX, keep.GPR())
	assert.NotEqual(host.R15, keep.GPR())

	pool.EndInstruction()

	// The freed temporary is handed out again, the retained one is not.
	again := pool.Temp(KIND_GPR)
	assert.Equal(drop, again)

	pool.Release(keep)
	pool.Release(again)
	assert.Equal(keep, pool.Temp(KIND_GPR))
}

func TestRefNames(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("vf7", VF(7).String())
	assert.Equal("vi3", VI(3).String())
	assert.Equal("acc", ACC.String())
	assert.Equal(KIND_GPR, VI(3).Kind())
	assert.Equal(KIND_XMM, ACC.Kind())
}
