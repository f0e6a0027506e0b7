// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package vu

import (
	"encoding/binary"

	"github.com/ezrec/vurec/fpu"
	"github.com/ezrec/vurec/memory"
)

// VifRegs is the part of the DMA interface a unit reads.
type VifRegs struct {
	Top  uint16 // Double buffer top.
	ITop uint16 // Double buffer item top.
}

// Unit is the architectural state of one vector unit. Registers are
// stored in the arena; the unit only keeps the issue-side flag values and
// pipeline state.
type Unit struct {
	Index  int
	Layout memory.Layout
	Vif    *VifRegs
	Cycle  uint64

	// EndPending is set when an E bit pair sat in a branch delay slot: the
	// program ends after the pair at the branch destination.
	EndPending bool

	// Flag values as computed at issue. The architectural copies in the
	// register file update when the FMAC pipe commits.
	MacLive    uint32
	StatusLive uint32
	ClipLive   uint32

	arena *memory.Arena
	pipes pipelines
}

// VF0 is the constant content of vector register 0.
var VF0 = [4]uint32{0, 0, 0, fpu.ONE}

// NewUnit binds a unit to its part of the arena.
func NewUnit(arena *memory.Arena, index int, vif *VifRegs) (u *Unit) {
	u = &Unit{
		Index:  index,
		Layout: memory.UnitLayout(index),
		Vif:    vif,
		arena:  arena,
	}
	return
}

// Arena returns the memory arena the unit lives in.
func (u *Unit) Arena() *memory.Arena {
	return u.arena
}

// Reset zero-fills the unit's registers and memories, installs VF0 and
// clears the pipelines.
func (u *Unit) Reset() {
	clear(u.arena.Data(u.Index))
	clear(u.arena.Micro(u.Index))
	clear(u.arena.Regs(u.Index))

	u.arena.Store128(u.Layout.VF(0), VF0, int(MASK_XYZW))

	u.Cycle = 0
	u.EndPending = false
	u.MacLive = 0
	u.StatusLive = 0
	u.ClipLive = 0
	u.pipes = pipelines{}
}

// VF reads a vector register.
func (u *Unit) VF(r VF) [4]uint32 {
	return u.arena.Load128(u.Layout.VF(int(r)))
}

// SetVF writes the masked lanes of a vector register. VF0 is read-only.
func (u *Unit) SetVF(r VF, q [4]uint32, mask Mask) {
	if r == 0 {
		return
	}
	u.arena.Store128(u.Layout.VF(int(r)), q, int(mask))
}

// ACC reads the accumulator.
func (u *Unit) ACC() [4]uint32 {
	return u.arena.Load128(u.Layout.ACC())
}

// SetACC writes the masked lanes of the accumulator.
func (u *Unit) SetACC(q [4]uint32, mask Mask) {
	u.arena.Store128(u.Layout.ACC(), q, int(mask))
}

// VI reads an integer register.
func (u *Unit) VI(r VI) uint16 {
	return binary.LittleEndian.Uint16(u.arena.Bytes()[u.Layout.VI(int(r)):])
}

// SetVI writes an integer register. VI0 is read-only.
func (u *Unit) SetVI(r VI, value uint16) {
	if r == 0 {
		return
	}
	binary.LittleEndian.PutUint16(u.arena.Bytes()[u.Layout.VI(int(r)):], value)
}

// Ctrl reads a 32-bit control register.
func (u *Unit) Ctrl(r VI) uint32 {
	return u.arena.Load32(u.Layout.VI(int(r)))
}

// SetCtrl writes a 32-bit control register.
func (u *Unit) SetCtrl(r VI, value uint32) {
	u.arena.Store32(u.Layout.VI(int(r)), value)
}

// TPC returns the program counter, in bytes.
func (u *Unit) TPC() uint32 {
	return u.Ctrl(TPC)
}

// SetTPC sets the program counter, wrapped to micro memory.
func (u *Unit) SetTPC(pc uint32) {
	u.SetCtrl(TPC, pc&u.PCMask())
}

// PCMask is the program counter wrap mask.
func (u *Unit) PCMask() uint32 {
	return uint32(u.Layout.MicroSize-1) &^ (memory.PAIR_SIZE - 1)
}

// Code returns the current instruction word.
func (u *Unit) Code() uint32 {
	return u.arena.Load32(u.Layout.Code())
}

// SetCode records the current instruction word.
func (u *Unit) SetCode(code uint32) {
	u.arena.Store32(u.Layout.Code(), code)
}

// Fetch reads the pair at a micro memory byte address.
func (u *Unit) Fetch(pc uint32) (upper Word, lower Word) {
	offset := u.Layout.Micro + int(pc&u.PCMask())
	lower = Word(u.arena.Load32(offset))
	upper = Word(u.arena.Load32(offset + 4))
	return
}

// WriteMicro copies pair words into micro memory at a byte address.
func (u *Unit) WriteMicro(addr uint32, pairs []uint64) {
	for n, pair := range pairs {
		offset := u.Layout.Micro + int((addr+uint32(n*memory.PAIR_SIZE))&u.PCMask())
		binary.LittleEndian.PutUint64(u.arena.Bytes()[offset:], pair)
	}
}
