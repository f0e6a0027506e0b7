// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"fmt"
	"iter"
	"maps"
)

// Arena placement, in bytes from the start of the arena.
const (
	VU0_DATA   = 0x0000  // Unit 0 data memory.
	VU0_MICRO  = 0x1000  // Unit 0 microcode.
	VU0_REGS   = 0x2000  // Unit 0 register file.
	VU1_REGS   = 0x4000  // Unit 1 register file, aliased from unit 0 data space.
	VU1_MICRO  = 0x8000  // Unit 1 microcode.
	VU1_DATA   = 0xc000  // Unit 1 data memory.
	ARENA_SIZE = 0x10000 // Total arena size.
)

// Per-unit memory sizes.
const (
	VU0_MEM_SIZE   = 0x1000 // Unit 0 data and microcode size.
	VU1_MEM_SIZE   = 0x4000 // Unit 1 data and microcode size.
	REGS_SIZE      = 0x800  // Register file block size.
	REG_WINDOW     = 0x400  // Part of the register file visible through the alias.
	QWORD          = 16     // Bytes per quadword.
	UNITS          = 2      // Number of vector units.
	PAIR_SIZE      = 8      // Bytes per upper/lower instruction pair.
	VF_COUNT       = 32     // Vector float registers.
	VI_COUNT       = 16     // Integer registers.
	VI_SLOTS       = 32     // Integer register slots, including control registers.
	REG_VF         = 0x000  // Offset of VF0 within a register file.
	REG_VI         = 0x200  // Offset of VI0 within a register file.
	REG_ACC        = 0x400  // Offset of the accumulator.
	REG_CODE       = 0x410  // Offset of the current instruction word.
	REG_VF_SIZE    = VF_COUNT * QWORD
	REG_VI_SIZE    = VI_SLOTS * QWORD
	REG_ACC_SIZE   = QWORD
	REG_CODE_SIZE  = 4
	REG_CTRL_FIRST = VI_COUNT // First control register slot.
)

// Control register slots, following the integer registers.
const (
	CTRL_STATUS = 16 // status flags
	CTRL_MAC    = 17 // mac flags
	CTRL_CLIP   = 18 // clip flags
	CTRL_R      = 20 // random register
	CTRL_I      = 21 // immediate register
	CTRL_Q      = 22 // division result
	CTRL_P      = 23 // EFU result
	CTRL_TPC    = 26 // program counter
	CTRL_CLIP_P = 27 // previous clip flags
)

// Address translation constants, in quadword indices.
const (
	VU0_ALIAS_THRESHOLD = 0x400 // Unit 0 indices at or above this alias unit 1 registers.
	VU0_ALIAS_MASK      = 0x43f // Mask applied to aliased unit 0 indices.
	VU0_WRAP_MASK       = 0x0ff // Mask applied to plain unit 0 indices.
	VU1_WRAP_MASK       = 0x3ff // Mask applied to all unit 1 indices.
)

// Layout is the placement of one unit's storage within the arena.
type Layout struct {
	Unit      int // Unit number.
	Data      int // Arena offset of data memory.
	DataSize  int // Bytes of data memory.
	Micro     int // Arena offset of microcode.
	MicroSize int // Bytes of microcode.
	Regs      int // Arena offset of the register file.
}

var layouts = [UNITS]Layout{
	{Unit: 0, Data: VU0_DATA, DataSize: VU0_MEM_SIZE, Micro: VU0_MICRO, MicroSize: VU0_MEM_SIZE, Regs: VU0_REGS},
	{Unit: 1, Data: VU1_DATA, DataSize: VU1_MEM_SIZE, Micro: VU1_MICRO, MicroSize: VU1_MEM_SIZE, Regs: VU1_REGS},
}

var _layout_defines = map[string]string{
	"VU0_MEM_SIZE":        fmt.Sprintf("%#x", VU0_MEM_SIZE),
	"VU1_MEM_SIZE":        fmt.Sprintf("%#x", VU1_MEM_SIZE),
	"VU0_ALIAS_THRESHOLD": fmt.Sprintf("%#x", VU0_ALIAS_THRESHOLD),
	"QWORD":               fmt.Sprintf("%v", QWORD),
	"PAIR_SIZE":           fmt.Sprintf("%v", PAIR_SIZE),
}

// UnitLayout returns the layout of a unit.
func UnitLayout(unit int) Layout {
	if unit < 0 || unit >= UNITS {
		panic(ErrUnit(unit))
	}
	return layouts[unit]
}

// Defines returns assembler equates for the memory layout.
func Defines() iter.Seq2[string, string] {
	return maps.All(_layout_defines)
}

// VF returns the arena offset of a vector register.
func (l Layout) VF(index int) int {
	return l.Regs + REG_VF + (index&(VF_COUNT-1))*QWORD
}

// VI returns the arena offset of an integer or control register slot.
func (l Layout) VI(index int) int {
	return l.Regs + REG_VI + (index&(VI_SLOTS-1))*QWORD
}

// ACC returns the arena offset of the accumulator.
func (l Layout) ACC() int {
	return l.Regs + REG_ACC
}

// Code returns the arena offset of the current instruction word.
func (l Layout) Code() int {
	return l.Regs + REG_CODE
}

// MicroRange returns the arena range covered by a microcode byte range,
// wrapped to the unit's microcode size.
func (l Layout) MicroRange(addr uint32, size uint32) (start int, end int) {
	if size > uint32(l.MicroSize) {
		size = uint32(l.MicroSize)
	}
	start = l.Micro + int(addr)%l.MicroSize
	end = start + int(size)
	return
}

// validate checks the placement invariants that the alias window relies on.
func validate() (err error) {
	for _, l := range layouts {
		if l.Data%QWORD != 0 || l.Micro%QWORD != 0 || l.Regs%QWORD != 0 {
			return ErrLayout
		}
		if l.Data+l.DataSize > ARENA_SIZE || l.Micro+l.MicroSize > ARENA_SIZE || l.Regs+REGS_SIZE > ARENA_SIZE {
			return ErrLayout
		}
	}

	// Unit 0 aliased indices must land on unit 1's VF/VI window.
	lo := VU0_DATA + (VU0_ALIAS_THRESHOLD&VU0_ALIAS_MASK)*QWORD
	hi := VU0_DATA + (VU0_ALIAS_MASK*QWORD + QWORD)
	if lo != VU1_REGS || hi != VU1_REGS+REG_WINDOW {
		return ErrLayout
	}
	if REG_VF_SIZE+REG_VI_SIZE != REG_WINDOW {
		return ErrLayout
	}

	return
}
