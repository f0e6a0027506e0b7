// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"encoding/binary"
	"errors"
	"log"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Arena is the single allocation backing both vector units.
type Arena struct {
	Verbose bool // Set to enable verbose logging.

	mem []byte
}

// Allocate reserves and zero-fills the arena. Failure is fatal for the
// subsystem: the caller must not start emulation.
func Allocate() (arena *Arena, err error) {
	err = validate()
	if err != nil {
		return
	}

	mem, err := unix.Mmap(-1, 0, ARENA_SIZE, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		err = errors.Join(ErrOutOfMemory, err)
		return
	}

	if len(mem) != ARENA_SIZE || uintptr(unsafe.Pointer(&mem[0]))%QWORD != 0 {
		_ = unix.Munmap(mem)
		err = ErrLayout
		return
	}

	arena = &Arena{mem: mem}

	return
}

// Bytes returns the whole arena.
func (arena *Arena) Bytes() []byte {
	return arena.mem
}

// Reset zero-fills the arena.
func (arena *Arena) Reset() {
	if arena.Verbose {
		log.Printf("arena: reset")
	}
	clear(arena.mem)
}

// Shutdown releases the arena. Further use is an error.
func (arena *Arena) Shutdown() (err error) {
	if arena.mem == nil {
		err = ErrShutdown
		return
	}

	if arena.Verbose {
		log.Printf("arena: shutdown")
	}

	err = unix.Munmap(arena.mem)
	arena.mem = nil

	return
}

// Data returns a unit's data memory.
func (arena *Arena) Data(unit int) []byte {
	l := UnitLayout(unit)
	return arena.mem[l.Data : l.Data+l.DataSize]
}

// Micro returns a unit's microcode memory.
func (arena *Arena) Micro(unit int) []byte {
	l := UnitLayout(unit)
	return arena.mem[l.Micro : l.Micro+l.MicroSize]
}

// Regs returns a unit's register file block.
func (arena *Arena) Regs(unit int) []byte {
	l := UnitLayout(unit)
	return arena.mem[l.Regs : l.Regs+REGS_SIZE]
}

// Load32 reads a little-endian word at an arena offset.
func (arena *Arena) Load32(offset int) uint32 {
	return binary.LittleEndian.Uint32(arena.mem[offset:])
}

// Store32 writes a little-endian word at an arena offset.
func (arena *Arena) Store32(offset int, value uint32) {
	binary.LittleEndian.PutUint32(arena.mem[offset:], value)
}

// Load128 reads the four words of a quadword at an arena offset.
func (arena *Arena) Load128(offset int) (q [4]uint32) {
	for n := range q {
		q[n] = binary.LittleEndian.Uint32(arena.mem[offset+n*4:])
	}
	return
}

// Store128 writes the four words of a quadword, only for lanes set in the
// xyzw mask (x is bit 3).
func (arena *Arena) Store128(offset int, q [4]uint32, xyzw int) {
	for n := range q {
		if xyzw&(8>>n) != 0 {
			binary.LittleEndian.PutUint32(arena.mem[offset+n*4:], q[n])
		}
	}
}
