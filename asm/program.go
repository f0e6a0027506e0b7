package asm

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/vu"
)

// Line is one assembled instruction pair.
type Line struct {
	LineNo int      // Source line, or macro body line.
	PC     uint32   // Micro memory byte address.
	Words  []string // Source words.
	Upper  vu.Word
	Lower  vu.Word

	lower slot
}

// Pair returns the pair as it is stored in micro memory.
func (line *Line) Pair() uint64 {
	return uint64(line.Upper)<<32 | uint64(line.Lower)
}

// Program is an assembled microcode program.
type Program struct {
	Lines []Line
	Label map[string]uint32
}

// Pairs iterates over the pairs by micro memory address.
func (prog *Program) Pairs() iter.Seq2[uint32, uint64] {
	return func(yield func(pc uint32, pair uint64) bool) {
		for n := range prog.Lines {
			line := &prog.Lines[n]
			if !yield(line.PC, line.Pair()) {
				return
			}
		}
	}
}

// Binary returns the program image.
func (prog *Program) Binary() (pairs []uint64) {
	for _, pair := range prog.Pairs() {
		pairs = append(pairs, pair)
	}
	return
}

// Load copies the program into a unit's micro memory at a byte address.
func (prog *Program) Load(u *vu.Unit, addr uint32) {
	u.WriteMicro(addr, prog.Binary())
}

// Size returns the micro memory bytes the program occupies.
func (prog *Program) Size() uint32 {
	return uint32(len(prog.Lines) * memory.PAIR_SIZE)
}

// Debug returns the source line of the pair at pc, or nil.
func (prog *Program) Debug(pc uint32) *Line {
	n := int(pc / memory.PAIR_SIZE)
	if pc%memory.PAIR_SIZE != 0 || n >= len(prog.Lines) {
		return nil
	}
	return &prog.Lines[n]
}

// Listing returns the disassembly of the program.
func (prog *Program) Listing() (text string, err error) {
	var sb strings.Builder
	for n := range prog.Lines {
		line := &prog.Lines[n]

		var p vu.Pair
		p, err = vu.DecodePair(line.PC, line.Upper, line.Lower)
		if err != nil {
			return
		}
		fmt.Fprintf(&sb, "0x%04x: %016x  %v\n", line.PC, line.Pair(), p)
	}
	text = sb.String()
	return
}
