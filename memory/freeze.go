// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"encoding/binary"
	"errors"
	"io"
)

// FRAME_MAGIC opens every save-state frame.
const FRAME_MAGIC = "VUFZ"

// FRAME_VERSION is the current frame layout.
const FRAME_VERSION = uint32(1)

// frameSection is one fixed-order part of a unit's frame.
type frameSection struct {
	name   string
	offset func(l Layout) int
	size   func(l Layout) int
}

// Per-unit order: accumulator, instruction word, data memory, microcode,
// vector registers, integer registers.
var frameSections = []frameSection{
	{"acc", Layout.ACC, func(Layout) int { return REG_ACC_SIZE }},
	{"code", Layout.Code, func(Layout) int { return REG_CODE_SIZE }},
	{"data", func(l Layout) int { return l.Data }, func(l Layout) int { return l.DataSize }},
	{"micro", func(l Layout) int { return l.Micro }, func(l Layout) int { return l.MicroSize }},
	{"vf", func(l Layout) int { return l.VF(0) }, func(Layout) int { return REG_VF_SIZE }},
	{"vi", func(l Layout) int { return l.VI(0) }, func(Layout) int { return REG_VI_SIZE }},
}

// Freeze writes both units' state under a tag. Pipelines must be flushed
// by the caller first.
func (arena *Arena) Freeze(w io.Writer, tag string) (err error) {
	if arena.mem == nil {
		err = ErrShutdown
		return
	}

	_, err = io.WriteString(w, FRAME_MAGIC)
	if err != nil {
		return
	}

	err = binary.Write(w, binary.LittleEndian, FRAME_VERSION)
	if err != nil {
		return
	}

	err = writeTag(w, tag)
	if err != nil {
		return
	}

	for unit := range UNITS {
		l := UnitLayout(unit)
		for _, sec := range frameSections {
			size := sec.size(l)
			err = binary.Write(w, binary.LittleEndian, uint32(size))
			if err != nil {
				return
			}
			offset := sec.offset(l)
			_, err = w.Write(arena.mem[offset : offset+size])
			if err != nil {
				return
			}
		}
	}

	return
}

// Thaw reads a frame written by Freeze. Nothing is modified unless the
// whole frame validates.
func (arena *Arena) Thaw(r io.Reader, tag string) (err error) {
	if arena.mem == nil {
		err = ErrShutdown
		return
	}

	magic := make([]byte, len(FRAME_MAGIC))
	_, err = io.ReadFull(r, magic)
	if err != nil {
		return
	}
	if string(magic) != FRAME_MAGIC {
		err = ErrFrameMagic
		return
	}

	var version uint32
	err = binary.Read(r, binary.LittleEndian, &version)
	if err != nil {
		return
	}
	if version != FRAME_VERSION {
		err = &ErrFrameSize{Unit: -1, Field: "version", Got: version, Want: FRAME_VERSION}
		return
	}

	got, err := readTag(r)
	if err != nil {
		return
	}
	if got != tag {
		err = ErrFrameTag
		return
	}

	type pending struct {
		offset int
		data   []byte
	}
	var staged []pending

	for unit := range UNITS {
		l := UnitLayout(unit)
		for _, sec := range frameSections {
			var size uint32
			err = binary.Read(r, binary.LittleEndian, &size)
			if err != nil {
				return
			}
			want := uint32(sec.size(l))
			if size != want {
				err = &ErrFrameSize{Unit: unit, Field: sec.name, Got: size, Want: want}
				return
			}
			data := make([]byte, size)
			_, err = io.ReadFull(r, data)
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				return
			}
			staged = append(staged, pending{offset: sec.offset(l), data: data})
		}
	}

	for _, p := range staged {
		copy(arena.mem[p.offset:], p.data)
	}

	return
}

func writeTag(w io.Writer, tag string) (err error) {
	err = binary.Write(w, binary.LittleEndian, uint16(len(tag)))
	if err != nil {
		return
	}
	_, err = io.WriteString(w, tag)
	return
}

func readTag(r io.Reader) (tag string, err error) {
	var size uint16
	err = binary.Read(r, binary.LittleEndian, &size)
	if err != nil {
		return
	}
	buf := make([]byte, size)
	_, err = io.ReadFull(r, buf)
	if err != nil {
		return
	}
	tag = string(buf)
	return
}
