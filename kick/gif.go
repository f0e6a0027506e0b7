package kick

import (
	"encoding/binary"
)

// Flag is the data format of a GIF tag.
type Flag int

const (
	FLAG_PACKED   = Flag(0) // packed
	FLAG_REGLIST  = Flag(1) // reglist
	FLAG_IMAGE    = Flag(2) // image
	FLAG_DISABLED = Flag(3) // disabled
)

var flagName = [...]string{
	FLAG_PACKED:   "packed",
	FLAG_REGLIST:  "reglist",
	FLAG_IMAGE:    "image",
	FLAG_DISABLED: "disabled",
}

func (flag Flag) String() string {
	return flagName[flag&3]
}

// Tag is the header quadword of a GIF packet.
type Tag struct {
	NLoop uint32 // Repeat count.
	EOP   bool   // Last tag of the packet.
	Flag  Flag
	NReg  uint32 // Registers per loop, 1 to 16.
	Regs  uint64 // Register descriptors, four bits each.
}

// ParseTag decodes a tag quadword.
func ParseTag(q []byte) (tag Tag) {
	lo := binary.LittleEndian.Uint64(q[0:])
	tag = Tag{
		NLoop: uint32(lo & 0x7fff),
		EOP:   lo&(1<<15) != 0,
		Flag:  Flag(lo>>58) & 3,
		NReg:  uint32(lo>>60) & 0xf,
		Regs:  binary.LittleEndian.Uint64(q[8:]),
	}
	if tag.NReg == 0 {
		tag.NReg = 16
	}
	return
}

// Qwords returns the number of data quadwords following the tag.
func (tag Tag) Qwords() int {
	switch tag.Flag {
	case FLAG_PACKED:
		return int(tag.NLoop * tag.NReg)
	case FLAG_REGLIST:
		return int(tag.NLoop*tag.NReg+1) / 2
	}
	return int(tag.NLoop)
}

// Size walks the tags starting at a quadword of the window and returns the
// packet length in quadwords. The walk stops after the EOP tag, and the
// length never exceeds the window.
func Size(data []byte, qword uint32) (qwords int) {
	ring := &Ring{Data: data, ReadIndex: int(qword)}
	window := ring.Qwords()

	for qwords < window {
		tag := ParseTag(ring.Peek())
		n := 1 + tag.Qwords()
		qwords += n
		ring.Skip(n)
		if tag.EOP {
			break
		}
	}

	return min(qwords, window)
}

// Copy copies a packet of qwords quadwords starting at qword into dst,
// wrapping to the start of the window. It returns the bytes copied.
func Copy(dst []byte, data []byte, qword uint32, qwords int) (n int) {
	ring := &Ring{Data: data, ReadIndex: int(qword)}
	for run := range ring.Receive(qwords) {
		n += copy(dst[n:], run)
	}
	return
}
