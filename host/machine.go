package host

import (
	"encoding/binary"
)

// Machine is the state of the host while a block runs.
type Machine struct {
	XMM [XMM_COUNT][4]uint32 // SSE registers, lane 0 is x.
	GPR [GPR_COUNT]uint32    // General purpose registers, low 32 bits.
	Mem []byte               // Arena, addressed through R15.

	cmpA, cmpB uint32 // Operands of the last CMP or TEST.
}

// Op is one emitted host instruction, or a structured group of them.
type Op struct {
	Name string         // Mnemonic, for listings.
	Code []byte         // Native encoding.
	Exec func(*Machine) // Effect on the machine.
}

// Run executes a list of ops in order.
func (m *Machine) Run(ops []Op) {
	for _, op := range ops {
		op.Exec(m)
	}
}

func (m *Machine) addr(mem Mem) int {
	addr := int(mem.Disp)
	if mem.Indexed {
		addr += int(m.GPR[mem.Index])
	}
	return addr
}

func (m *Machine) load32(mem Mem) uint32 {
	return binary.LittleEndian.Uint32(m.Mem[m.addr(mem):])
}

func (m *Machine) store32(mem Mem, v uint32) {
	binary.LittleEndian.PutUint32(m.Mem[m.addr(mem):], v)
}

func (m *Machine) load128(mem Mem) (q [4]uint32) {
	addr := m.addr(mem)
	for n := range q {
		q[n] = binary.LittleEndian.Uint32(m.Mem[addr+n*4:])
	}
	return
}

func (m *Machine) store128(mem Mem, q [4]uint32) {
	addr := m.addr(mem)
	for n := range q {
		binary.LittleEndian.PutUint32(m.Mem[addr+n*4:], q[n])
	}
}

func (m *Machine) compare(a, b uint32) {
	m.cmpA, m.cmpB = a, b
}

// Test evaluates a condition code against the last comparison.
func (m *Machine) Test(cc Cond) bool {
	a, b := m.cmpA, m.cmpB
	switch cc {
	case COND_B:
		return a < b
	case COND_AE:
		return a >= b
	case COND_E:
		return a == b
	case COND_NE:
		return a != b
	case COND_L:
		return int32(a) < int32(b)
	case COND_GE:
		return int32(a) >= int32(b)
	case COND_LE:
		return int32(a) <= int32(b)
	case COND_G:
		return int32(a) > int32(b)
	}
	panic(f("host: unknown condition %#x", int(cc)))
}
