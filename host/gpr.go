package host

// Alu is a two operand integer operation, by its group 1 extension.
type Alu int

const (
	ALU_ADD = Alu(0) // add
	ALU_OR  = Alu(1) // or
	ALU_AND = Alu(4) // and
	ALU_SUB = Alu(5) // sub
	ALU_XOR = Alu(6) // xor
	ALU_CMP = Alu(7) // cmp
)

var aluName = map[Alu]string{
	ALU_ADD: "add",
	ALU_OR:  "or",
	ALU_AND: "and",
	ALU_SUB: "sub",
	ALU_XOR: "xor",
	ALU_CMP: "cmp",
}

func (op Alu) String() string {
	return aluName[op]
}

func (op Alu) apply(m *Machine, a, b uint32) (r uint32, store bool) {
	switch op {
	case ALU_ADD:
		return a + b, true
	case ALU_OR:
		return a | b, true
	case ALU_AND:
		return a & b, true
	case ALU_SUB:
		return a - b, true
	case ALU_XOR:
		return a ^ b, true
	case ALU_CMP:
		m.compare(a, b)
		return a, false
	}
	panic(f("host: unknown alu op %d", int(op)))
}

// Shift is a shift by immediate, by its group 2 extension.
type Shift int

const (
	SHIFT_SHL = Shift(4) // shl
	SHIFT_SHR = Shift(5) // shr
	SHIFT_SAR = Shift(7) // sar
)

var shiftName = map[Shift]string{
	SHIFT_SHL: "shl",
	SHIFT_SHR: "shr",
	SHIFT_SAR: "sar",
}

func (op Shift) String() string {
	return shiftName[op]
}

// MovRI loads a 32-bit immediate.
func (b *Builder) MovRI(dst GPR, v uint32) {
	code := append(rex(false, 0, 0, int(dst)), 0xb8|byte(dst&7))
	code = append(code, imm32(v)...)
	b.emit("mov", code, func(m *Machine) {
		m.GPR[dst] = v
	})
}

// MovRR copies a register.
func (b *Builder) MovRR(dst, src GPR) {
	b.emit("mov", encodeRR(PFX_NONE, []byte{0x89}, int(src), int(dst)), func(m *Machine) {
		m.GPR[dst] = m.GPR[src]
	})
}

// Load32 reads a 32-bit word from the arena.
func (b *Builder) Load32(dst GPR, mem Mem) {
	b.emit("mov", encodeRM(PFX_NONE, []byte{0x8b}, int(dst), mem), func(m *Machine) {
		m.GPR[dst] = m.load32(mem)
	})
}

// Load16 reads a zero extended 16-bit halfword from the arena.
func (b *Builder) Load16(dst GPR, mem Mem) {
	b.emit("movzx", encodeRM(PFX_NONE, []byte{0x0f, 0xb7}, int(dst), mem), func(m *Machine) {
		m.GPR[dst] = m.load32(mem) & 0xffff
	})
}

// Store32 writes a 32-bit word to the arena.
func (b *Builder) Store32(mem Mem, src GPR) {
	b.emit("mov", encodeRM(PFX_NONE, []byte{0x89}, int(src), mem), func(m *Machine) {
		m.store32(mem, m.GPR[src])
	})
}

// Store16 writes the low halfword of a register to the arena.
func (b *Builder) Store16(mem Mem, src GPR) {
	b.emit("mov", encodeRM(PFX_66, []byte{0x89}, int(src), mem), func(m *Machine) {
		v := m.load32(mem)
		m.store32(mem, (v&0xffff0000)|(m.GPR[src]&0xffff))
	})
}

// AluRI applies an operation with a 32-bit immediate.
func (b *Builder) AluRI(op Alu, dst GPR, v uint32) {
	code := append(rex(false, 0, 0, int(dst)), 0x81, modrmReg(int(op), int(dst)))
	code = append(code, imm32(v)...)
	b.emit(op.String(), code, func(m *Machine) {
		if r, ok := op.apply(m, m.GPR[dst], v); ok {
			m.GPR[dst] = r
		}
	})
}

// AluRR applies an operation between two registers.
func (b *Builder) AluRR(op Alu, dst, src GPR) {
	code := encodeRR(PFX_NONE, []byte{byte(op)<<3 | 1}, int(src), int(dst))
	b.emit(op.String(), code, func(m *Machine) {
		if r, ok := op.apply(m, m.GPR[dst], m.GPR[src]); ok {
			m.GPR[dst] = r
		}
	})
}

// Test compares a AND b with zero.
func (b *Builder) Test(a, c GPR) {
	b.emit("test", encodeRR(PFX_NONE, []byte{0x85}, int(c), int(a)), func(m *Machine) {
		m.compare(m.GPR[a]&m.GPR[c], 0)
	})
}

// ShiftRI shifts by an immediate count.
func (b *Builder) ShiftRI(op Shift, dst GPR, n uint8) {
	code := append(rex(false, 0, 0, int(dst)), 0xc1, modrmReg(int(op), int(dst)), n)
	b.emit(op.String(), code, func(m *Machine) {
		v := m.GPR[dst]
		switch op {
		case SHIFT_SHL:
			v <<= n & 31
		case SHIFT_SHR:
			v >>= n & 31
		case SHIFT_SAR:
			v = uint32(int32(v) >> (n & 31))
		}
		m.GPR[dst] = v
	})
}

// MovSX16 sign extends the low halfword of src.
func (b *Builder) MovSX16(dst, src GPR) {
	b.emit("movsx", encodeRR(PFX_NONE, []byte{0x0f, 0xbf}, int(dst), int(src)), func(m *Machine) {
		m.GPR[dst] = uint32(int32(int16(m.GPR[src])))
	})
}

// MovZX16 zero extends the low halfword of src.
func (b *Builder) MovZX16(dst, src GPR) {
	b.emit("movzx", encodeRR(PFX_NONE, []byte{0x0f, 0xb7}, int(dst), int(src)), func(m *Machine) {
		m.GPR[dst] = m.GPR[src] & 0xffff
	})
}
