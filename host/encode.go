package host

import (
	"encoding/binary"
)

// Mandatory prefixes of the SSE encodings.
const (
	PFX_NONE = byte(0)    // packed single
	PFX_66   = byte(0x66) // packed integer, movd
	PFX_F3   = byte(0xf3) // scalar single
)

// rex returns the REX prefix for the register fields, if one is needed.
func rex(w bool, r, x, b int) []byte {
	v := byte(0x40)
	if w {
		v |= 0x08
	}
	if r&8 != 0 {
		v |= 0x04
	}
	if x&8 != 0 {
		v |= 0x02
	}
	if b&8 != 0 {
		v |= 0x01
	}
	if v == 0x40 {
		return nil
	}
	return []byte{v}
}

func imm32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// modrmReg encodes a register-direct operand pair.
func modrmReg(reg, rm int) byte {
	return 0xc0 | byte(reg&7)<<3 | byte(rm&7)
}

// encodeRR encodes `prefix [REX] opcode modrm` for two registers.
func encodeRR(prefix byte, opcode []byte, reg, rm int) (code []byte) {
	if prefix != PFX_NONE {
		code = append(code, prefix)
	}
	code = append(code, rex(false, reg, 0, rm)...)
	code = append(code, opcode...)
	code = append(code, modrmReg(reg, rm))
	return
}

// encodeRM encodes `prefix [REX] opcode modrm ...` against an arena operand.
func encodeRM(prefix byte, opcode []byte, reg int, mem Mem) (code []byte) {
	if prefix != PFX_NONE {
		code = append(code, prefix)
	}
	if mem.Indexed {
		// [R15 + index + disp32], mod=10 rm=100 with SIB base=R15.
		code = append(code, rex(false, reg, int(mem.Index), int(ARENA))...)
		code = append(code, opcode...)
		code = append(code, 0x84|byte(reg&7)<<3, byte(mem.Index&7)<<3|byte(ARENA&7))
		code = append(code, imm32(uint32(mem.Disp))...)
		return
	}
	// [R15 + disp32], mod=10 rm=R15.
	code = append(code, rex(false, reg, 0, int(ARENA))...)
	code = append(code, opcode...)
	code = append(code, 0x80|byte(reg&7)<<3|byte(ARENA&7))
	code = append(code, imm32(uint32(mem.Disp))...)
	return
}

// encodeJcc encodes a 32-bit relative conditional jump.
func encodeJcc(cc Cond, rel int) []byte {
	return append([]byte{0x0f, 0x80 | byte(cc)}, imm32(uint32(int32(rel)))...)
}

// encodeJmp encodes a 32-bit relative jump.
func encodeJmp(rel int) []byte {
	return append([]byte{0xe9}, imm32(uint32(int32(rel)))...)
}

// encodeCall encodes `mov rax, imm64; call rax`.
func encodeCall(target uint64) (code []byte) {
	code = append(code, 0x48, 0xb8)
	code = binary.LittleEndian.AppendUint64(code, target)
	code = append(code, 0xff, 0xd0)
	return
}
