package host

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Disassemble lists native code, one instruction per line.
func Disassemble(code []byte) string {
	var sb strings.Builder
	offset := 0
	for offset < len(code) {
		inst, err := x86asm.Decode(code[offset:], 64)
		length := inst.Len
		text := ""
		if err != nil || length == 0 {
			length = 1
			text = fmt.Sprintf("db 0x%02x", code[offset])
		} else {
			text = x86asm.IntelSyntax(inst, uint64(offset), nil)
		}

		var hex strings.Builder
		for _, c := range code[offset : offset+length] {
			fmt.Fprintf(&hex, "%02x", c)
		}
		fmt.Fprintf(&sb, "0x%04x: %-16s %s\n", offset, hex.String(), text)
		offset += length
	}
	return sb.String()
}

// Mnemonics decodes native code into its opcode names.
func Mnemonics(code []byte) (names []string, err error) {
	for offset := 0; offset < len(code); {
		var inst x86asm.Inst
		inst, err = x86asm.Decode(code[offset:], 64)
		if err != nil {
			err = &ErrDecode{Offset: offset, Err: err}
			return
		}
		names = append(names, inst.Op.String())
		offset += inst.Len
	}
	return
}
