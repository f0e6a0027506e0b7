package vu

import (
	"fmt"
	"strings"
)

// Operand is the value of one assembled operand. Which fields matter
// depends on the Arg kind.
type Operand struct {
	Reg  int   // Register number.
	Lane int   // Lane selector, x being 0.
	Imm  int32 // Immediate or offset.
}

func inRange(v int32, lo int32, hi int32) bool {
	return v >= lo && v <= hi
}

func (arg Arg) encode(o Operand) (w Word, err error) {
	reg := Word(o.Reg)
	if o.Reg < 0 || o.Reg > 31 || o.Lane < 0 || o.Lane > 3 {
		err = ErrOperandRange
		return
	}

	integer := func(shift int) Word {
		if o.Reg > 15 {
			err = ErrOperandRange
		}
		return reg << shift
	}

	switch arg {
	case ARG_FD:
		w = reg << 6
	case ARG_FS:
		w = reg << 11
	case ARG_FT, ARG_FT_W:
		w = reg << 16
	case ARG_FT_BC:
		w = reg << 16
	case ARG_FSF:
		w = reg<<11 | Word(o.Lane)<<21
	case ARG_FTF:
		w = reg<<16 | Word(o.Lane)<<23
	case ARG_ID:
		w = integer(6)
	case ARG_IS, ARG_INC_IS, ARG_DEC_IS, ARG_IND_IS:
		w = integer(11)
	case ARG_IT, ARG_INC_IT, ARG_DEC_IT:
		w = integer(16)
	case ARG_ACC, ARG_Q, ARG_I, ARG_P, ARG_R, ARG_VI01:
	case ARG_IMM5:
		if !inRange(o.Imm, -16, 15) {
			err = ErrOperandRange
		}
		w = Word(o.Imm&0x1f) << 6
	case ARG_IMM11:
		if !inRange(o.Imm, -1024, 1023) {
			err = ErrOperandRange
		}
		w = Word(o.Imm & 0x7ff)
	case ARG_IMM12:
		if !inRange(o.Imm, 0, 0xfff) {
			err = ErrOperandRange
		}
		w = Word(o.Imm&0x7ff) | Word(o.Imm>>11&1)<<21
	case ARG_IMM15:
		if !inRange(o.Imm, 0, 0x7fff) {
			err = ErrOperandRange
		}
		w = Word(o.Imm&0x7ff) | Word(o.Imm>>11&0xf)<<21
	case ARG_IMM24:
		if !inRange(o.Imm, 0, 0xffffff) {
			err = ErrOperandRange
		}
		w = Word(o.Imm)
	case ARG_OFF_IS, ARG_OFF_IT:
		if !inRange(o.Imm, -1024, 1023) {
			err = ErrOperandRange
		}
		shift := 11
		if arg == ARG_OFF_IT {
			shift = 16
		}
		w = integer(shift) | Word(o.Imm&0x7ff)
	}

	return
}

// Encode assembles one instruction word. The I and E bits of an upper
// word are left to the caller.
func Encode(op Opcode, dest Mask, bc int, operands []Operand) (w Word, err error) {
	info := op.Info()
	if op == OP_UNKNOWN {
		err = ErrOpcodeDecode
		return
	}
	if len(operands) != len(info.Args) {
		err = ErrOperandCount
		return
	}

	w = Word(info.Base)
	if info.Dest {
		w |= Word(dest&0xf) << 21
	}
	if info.BC {
		w |= Word(bc & 3)
	}

	for n, arg := range info.Args {
		var field Word
		field, err = arg.encode(operands[n])
		if err != nil {
			return
		}
		w |= field
	}

	return
}

func (arg Arg) format(w Word) string {
	lane := func(n int) string {
		return string("xyzw"[n&3])
	}

	switch arg {
	case ARG_FD:
		return fmt.Sprintf("vf%d", w.Fd())
	case ARG_FS:
		return fmt.Sprintf("vf%d", w.Fs())
	case ARG_FT:
		return fmt.Sprintf("vf%d", w.Ft())
	case ARG_FT_BC:
		return fmt.Sprintf("vf%d%v", w.Ft(), lane(w.Bc()))
	case ARG_FT_W:
		return fmt.Sprintf("vf%dw", w.Ft())
	case ARG_FSF:
		return fmt.Sprintf("vf%d%v", w.Fs(), lane(w.Fsf()))
	case ARG_FTF:
		return fmt.Sprintf("vf%d%v", w.Ft(), lane(w.Ftf()))
	case ARG_ID:
		return fmt.Sprintf("vi%d", w.Id())
	case ARG_IS:
		return fmt.Sprintf("vi%d", w.Is())
	case ARG_IT:
		return fmt.Sprintf("vi%d", w.It())
	case ARG_ACC:
		return "acc"
	case ARG_Q:
		return "q"
	case ARG_I:
		return "i"
	case ARG_P:
		return "p"
	case ARG_R:
		return "r"
	case ARG_VI01:
		return "vi1"
	case ARG_IMM5:
		return fmt.Sprintf("%d", w.Imm5())
	case ARG_IMM11:
		return fmt.Sprintf("%d", w.Imm11())
	case ARG_IMM12:
		return fmt.Sprintf("0x%03x", w.Imm12())
	case ARG_IMM15:
		return fmt.Sprintf("%d", w.Imm15())
	case ARG_IMM24:
		return fmt.Sprintf("0x%06x", w.Imm24())
	case ARG_OFF_IS:
		return fmt.Sprintf("%d(vi%d)", w.Imm11(), w.Is())
	case ARG_OFF_IT:
		return fmt.Sprintf("%d(vi%d)", w.Imm11(), w.It())
	case ARG_INC_IS:
		return fmt.Sprintf("(vi%d++)", w.Is())
	case ARG_INC_IT:
		return fmt.Sprintf("(vi%d++)", w.It())
	case ARG_DEC_IS:
		return fmt.Sprintf("(--vi%d)", w.Is())
	case ARG_DEC_IT:
		return fmt.Sprintf("(--vi%d)", w.It())
	case ARG_IND_IS:
		return fmt.Sprintf("(vi%d)", w.Is())
	}
	return "?"
}

// Disassemble formats a decoded instruction word.
func Disassemble(op Opcode, w Word) string {
	info := op.Info()

	var sb strings.Builder
	sb.WriteString(info.Name)
	if info.BC {
		sb.WriteByte("xyzw"[w.Bc()])
	}
	if info.Dest && w.Dest() != 0 {
		sb.WriteByte('.')
		sb.WriteString(w.Dest().String())
	}

	for n, arg := range info.Args {
		if n == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.format(w))
	}

	return sb.String()
}
