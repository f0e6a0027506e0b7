package vu

import (
	"fmt"
)

// VFRef names a vector register and the lanes involved.
type VFRef struct {
	Reg  VF
	Mask Mask
}

// Regs are the vector registers an instruction reads and writes, used for
// pair ordering and FMAC stall detection.
type Regs struct {
	Read     [2]VFRef
	Write    VFRef
	WriteACC bool
}

// Reads returns true if the instruction reads any lane of vf in mask.
func (r Regs) Reads(ref VFRef) bool {
	if ref.Reg == 0 || ref.Mask == 0 {
		return false
	}
	for _, read := range r.Read {
		if read.Reg == ref.Reg && read.Mask&ref.Mask != 0 {
			return true
		}
	}
	return false
}

// RegsOf computes the vector register usage of an instruction word.
func RegsOf(op Opcode, w Word) (r Regs) {
	info := op.Info()
	dest := w.Dest()

	reads := 0
	read := func(reg VF, mask Mask) {
		if reg != 0 && mask != 0 && reads < len(r.Read) {
			r.Read[reads] = VFRef{Reg: reg, Mask: mask}
			reads++
		}
	}

	for n, arg := range info.Args {
		switch arg {
		case ARG_FD:
			r.Write = VFRef{Reg: w.Fd(), Mask: dest}
		case ARG_ACC:
			r.WriteACC = true
		case ARG_FT:
			if n == 0 {
				r.Write = VFRef{Reg: w.Ft(), Mask: dest}
			} else {
				read(w.Ft(), dest)
			}
		case ARG_FS:
			mask := dest
			switch {
			case info.Pipe == PIPE_EFU && op == OP_ESUM:
				mask = MASK_XYZW
			case info.Pipe == PIPE_EFU:
				mask = MASK_XYZ
			case op == OP_MR32:
				mask = MASK_XYZW
			}
			read(w.Fs(), mask)
		case ARG_FT_BC:
			read(w.Ft(), LaneMask(w.Bc()))
		case ARG_FT_W:
			read(w.Ft(), MASK_W)
		case ARG_FSF:
			read(w.Fs(), LaneMask(w.Fsf()))
		case ARG_FTF:
			read(w.Ft(), LaneMask(w.Ftf()))
		}
	}

	switch op {
	case OP_OPMULA, OP_OPMSUB:
		r.Read[0].Mask = MASK_XYZ
		r.Read[1].Mask = MASK_XYZ
	case OP_CLIP:
		r.Read[0].Mask = MASK_XYZ
	}

	if r.Write.Reg == 0 {
		r.Write = VFRef{}
	}

	return
}

// Pair is a decoded instruction pair.
type Pair struct {
	PC      uint32 // Byte address of the lower word in micro memory.
	Upper   Word
	Lower   Word
	UpperOp Opcode
	LowerOp Opcode // OP_UNKNOWN when the I bit is set.
	UpperRW Regs
	LowerRW Regs
}

// DecodePair decodes the two words of a pair.
func DecodePair(pc uint32, upper Word, lower Word) (p Pair, err error) {
	p = Pair{PC: pc, Upper: upper, Lower: lower}

	p.UpperOp, err = DecodeUpper(upper)
	if err != nil {
		return
	}
	p.UpperRW = RegsOf(p.UpperOp, upper)

	if p.Immediate() {
		return
	}

	p.LowerOp, err = DecodeLower(lower)
	if err != nil {
		return
	}
	p.LowerRW = RegsOf(p.LowerOp, lower)

	return
}

// Immediate returns true if the lower word is an immediate for I.
func (p Pair) Immediate() bool {
	return p.Upper&BIT_I != 0
}

// End returns true if the program ends after the next pair.
func (p Pair) End() bool {
	return p.Upper&BIT_E != 0
}

// Branch returns true if the lower instruction is a branch.
func (p Pair) Branch() bool {
	return !p.Immediate() && p.LowerOp.Info().Pipe == PIPE_BRANCH
}

// LowerFirst returns true if the lower instruction must observe the
// vector registers from before the upper instruction's write.
func (p Pair) LowerFirst() bool {
	if p.Immediate() {
		return false
	}
	return p.LowerRW.Reads(p.UpperRW.Write)
}

// Conflict returns true if the lower instruction, run first, would
// overwrite a register the upper instruction still needs to read.
func (p Pair) Conflict() bool {
	return p.LowerFirst() && p.UpperRW.Reads(p.LowerRW.Write)
}

func (p Pair) String() string {
	text := Disassemble(p.UpperOp, p.Upper)
	if p.Upper&BIT_E != 0 {
		text += "[e]"
	}
	if p.Immediate() {
		return fmt.Sprintf("%-32v | loi 0x%08x", text, uint32(p.Lower))
	}
	return fmt.Sprintf("%-32v | %v", text, Disassemble(p.LowerOp, p.Lower))
}
