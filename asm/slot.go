package asm

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ezrec/vurec/vu"
)

// slot is one instruction of a pair, encoded once every label is known.
type slot struct {
	op       vu.Opcode
	dest     vu.Mask
	bc       int
	operands []vu.Operand
	label    string // Branch target label, for the operand at target.
	target   int
}

func (s *slot) encode() (vu.Word, error) {
	return vu.Encode(s.op, s.dest, s.bc, s.operands)
}

var (
	reVF     = regexp.MustCompile(`^vf([0-9]+)([xyzw]?)$`)
	reVI     = regexp.MustCompile(`^vi([0-9]+)$`)
	reOffset = regexp.MustCompile(`^(.*)\(vi([0-9]+)\)$`)
	reInc    = regexp.MustCompile(`^\(vi([0-9]+)\+\+\)$`)
	reDec    = regexp.MustCompile(`^\(--vi([0-9]+)\)$`)
	reInd    = regexp.MustCompile(`^\(vi([0-9]+)\)$`)
	reLabel  = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
)

// fixed are the operands written as a plain name.
var fixed = map[vu.Arg]string{
	vu.ARG_ACC:  "acc",
	vu.ARG_Q:    "q",
	vu.ARG_I:    "i",
	vu.ARG_P:    "p",
	vu.ARG_R:    "r",
	vu.ARG_VI01: "vi1",
}

// valueOf returns the value of a number or integer equate.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	for range 8 {
		equate, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equate
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// immediateOf returns the I register value of a loi operand, which may be
// written as a float.
func (asm *Assembler) immediateOf(word string) (value uint32, err error) {
	if strings.ContainsAny(word, ".eE") && !strings.HasPrefix(word, "0x") {
		var f64 float64
		f64, err = strconv.ParseFloat(word, 32)
		if err == nil {
			value = math.Float32bits(float32(f64))
			return
		}
	}

	v64, err := asm.valueOf(word)
	value = uint32(v64)
	return
}

func register(re *regexp.Regexp, word string) (reg int, lane string, err error) {
	match := re.FindStringSubmatch(word)
	if match == nil {
		err = ErrOperand(word)
		return
	}
	reg, _ = strconv.Atoi(match[1])
	if len(match) > 2 {
		lane = match[2]
	}
	return
}

// operand parses the text of one operand.
func (asm *Assembler) operand(arg vu.Arg, m vu.Mnemonic, word string) (o vu.Operand, label string, err error) {
	var lane string

	if name, ok := fixed[arg]; ok {
		if word != name {
			err = ErrOperand(word)
		}
		return
	}

	switch arg {
	case vu.ARG_FD, vu.ARG_FS, vu.ARG_FT:
		o.Reg, lane, err = register(reVF, word)
		if err == nil && lane != "" {
			err = ErrOperand(word)
		}
	case vu.ARG_FT_BC, vu.ARG_FT_W, vu.ARG_FSF, vu.ARG_FTF:
		o.Reg, lane, err = register(reVF, word)
		if err != nil {
			return
		}
		if lane == "" {
			err = ErrOperand(word)
			return
		}
		o.Lane = strings.Index("xyzw", lane)
		switch {
		case arg == vu.ARG_FT_BC && o.Lane != m.Bc:
			err = ErrBroadcast
		case arg == vu.ARG_FT_W && o.Lane != 3:
			err = ErrOperand(word)
		}
	case vu.ARG_ID, vu.ARG_IS, vu.ARG_IT:
		o.Reg, _, err = register(reVI, word)
	case vu.ARG_INC_IS, vu.ARG_INC_IT:
		o.Reg, _, err = register(reInc, word)
	case vu.ARG_DEC_IS, vu.ARG_DEC_IT:
		o.Reg, _, err = register(reDec, word)
	case vu.ARG_IND_IS:
		o.Reg, _, err = register(reInd, word)
	case vu.ARG_OFF_IS, vu.ARG_OFF_IT:
		match := reOffset.FindStringSubmatch(word)
		if match == nil {
			err = ErrOperand(word)
			return
		}
		o.Reg, _ = strconv.Atoi(match[2])
		if match[1] != "" {
			var v64 int64
			v64, err = asm.valueOf(match[1])
			o.Imm = int32(v64)
		}
	case vu.ARG_IMM11:
		var v64 int64
		v64, err = asm.valueOf(word)
		if err != nil && m.Op.Info().Pipe == vu.PIPE_BRANCH && reLabel.MatchString(word) {
			label, err = word, nil
		}
		o.Imm = int32(v64)
	case vu.ARG_IMM5, vu.ARG_IMM12, vu.ARG_IMM15, vu.ARG_IMM24:
		var v64 int64
		v64, err = asm.valueOf(word)
		o.Imm = int32(v64)
	default:
		err = ErrOperand(word)
	}

	return
}

// parseSlot parses one instruction: a mnemonic with an optional lane
// mask, followed by its operands.
func (asm *Assembler) parseSlot(words []string, upper bool) (s slot, err error) {
	if len(words) == 0 {
		err = ErrSlotMissing
		return
	}

	name, maskText, hasMask := strings.Cut(words[0], ".")
	m, ok := vu.Lookup(name)
	if !ok {
		err = ErrMnemonic(words[0])
		return
	}

	info := m.Op.Info()
	if info.Upper != upper {
		err = ErrSlotWrong
		return
	}

	s = slot{op: m.Op, bc: m.Bc}
	if hasMask {
		if !info.Dest {
			err = ErrMaskInvalid
			return
		}
		s.dest, ok = vu.ParseMask(maskText)
		if !ok {
			err = ErrMaskInvalid
			return
		}
	}

	args := words[1:]
	if len(args) != len(info.Args) {
		err = ErrOperandCount
		return
	}

	s.operands = make([]vu.Operand, len(args))
	for n, arg := range info.Args {
		var label string
		s.operands[n], label, err = asm.operand(arg, m, args[n])
		if err != nil {
			return
		}
		if label != "" {
			s.label, s.target = label, n
		}
	}

	return
}
