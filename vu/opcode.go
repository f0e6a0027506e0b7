package vu

import (
	"fmt"
)

// Opcode identifies an instruction, upper or lower.
type Opcode int

const (
	OP_UNKNOWN = Opcode(iota)

	// Upper: FMAC
	OP_ADD
	OP_ADDBC
	OP_ADDQ
	OP_ADDI
	OP_SUB
	OP_SUBBC
	OP_SUBQ
	OP_SUBI
	OP_MUL
	OP_MULBC
	OP_MULQ
	OP_MULI
	OP_MADD
	OP_MADDBC
	OP_MADDQ
	OP_MADDI
	OP_MSUB
	OP_MSUBBC
	OP_MSUBQ
	OP_MSUBI
	OP_MAX
	OP_MAXBC
	OP_MAXI
	OP_MINI
	OP_MINIBC
	OP_MINII
	OP_OPMSUB
	OP_ADDA
	OP_ADDABC
	OP_ADDAQ
	OP_ADDAI
	OP_SUBA
	OP_SUBABC
	OP_SUBAQ
	OP_SUBAI
	OP_MULA
	OP_MULABC
	OP_MULAQ
	OP_MULAI
	OP_MADDA
	OP_MADDABC
	OP_MADDAQ
	OP_MADDAI
	OP_MSUBA
	OP_MSUBABC
	OP_MSUBAQ
	OP_MSUBAI
	OP_OPMULA
	OP_ITOF0
	OP_ITOF4
	OP_ITOF12
	OP_ITOF15
	OP_FTOI0
	OP_FTOI4
	OP_FTOI12
	OP_FTOI15
	OP_ABS
	OP_CLIP
	OP_NOP

	// Lower: load/store and moves
	OP_LQ
	OP_SQ
	OP_LQI
	OP_LQD
	OP_SQI
	OP_SQD
	OP_ILW
	OP_ISW
	OP_ILWR
	OP_ISWR
	OP_MOVE
	OP_MR32
	OP_MFIR
	OP_MTIR

	// Lower: integer
	OP_IADD
	OP_ISUB
	OP_IADDI
	OP_IADDIU
	OP_ISUBIU
	OP_IAND
	OP_IOR

	// Lower: FDIV
	OP_DIV
	OP_SQRT
	OP_RSQRT
	OP_WAITQ

	// Lower: flags
	OP_FSAND
	OP_FSEQ
	OP_FSOR
	OP_FSSET
	OP_FMAND
	OP_FMEQ
	OP_FMOR
	OP_FCAND
	OP_FCEQ
	OP_FCOR
	OP_FCSET
	OP_FCGET

	// Lower: branches
	OP_B
	OP_BAL
	OP_JR
	OP_JALR
	OP_IBEQ
	OP_IBNE
	OP_IBLTZ
	OP_IBGTZ
	OP_IBLEZ
	OP_IBGEZ

	// Lower: random
	OP_RINIT
	OP_RGET
	OP_RNEXT
	OP_RXOR

	// Lower: EFU
	OP_MFP
	OP_WAITP
	OP_ESADD
	OP_ERSADD
	OP_ELENG
	OP_ERLENG
	OP_EATANXY
	OP_EATANXZ
	OP_ESUM
	OP_ERCPR
	OP_ESQRT
	OP_ERSQRT
	OP_ESIN
	OP_EATAN
	OP_EEXP

	// Lower: interface
	OP_XTOP
	OP_XITOP
	OP_XGKICK

	OP_COUNT
)

// Arg is an operand kind in an instruction's assembly syntax.
type Arg int

const (
	ARG_FD     = Arg(iota) // vfd
	ARG_FS                 // vfs
	ARG_FT                 // vft
	ARG_FT_BC              // vftx, broadcast lane in the low bits
	ARG_FT_W               // vftw
	ARG_FSF                // vfsx, lane in fsf
	ARG_FTF                // vftx, lane in ftf
	ARG_ID                 // vid
	ARG_IS                 // vis
	ARG_IT                 // vit
	ARG_ACC                // acc
	ARG_Q                  // q
	ARG_I                  // i
	ARG_P                  // p
	ARG_R                  // r
	ARG_VI01               // vi01, implicit
	ARG_IMM5               // signed 5 bit
	ARG_IMM11              // signed 11 bit, or branch target
	ARG_IMM12              // status immediate
	ARG_IMM15              // unsigned 15 bit
	ARG_IMM24              // clip immediate
	ARG_OFF_IS             // imm(vis)
	ARG_OFF_IT             // imm(vit)
	ARG_INC_IS             // (vis++)
	ARG_INC_IT             // (vit++)
	ARG_DEC_IS             // (--vis)
	ARG_DEC_IT             // (--vit)
	ARG_IND_IS             // (vis)
)

// Pipe is the execution unit an instruction issues to.
type Pipe int

const (
	PIPE_NONE   = Pipe(0) // none
	PIPE_FMAC   = Pipe(1) // fmac
	PIPE_FDIV   = Pipe(2) // fdiv
	PIPE_EFU    = Pipe(3) // efu
	PIPE_IALU   = Pipe(4) // ialu
	PIPE_BRANCH = Pipe(5) // branch
	PIPE_LSU    = Pipe(6) // lsu
)

// Info describes the encoding and timing of an opcode.
type Info struct {
	Name   string // Mnemonic, without the broadcast suffix.
	Upper  bool   // Upper word instruction.
	Base   uint32 // Fixed bits of the encoding.
	Dest   bool   // Takes a lane mask suffix.
	BC     bool   // Low two bits select a broadcast lane.
	Args   []Arg  // Operands, in assembly order.
	Pipe   Pipe   // Issue pipe.
	Cycles int    // Result latency of FDIV and EFU instructions.
	Flags  bool   // Updates the mac and status flags.
}

var (
	fdArgs   = []Arg{ARG_FD, ARG_FS, ARG_FT}
	bcArgs   = []Arg{ARG_FD, ARG_FS, ARG_FT_BC}
	qArgs    = []Arg{ARG_FD, ARG_FS, ARG_Q}
	iArgs    = []Arg{ARG_FD, ARG_FS, ARG_I}
	accArgs  = []Arg{ARG_ACC, ARG_FS, ARG_FT}
	accBc    = []Arg{ARG_ACC, ARG_FS, ARG_FT_BC}
	accQ     = []Arg{ARG_ACC, ARG_FS, ARG_Q}
	accI     = []Arg{ARG_ACC, ARG_FS, ARG_I}
	tsArgs   = []Arg{ARG_FT, ARG_FS}
	branch2  = []Arg{ARG_IT, ARG_IS, ARG_IMM11}
	branch1  = []Arg{ARG_IS, ARG_IMM11}
	efuXYZ   = []Arg{ARG_P, ARG_FS}
	efuLane  = []Arg{ARG_P, ARG_FSF}
	noArgs   = []Arg{}
	itArgs   = []Arg{ARG_IT}
	idstArgs = []Arg{ARG_ID, ARG_IS, ARG_IT}
)

func fmac(name string, base uint32, args []Arg, flags bool) Info {
	return Info{Name: name, Upper: true, Base: base, Dest: true, Args: args, Pipe: PIPE_FMAC, Flags: flags}
}

func fmacBC(name string, base uint32, args []Arg, flags bool) Info {
	info := fmac(name, base, args, flags)
	info.BC = true
	return info
}

func lower(name string, base uint32, pipe Pipe, args ...Arg) Info {
	return Info{Name: name, Base: base, Args: args, Pipe: pipe}
}

func lowerDest(name string, base uint32, pipe Pipe, args ...Arg) Info {
	info := lower(name, base, pipe, args...)
	info.Dest = true
	return info
}

func latency(info Info, cycles int) Info {
	info.Cycles = cycles
	return info
}

var opcodeInfo = [OP_COUNT]Info{
	OP_UNKNOWN: {Name: "unknown"},

	OP_ADD:     fmac("add", 0x028, fdArgs, true),
	OP_ADDBC:   fmacBC("add", 0x000, bcArgs, true),
	OP_ADDQ:    fmac("addq", 0x020, qArgs, true),
	OP_ADDI:    fmac("addi", 0x022, iArgs, true),
	OP_SUB:     fmac("sub", 0x02c, fdArgs, true),
	OP_SUBBC:   fmacBC("sub", 0x004, bcArgs, true),
	OP_SUBQ:    fmac("subq", 0x024, qArgs, true),
	OP_SUBI:    fmac("subi", 0x026, iArgs, true),
	OP_MUL:     fmac("mul", 0x02a, fdArgs, true),
	OP_MULBC:   fmacBC("mul", 0x018, bcArgs, true),
	OP_MULQ:    fmac("mulq", 0x01c, qArgs, true),
	OP_MULI:    fmac("muli", 0x01e, iArgs, true),
	OP_MADD:    fmac("madd", 0x029, fdArgs, true),
	OP_MADDBC:  fmacBC("madd", 0x008, bcArgs, true),
	OP_MADDQ:   fmac("maddq", 0x021, qArgs, true),
	OP_MADDI:   fmac("maddi", 0x023, iArgs, true),
	OP_MSUB:    fmac("msub", 0x02d, fdArgs, true),
	OP_MSUBBC:  fmacBC("msub", 0x00c, bcArgs, true),
	OP_MSUBQ:   fmac("msubq", 0x025, qArgs, true),
	OP_MSUBI:   fmac("msubi", 0x027, iArgs, true),
	OP_MAX:     fmac("max", 0x02b, fdArgs, false),
	OP_MAXBC:   fmacBC("max", 0x010, bcArgs, false),
	OP_MAXI:    fmac("maxi", 0x01d, iArgs, false),
	OP_MINI:    fmac("mini", 0x02f, fdArgs, false),
	OP_MINIBC:  fmacBC("mini", 0x014, bcArgs, false),
	OP_MINII:   fmac("minii", 0x01f, iArgs, false),
	OP_OPMSUB:  fmac("opmsub", 0x02e, fdArgs, true),
	OP_ADDA:    fmac("adda", 0x2bc, accArgs, true),
	OP_ADDABC:  fmacBC("adda", 0x03c, accBc, true),
	OP_ADDAQ:   fmac("addaq", 0x23c, accQ, true),
	OP_ADDAI:   fmac("addai", 0x23e, accI, true),
	OP_SUBA:    fmac("suba", 0x2fc, accArgs, true),
	OP_SUBABC:  fmacBC("suba", 0x07c, accBc, true),
	OP_SUBAQ:   fmac("subaq", 0x27c, accQ, true),
	OP_SUBAI:   fmac("subai", 0x27e, accI, true),
	OP_MULA:    fmac("mula", 0x2be, accArgs, true),
	OP_MULABC:  fmacBC("mula", 0x1bc, accBc, true),
	OP_MULAQ:   fmac("mulaq", 0x1fc, accQ, true),
	OP_MULAI:   fmac("mulai", 0x1fe, accI, true),
	OP_MADDA:   fmac("madda", 0x2bd, accArgs, true),
	OP_MADDABC: fmacBC("madda", 0x0bc, accBc, true),
	OP_MADDAQ:  fmac("maddaq", 0x23d, accQ, true),
	OP_MADDAI:  fmac("maddai", 0x23f, accI, true),
	OP_MSUBA:   fmac("msuba", 0x2fd, accArgs, true),
	OP_MSUBABC: fmacBC("msuba", 0x0fc, accBc, true),
	OP_MSUBAQ:  fmac("msubaq", 0x27d, accQ, true),
	OP_MSUBAI:  fmac("msubai", 0x27f, accI, true),
	OP_OPMULA:  fmac("opmula", 0x2fe, accArgs, true),
	OP_ITOF0:   fmac("itof0", 0x13c, tsArgs, false),
	OP_ITOF4:   fmac("itof4", 0x13d, tsArgs, false),
	OP_ITOF12:  fmac("itof12", 0x13e, tsArgs, false),
	OP_ITOF15:  fmac("itof15", 0x13f, tsArgs, false),
	OP_FTOI0:   fmac("ftoi0", 0x17c, tsArgs, false),
	OP_FTOI4:   fmac("ftoi4", 0x17d, tsArgs, false),
	OP_FTOI12:  fmac("ftoi12", 0x17e, tsArgs, false),
	OP_FTOI15:  fmac("ftoi15", 0x17f, tsArgs, false),
	OP_ABS:     fmac("abs", 0x1fd, tsArgs, false),
	OP_CLIP:    fmac("clip", 0x1ff, []Arg{ARG_FS, ARG_FT_W}, false),
	OP_NOP:     {Name: "nop", Upper: true, Base: 0x2ff, Args: noArgs},

	OP_LQ:    lowerDest("lq", 0x00000000, PIPE_LSU, ARG_FT, ARG_OFF_IS),
	OP_SQ:    lowerDest("sq", 0x02000000, PIPE_LSU, ARG_FS, ARG_OFF_IT),
	OP_LQI:   lowerDest("lqi", 0x8000037c, PIPE_LSU, ARG_FT, ARG_INC_IS),
	OP_SQI:   lowerDest("sqi", 0x8000037d, PIPE_LSU, ARG_FS, ARG_INC_IT),
	OP_LQD:   lowerDest("lqd", 0x8000037e, PIPE_LSU, ARG_FT, ARG_DEC_IS),
	OP_SQD:   lowerDest("sqd", 0x8000037f, PIPE_LSU, ARG_FS, ARG_DEC_IT),
	OP_ILW:   lowerDest("ilw", 0x08000000, PIPE_LSU, ARG_IT, ARG_OFF_IS),
	OP_ISW:   lowerDest("isw", 0x0a000000, PIPE_LSU, ARG_IT, ARG_OFF_IS),
	OP_ILWR:  lowerDest("ilwr", 0x800003fe, PIPE_LSU, ARG_IT, ARG_IND_IS),
	OP_ISWR:  lowerDest("iswr", 0x800003ff, PIPE_LSU, ARG_IT, ARG_IND_IS),
	OP_MOVE:  lowerDest("move", 0x8000033c, PIPE_FMAC, ARG_FT, ARG_FS),
	OP_MR32:  lowerDest("mr32", 0x8000033d, PIPE_FMAC, ARG_FT, ARG_FS),
	OP_MFIR:  lowerDest("mfir", 0x800003fd, PIPE_FMAC, ARG_FT, ARG_IS),
	OP_MTIR:  lower("mtir", 0x800003fc, PIPE_FMAC, ARG_IT, ARG_FSF),
	OP_IADD:  lower("iadd", 0x80000030, PIPE_IALU, idstArgs...),
	OP_ISUB:  lower("isub", 0x80000031, PIPE_IALU, idstArgs...),
	OP_IADDI: lower("iaddi", 0x80000032, PIPE_IALU, ARG_IT, ARG_IS, ARG_IMM5),
	OP_IAND:  lower("iand", 0x80000034, PIPE_IALU, idstArgs...),
	OP_IOR:   lower("ior", 0x80000035, PIPE_IALU, idstArgs...),

	OP_IADDIU: lower("iaddiu", 0x10000000, PIPE_IALU, ARG_IT, ARG_IS, ARG_IMM15),
	OP_ISUBIU: lower("isubiu", 0x12000000, PIPE_IALU, ARG_IT, ARG_IS, ARG_IMM15),

	OP_DIV:   latency(lower("div", 0x800003bc, PIPE_FDIV, ARG_Q, ARG_FSF, ARG_FTF), 7),
	OP_SQRT:  latency(lower("sqrt", 0x800003bd, PIPE_FDIV, ARG_Q, ARG_FTF), 7),
	OP_RSQRT: latency(lower("rsqrt", 0x800003be, PIPE_FDIV, ARG_Q, ARG_FSF, ARG_FTF), 13),
	OP_WAITQ: lower("waitq", 0x800003bf, PIPE_FDIV),

	OP_FSAND: lower("fsand", 0x2c000000, PIPE_NONE, ARG_IT, ARG_IMM12),
	OP_FSEQ:  lower("fseq", 0x28000000, PIPE_NONE, ARG_IT, ARG_IMM12),
	OP_FSOR:  lower("fsor", 0x2e000000, PIPE_NONE, ARG_IT, ARG_IMM12),
	OP_FSSET: lower("fsset", 0x2a000000, PIPE_NONE, ARG_IMM12),
	OP_FMAND: lower("fmand", 0x34000000, PIPE_NONE, ARG_IT, ARG_IS),
	OP_FMEQ:  lower("fmeq", 0x30000000, PIPE_NONE, ARG_IT, ARG_IS),
	OP_FMOR:  lower("fmor", 0x36000000, PIPE_NONE, ARG_IT, ARG_IS),
	OP_FCAND: lower("fcand", 0x24000000, PIPE_NONE, ARG_VI01, ARG_IMM24),
	OP_FCEQ:  lower("fceq", 0x20000000, PIPE_NONE, ARG_VI01, ARG_IMM24),
	OP_FCOR:  lower("fcor", 0x26000000, PIPE_NONE, ARG_VI01, ARG_IMM24),
	OP_FCSET: lower("fcset", 0x22000000, PIPE_NONE, ARG_IMM24),
	OP_FCGET: lower("fcget", 0x38000000, PIPE_NONE, ARG_IT),

	OP_B:     lower("b", 0x40000000, PIPE_BRANCH, ARG_IMM11),
	OP_BAL:   lower("bal", 0x42000000, PIPE_BRANCH, ARG_IT, ARG_IMM11),
	OP_JR:    lower("jr", 0x48000000, PIPE_BRANCH, ARG_IS),
	OP_JALR:  lower("jalr", 0x4a000000, PIPE_BRANCH, ARG_IT, ARG_IS),
	OP_IBEQ:  lower("ibeq", 0x50000000, PIPE_BRANCH, branch2...),
	OP_IBNE:  lower("ibne", 0x52000000, PIPE_BRANCH, branch2...),
	OP_IBLTZ: lower("ibltz", 0x58000000, PIPE_BRANCH, branch1...),
	OP_IBGTZ: lower("ibgtz", 0x5a000000, PIPE_BRANCH, branch1...),
	OP_IBLEZ: lower("iblez", 0x5c000000, PIPE_BRANCH, branch1...),
	OP_IBGEZ: lower("ibgez", 0x5e000000, PIPE_BRANCH, branch1...),

	OP_RNEXT: lowerDest("rnext", 0x8000043c, PIPE_FMAC, ARG_FT, ARG_R),
	OP_RGET:  lowerDest("rget", 0x8000043d, PIPE_FMAC, ARG_FT, ARG_R),
	OP_RINIT: lower("rinit", 0x8000043e, PIPE_FMAC, ARG_R, ARG_FSF),
	OP_RXOR:  lower("rxor", 0x8000043f, PIPE_FMAC, ARG_R, ARG_FSF),

	OP_MFP:     lowerDest("mfp", 0x8000067c, PIPE_FMAC, ARG_FT, ARG_P),
	OP_WAITP:   lower("waitp", 0x800007bf, PIPE_EFU),
	OP_ESADD:   latency(lower("esadd", 0x8000073c, PIPE_EFU, efuXYZ...), 11),
	OP_ERSADD:  latency(lower("ersadd", 0x8000073d, PIPE_EFU, efuXYZ...), 18),
	OP_ELENG:   latency(lower("eleng", 0x8000073e, PIPE_EFU, efuXYZ...), 18),
	OP_ERLENG:  latency(lower("erleng", 0x8000073f, PIPE_EFU, efuXYZ...), 24),
	OP_EATANXY: latency(lower("eatanxy", 0x8000077c, PIPE_EFU, efuXYZ...), 54),
	OP_EATANXZ: latency(lower("eatanxz", 0x8000077d, PIPE_EFU, efuXYZ...), 54),
	OP_ESUM:    latency(lower("esum", 0x8000077e, PIPE_EFU, efuXYZ...), 12),
	OP_ESQRT:   latency(lower("esqrt", 0x800007bc, PIPE_EFU, efuLane...), 12),
	OP_ERSQRT:  latency(lower("ersqrt", 0x800007bd, PIPE_EFU, efuLane...), 18),
	OP_ERCPR:   latency(lower("ercpr", 0x800007be, PIPE_EFU, efuLane...), 12),
	OP_ESIN:    latency(lower("esin", 0x800007fc, PIPE_EFU, efuLane...), 29),
	OP_EATAN:   latency(lower("eatan", 0x800007fd, PIPE_EFU, efuLane...), 54),
	OP_EEXP:    latency(lower("eexp", 0x800007fe, PIPE_EFU, efuLane...), 44),

	OP_XTOP:   lower("xtop", 0x800006bc, PIPE_NONE, itArgs...),
	OP_XITOP:  lower("xitop", 0x800006bd, PIPE_NONE, itArgs...),
	OP_XGKICK: lower("xgkick", 0x800006fc, PIPE_NONE, ARG_IS),
}

var (
	upperDecode = map[uint32]Opcode{}
	lowerDecode = map[uint32]Opcode{}
	mnemonics   = map[string]Mnemonic{}
)

// Mnemonic is an assembler mnemonic resolved to an opcode and, for the
// broadcast forms, the broadcast lane.
type Mnemonic struct {
	Op Opcode
	Bc int
}

func init() {
	for n := OP_ADD; n < OP_COUNT; n++ {
		info := opcodeInfo[n]
		if info.Name == "" {
			panic(fmt.Sprintf("vu: opcode %d has no encoding", n))
		}

		table := lowerDecode
		if info.Upper {
			table = upperDecode
		}

		register := func(key uint32, name string, bc int) {
			if _, dup := table[key]; dup {
				panic(fmt.Sprintf("vu: %v encoding %#x duplicated", name, key))
			}
			if _, dup := mnemonics[name]; dup {
				panic(fmt.Sprintf("vu: mnemonic %v duplicated", name))
			}
			table[key] = n
			mnemonics[name] = Mnemonic{Op: n, Bc: bc}
		}

		if info.BC {
			for bc := range 4 {
				register(info.Base|uint32(bc), info.Name+string("xyzw"[bc]), bc)
			}
		} else {
			register(info.Base, info.Name, 0)
		}
	}
}

// Info returns the encoding and timing of the opcode.
func (op Opcode) Info() Info {
	if op < 0 || op >= OP_COUNT {
		return opcodeInfo[OP_UNKNOWN]
	}
	return opcodeInfo[op]
}

func (op Opcode) String() string {
	info := op.Info()
	if info.BC {
		return info.Name + "bc"
	}
	return info.Name
}

func upperKey(w Word) uint32 {
	if w&0x3c == 0x3c {
		return uint32(w & 0x7ff)
	}
	return uint32(w & 0x3f)
}

func lowerKey(w Word) uint32 {
	op7 := uint32(w >> 25)
	if op7 != 0x40 {
		return op7 << 25
	}
	if w&0x3c == 0x3c {
		return 0x80000000 | uint32(w&0x7ff)
	}
	return 0x80000000 | uint32(w&0x3f)
}

// DecodeUpper returns the opcode of an upper word.
func DecodeUpper(w Word) (op Opcode, err error) {
	op, ok := upperDecode[upperKey(w)]
	if !ok {
		err = ErrOpcode{Upper: true, Word: w}
	}
	return
}

// DecodeLower returns the opcode of a lower word.
func DecodeLower(w Word) (op Opcode, err error) {
	op, ok := lowerDecode[lowerKey(w)]
	if !ok {
		err = ErrOpcode{Word: w}
	}
	return
}

// Lookup resolves an assembler mnemonic.
func Lookup(name string) (m Mnemonic, ok bool) {
	m, ok = mnemonics[name]
	return
}
