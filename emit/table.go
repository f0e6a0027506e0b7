package emit

import (
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/vu"
)

var emitters = [vu.OP_COUNT]Emitter{
	vu.OP_ADD:     arith(ARITH_ADD, SOURCE_FT, false),
	vu.OP_ADDBC:   arith(ARITH_ADD, SOURCE_BC, false),
	vu.OP_ADDQ:    arith(ARITH_ADD, SOURCE_Q, false),
	vu.OP_ADDI:    arith(ARITH_ADD, SOURCE_I, false),
	vu.OP_SUB:     arith(ARITH_SUB, SOURCE_FT, false),
	vu.OP_SUBBC:   arith(ARITH_SUB, SOURCE_BC, false),
	vu.OP_SUBQ:    arith(ARITH_SUB, SOURCE_Q, false),
	vu.OP_SUBI:    arith(ARITH_SUB, SOURCE_I, false),
	vu.OP_MUL:     arith(ARITH_MUL, SOURCE_FT, false),
	vu.OP_MULBC:   arith(ARITH_MUL, SOURCE_BC, false),
	vu.OP_MULQ:    arith(ARITH_MUL, SOURCE_Q, false),
	vu.OP_MULI:    arith(ARITH_MUL, SOURCE_I, false),
	vu.OP_MADD:    arith(ARITH_MADD, SOURCE_FT, false),
	vu.OP_MADDBC:  arith(ARITH_MADD, SOURCE_BC, false),
	vu.OP_MADDQ:   arith(ARITH_MADD, SOURCE_Q, false),
	vu.OP_MADDI:   arith(ARITH_MADD, SOURCE_I, false),
	vu.OP_MSUB:    arith(ARITH_MSUB, SOURCE_FT, false),
	vu.OP_MSUBBC:  arith(ARITH_MSUB, SOURCE_BC, false),
	vu.OP_MSUBQ:   arith(ARITH_MSUB, SOURCE_Q, false),
	vu.OP_MSUBI:   arith(ARITH_MSUB, SOURCE_I, false),
	vu.OP_MAX:     arith(ARITH_MAX, SOURCE_FT, false),
	vu.OP_MAXBC:   arith(ARITH_MAX, SOURCE_BC, false),
	vu.OP_MAXI:    arith(ARITH_MAX, SOURCE_I, false),
	vu.OP_MINI:    arith(ARITH_MIN, SOURCE_FT, false),
	vu.OP_MINIBC:  arith(ARITH_MIN, SOURCE_BC, false),
	vu.OP_MINII:   arith(ARITH_MIN, SOURCE_I, false),
	vu.OP_OPMSUB:  outer(false),
	vu.OP_ADDA:    arith(ARITH_ADD, SOURCE_FT, true),
	vu.OP_ADDABC:  arith(ARITH_ADD, SOURCE_BC, true),
	vu.OP_ADDAQ:   arith(ARITH_ADD, SOURCE_Q, true),
	vu.OP_ADDAI:   arith(ARITH_ADD, SOURCE_I, true),
	vu.OP_SUBA:    arith(ARITH_SUB, SOURCE_FT, true),
	vu.OP_SUBABC:  arith(ARITH_SUB, SOURCE_BC, true),
	vu.OP_SUBAQ:   arith(ARITH_SUB, SOURCE_Q, true),
	vu.OP_SUBAI:   arith(ARITH_SUB, SOURCE_I, true),
	vu.OP_MULA:    arith(ARITH_MUL, SOURCE_FT, true),
	vu.OP_MULABC:  arith(ARITH_MUL, SOURCE_BC, true),
	vu.OP_MULAQ:   arith(ARITH_MUL, SOURCE_Q, true),
	vu.OP_MULAI:   arith(ARITH_MUL, SOURCE_I, true),
	vu.OP_MADDA:   arith(ARITH_MADD, SOURCE_FT, true),
	vu.OP_MADDABC: arith(ARITH_MADD, SOURCE_BC, true),
	vu.OP_MADDAQ:  arith(ARITH_MADD, SOURCE_Q, true),
	vu.OP_MADDAI:  arith(ARITH_MADD, SOURCE_I, true),
	vu.OP_MSUBA:   arith(ARITH_MSUB, SOURCE_FT, true),
	vu.OP_MSUBABC: arith(ARITH_MSUB, SOURCE_BC, true),
	vu.OP_MSUBAQ:  arith(ARITH_MSUB, SOURCE_Q, true),
	vu.OP_MSUBAI:  arith(ARITH_MSUB, SOURCE_I, true),
	vu.OP_OPMULA:  outer(true),
	vu.OP_ITOF0:   itof(0),
	vu.OP_ITOF4:   itof(4),
	vu.OP_ITOF12:  itof(12),
	vu.OP_ITOF15:  itof(15),
	vu.OP_FTOI0:   ftoi(0),
	vu.OP_FTOI4:   ftoi(4),
	vu.OP_FTOI12:  ftoi(12),
	vu.OP_FTOI15:  ftoi(15),
	vu.OP_ABS:     emitABS,
	vu.OP_CLIP:    emitCLIP,
	vu.OP_NOP:     emitNOP,

	vu.OP_LQ:   load(STEP_NONE),
	vu.OP_SQ:   store(STEP_NONE),
	vu.OP_LQI:  load(STEP_INC),
	vu.OP_LQD:  load(STEP_DEC),
	vu.OP_SQI:  store(STEP_INC),
	vu.OP_SQD:  store(STEP_DEC),
	vu.OP_ILW:  integerLoad(false),
	vu.OP_ISW:  integerStore(false),
	vu.OP_ILWR: integerLoad(true),
	vu.OP_ISWR: integerStore(true),
	vu.OP_MOVE: emitMOVE,
	vu.OP_MR32: emitMR32,
	vu.OP_MFIR: emitMFIR,
	vu.OP_MTIR: emitMTIR,

	vu.OP_IADD:   integerOp(host.ALU_ADD),
	vu.OP_ISUB:   integerOp(host.ALU_SUB),
	vu.OP_IAND:   integerOp(host.ALU_AND),
	vu.OP_IOR:    integerOp(host.ALU_OR),
	vu.OP_IADDI:  integerImm(host.ALU_ADD, imm5),
	vu.OP_IADDIU: integerImm(host.ALU_ADD, imm15),
	vu.OP_ISUBIU: integerImm(host.ALU_SUB, imm15),

	vu.OP_DIV:   divide(vu.OP_DIV),
	vu.OP_SQRT:  divide(vu.OP_SQRT),
	vu.OP_RSQRT: divide(vu.OP_RSQRT),
	vu.OP_WAITQ: emitWAITQ,

	vu.OP_FSAND: statusOp(FLAG_AND),
	vu.OP_FSEQ:  statusOp(FLAG_EQ),
	vu.OP_FSOR:  statusOp(FLAG_OR),
	vu.OP_FSSET: emitFSSET,
	vu.OP_FMAND: macOp(FLAG_AND),
	vu.OP_FMEQ:  macOp(FLAG_EQ),
	vu.OP_FMOR:  macOp(FLAG_OR),
	vu.OP_FCAND: clipOp(FLAG_AND),
	vu.OP_FCEQ:  clipOp(FLAG_EQ),
	vu.OP_FCOR:  clipOp(FLAG_OR),
	vu.OP_FCSET: emitFCSET,
	vu.OP_FCGET: emitFCGET,

	vu.OP_B:     emitB,
	vu.OP_BAL:   emitBAL,
	vu.OP_JR:    jump(false),
	vu.OP_JALR:  jump(true),
	vu.OP_IBEQ:  conditional(COMPARE_EQ),
	vu.OP_IBNE:  conditional(COMPARE_NE),
	vu.OP_IBLTZ: conditional(COMPARE_LTZ),
	vu.OP_IBGTZ: conditional(COMPARE_GTZ),
	vu.OP_IBLEZ: conditional(COMPARE_LEZ),
	vu.OP_IBGEZ: conditional(COMPARE_GEZ),

	vu.OP_RINIT: seed(false),
	vu.OP_RXOR:  seed(true),
	vu.OP_RGET:  emitRGET,
	vu.OP_RNEXT: emitRNEXT,

	vu.OP_MFP:     emitMFP,
	vu.OP_WAITP:   emitWAITP,
	vu.OP_ESADD:   efu(vu.OP_ESADD),
	vu.OP_ERSADD:  efu(vu.OP_ERSADD),
	vu.OP_ELENG:   efu(vu.OP_ELENG),
	vu.OP_ERLENG:  efu(vu.OP_ERLENG),
	vu.OP_EATANXY: efu(vu.OP_EATANXY),
	vu.OP_EATANXZ: efu(vu.OP_EATANXZ),
	vu.OP_ESUM:    efu(vu.OP_ESUM),
	vu.OP_ERCPR:   efu(vu.OP_ERCPR),
	vu.OP_ESQRT:   efu(vu.OP_ESQRT),
	vu.OP_ERSQRT:  efu(vu.OP_ERSQRT),
	vu.OP_ESIN:    efu(vu.OP_ESIN),
	vu.OP_EATAN:   efu(vu.OP_EATAN),
	vu.OP_EEXP:    efu(vu.OP_EEXP),

	vu.OP_XTOP:   top(false),
	vu.OP_XITOP:  top(true),
	vu.OP_XGKICK: emitXGKICK,
}
