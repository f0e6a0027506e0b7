package host

import (
	"fmt"
)

// XMM is an SSE register.
type XMM int

func (x XMM) String() string {
	return fmt.Sprintf("xmm%d", int(x))
}

// GPR is a general purpose register, used with 32-bit operands.
type GPR int

const (
	RAX = GPR(0)  // rax
	RCX = GPR(1)  // rcx
	RDX = GPR(2)  // rdx
	RBX = GPR(3)  // rbx
	RSP = GPR(4)  // rsp
	RBP = GPR(5)  // rbp
	RSI = GPR(6)  // rsi
	RDI = GPR(7)  // rdi
	R8  = GPR(8)  // r8
	R9  = GPR(9)  // r9
	R10 = GPR(10) // r10
	R11 = GPR(11) // r11
	R12 = GPR(12) // r12
	R13 = GPR(13) // r13
	R14 = GPR(14) // r14
	R15 = GPR(15) // r15
)

// XMM_COUNT is the number of SSE registers.
const XMM_COUNT = 16

// GPR_COUNT is the number of general purpose registers.
const GPR_COUNT = 16

// ARENA is the register holding the arena base.
const ARENA = R15

var gprName = [GPR_COUNT]string{
	"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
	"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15",
}

func (g GPR) String() string {
	return gprName[g&15]
}

// Cond is an x86 condition code.
type Cond int

const (
	COND_B  = Cond(0x2) // b
	COND_AE = Cond(0x3) // ae
	COND_E  = Cond(0x4) // e
	COND_NE = Cond(0x5) // ne
	COND_L  = Cond(0xc) // l
	COND_GE = Cond(0xd) // ge
	COND_LE = Cond(0xe) // le
	COND_G  = Cond(0xf) // g
)

// Not returns the inverse condition.
func (cc Cond) Not() Cond {
	return cc ^ 1
}

// Mem is an arena memory operand: [R15+disp] or [R15+index+disp].
type Mem struct {
	Disp    int32
	Index   GPR
	Indexed bool
}

// At addresses a fixed arena offset.
func At(offset int) Mem {
	return Mem{Disp: int32(offset)}
}

// AtIndex addresses the arena offset held in a register.
func AtIndex(index GPR) Mem {
	return Mem{Index: index, Indexed: true}
}

// Plus returns the operand moved by a byte offset.
func (mem Mem) Plus(disp int) Mem {
	mem.Disp += int32(disp)
	return mem
}
