// Package regalloc binds guest registers to host registers for the length
// of a compiled block.
//
// Vector float registers and the accumulator live in XMM registers, the
// integer registers in general purpose registers. A binding persists across
// instructions and is written back to the arena when evicted, when flushed
// before a helper reads the arena copy, and at the end of the block.
// Control registers are never cached.
package regalloc

import (
	"fmt"

	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/vu"
)

// Class is the kind of guest register.
type Class int

const (
	CLASS_VF  = Class(0) // vf
	CLASS_ACC = Class(1) // acc
	CLASS_VI  = Class(2) // vi
)

// Ref names a guest register.
type Ref struct {
	Class Class
	Index int
}

// VF refers to a vector float register.
func VF(vf vu.VF) Ref {
	return Ref{Class: CLASS_VF, Index: int(vf)}
}

// VI refers to an integer register.
func VI(vi vu.VI) Ref {
	return Ref{Class: CLASS_VI, Index: int(vi)}
}

// ACC refers to the accumulator.
var ACC = Ref{Class: CLASS_ACC}

func (ref Ref) String() string {
	switch ref.Class {
	case CLASS_VF:
		return fmt.Sprintf("vf%d", ref.Index)
	case CLASS_ACC:
		return "acc"
	}
	return fmt.Sprintf("vi%d", ref.Index)
}

// Kind returns the host register kind holding the guest register.
func (ref Ref) Kind() Kind {
	if ref.Class == CLASS_VI {
		return KIND_GPR
	}
	return KIND_XMM
}

// Mode is how an instruction uses a bound register.
type Mode int

const (
	MODE_READ  = Mode(1) // read
	MODE_WRITE = Mode(2) // write
	MODE_RW    = Mode(3) // read-write
)

// Kind is the kind of host register.
type Kind int

const (
	KIND_XMM = Kind(0) // xmm
	KIND_GPR = Kind(1) // gpr
)

func (kind Kind) String() string {
	if kind == KIND_GPR {
		return "gpr"
	}
	return "xmm"
}

// Host is an allocated host register.
type Host struct {
	Kind Kind
	N    int
}

// XMM returns the register as an SSE register.
func (h Host) XMM() host.XMM {
	return host.XMM(h.N)
}

// GPR returns the register as a general purpose register.
func (h Host) GPR() host.GPR {
	return host.GPR(h.N)
}

// Allocator is the interface the instruction emitters allocate through.
type Allocator interface {
	// Bind a guest register, loading it when mode reads it.
	Bind(ref Ref, mode Mode) Host
	// Temp allocates a scratch register, free at the end of the instruction.
	Temp(kind Kind) Host
	// Retain keeps a temporary past the end of the instruction.
	Retain(h Host)
	// Release a temporary, or unpin a binding.
	Release(h Host)
	// FlushIfDirty writes a binding back to the arena, keeping it bound.
	FlushIfDirty(ref Ref)
	// FlushAll writes back every dirty binding and drops them all.
	FlushAll()
	// EndInstruction unpins every binding and frees unretained temporaries.
	EndInstruction()
}
