// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package host

import (
	"reflect"
)

// Builder collects the ops of a block.
type Builder struct {
	Caps Capabilities // Host features the emitted sequences may use.
	ops  []Op
}

// NewBuilder returns an empty builder for a host with the given features.
func NewBuilder(caps Capabilities) *Builder {
	return &Builder{Caps: caps}
}

func (b *Builder) emit(name string, code []byte, exec func(*Machine)) {
	b.ops = append(b.ops, Op{Name: name, Code: code, Exec: exec})
}

// Ops returns the emitted ops.
func (b *Builder) Ops() []Op {
	return b.ops
}

// Len returns the number of emitted ops.
func (b *Builder) Len() int {
	return len(b.ops)
}

// Native returns the concatenated native encoding.
func (b *Builder) Native() (code []byte) {
	for _, op := range b.ops {
		code = append(code, op.Code...)
	}
	return
}

// If emits a two-armed conditional on the last comparison. Both arms are
// built before the jumps, so the displacements are known when encoded and
// never patched. Either arm may be nil.
func (b *Builder) If(cc Cond, then func(*Builder), otherwise func(*Builder)) {
	tb := NewBuilder(b.Caps)
	if then != nil {
		then(tb)
	}
	eb := NewBuilder(b.Caps)
	if otherwise != nil {
		otherwise(eb)
	}

	thenCode := tb.Native()
	elseCode := eb.Native()

	var code []byte
	if len(eb.ops) == 0 {
		code = encodeJcc(cc.Not(), len(thenCode))
		code = append(code, thenCode...)
	} else {
		jmp := encodeJmp(len(elseCode))
		code = encodeJcc(cc.Not(), len(thenCode)+len(jmp))
		code = append(code, thenCode...)
		code = append(code, jmp...)
		code = append(code, elseCode...)
	}

	thenOps, elseOps := tb.ops, eb.ops
	b.emit("if."+ccName[cc], code, func(m *Machine) {
		if m.Test(cc) {
			m.Run(thenOps)
		} else {
			m.Run(elseOps)
		}
	})
}

// Call emits a helper call. Helpers preserve every register but RAX.
func (b *Builder) Call(name string, fn func(*Machine)) {
	target := uint64(reflect.ValueOf(fn).Pointer())
	b.emit("call "+name, encodeCall(target), fn)
}

// Ret ends the block.
func (b *Builder) Ret() {
	b.emit("ret", []byte{0xc3}, func(*Machine) {})
}

var ccName = map[Cond]string{
	COND_B:  "b",
	COND_AE: "ae",
	COND_E:  "e",
	COND_NE: "ne",
	COND_L:  "l",
	COND_GE: "ge",
	COND_LE: "le",
	COND_G:  "g",
}

func (cc Cond) String() string {
	return ccName[cc]
}
