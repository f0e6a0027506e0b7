// Package emit translates vector unit instructions into host ops.
//
// A Context carries everything one block's compilation needs: the unit,
// the op builder, the register allocator, the flag engine and the
// enabled compatibility exceptions. Each opcode has one Emitter, looked up
// by EmitPair, which also handles the pair ordering rules and the
// pipeline bookkeeping around every pair.
package emit
