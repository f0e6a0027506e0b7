// Package host generates code for the x86-64 SSE host.
//
// Every emitted instruction is an Op carrying both its real machine
// encoding and a Go closure with the same effect on a Machine, the
// software model of the host's XMM and general purpose registers. A
// compiled block is a flat list of ops: it executes by running the
// closures in order, and its native listing is the concatenation of the
// encodings.
//
// Floating point ops model the host running with MXCSR set to round
// toward zero with denormals read as zero, the mode the vector units need.
// Their result keeps the maximum exponent on overflow, so the flag engine
// can see it before clamping.
//
// R15 holds the arena base address and RAX is the helper call register;
// neither is handed out by the register allocator.
package host
