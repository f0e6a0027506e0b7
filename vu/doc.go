// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package vu describes a vector unit: its architectural state, its
// instruction words and opcodes, and its issue pipelines.
//
// A unit has 32 vector float registers of four 32-bit lanes (VF0 reads as
// (0,0,0,1)), 16 integer registers of 16 bits (VI0 reads as zero), an
// accumulator, and a set of control registers (status, mac and clip flags,
// the Q and P pipeline results, I, R and the program counter). All of them
// live in the unit's register file inside the shared memory arena, and are
// addressed here by typed indices rather than by pointer.
//
// Instructions come in 64-bit pairs: the upper word issues to the FMAC
// pipe, the lower word to the integer, load/store, branch, FDIV or EFU
// units. Flag results land three cycles after issue; Q and P land after
// their opcode's latency.
package vu
