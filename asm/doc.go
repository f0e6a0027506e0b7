// Package asm is a macro assembler for vector unit microcode.
//
// Each line assembles to one instruction pair:
//
//	label: UPPER [flags] | LOWER
//
// The upper and lower instructions use the disassembler's syntax
// ("addx.xyz vf1, vf2, vf3x", "lq.xyzw vf4, 2(vi3)"). Flags are "[e]" for
// end of program and "[i]"; "loi VALUE" in the lower slot loads the I
// register instead of issuing a lower instruction. A missing lower slot
// assembles as "nop", which is "move vf0, vf0" with no lanes.
//
// Directives are ".equ NAME VALUE", and ".macro NAME ARG..." through
// ".endm". Within a macro body "@" expands to a prefix unique to the
// expansion, for local labels. "$(expr)" is evaluated as a starlark
// expression over the integer equates before a line is parsed.
package asm
