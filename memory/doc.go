// Package memory implements the unit memory manager for the vector units.
//
// A single arena holds unit 0 data and microcode, both register files, and
// unit 1 microcode and data. The placement is fixed so that the unit 0 data
// space reaches unit 1's register file through its alias window. Registers
// are addressed by typed offsets into the arena, never by host pointers.
//
// The package also owns address translation for load/store instructions and
// the save-state frame format.
package memory
