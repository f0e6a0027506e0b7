// Package block caches compiled microcode blocks and dispatches them.
//
// A block is compiled the first time the program counter reaches its
// start address, and runs until a branch resolves, the program ends or the
// configured pair limit is reached. Writes into the micro memory range a
// block was compiled from invalidate it; invalidated blocks are discarded
// and compiled afresh on their next dispatch.
package block
