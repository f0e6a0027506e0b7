package vu

// Executor is the dispatch record of a unit. The interpreter and the
// recompiler both implement it, and the owner may switch between them
// only while the unit is idle.
type Executor interface {
	// Reset discards all cached state.
	Reset() error
	// Execute runs the unit from its program counter until the program
	// ends or the cycle budget is spent.
	Execute() error
	// Clear discards anything derived from a micro memory byte range.
	Clear(addr uint32, size uint32)
	// Shutdown releases the executor's resources.
	Shutdown() error
}
