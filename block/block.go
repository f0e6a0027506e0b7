package block

import (
	"github.com/ezrec/vurec/host"
	"github.com/ezrec/vurec/memory"
)

// State is the cache state of a block address.
type State int

const (
	STATE_NOT_COMPILED = State(0) // not-compiled
	STATE_COMPILED     = State(1) // compiled
	STATE_INVALIDATED  = State(2) // invalidated
)

var stateName = [...]string{
	STATE_NOT_COMPILED: "not-compiled",
	STATE_COMPILED:     "compiled",
	STATE_INVALIDATED:  "invalidated",
}

func (state State) String() string {
	return stateName[state]
}

// Block is one compiled run of instruction pairs.
type Block struct {
	Start uint32 // Micro memory byte address of the first pair.
	Pairs int    // Pairs compiled, including a trailing delay slot.
	Ops   []host.Op
	State State

	Native int // Offset of the native encoding in the code buffer.
	Size   int // Bytes of native encoding.
	Runs   int // Dispatch count.
}

// Bytes returns the micro memory size the block was compiled from.
func (blk *Block) Bytes() uint32 {
	return uint32(blk.Pairs) * memory.PAIR_SIZE
}

// Overlaps returns true if the block was compiled from any byte of the
// micro memory range. The range and the block both wrap at window bytes.
func (blk *Block) Overlaps(addr uint32, size uint32, window uint32) bool {
	if size == 0 {
		return false
	}
	if size >= window {
		return true
	}

	// Distance from the block start to the range start, and back.
	ahead := (addr - blk.Start) % window
	behind := (blk.Start - addr) % window
	return ahead < blk.Bytes() || behind < size
}
