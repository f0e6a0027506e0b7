package kick

import (
	"iter"

	"github.com/ezrec/vurec/memory"
)

// Ring is a circular view of a memory window, read a quadword at a time.
type Ring struct {
	Data      []byte
	ReadIndex int // Quadword index of the next read.
}

// Qwords returns the size of the window in quadwords.
func (ring *Ring) Qwords() int {
	return len(ring.Data) / memory.QWORD
}

// Peek returns the quadword at the read position.
func (ring *Ring) Peek() []byte {
	offset := (ring.ReadIndex % ring.Qwords()) * memory.QWORD
	return ring.Data[offset : offset+memory.QWORD]
}

// Skip advances the read position, wrapping at the end of the window.
func (ring *Ring) Skip(qwords int) {
	ring.ReadIndex = (ring.ReadIndex + qwords) % ring.Qwords()
}

// Receive returns an iterator over the next n quadwords. Each is yielded as
// the longest run that does not cross the end of the window.
func (ring *Ring) Receive(n int) iter.Seq[[]byte] {
	return func(yield func(run []byte) bool) {
		for n > 0 {
			start := ring.ReadIndex % ring.Qwords()
			count := min(n, ring.Qwords()-start)
			run := ring.Data[start*memory.QWORD : (start+count)*memory.QWORD]
			ring.Skip(count)
			n -= count
			if !yield(run) {
				return
			}
		}
	}
}
