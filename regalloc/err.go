package regalloc

import (
	"github.com/ezrec/vurec/translate"
)

var f = translate.From

// ErrStarved is raised when every host register of a kind is pinned by
// the current instruction.
type ErrStarved struct {
	Kind Kind
}

func (err *ErrStarved) Error() string {
	return f("no %v register available", err.Kind)
}
