package flags

import (
	"github.com/ezrec/vurec/translate"
)

var f = translate.From

// ErrMode is an unknown flag mode name.
type ErrMode struct {
	Name string
}

func (err *ErrMode) Error() string {
	return f("unknown flag mode %q", err.Name)
}
