package emit

import (
	"github.com/ezrec/vurec/translate"
	"github.com/ezrec/vurec/vu"
)

var f = translate.From

// ErrNoEmitter is raised when an opcode has no emitter.
type ErrNoEmitter struct {
	Op vu.Opcode
}

func (err *ErrNoEmitter) Error() string {
	return f("no emitter for %v", err.Op)
}

// ErrHack is an unknown compatibility exception name.
type ErrHack struct {
	Name string
}

func (err *ErrHack) Error() string {
	return f("unknown hack %q", err.Name)
}
