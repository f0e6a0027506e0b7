package memory

import (
	"errors"

	"github.com/ezrec/vurec/translate"
)

var f = translate.From

var (
	ErrOutOfMemory = errors.New(f("arena allocation failed"))
	ErrLayout      = errors.New(f("arena layout invalid"))
	ErrShutdown    = errors.New(f("arena released"))
	ErrFrameMagic  = errors.New(f("not a vector unit frame"))
	ErrFrameTag    = errors.New(f("frame tag mismatch"))
)

// ErrUnit is returned for a unit number outside the arena.
type ErrUnit int

func (err ErrUnit) Error() string {
	return f("unit %d invalid", int(err))
}

// ErrFrameSize reports a save-state frame whose declared size does not
// match the unit's memory size.
type ErrFrameSize struct {
	Unit  int
	Field string
	Got   uint32
	Want  uint32
}

func (err *ErrFrameSize) Error() string {
	return f("vu%d %v size %#x, expected %#x", err.Unit, err.Field, err.Got, err.Want)
}
