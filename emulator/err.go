package emulator

import (
	"errors"

	"github.com/ezrec/vurec/translate"
)

var f = translate.From

var (
	ErrUnit   = errors.New(f("no such unit"))
	ErrClosed = errors.New(f("emulator closed"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Unit   int
	PC     uint32
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("vu%d: 0x%04x: %v", err.Unit, err.PC, err.Err)
	}
	return f("vu%d: 0x%04x: line %d %v", err.Unit, err.PC, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
