package vu

import (
	"errors"

	"github.com/ezrec/vurec/translate"
)

var f = translate.From

var (
	ErrUnitBusy     = errors.New(f("unit executing"))
	ErrOpcodeDecode = errors.New(f("decode"))
	ErrOperandCount = errors.New(f("operand count"))
	ErrOperandRange = errors.New(f("operand out of range"))
)

// ErrOpcode reports a word that does not decode to an instruction.
type ErrOpcode struct {
	Upper bool
	Word  Word
}

func (err ErrOpcode) Error() string {
	half := "lower"
	if err.Upper {
		half = "upper"
	}
	return f("bad %v opcode 0x%08x", half, uint32(err.Word))
}

func (err ErrOpcode) Is(target error) (ok bool) {
	if target == ErrOpcodeDecode {
		return true
	}
	_, ok = target.(ErrOpcode)
	return
}
