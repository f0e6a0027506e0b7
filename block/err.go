package block

import (
	"errors"

	"github.com/ezrec/vurec/translate"
)

var f = translate.From

var (
	ErrShutdown = errors.New(f("recompiler shut down"))
	ErrNoBlock  = errors.New(f("no compiled block"))
)

// ErrBlock is a failure to compile the block at a program counter.
type ErrBlock struct {
	Unit int
	PC   uint32
	Err  error
}

func (err *ErrBlock) Error() string {
	return f("vu%d: block 0x%04x: %v", err.Unit, err.PC, err.Err)
}

func (err *ErrBlock) Unwrap() error {
	return err.Err
}
