package host

import (
	"errors"

	"github.com/ezrec/vurec/translate"
)

var f = translate.From

var (
	ErrCodeBufferFull = errors.New(f("code buffer full"))
	ErrCodeBufferFree = errors.New(f("code buffer released"))
)

// ErrDecode reports native code that does not disassemble.
type ErrDecode struct {
	Offset int
	Err    error
}

func (err *ErrDecode) Error() string {
	return f("offset 0x%04x: %v", err.Offset, err.Err)
}

func (err *ErrDecode) Unwrap() error {
	return err.Err
}
