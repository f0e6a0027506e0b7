package config

import (
	"errors"

	"github.com/ezrec/vurec/translate"
)

var f = translate.From

var (
	ErrType  = errors.New(f("wrong type"))
	ErrRange = errors.New(f("out of range"))
	ErrName  = errors.New(f("unknown setting"))
)

// ErrSetting is a setting that could not be applied.
type ErrSetting struct {
	Name string
	Err  error
}

func (err *ErrSetting) Error() string {
	return f("config %v: %v", err.Name, err.Err)
}

func (err *ErrSetting) Unwrap() error {
	return err.Err
}
