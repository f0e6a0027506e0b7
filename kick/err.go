package kick

import (
	"errors"

	"github.com/ezrec/vurec/translate"
)

var f = translate.From

var (
	ErrQueueDepth = errors.New(f("kick queue depth must be positive"))
)
