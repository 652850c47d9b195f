package dnd

import (
	stderrors "errors"

	"github.com/vango-dev/dragsort/internal/errors"
)

// ErrInvalidConfig is wrapped by every construction error.
var ErrInvalidConfig = stderrors.New("dnd: invalid configuration")

func configError(code, format string, args ...any) error {
	return errors.New(code).WithDetailf(format, args...).Wrap(ErrInvalidConfig)
}
