package registry

import "errors"

var (
	ErrUnknownBehavior = errors.New("unknown behavior")
	ErrInvalidParams   = errors.New("invalid behavior params")
)
