package identity

import "errors"

var (
	ErrUnknownGenerator    = errors.New("identity: unknown generator")
	ErrClockMovedBackwards = errors.New("identity: clock moved backwards")
)
