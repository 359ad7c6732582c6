package cooloff

import "errors"

var (
	ErrAlreadyActive   = errors.New("a time-out is already active")
	ErrInvalidDuration = errors.New("time-out duration must be between 1 and 42 days")
)
