package limits

import "errors"

var (
	ErrInvalidAmount = errors.New("amount must be a finite number greater than zero")
	ErrInvalidLimit  = errors.New("deposit limits must be finite numbers greater than or equal to zero")
)
