package errors

import "errors"

var (
	// ErrInvalidDuration means exit precedes entry. The fee calculator
	// never guesses here; clock skew is an operator problem.
	ErrInvalidDuration = errors.New("exit time precedes entry time")

	ErrUnknownCategory = errors.New("no rate for vehicle category")

	ErrInvalidRate = errors.New("invalid rate")
)
