package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every error caused by malformed items or
// containers. Solvers return it before doing any work.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which field of the input was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
