package solver

import (
	"errors"
	"fmt"

	"github.com/spboyer/loadout/internal/ilp"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrTableTooLarge is returned instead of allocating a dynamic
	// programming table beyond Options.MaxTableCells.
	ErrTableTooLarge = errors.New("dynamic programming table too large")
	// ErrNonIntegral accompanies models.ErrInvalidInput when dynamic
	// programming is given fractional weights or capacity.
	ErrNonIntegral = errors.New("dynamic programming requires integer weights and capacity")
	// ErrEngineFailure means the ILP engine did not prove an optimum. It is
	// distinct from a legitimately empty optimal selection.
	ErrEngineFailure = errors.New("ilp engine did not return an optimal solution")
)

// EngineFailureError carries the engine status behind ErrEngineFailure.
type EngineFailureError struct {
	Status ilp.Status
	Err    error
}

func (e *EngineFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %s): %v", ErrEngineFailure, e.Status, e.Err)
	}
	return fmt.Sprintf("%s (status %s)", ErrEngineFailure, e.Status)
}

func (e *EngineFailureError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrEngineFailure, e.Err}
	}
	return []error{ErrEngineFailure}
}
