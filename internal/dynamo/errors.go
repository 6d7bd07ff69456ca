package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidMass indicates a non-positive or non-finite body mass.
	ErrInvalidMass = errors.New("dynamo: mass must be positive and finite")

	// ErrNonFinite indicates a NaN or Inf coordinate.
	ErrNonFinite = errors.New("dynamo: non-finite coordinate (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensions indicates a dimensionality other than 2 or 3.
	ErrDimensions = errors.New("dynamo: dimensions must be 2 or 3")

	// ErrDuplicateID indicates two bodies sharing an id in one scene.
	ErrDuplicateID = errors.New("dynamo: duplicate body id")
)

// TickError wraps an error with the tick it was detected on.
type TickError struct {
	Tick    int
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
