package physics

import (
	"errors"
	"fmt"
)

// Domain errors for body construction and collision handling.
var (
	// ErrInvalidParameter indicates a body parameter outside its valid range.
	ErrInvalidParameter = errors.New("physics: invalid parameter")

	// ErrDegenerateGeometry indicates two bodies at exactly the same position,
	// for which no collision normal exists.
	ErrDegenerateGeometry = errors.New("physics: degenerate geometry (zero distance)")
)

// ParameterError reports which parameter failed validation.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %g %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
