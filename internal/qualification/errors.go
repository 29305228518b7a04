package qualification

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed or contradictory caller input
	ErrInvalidInput = errors.New("invalid input")
	// ErrComputationBounds marks a group with too many remaining fixtures to enumerate
	ErrComputationBounds = errors.New("computation bounds exceeded")
)

// InvalidInputError describes why a request was rejected.
// Not retryable: the same input fails the same way.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) work
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidf(format string, args ...interface{}) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// ComputationBoundsError is returned instead of starting an enumeration of 2^Fixtures branches
type ComputationBoundsError struct {
	Group    GroupID
	Fixtures int
	Max      int
}

func (e *ComputationBoundsError) Error() string {
	return fmt.Sprintf("group %q has %d remaining fixtures, limit is %d", e.Group, e.Fixtures, e.Max)
}

// Is makes errors.Is(err, ErrComputationBounds) work
func (e *ComputationBoundsError) Is(target error) bool {
	return target == ErrComputationBounds
}
