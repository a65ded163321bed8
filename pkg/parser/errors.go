package parser

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every InputValidationError via errors.Is
var ErrInvalidInput = errors.New("invalid input")

// InputValidationError reports input that was rejected before any graph was
// built: an empty edge list, a bad node count, or a malformed edge.
type InputValidationError struct {
	Reason string
	Err    error
}

func (e *InputValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input validation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("input validation failed: %s", e.Reason)
}

func (e *InputValidationError) Unwrap() error { return e.Err }

func (e *InputValidationError) Is(target error) bool { return target == ErrInvalidInput }

// MalformedEdgeError identifies an edge token that is not two non-negative
// integers. Line is 1-based within the submitted edge list.
type MalformedEdgeError struct {
	Line   int
	Token  string
	Reason string
}

func (e *MalformedEdgeError) Error() string {
	return fmt.Sprintf("malformed edge %q on line %d: %s", e.Token, e.Line, e.Reason)
}
