package engine

import (
	"errors"
	"fmt"
)

// InsufficientDataError means a fit was attempted with too few usable
// observations. The caller must leave any previously trained model untouched.
type InsufficientDataError struct {
	Code   string // product code, or the FX key
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: %s", e.Code, e.Reason)
}

// InputValidationError means a request carried an out-of-domain value
// (non-positive price or cost, negative units). It names the offending field
// so the API can report which rule was violated.
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrNoEstimate is returned when the ensemble has nothing to blend. It is the
// only hard failure on the recommendation path.
var ErrNoEstimate = errors.New("no price estimate available")
