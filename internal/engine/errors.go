package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a failure while running a pipeline.
//
// Runtime errors include:
//   - Unknown pass: a pipeline names a pass nobody registered
//   - Invariant violated: a pass left the DAG structurally broken
//   - Pass failed: a pass returned a fatal error
//   - Iterations exceeded: a fixed-point pipeline did not converge
//
// Err keeps the underlying error reachable through errors.As, so callers
// can still detect dag.StructuralError or rotation.AlgebraVerificationError.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the pipeline run.
	RunID string

	// Pass names the pass that failed, if any.
	Pass string

	// Err is the wrapped cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownPass indicates a pipeline names an unregistered pass.
	ErrCodeUnknownPass RuntimeErrorCode = "UNKNOWN_PASS"

	// ErrCodeInvariantViolated indicates a pass broke the DAG invariants.
	ErrCodeInvariantViolated RuntimeErrorCode = "INVARIANT_VIOLATED"

	// ErrCodePassFailed indicates a pass returned an error.
	ErrCodePassFailed RuntimeErrorCode = "PASS_FAILED"

	// ErrCodeIterationsExceeded indicates the fixed point was not reached.
	ErrCodeIterationsExceeded RuntimeErrorCode = "ITERATIONS_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Pass != "" {
		msg = fmt.Sprintf("%s (pass=%s)", msg, e.Pass)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError reports whether err is a RuntimeError with the given code.
func IsRuntimeError(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewUnknownPassError creates a RuntimeError for an unregistered pass name.
func NewUnknownPassError(name string, known []string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownPass,
		Message: fmt.Sprintf("unknown pass %q (known: %v)", name, known),
		Pass:    name,
	}
}

func newPassError(runID, pass string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodePassFailed,
		Message: "pass returned an error",
		RunID:   runID,
		Pass:    pass,
		Err:     err,
	}
}

func newInvariantError(runID, pass string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvariantViolated,
		Message: "DAG invariants broken after pass",
		RunID:   runID,
		Pass:    pass,
		Err:     err,
	}
}
