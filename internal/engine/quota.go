package engine

import (
	"errors"
	"fmt"
)

// IterationBudget bounds how often a fixed-point pipeline repeats.
//
// Idempotent passes converge after one extra iteration. A pipeline whose
// passes keep rewriting each other's output never converges; the budget
// turns that into an IterationsExceededError instead of a hang.
type IterationBudget struct {
	limit   int
	current int
}

// NewIterationBudget creates a budget allowing limit iterations.
func NewIterationBudget(limit int) *IterationBudget {
	return &IterationBudget{limit: limit}
}

// Check counts one iteration and fails once the limit is passed.
func (b *IterationBudget) Check(runID string) error {
	b.current++
	if b.current > b.limit {
		return &IterationsExceededError{
			RunID:      runID,
			Iterations: b.current,
			Limit:      b.limit,
		}
	}
	return nil
}

// Current returns the number of counted iterations.
func (b *IterationBudget) Current() int {
	return b.current
}

// Limit returns the configured maximum.
func (b *IterationBudget) Limit() int {
	return b.limit
}

// IterationsExceededError is returned when a fixed-point pipeline does not
// converge within its budget.
type IterationsExceededError struct {
	RunID      string
	Iterations int
	Limit      int
}

// Error implements the error interface.
func (e *IterationsExceededError) Error() string {
	return fmt.Sprintf("run %s did not reach a fixed point: %d iterations > %d limit",
		e.RunID, e.Iterations, e.Limit)
}

// IsIterationsExceededError returns true if the error is an
// IterationsExceededError. Uses errors.As to handle wrapped errors.
func IsIterationsExceededError(err error) bool {
	var ie *IterationsExceededError
	return errors.As(err, &ie)
}
