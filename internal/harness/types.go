package harness

import (
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expectation holds.
	Pass bool `json:"pass"`

	// Input is the circuit as declared by the scenario.
	Input ir.Circuit `json:"input"`

	// Output is the optimized circuit. Empty when the pipeline failed.
	Output ir.Circuit `json:"output"`

	// Report is the engine report. It may be partial when the pipeline
	// failed mid-run, and nil when it never started.
	Report *engine.Report `json:"report,omitempty"`

	// ErrorCodes lists the codes found in the pipeline error chain,
	// outermost first. Empty if the run succeeded.
	ErrorCodes []string `json:"error_codes,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Rendered returns the output instructions in program order, one string
// per instruction.
func (r *Result) Rendered() []string {
	out := make([]string, len(r.Output.Instructions))
	for i, in := range r.Output.Instructions {
		out[i] = in.String()
	}
	return out
}

// Counts tallies output instructions by kind.
func (r *Result) Counts() map[string]int {
	counts := make(map[string]int)
	for _, in := range r.Output.Instructions {
		counts[in.Kind]++
	}
	return counts
}
