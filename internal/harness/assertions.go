package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/sim"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Circuit  []string // Rendered output circuit for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Circuit) > 0 {
		fmt.Fprintf(&buf, "\nOutput circuit:\n")
		for i, line := range e.Circuit {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}

	return buf.String()
}

// evaluateAssertions checks every configured expectation against the
// optimized circuit. Returns one message per failed assertion, in field
// order: ops, counts, contains, circuit, equivalent, idempotent.
func evaluateAssertions(ctx context.Context, r *runner, result *Result, out *dag.DAG) []string {
	expect := r.scenario.Expect
	rendered := result.Rendered()
	var errs []string
	fail := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if expect.Ops != nil {
		fail(assertOps(*expect.Ops, rendered))
	}
	if len(expect.Counts) > 0 {
		fail(assertCounts(expect.Counts, result.Counts(), rendered))
	}
	for _, want := range expect.Contains {
		fail(assertContains(want, rendered))
	}
	if len(expect.Circuit) > 0 {
		fail(assertCircuit(expect.Circuit, rendered))
	}
	if expect.Equivalent {
		fail(assertEquivalent(r, result, rendered))
	}
	if expect.Idempotent {
		fail(assertIdempotent(ctx, r, out, rendered))
	}
	return errs
}

func assertOps(want int, rendered []string) error {
	if len(rendered) == want {
		return nil
	}
	return &AssertionError{
		Type:     "ops",
		Expected: fmt.Sprintf("%d operations", want),
		Actual:   fmt.Sprintf("%d operations", len(rendered)),
		Circuit:  rendered,
	}
}

// assertCounts checks listed kinds only. Unlisted kinds may appear freely.
func assertCounts(want, got map[string]int, rendered []string) error {
	kinds := make([]string, 0, len(want))
	for k := range want {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	var diffs []string
	for _, k := range kinds {
		if got[k] != want[k] {
			diffs = append(diffs, fmt.Sprintf("%s=%d (want %d)", k, got[k], want[k]))
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     "counts",
		Expected: formatCounts(want),
		Actual:   strings.Join(diffs, ", "),
		Circuit:  rendered,
	}
}

func assertContains(want string, rendered []string) error {
	for _, line := range rendered {
		if line == want {
			return nil
		}
	}
	return &AssertionError{
		Type:     "contains",
		Expected: want,
		Actual:   "not found in output",
		Circuit:  rendered,
	}
}

func assertCircuit(want, rendered []string) error {
	if len(want) != len(rendered) {
		return &AssertionError{
			Type:     "circuit",
			Expected: fmt.Sprintf("%d operations", len(want)),
			Actual:   fmt.Sprintf("%d operations", len(rendered)),
			Circuit:  rendered,
		}
	}
	for i := range want {
		if want[i] != rendered[i] {
			return &AssertionError{
				Type:     "circuit",
				Expected: fmt.Sprintf("operation %d is %q", i+1, want[i]),
				Actual:   fmt.Sprintf("%q", rendered[i]),
				Circuit:  rendered,
			}
		}
	}
	return nil
}

func assertEquivalent(r *runner, result *Result, rendered []string) error {
	if n := result.Input.NumQubits(); n > sim.MaxQubits {
		return &AssertionError{
			Type:     "equivalent",
			Expected: fmt.Sprintf("at most %d qubits", sim.MaxQubits),
			Actual:   fmt.Sprintf("%d qubits", n),
		}
	}
	ok, err := sim.Equivalent(r.catalog, result.Input, result.Output, sim.DefaultTolerance)
	if err != nil {
		return &AssertionError{
			Type:     "equivalent",
			Expected: "simulable circuits",
			Actual:   err.Error(),
			Circuit:  rendered,
		}
	}
	if !ok {
		return &AssertionError{
			Type:     "equivalent",
			Expected: "output unitary equal to input up to global phase",
			Actual:   "unitaries differ",
			Circuit:  rendered,
		}
	}
	return nil
}

// assertIdempotent reruns the pipeline on a copy of the output.
func assertIdempotent(ctx context.Context, r *runner, out *dag.DAG, rendered []string) error {
	before, err := out.Fingerprint()
	if err != nil {
		return err
	}
	again, _, err := r.run(ctx, out.Clone())
	if err != nil {
		return &AssertionError{
			Type:     "idempotent",
			Expected: "second run succeeds",
			Actual:   err.Error(),
			Circuit:  rendered,
		}
	}
	after, err := again.Fingerprint()
	if err != nil {
		return err
	}
	if before == after {
		return nil
	}
	return &AssertionError{
		Type:     "idempotent",
		Expected: fmt.Sprintf("fingerprint %s", before),
		Actual:   fmt.Sprintf("fingerprint %s after %d operations", after, again.NumOps()),
		Circuit:  rendered,
	}
}

func formatCounts(counts map[string]int) string {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}
