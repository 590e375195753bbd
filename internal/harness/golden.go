package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qopt/internal/ir"
)

// Snapshot is the deterministic view of a scenario run.
// Fingerprints and pass durations are left out; fingerprints are covered
// by ir tests and durations vary between runs.
type Snapshot struct {
	Name       string
	RunID      string
	Pipeline   []string
	Iterations int
	Converged  bool
	Ops        []string
	Counts     map[string]int
	Passes     []PassSnapshot
	ErrorCodes []string
}

// PassSnapshot is one pass execution without its duration.
type PassSnapshot struct {
	Iteration int
	Pass      string
	OpsBefore int
	OpsAfter  int
	Rewrites  int
}

// NewSnapshot captures the deterministic parts of a result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		Name:       name,
		Ops:        result.Rendered(),
		Counts:     result.Counts(),
		ErrorCodes: result.ErrorCodes,
	}
	if rep := result.Report; rep != nil {
		s.RunID = rep.RunID
		s.Pipeline = rep.Pipeline
		s.Iterations = rep.Iterations
		s.Converged = rep.Converged
		for _, p := range rep.Passes {
			s.Passes = append(s.Passes, PassSnapshot{
				Iteration: p.Iteration,
				Pass:      p.Pass,
				OpsBefore: p.OpsBefore,
				OpsAfter:  p.OpsAfter,
				Rewrites:  p.Rewrites,
			})
		}
	}
	return s
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	counts := make(map[string]any, len(s.Counts))
	for k, n := range s.Counts {
		counts[k] = n
	}
	passList := make([]any, len(s.Passes))
	for i, p := range s.Passes {
		passList[i] = map[string]any{
			"iteration":  p.Iteration,
			"pass":       p.Pass,
			"ops_before": p.OpsBefore,
			"ops_after":  p.OpsAfter,
			"rewrites":   p.Rewrites,
		}
	}

	result := map[string]any{
		"name":       s.Name,
		"run_id":     s.RunID,
		"pipeline":   append([]string{}, s.Pipeline...),
		"iterations": s.Iterations,
		"converged":  s.Converged,
		"ops":        append([]string{}, s.Ops...),
		"counts":     counts,
		"passes":     passList,
	}
	if len(s.ErrorCodes) > 0 {
		result["error_codes"] = s.ErrorCodes
	}
	return result
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares a result's snapshot against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewSnapshot(scenarioName, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
