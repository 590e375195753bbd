package engine

import "time"

// Report summarizes one pipeline run.
type Report struct {
	RunID             string       `json:"run_id"`
	Seq               int64        `json:"seq"`
	Pipeline          []string     `json:"pipeline"`
	InputFingerprint  string       `json:"input_fingerprint"`
	OutputFingerprint string       `json:"output_fingerprint"`
	OpsBefore         int          `json:"ops_before"`
	OpsAfter          int          `json:"ops_after"`
	Iterations        int          `json:"iterations"`
	Converged         bool         `json:"converged"`
	Passes            []PassReport `json:"passes"`
}

// PassReport records one pass execution within a run.
type PassReport struct {
	Iteration int           `json:"iteration"`
	Pass      string        `json:"pass"`
	OpsBefore int           `json:"ops_before"`
	OpsAfter  int           `json:"ops_after"`
	Rewrites  int           `json:"rewrites"`
	Duration  time.Duration `json:"duration_ns"`
}

// TotalRewrites sums rewrites over every pass execution.
func (r *Report) TotalRewrites() int {
	total := 0
	for _, p := range r.Passes {
		total += p.Rewrites
	}
	return total
}
