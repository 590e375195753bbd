package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/qopt/internal/engine"
)

const runColumns = `id, seq, source, pipeline, input_fingerprint, output_fingerprint,
	ops_before, ops_after, iterations, converged, engine_version, ir_version`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadRun retrieves a run and its pass results by run id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}

	passes, err := s.ReadPassResults(ctx, id)
	if err != nil {
		return Run{}, err
	}
	run.Passes = passes
	return run, nil
}

// ListRuns returns recorded runs without their pass results, ordered by
// seq ASC, id ASC. limit <= 0 returns every run; otherwise the most recent
// limit runs, still in ascending order.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq ASC, id COLLATE BINARY ASC`
	args := []any{}
	if limit > 0 {
		query = `SELECT * FROM (SELECT ` + runColumns + ` FROM runs
			ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?)
			ORDER BY seq ASC, id COLLATE BINARY ASC`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// RunsForInput returns every run over the circuit with the given input
// fingerprint, ordered by seq ASC, id ASC.
func (s *Store) RunsForInput(ctx context.Context, fingerprint string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE input_fingerprint = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, fingerprint)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// ReadPassResults returns a run's pass executions in execution order.
func (s *Store) ReadPassResults(ctx context.Context, runID string) ([]engine.PassReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT iteration, pass, ops_before, ops_after, rewrites, duration_ns
		FROM pass_results
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query pass results: %w", err)
	}
	defer rows.Close()

	passes := []engine.PassReport{}
	for rows.Next() {
		var p engine.PassReport
		var durationNS int64
		if err := rows.Scan(&p.Iteration, &p.Pass, &p.OpsBefore, &p.OpsAfter, &p.Rewrites, &durationNS); err != nil {
			return nil, fmt.Errorf("scan pass result: %w", err)
		}
		p.Duration = time.Duration(durationNS)
		passes = append(passes, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pass results: %w", err)
	}
	return passes, nil
}

// LastSeq returns the highest seq in the ledger, 0 when empty.
// Used to resume the logical clock from the correct position.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM runs`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// scanRun scans one runs row. Pass results are left nil.
func scanRun(row rowScanner) (Run, error) {
	var run Run
	var pipelineJSON string
	var converged int

	if err := row.Scan(
		&run.RunID, &run.Seq, &run.Source, &pipelineJSON,
		&run.InputFingerprint, &run.OutputFingerprint,
		&run.OpsBefore, &run.OpsAfter, &run.Iterations, &converged,
		&run.EngineVersion, &run.IRVersion,
	); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	pipeline, err := unmarshalPipeline(pipelineJSON)
	if err != nil {
		return Run{}, err
	}
	run.Pipeline = pipeline
	run.Converged = converged != 0
	return run, nil
}
