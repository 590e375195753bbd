package store

import (
	"context"
	"fmt"

	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/ir"
)

// Run is one ledger entry: an engine report plus where its input came from.
type Run struct {
	Source        string
	EngineVersion string
	IRVersion     string
	engine.Report
}

// NewRun wraps a report for recording, stamped with the current engine
// and circuit schema versions.
func NewRun(source string, report engine.Report) Run {
	return Run{
		Source:        source,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
		Report:        report,
	}
}

// WriteRun records a run and its pass results in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting a run id is
// silently ignored, pass results included. A different run reusing a seq
// fails the UNIQUE constraint.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	pipelineJSON, err := marshalPipeline(run.Pipeline)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, source, pipeline, input_fingerprint, output_fingerprint,
		 ops_before, ops_after, iterations, converged, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.RunID,
		run.Seq,
		run.Source,
		pipelineJSON,
		run.InputFingerprint,
		run.OutputFingerprint,
		run.OpsBefore,
		run.OpsAfter,
		run.Iterations,
		boolToInt(run.Converged),
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if rows == 0 {
		return nil
	}

	for i, p := range run.Passes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pass_results
			(run_id, idx, iteration, pass, ops_before, ops_after, rewrites, duration_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.RunID,
			i,
			p.Iteration,
			p.Pass,
			p.OpsBefore,
			p.OpsAfter,
			p.Rewrites,
			p.Duration.Nanoseconds(),
		)
		if err != nil {
			return fmt.Errorf("write pass result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
