package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/qopt/internal/dag"
)

// DefaultMaxIterations bounds fixed-point pipelines.
const DefaultMaxIterations = 10

// Engine runs an ordered list of passes over one DAG.
//
// INVARIANTS:
//   - pass order NEVER changes after construction
//   - DAG invariants hold after every pass, or Run fails
type Engine struct {
	passes        []Pass
	runIDs        RunIDGenerator
	clock         Sequencer
	maxIterations int
	fixedPoint    bool
	logger        *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxIterations sets the fixed-point iteration budget.
//
// Default: 10 iterations (DefaultMaxIterations)
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithFixedPoint repeats the pipeline until the DAG fingerprint is stable.
func WithFixedPoint(enabled bool) EngineOption {
	return func(e *Engine) {
		e.fixedPoint = enabled
	}
}

// WithRunIDGenerator replaces the UUIDv7 run ID source.
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithClock stamps reports from c instead of a fresh clock.
func WithClock(c Sequencer) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over passes in the given order.
// The slice is copied so callers cannot reorder a running pipeline.
func New(passes []Pass, opts ...EngineOption) *Engine {
	e := &Engine{
		passes:        append([]Pass(nil), passes...),
		runIDs:        UUIDv7Generator{},
		clock:         NewClock(),
		maxIterations: DefaultMaxIterations,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PassNames returns the pipeline in order.
func (e *Engine) PassNames() []string {
	names := make([]string, len(e.passes))
	for i, p := range e.passes {
		names[i] = p.Name()
	}
	return names
}

// Run executes the pipeline and returns the resulting DAG with a report.
// The input DAG is mutated in place by passes that rewrite in place.
func (e *Engine) Run(ctx context.Context, d *dag.DAG) (*dag.DAG, *Report, error) {
	runID := e.runIDs.Generate()
	ctx, span := otel.Tracer("qopt").Start(ctx, "engine.Engine.Run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("passes", len(e.passes)),
			attribute.Bool("fixed_point", e.fixedPoint),
		),
	)
	defer span.End()

	out, report, err := e.run(ctx, runID, d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline failed")
		pipelineRuns.WithLabelValues("error").Inc()
		return nil, report, err
	}
	span.SetAttributes(
		attribute.Int("iterations", report.Iterations),
		attribute.Int("ops_before", report.OpsBefore),
		attribute.Int("ops_after", report.OpsAfter),
	)
	pipelineRuns.WithLabelValues("success").Inc()
	pipelineIterations.Observe(float64(report.Iterations))
	return out, report, nil
}

func (e *Engine) run(ctx context.Context, runID string, d *dag.DAG) (*dag.DAG, *Report, error) {
	inputFP, err := d.Fingerprint()
	if err != nil {
		return nil, nil, fmt.Errorf("fingerprint input: %w", err)
	}
	report := &Report{
		RunID:            runID,
		Seq:              e.clock.Next(),
		Pipeline:         e.PassNames(),
		InputFingerprint: inputFP,
		OpsBefore:        d.NumOps(),
	}
	e.logger.Info("pipeline starting",
		slog.String("run_id", runID),
		slog.Any("passes", report.Pipeline),
		slog.Int("ops", report.OpsBefore),
	)

	props := NewPropertySet()
	budget := NewIterationBudget(e.maxIterations)
	prevFP := inputFP
	for {
		if err := budget.Check(runID); err != nil {
			passErrors.WithLabelValues("", string(ErrCodeIterationsExceeded)).Inc()
			return nil, report, &RuntimeError{
				Code:    ErrCodeIterationsExceeded,
				Message: "pipeline did not converge",
				RunID:   runID,
				Err:     err,
			}
		}
		report.Iterations = budget.Current()

		for _, p := range e.passes {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
			next, pr, err := e.runPass(ctx, runID, p, d, props, report.Iterations)
			if err != nil {
				return nil, report, err
			}
			report.Passes = append(report.Passes, pr)
			d = next
		}

		fp, err := d.Fingerprint()
		if err != nil {
			return nil, report, fmt.Errorf("fingerprint iteration %d: %w", report.Iterations, err)
		}
		converged := fp == prevFP
		prevFP = fp
		if !e.fixedPoint {
			report.Converged = converged
			break
		}
		if converged {
			report.Converged = true
			break
		}
	}

	report.OutputFingerprint = prevFP
	report.OpsAfter = d.NumOps()
	e.logger.Info("pipeline finished",
		slog.String("run_id", runID),
		slog.Int("iterations", report.Iterations),
		slog.Int("ops_before", report.OpsBefore),
		slog.Int("ops_after", report.OpsAfter),
		slog.Bool("converged", report.Converged),
	)
	return d, report, nil
}

func (e *Engine) runPass(ctx context.Context, runID string, p Pass, d *dag.DAG, props *PropertySet, iteration int) (*dag.DAG, PassReport, error) {
	_, span := otel.Tracer("qopt").Start(ctx, "engine.Pass."+p.Name(),
		trace.WithAttributes(
			attribute.String("pass", p.Name()),
			attribute.Int("iteration", iteration),
		),
	)
	defer span.End()

	pr := PassReport{Iteration: iteration, Pass: p.Name(), OpsBefore: d.NumOps()}
	props.takeRewrites()
	start := time.Now()
	next, err := p.Run(d, props)
	elapsed := time.Since(start)
	passDuration.WithLabelValues(p.Name()).Observe(elapsed.Seconds())
	if err != nil {
		passErrors.WithLabelValues(p.Name(), errorCode(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "pass failed")
		e.logger.Error("pass failed",
			slog.String("run_id", runID),
			slog.String("pass", p.Name()),
			slog.String("error", err.Error()),
		)
		return nil, pr, newPassError(runID, p.Name(), err)
	}
	if next == nil {
		next = d
	}
	if err := next.CheckInvariants(); err != nil {
		passErrors.WithLabelValues(p.Name(), string(ErrCodeInvariantViolated)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "invariant violated")
		return nil, pr, newInvariantError(runID, p.Name(), err)
	}

	pr.OpsAfter = next.NumOps()
	pr.Rewrites = props.takeRewrites()
	pr.Duration = elapsed
	passRewrites.WithLabelValues(p.Name()).Add(float64(pr.Rewrites))
	span.SetAttributes(
		attribute.Int("ops_before", pr.OpsBefore),
		attribute.Int("ops_after", pr.OpsAfter),
		attribute.Int("rewrites", pr.Rewrites),
	)
	e.logger.Debug("pass finished",
		slog.String("run_id", runID),
		slog.String("pass", p.Name()),
		slog.Int("ops_before", pr.OpsBefore),
		slog.Int("ops_after", pr.OpsAfter),
		slog.Int("rewrites", pr.Rewrites),
	)
	return next, pr, nil
}

// errorCode extracts a metrics label from known error types.
func errorCode(err error) string {
	if code, ok := dag.StructuralCode(err); ok {
		return string(code)
	}
	var coder interface{ ErrorCode() string }
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return "unknown"
}
