package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/qopt/internal/compiler"
	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/passes"
	"github.com/roach88/qopt/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runner)

// WithLogger sets the logger handed to the engine.
// Default: a handler that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		r.logger = l
	}
}

// WithCatalog replaces the base catalog composites are registered into.
// Default: gate.Standard().
func WithCatalog(c *gate.Catalog) Option {
	return func(r *runner) {
		r.base = c
	}
}

// WithRegistry replaces the pass registry.
func WithRegistry(reg *passes.Registry) Option {
	return func(r *runner) {
		r.registry = reg
	}
}

// WithRunIDGenerator replaces the static run id. Used by the CLI to
// issue UUIDv7 run ids.
func WithRunIDGenerator(g engine.RunIDGenerator) Option {
	return func(r *runner) {
		r.runIDs = g
	}
}

// WithClock replaces the deterministic clock, e.g. with one resumed from
// the run ledger.
func WithClock(c engine.Sequencer) Option {
	return func(r *runner) {
		r.clock = c
	}
}

// runner holds everything one scenario needs to build fresh pipelines.
type runner struct {
	scenario *Scenario
	base     *gate.Catalog
	registry *passes.Registry
	logger   *slog.Logger
	runIDs   engine.RunIDGenerator
	clock    engine.Sequencer

	catalog *gate.Catalog
	config  passes.Config
	names   []string
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load gate libraries and extend the base catalog
//  2. Build the input DAG against that catalog
//  3. Run the pipeline with a static run id and deterministic clock
//  4. Evaluate expectations against the optimized circuit
//
// Setup failures (unreadable libraries, malformed wires) are returned as
// errors. Catalog, DAG and pipeline failures are recorded in the result
// so scenarios can expect them.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	r := &runner{
		scenario: s,
		base:     gate.Standard(),
		registry: passes.NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		names:    s.Passes,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runIDs == nil {
		r.runIDs = testutil.NewStaticRunIDGenerator(s.RunID)
	}
	if len(r.names) == 0 {
		r.names = append([]string(nil), passes.DefaultPipeline...)
	}

	result := NewResult()
	input, err := s.Circuit()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	result.Input = input

	specs, err := loadLibraries(s.Gates)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	if err := r.configure(specs); err != nil {
		return finish(result, s, err), nil
	}

	d, err := dag.FromCircuit(input, dag.WithValidator(r.catalog))
	if err != nil {
		return finish(result, s, err), nil
	}
	out, report, err := r.run(ctx, d)
	result.Report = report
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return finish(result, s, err), nil
	}
	result.Output = out.ToCircuit()

	if s.Expect.Error != "" {
		result.AddError(fmt.Sprintf("expected error %s, pipeline succeeded", s.Expect.Error))
		return result, nil
	}
	for _, msg := range evaluateAssertions(ctx, r, result, out) {
		result.AddError(msg)
	}
	return result, nil
}

// configure extends the catalog and builds the pass configuration.
func (r *runner) configure(specs []ir.CompositeSpec) error {
	r.catalog = r.base
	if len(specs) > 0 {
		cat, err := compiler.Extend(r.base, specs)
		if err != nil {
			return err
		}
		r.catalog = cat
	}

	strategy, err := gate.ParseStrategy(r.scenario.Strategy)
	if err != nil {
		return err
	}
	var oracle gate.DirectionOracle = gate.AnyDirection{}
	if r.scenario.Couplings != "" {
		pairs, err := gate.ParseCouplings(r.scenario.Couplings)
		if err != nil {
			return err
		}
		oracle = pairs
	}
	r.config = passes.Config{
		Catalog:        r.catalog,
		Strategy:       strategy,
		Oracle:         oracle,
		DecomposeKinds: r.scenario.Decompose,
	}
	return nil
}

// run builds a fresh pipeline and engine and runs them over d.
func (r *runner) run(ctx context.Context, d *dag.DAG) (*dag.DAG, *engine.Report, error) {
	pipeline, err := r.registry.Pipeline(r.names, r.config)
	if err != nil {
		return nil, nil, err
	}
	clock := r.clock
	if clock == nil {
		clock = testutil.NewDeterministicClock()
	}
	opts := []engine.EngineOption{
		engine.WithRunIDGenerator(r.runIDs),
		engine.WithClock(clock),
		engine.WithFixedPoint(r.scenario.FixedPoint),
		engine.WithLogger(r.logger),
	}
	if r.scenario.MaxIterations > 0 {
		opts = append(opts, engine.WithMaxIterations(r.scenario.MaxIterations))
	}
	return engine.New(pipeline, opts...).Run(ctx, d)
}

// finish records a failed run. The scenario passes when it expected one of
// the error's codes.
func finish(result *Result, s *Scenario, err error) *Result {
	result.ErrorCodes = ErrorCodes(err)
	if s.Expect.Error == "" {
		result.AddError(fmt.Sprintf("pipeline failed: %v", err))
		return result
	}
	for _, code := range result.ErrorCodes {
		if code == s.Expect.Error {
			return result
		}
	}
	result.AddError((&AssertionError{
		Type:     "error",
		Expected: s.Expect.Error,
		Actual:   err.Error(),
	}).Error())
	return result
}

// loadLibraries compiles every CUE gate library in order.
func loadLibraries(paths []string) ([]ir.CompositeSpec, error) {
	var specs []ir.CompositeSpec
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read gate library: %w", err)
		}
		lib, err := compiler.CompileSource(path, string(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		specs = append(specs, lib...)
	}
	return specs, nil
}

// ErrorCodes lists the codes carried by err and every error it wraps,
// outermost first. Library errors contribute each validation code.
func ErrorCodes(err error) []string {
	var codes []string
	seen := make(map[string]bool)
	add := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := e.(type) {
		case *engine.RuntimeError:
			add(string(v.Code))
		case *engine.IterationsExceededError:
			add(string(engine.ErrCodeIterationsExceeded))
		case *dag.StructuralError:
			add(string(v.Code))
		case *compiler.LibraryError:
			for _, ve := range v.Errors {
				add(ve.Code)
			}
		case *compiler.ValidationError:
			add(v.Code)
		case interface{ ErrorCode() string }:
			add(v.ErrorCode())
		}
	}
	return codes
}
