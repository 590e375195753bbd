package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/harness"
	"github.com/roach88/qopt/internal/passes"
	"github.com/roach88/qopt/internal/store"
)

// OptimizeOptions holds flags for the optimize command.
type OptimizeOptions struct {
	*RootOptions
	Passes        string   // comma-separated pipeline, overrides the scenario
	Strategy      string   // decomposition strategy, overrides the scenario
	Couplings     string   // native cx directions, overrides the scenario
	Gates         []string // extra CUE gate libraries (files or directories)
	FixedPoint    bool     // repeat the pipeline until nothing changes
	MaxIterations int      // fixed-point iteration budget
	Verify        bool     // check unitary equivalence of input and output
	DBPath        string   // run ledger; empty disables recording
	MetricsPath   string   // Prometheus text file written after the run
}

// OptimizeResult is the JSON payload of a successful optimize run.
type OptimizeResult struct {
	Scenario          string              `json:"scenario"`
	RunID             string              `json:"run_id"`
	Seq               int64               `json:"seq"`
	Pipeline          []string            `json:"pipeline"`
	InputFingerprint  string              `json:"input_fingerprint"`
	OutputFingerprint string              `json:"output_fingerprint"`
	OpsBefore         int                 `json:"ops_before"`
	OpsAfter          int                 `json:"ops_after"`
	Iterations        int                 `json:"iterations"`
	Converged         bool                `json:"converged"`
	Rewrites          int                 `json:"rewrites"`
	Verified          bool                `json:"verified,omitempty"`
	Recorded          bool                `json:"recorded,omitempty"`
	Ops               []string            `json:"ops"`
	Counts            map[string]int      `json:"counts"`
	Passes            []engine.PassReport `json:"passes"`
	Failures          []string            `json:"failures,omitempty"`
}

// NewOptimizeCommand creates the optimize command.
func NewOptimizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OptimizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "optimize <scenario.yaml>",
		Short: "Optimize the circuit of a scenario file",
		Long: `Build the circuit declared by a scenario file, run it through the
optimization pipeline and print the result.

Scenario expectations are ignored; use "qopt test" to check them.
Flags override the scenario's pipeline settings.

Examples:
  qopt optimize circuit.yaml
  qopt optimize circuit.yaml --passes decompose,optimize_1q --strategy pulse
  qopt optimize circuit.yaml --verify --db runs.db
  qopt optimize circuit.yaml --gates ./gates --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Passes, "passes", "", "comma-separated pass pipeline (default from scenario)")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "decomposition strategy (standard|pulse)")
	cmd.Flags().StringVar(&opts.Couplings, "couplings", "", "native cx directions as \"q[0]>q[1],...\" (default: all)")
	cmd.Flags().StringSliceVar(&opts.Gates, "gates", nil, "CUE gate library file or directory (repeatable)")
	cmd.Flags().BoolVar(&opts.FixedPoint, "fixed-point", false, "repeat the pipeline until the circuit stops changing")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "fixed-point iteration budget (0 = engine default)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "check unitary equivalence of input and output")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite run ledger")
	cmd.Flags().StringVar(&opts.MetricsPath, "metrics", "", "write Prometheus metrics to this file after the run")

	return cmd
}

func runOptimize(opts *OptimizeOptions, scenarioPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := commandContext(cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(scenarioPath)
	if err != nil {
		return commandError(formatter, ErrCodeLoadFailed, err.Error())
	}
	if err := applyOverrides(scenario, opts); err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}

	catalog, err := BuildCatalog(opts.Gates)
	if err != nil {
		return commandError(formatter, ErrCodeBuildFailed, fmt.Sprintf("failed to build gate catalog: %v", err))
	}

	harnessOpts := []harness.Option{
		harness.WithLogger(logger),
		harness.WithCatalog(catalog),
		harness.WithRunIDGenerator(engine.UUIDv7Generator{}),
	}

	var ledger *store.Store
	if opts.DBPath != "" {
		ledger, err = store.Open(opts.DBPath)
		if err != nil {
			return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("failed to open run ledger: %v", err))
		}
		defer ledger.Close()

		last, err := ledger.LastSeq(ctx)
		if err != nil {
			return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("failed to read run ledger: %v", err))
		}
		harnessOpts = append(harnessOpts, harness.WithClock(engine.NewClockAt(last)))
	}

	formatter.VerboseLog("Optimizing %s with pipeline %v", scenarioPath, scenario.Passes)
	result, err := harness.Run(ctx, scenario, harnessOpts...)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}

	if err := writeMetrics(opts.MetricsPath); err != nil {
		return commandError(formatter, ErrCodeWriteFailed, err.Error())
	}

	// A run that failed before or during the pipeline carries codes or
	// no report at all; anything else got as far as expectations.
	if len(result.ErrorCodes) > 0 || result.Report == nil {
		msg := "optimization failed"
		if len(result.Errors) > 0 {
			msg = result.Errors[0]
		}
		code := ErrCodeGeneric
		if len(result.ErrorCodes) > 0 {
			code = result.ErrorCodes[0]
		}
		_ = formatter.Error(code, msg, map[string]any{"codes": result.ErrorCodes})
		return NewExitError(ExitFailure, msg)
	}

	recorded := false
	if ledger != nil && result.Report != nil {
		if err := ledger.WriteRun(ctx, store.NewRun(scenarioPath, *result.Report)); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("failed to record run: %v", err))
		}
		recorded = true
		logger.Debug("run recorded", "run_id", result.Report.RunID, "seq", result.Report.Seq, "db", opts.DBPath)
	}

	out := newOptimizeResult(scenario.Name, result)
	out.Verified = opts.Verify && result.Pass
	out.Recorded = recorded

	var failure *CLIError
	if len(out.Failures) > 0 {
		failure = &CLIError{Code: "E_VERIFY_FAILED", Message: out.Failures[0]}
	}
	if err := formatter.Emit(out, out.RunID, failure); err != nil {
		return err
	}

	if !result.Pass {
		return NewExitError(ExitFailure, "verification failed")
	}
	return nil
}

// applyOverrides replaces scenario settings with the flags that were set.
// Expectations are replaced by the equivalence check when --verify is given.
func applyOverrides(s *harness.Scenario, opts *OptimizeOptions) error {
	if opts.Passes != "" {
		s.Passes = passes.ParsePipeline(opts.Passes)
	}
	if len(s.Passes) == 0 {
		s.Passes = append([]string(nil), passes.DefaultPipeline...)
	}
	if opts.Strategy != "" {
		if _, err := gate.ParseStrategy(opts.Strategy); err != nil {
			return err
		}
		s.Strategy = opts.Strategy
	}
	if opts.Couplings != "" {
		if _, err := gate.ParseCouplings(opts.Couplings); err != nil {
			return err
		}
		s.Couplings = opts.Couplings
	}
	if opts.FixedPoint {
		s.FixedPoint = true
	}
	if opts.MaxIterations < 0 {
		return fmt.Errorf("--max-iterations must not be negative, got %d", opts.MaxIterations)
	}
	if opts.MaxIterations > 0 {
		s.MaxIterations = opts.MaxIterations
	}
	s.Expect = harness.Expect{Equivalent: opts.Verify}
	return nil
}

// writeMetrics dumps the default Prometheus registry as a text file.
func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func newOptimizeResult(name string, result *harness.Result) OptimizeResult {
	rep := result.Report
	return OptimizeResult{
		Scenario:          name,
		RunID:             rep.RunID,
		Seq:               rep.Seq,
		Pipeline:          rep.Pipeline,
		InputFingerprint:  rep.InputFingerprint,
		OutputFingerprint: rep.OutputFingerprint,
		OpsBefore:         rep.OpsBefore,
		OpsAfter:          rep.OpsAfter,
		Iterations:        rep.Iterations,
		Converged:         rep.Converged,
		Rewrites:          rep.TotalRewrites(),
		Ops:               result.Rendered(),
		Counts:            result.Counts(),
		Passes:            rep.Passes,
		Failures:          result.Errors,
	}
}

// RenderText prints the optimized circuit followed by a run summary.
func (r OptimizeResult) RenderText(w io.Writer) error {
	for _, op := range r.Ops {
		fmt.Fprintln(w, op)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run %s (seq %d)\n", r.RunID, r.Seq)
	fmt.Fprintf(w, "  pipeline:   %v\n", r.Pipeline)
	fmt.Fprintf(w, "  ops:        %d -> %d\n", r.OpsBefore, r.OpsAfter)
	fmt.Fprintf(w, "  rewrites:   %d in %d iteration(s)\n", r.Rewrites, r.Iterations)
	if r.Recorded {
		fmt.Fprintln(w, "  recorded:   yes")
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(w, "✗ Verification failed")
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s\n", f)
		}
		return nil
	}
	if r.Verified {
		fmt.Fprintln(w, "✓ Output is equivalent to input")
	}
	return nil
}

// commandError reports a command-level failure (exit code 2).
func commandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
