package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DBPath string // run ledger
	Limit  int    // most recent runs to show; 0 shows all
	Input  string // only runs over this input fingerprint
	RunID  string // show one run with its pass results
}

// HistoryEntry is one ledger row in command output.
type HistoryEntry struct {
	RunID             string        `json:"run_id"`
	Seq               int64         `json:"seq"`
	Source            string        `json:"source"`
	Pipeline          []string      `json:"pipeline"`
	InputFingerprint  string        `json:"input_fingerprint"`
	OutputFingerprint string        `json:"output_fingerprint"`
	OpsBefore         int           `json:"ops_before"`
	OpsAfter          int           `json:"ops_after"`
	Iterations        int           `json:"iterations"`
	Converged         bool          `json:"converged"`
	EngineVersion     string        `json:"engine_version"`
	IRVersion         string        `json:"ir_version"`
	Passes            []HistoryPass `json:"passes,omitempty"`
}

// HistoryPass is one recorded pass execution.
type HistoryPass struct {
	Iteration  int    `json:"iteration"`
	Pass       string `json:"pass"`
	OpsBefore  int    `json:"ops_before"`
	OpsAfter   int    `json:"ops_after"`
	Rewrites   int    `json:"rewrites"`
	DurationNs int64  `json:"duration_ns"`
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Runs  []HistoryEntry `json:"runs"`
	Total int            `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded optimization runs",
		Long: `List runs recorded in the SQLite ledger by "qopt optimize --db".

Runs are ordered by their logical seq. Use --input to find every run over
one circuit, or --run to show a single run with its pass results.

Examples:
  qopt history --db runs.db
  qopt history --db runs.db --limit 10
  qopt history --db runs.db --input 3f2a...
  qopt history --db runs.db --run 0190e0c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite run ledger (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent N runs (0 = all)")
	cmd.Flags().StringVar(&opts.Input, "input", "", "only runs over this input fingerprint")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run with its pass results")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := commandContext(cmd)

	if opts.DBPath == "" {
		return commandError(formatter, ErrCodeNotFound, "--db is required")
	}
	// A missing ledger is reported as not found rather than as an open error.
	if _, err := os.Stat(opts.DBPath); os.IsNotExist(err) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DBPath))
	}
	if opts.Limit < 0 {
		return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("--limit must not be negative, got %d", opts.Limit))
	}

	ledger, err := store.Open(opts.DBPath, store.ReadOnly())
	if err != nil {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("failed to open run ledger: %v", err))
	}
	defer ledger.Close()

	var runs []store.Run
	switch {
	case opts.RunID != "":
		run, err := ledger.ReadRun(ctx, opts.RunID)
		if err != nil {
			return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("run %s: %v", opts.RunID, err))
		}
		runs = []store.Run{run}
	case opts.Input != "":
		runs, err = ledger.RunsForInput(ctx, opts.Input)
	default:
		runs, err = ledger.ListRuns(ctx, opts.Limit)
	}
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("failed to read run ledger: %v", err))
	}

	result := HistoryResult{Runs: make([]HistoryEntry, len(runs)), Total: len(runs)}
	for i, run := range runs {
		result.Runs[i] = newHistoryEntry(run)
	}

	return formatter.Success(result)
}

func newHistoryEntry(run store.Run) HistoryEntry {
	entry := HistoryEntry{
		RunID:             run.RunID,
		Seq:               run.Seq,
		Source:            run.Source,
		Pipeline:          run.Pipeline,
		InputFingerprint:  run.InputFingerprint,
		OutputFingerprint: run.OutputFingerprint,
		OpsBefore:         run.OpsBefore,
		OpsAfter:          run.OpsAfter,
		Iterations:        run.Iterations,
		Converged:         run.Converged,
		EngineVersion:     run.EngineVersion,
		IRVersion:         run.IRVersion,
	}
	for _, p := range run.Passes {
		entry.Passes = append(entry.Passes, HistoryPass{
			Iteration:  p.Iteration,
			Pass:       p.Pass,
			OpsBefore:  p.OpsBefore,
			OpsAfter:   p.OpsAfter,
			Rewrites:   p.Rewrites,
			DurationNs: p.Duration.Nanoseconds(),
		})
	}
	return entry
}

// RenderText prints the runs as a table, then the pass results of runs
// that carry them.
func (h HistoryResult) RenderText(w io.Writer) error {
	if h.Total == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tSOURCE\tOPS\tITER\tPIPELINE")
	for _, r := range h.Runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d -> %d\t%d\t%s\n",
			r.Seq, r.RunID, r.Source, r.OpsBefore, r.OpsAfter, r.Iterations, strings.Join(r.Pipeline, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range h.Runs {
		if len(r.Passes) == 0 {
			continue
		}
		fmt.Fprintf(w, "\nPasses of %s:\n", r.RunID)
		for _, p := range r.Passes {
			fmt.Fprintf(w, "  [%d] %s: %d -> %d, %d rewrite(s)\n", p.Iteration, p.Pass, p.OpsBefore, p.OpsAfter, p.Rewrites)
		}
	}
	fmt.Fprintf(w, "\n%d run(s)\n", h.Total)
	return nil
}
