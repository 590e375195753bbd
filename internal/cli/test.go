package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern)
	Parallel int    // scenarios run at once; 0 means GOMAXPROCS
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "mismatch"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run optimization scenarios",
		Long: `Run every scenario file in a directory through its pipeline.

Each scenario's expectations are checked against the optimized circuit.
When golden/<scenario>.golden exists next to a scenario file, the run
snapshot must match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  qopt test ./scenarios
  qopt test ./scenarios --filter "zz_*"
  qopt test ./scenarios --update
  qopt test ./scenarios --parallel 4 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 1, "scenarios to run concurrently (0 = GOMAXPROCS)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}
	if opts.Parallel < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--parallel must not be negative, got %d", opts.Parallel))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		return formatter.Success(TestResult{Scenarios: []ScenarioResult{}})
	}

	logger := opts.Logger(cmd.ErrOrStderr())
	outcomes, err := harness.RunAll(commandContext(cmd), scenarioFiles, opts.Parallel, harness.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario run aborted", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(outcomes)),
		Total:     len(outcomes),
	}
	for _, o := range outcomes {
		scenResult := checkOutcome(o, opts)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	var failure *CLIError
	if result.Failed > 0 {
		failure = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}
	if err := formatter.Emit(result, "", failure); err != nil {
		return err
	}
	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// checkOutcome turns one harness outcome into a scenario result,
// comparing or updating its golden file.
func checkOutcome(o harness.Outcome, opts *TestOptions) ScenarioResult {
	res := ScenarioResult{Name: filepath.Base(o.Path), File: o.Path}
	if o.Scenario != nil {
		res.Name = o.Scenario.Name
	}

	if o.Err != nil {
		if o.Scenario == nil {
			res.Errors = []string{fmt.Sprintf("failed to load scenario: %v", o.Err)}
		} else {
			res.Errors = []string{fmt.Sprintf("execution failed: %v", o.Err)}
		}
		return res
	}

	snap := harness.NewSnapshot(o.Scenario.Name, o.Result)
	data, err := snap.MarshalCanonical()
	if err != nil {
		res.Errors = []string{fmt.Sprintf("failed to marshal snapshot: %v", err)}
		return res
	}

	goldenPath := goldenFilePath(o.Path)
	if opts.Update {
		if err := updateGoldenFile(goldenPath, data); err != nil {
			res.Errors = []string{fmt.Sprintf("failed to update golden file: %v", err)}
			return res
		}
		res.Golden = "updated"
	} else if _, err := os.Stat(goldenPath); err == nil {
		match, err := compareWithGolden(goldenPath, data)
		if err != nil {
			res.Errors = []string{fmt.Sprintf("golden comparison failed: %v", err)}
			return res
		}
		if !match {
			res.Golden = "mismatch"
			res.Errors = append(res.Errors, "snapshot does not match golden file (run with --update to regenerate)")
		} else {
			res.Golden = "match"
		}
	}

	res.Errors = append(res.Errors, o.Result.Errors...)
	res.Pass = len(res.Errors) == 0
	return res
}

// RenderText writes one scenario line, followed by its errors on failure.
func (r ScenarioResult) RenderText(w io.Writer) error {
	if !r.Pass {
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return nil
	}
	if r.Golden == "updated" {
		fmt.Fprintf(w, "✓ %s (golden updated)\n", r.Name)
		return nil
	}
	fmt.Fprintf(w, "✓ %s\n", r.Name)
	return nil
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// updateGoldenFile writes the snapshot as the golden file.
func updateGoldenFile(goldenPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden compares the snapshot against the golden file.
func compareWithGolden(goldenPath string, data []byte) (bool, error) {
	goldenData, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(goldenData, data), nil
}

// RenderText writes every scenario line and the summary.
func (r TestResult) RenderText(w io.Writer) error {
	if r.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}
	for _, sr := range r.Scenarios {
		if err := sr.RenderText(w); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	if r.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
	return nil
}
