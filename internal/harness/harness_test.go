package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/testutil"
)

func loadTestdata(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_TestdataScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.ErrorCodes)

	require.NotNil(t, result.Report)
	assert.Equal(t, testutil.DefaultRunID, result.Report.RunID)
	assert.Equal(t, int64(1), result.Report.Seq)
	assert.Equal(t, []string{"commutation_analysis", "zz_interaction", "optimize_1q"}, result.Report.Pipeline)
	assert.Equal(t, []string{"h q[0]", "cx q[0], q[1]"}, result.Rendered())
}

func TestRun_FixedRunID(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario + "run_id: run-42\n"))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "run-42", result.Report.RunID)
}

func TestRun_ZZFixture(t *testing.T) {
	result, err := Run(context.Background(), loadTestdata(t, "zz_fixture"))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, []string{
		"zz_interaction(pi) q[0], q[1]",
		"zz_interaction(0.5) q[0], q[2]",
		"rz(0.3) q[0]",
		"cx q[0], q[3]",
	}, result.Rendered())
	assert.Equal(t, 8, result.Report.OpsBefore)
	assert.Equal(t, 4, result.Report.OpsAfter)
	assert.Equal(t, 2, result.Report.TotalRewrites())
}

func TestRun_FixedPointConverges(t *testing.T) {
	s := loadTestdata(t, "zz_fixture")
	s.FixedPoint = true

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.True(t, result.Report.Converged)
	assert.Equal(t, 2, result.Report.Iterations)
}

func TestRun_ExpectedErrorMatches(t *testing.T) {
	result, err := Run(context.Background(), loadTestdata(t, "strict_decompose"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{string(engine.ErrCodePassFailed), "NO_DECOMPOSITION"}, result.ErrorCodes)
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	s.Expect = Expect{Error: "NO_DECOMPOSITION"}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "pipeline succeeded")
}

func TestRun_WrongErrorCode(t *testing.T) {
	s := loadTestdata(t, "strict_decompose")
	s.Expect.Error = "ITERATIONS_EXCEEDED"

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: error")
}

func TestRun_UnknownGateIsRecorded(t *testing.T) {
	content := "name: n\ndescription: d\nregisters: {qubits: {q: 1}}\nops: [{gate: warp, qubits: [\"q[0]\"]}]\nexpect: {error: UNKNOWN_KIND}\n"
	s, err := ParseScenario([]byte(content))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Contains(t, result.ErrorCodes, "UNKNOWN_KIND")
	assert.Nil(t, result.Report)
}

func TestRun_UnknownPass(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario + "passes: [peephole_magic]\n"))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{string(engine.ErrCodeUnknownPass)}, result.ErrorCodes)
}

func TestRun_InvalidLibraryCodes(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "bad.cue")
	writeFile(t, lib, `gate: cx: {qubits: 2, body: [{op: "h", qubits: [0]}]}`)

	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	s.Gates = []string{lib}
	s.Expect = Expect{Error: "E105"}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	_, err = Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAll_ReturnsOutcomesInOrder(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	paths = append(paths, filepath.Join("testdata", "scenarios", "missing.yaml"))

	outcomes, err := RunAll(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, outcomes, len(paths))

	for i, o := range outcomes[:len(paths)-1] {
		assert.Equal(t, paths[i], o.Path)
		assert.True(t, o.Passed(), "%s: %v %v", o.Path, o.Err, o.Result)
	}
	last := outcomes[len(paths)-1]
	assert.False(t, last.Passed())
	assert.Error(t, last.Err)
}
