package harness

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func intPtr(n int) *int { return &n }

func runExpect(t *testing.T, expect Expect) *Result {
	t.Helper()
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	s.Expect = expect

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	return result
}

func TestAssertions_AllPass(t *testing.T) {
	result := runExpect(t, Expect{
		Ops:        intPtr(2),
		Counts:     map[string]int{"h": 1, "cx": 1, "zz_interaction": 0},
		Contains:   []string{"cx q[0], q[1]"},
		Circuit:    []string{"h q[0]", "cx q[0], q[1]"},
		Equivalent: true,
		Idempotent: true,
	})
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestAssertions_EachFailureReported(t *testing.T) {
	result := runExpect(t, Expect{
		Ops:      intPtr(1),
		Counts:   map[string]int{"cx": 2},
		Contains: []string{"cx q[1], q[0]"},
		Circuit:  []string{"cx q[0], q[1]", "h q[0]"},
	})
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Assertion failed: ops")
	assert.Contains(t, result.Errors[1], "cx=1 (want 2)")
	assert.Contains(t, result.Errors[2], "Assertion failed: contains")
	assert.Contains(t, result.Errors[3], `operation 1 is "cx q[0], q[1]"`)
}

func TestAssertions_CircuitLengthMismatch(t *testing.T) {
	err := assertCircuit([]string{"h q[0]"}, []string{"h q[0]", "x q[0]"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 1 operations")
}

func TestAssertions_CountsIgnoreUnlistedKinds(t *testing.T) {
	assert.NoError(t, assertCounts(map[string]int{"cx": 1}, map[string]int{"cx": 1, "h": 4}, nil))
	assert.Error(t, assertCounts(map[string]int{"u1": 0}, map[string]int{"u1": 1}, nil))
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     "ops",
		Expected: "1 operations",
		Actual:   "2 operations",
		Circuit:  []string{"h q[0]", "cx q[0], q[1]"},
	}
	assert.Equal(t,
		"Assertion failed: ops\n"+
			"  Expected: 1 operations\n"+
			"  Actual: 2 operations\n"+
			"\nOutput circuit:\n"+
			"  [1] h q[0]\n"+
			"  [2] cx q[0], q[1]\n",
		err.Error())
}

func TestFormatCounts_Sorted(t *testing.T) {
	assert.Equal(t, "cx=2, h=1, u1=0", formatCounts(map[string]int{"u1": 0, "h": 1, "cx": 2}))
}
