package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterationBudgetWithinLimit(t *testing.T) {
	b := NewIterationBudget(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Check("run-1"), "iteration %d", i+1)
	}
	assert.Equal(t, 3, b.Current())
	assert.Equal(t, 3, b.Limit())
}

func TestIterationBudgetExceeded(t *testing.T) {
	b := NewIterationBudget(2)
	require.NoError(t, b.Check("run-1"))
	require.NoError(t, b.Check("run-1"))

	err := b.Check("run-1")
	require.Error(t, err)

	var ie *IterationsExceededError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "run-1", ie.RunID)
	assert.Equal(t, 3, ie.Iterations)
	assert.Equal(t, 2, ie.Limit)
	assert.Contains(t, err.Error(), "did not reach a fixed point")
}

func TestIsIterationsExceededErrorWrapped(t *testing.T) {
	err := fmt.Errorf("pipeline: %w", &IterationsExceededError{RunID: "r", Iterations: 2, Limit: 1})
	assert.True(t, IsIterationsExceededError(err))
	assert.False(t, IsIterationsExceededError(fmt.Errorf("other")))
}

func TestIterationBudgetZeroLimit(t *testing.T) {
	assert.Error(t, NewIterationBudget(0).Check("run-1"))
}
