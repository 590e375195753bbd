package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/testutil"
)

func TestCollectRunsSplitsOnOtherKinds(t *testing.T) {
	d, h := makeTestDAG(t, 2,
		op(gate.U1, []float64{0.1}, 0),
		op(gate.U2, []float64{0.2, 0.3}, 0),
		op(gate.CX, nil, 0, 1),
		op(gate.U3, []float64{0.1, 0.2, 0.3}, 0),
		op(gate.H, nil, 1),
	)

	runs := CollectRuns(d, DefaultFamily, DefaultPassThrough)

	assert.Equal(t, []Run{
		{Wire: q(0), Nodes: []dag.Handle{h[0], h[1]}},
		{Wire: q(0), Nodes: []dag.Handle{h[3]}},
	}, runs)
}

func TestCollectRunsKeepsSingletons(t *testing.T) {
	d, h := makeTestDAG(t, 1, op(gate.U1, []float64{0.5}, 0))
	runs := CollectRuns(d, DefaultFamily, nil)
	require.Len(t, runs, 1)
	assert.Equal(t, []dag.Handle{h[0]}, runs[0].Nodes)
}

func TestCollectRunsSplitsAtParameterized(t *testing.T) {
	d, h := makeTestDAG(t, 1,
		op(gate.U1, []float64{0.1}, 0),
		op(gate.U1, []float64{0.2}, 0),
		testutil.Symbolic(gate.U1, "theta", 0),
		op(gate.U1, []float64{0.3}, 0),
	)

	runs := CollectRuns(d, DefaultFamily, nil)

	var got [][]dag.Handle
	for _, r := range runs {
		got = append(got, r.Nodes)
	}
	assert.Equal(t, [][]dag.Handle{{h[0], h[1]}, {h[2]}, {h[3]}}, got)
}

func TestCollectRunsPassThrough(t *testing.T) {
	d, h := makeTestDAG(t, 1,
		op(gate.U1, []float64{0.1}, 0),
		op(gate.DirectRX, []float64{0.2}, 0),
		op(gate.U1, []float64{0.3}, 0),
	)

	with := CollectRuns(d, DefaultFamily, DefaultPassThrough)
	require.Len(t, with, 1)
	assert.Equal(t, h, with[0].Nodes)

	without := CollectRuns(d, DefaultFamily, nil)
	assert.Len(t, without, 2, "direct_rx closes the run when it is not pass-through")
}

func TestCollectRunsSkipsConditioned(t *testing.T) {
	d := dag.New(dag.WithValidator(gate.Standard()))
	require.NoError(t, d.AddRegister(ir.Register{Name: "q", Size: 1, Kind: ir.QuantumWire}))
	require.NoError(t, d.AddRegister(ir.Register{Name: "c", Size: 1, Kind: ir.ClassicalWire}))

	a, err := d.Apply(op(gate.U1, []float64{0.1}, 0))
	require.NoError(t, err)
	cond := op(gate.U1, []float64{0.2}, 0)
	cond.Condition = &ir.Condition{Register: "c", Value: 1}
	_, err = d.Apply(cond)
	require.NoError(t, err)
	b, err := d.Apply(op(gate.U1, []float64{0.3}, 0))
	require.NoError(t, err)

	runs := CollectRuns(d, DefaultFamily, nil)
	require.Len(t, runs, 2)
	assert.Equal(t, []dag.Handle{a}, runs[0].Nodes)
	assert.Equal(t, []dag.Handle{b}, runs[1].Nodes)
}
