package passes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/sim"
	"github.com/roach88/qopt/internal/testutil"
)

var (
	q  = testutil.Q
	op = testutil.Op
)

func makeTestDAG(t *testing.T, qubits int, ops ...ir.Instruction) (*dag.DAG, []dag.Handle) {
	t.Helper()
	d := dag.New(dag.WithValidator(gate.Standard()))
	require.NoError(t, d.AddRegister(ir.Register{Name: "q", Size: qubits, Kind: ir.QuantumWire}))
	handles := make([]dag.Handle, len(ops))
	for i, in := range ops {
		h, err := d.Apply(in)
		require.NoError(t, err)
		handles[i] = h
	}
	return d, handles
}

func runPass(t *testing.T, p engine.Pass, d *dag.DAG) (*dag.DAG, *engine.PropertySet) {
	t.Helper()
	props := engine.NewPropertySet()
	out, err := p.Run(d, props)
	require.NoError(t, err)
	require.NoError(t, out.CheckInvariants())
	return out, props
}

func instructions(d *dag.DAG) []ir.Instruction {
	return d.ToCircuit().Instructions
}

func requireEquivalent(t *testing.T, before, after ir.Circuit) {
	t.Helper()
	ok, err := sim.Equivalent(gate.Standard(), before, after, sim.DefaultTolerance)
	require.NoError(t, err)
	require.True(t, ok, "circuits differ:\nbefore %v\nafter  %v", before.Instructions, after.Instructions)
}
