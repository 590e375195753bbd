package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

func circuit(qubits int, ops ...ir.Instruction) ir.Circuit {
	return ir.Circuit{
		Registers:    []ir.Register{{Name: "q", Size: qubits, Kind: ir.QuantumWire}},
		Instructions: ops,
	}
}

func op(kind string, params []float64, qubits ...int) ir.Instruction {
	in := ir.Instruction{Kind: kind, Params: ir.Angles(params...)}
	for _, i := range qubits {
		in.Qubits = append(in.Qubits, ir.Qubit("q", i))
	}
	return in
}

func TestSimulateBellState(t *testing.T) {
	state, err := Simulate(gate.Standard(), circuit(2, op("h", nil, 0), op("cx", nil, 0, 1)))
	require.NoError(t, err)
	probs := state.Probabilities()
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0, probs[1], 1e-12)
	assert.InDelta(t, 0, probs[2], 1e-12)
	assert.InDelta(t, 0.5, probs[3], 1e-12)
}

func TestEquivalentUpToPhase(t *testing.T) {
	c := gate.Standard()
	a := circuit(2, op("cx", nil, 0, 1), op("u1", []float64{0.5}, 1), op("cx", nil, 0, 1))
	b := circuit(2, op("zz_interaction", []float64{0.5}, 0, 1))
	ok, err := Equivalent(c, a, b, DefaultTolerance)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Equivalent(c, a, circuit(2, op("zz_interaction", []float64{0.6}, 0, 1)), DefaultTolerance)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Equivalent(c, circuit(1, op("rz", []float64{1}, 0)), circuit(1, op("u1", []float64{1}, 0)), DefaultTolerance)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnitaryOrdersQubitsBigEndian(t *testing.T) {
	u, err := Unitary(gate.Standard(), circuit(2, op("x", nil, 0)))
	require.NoError(t, err)
	// X on the first qubit maps |00> to |10>.
	assert.Equal(t, complex128(1), u.At(2, 0))
}

func TestBarrierIsSkipped(t *testing.T) {
	u, err := Unitary(gate.Standard(), circuit(2, ir.Instruction{Kind: gate.Barrier, Qubits: []ir.Wire{ir.Qubit("q", 0), ir.Qubit("q", 1)}}))
	require.NoError(t, err)
	assert.True(t, u.ApproxEqual(gate.Identity(4), 1e-12))
}

func TestUnitaryErrors(t *testing.T) {
	c := gate.Standard()

	_, err := Unitary(c, circuit(MaxQubits+1))
	assert.Error(t, err)

	cond := op("x", nil, 0)
	cond.Condition = &ir.Condition{Register: "c", Value: 1}
	_, err = Unitary(c, circuit(1, cond))
	assert.Error(t, err)

	_, err = Unitary(c, circuit(1, ir.Instruction{Kind: gate.Measure, Qubits: []ir.Wire{ir.Qubit("q", 0)}, Clbits: []ir.Wire{ir.Clbit("c", 0)}}))
	assert.True(t, gate.IsCatalogError(err, gate.ErrCodeNoMatrix))
}

func TestSameState(t *testing.T) {
	c := gate.Standard()
	a, err := Simulate(c, circuit(1, op("x", nil, 0)))
	require.NoError(t, err)
	b, err := Simulate(c, circuit(1, op("u3", []float64{math.Pi, 0.3, 0.1}, 0)))
	require.NoError(t, err)
	assert.True(t, SameState(a, b, 1e-12))
	assert.False(t, SameState(a, NewStateVector(1), 1e-12))
}
