package dag

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

func q(i int) ir.Wire { return ir.Qubit("q", i) }

func op(kind string, params []float64, qubits ...int) ir.Instruction {
	in := ir.Instruction{Kind: kind, Params: ir.Angles(params...)}
	for _, i := range qubits {
		in.Qubits = append(in.Qubits, q(i))
	}
	return in
}

func makeTestDAG(t *testing.T, qubits int, ops ...ir.Instruction) (*DAG, []Handle) {
	t.Helper()
	d := New(WithValidator(gate.Standard()))
	require.NoError(t, d.AddRegister(ir.Register{Name: "q", Size: qubits, Kind: ir.QuantumWire}))
	handles := make([]Handle, len(ops))
	for i, in := range ops {
		h, err := d.Apply(in)
		require.NoError(t, err)
		handles[i] = h
	}
	require.NoError(t, d.CheckInvariants())
	return d, handles
}

func kinds(d *DAG, hs []Handle) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		in, _ := d.Op(h)
		out[i] = in.Kind
	}
	return out
}

func TestApplyThreadsWires(t *testing.T) {
	d, h := makeTestDAG(t, 2,
		op("h", nil, 0),
		op("cx", nil, 0, 1),
		op("x", nil, 1),
	)

	assert.Equal(t, []Handle{h[0], h[1]}, d.NodesOnWire(q(0)))
	assert.Equal(t, []Handle{h[1], h[2]}, d.NodesOnWire(q(1)))

	next, ok := d.NextOnWire(h[0], q(0))
	require.True(t, ok)
	assert.Equal(t, h[1], next)

	_, ok = d.NextOnWire(h[2], q(1))
	assert.False(t, ok, "output boundary is not an operation")

	prev, ok := d.PrevOnWire(h[2], q(1))
	require.True(t, ok)
	assert.Equal(t, h[1], prev)

	assert.Equal(t, []Handle{h[1]}, d.Successors(h[0]))
	assert.Equal(t, []Handle{h[1]}, d.Predecessors(h[2]))
	assert.Equal(t, 3, d.NumOps())
}

func TestApplyRejectsUnknownAndDuplicateWires(t *testing.T) {
	d, _ := makeTestDAG(t, 2)

	_, err := d.Apply(op("x", nil, 5))
	code, ok := StructuralCode(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeUnknownWire, code)

	_, err = d.Apply(ir.Instruction{Kind: "cx", Qubits: []ir.Wire{q(0), q(0)}})
	code, _ = StructuralCode(err)
	assert.Equal(t, ErrCodeDuplicateWire, code)
}

func TestApplyValidatesArity(t *testing.T) {
	d, _ := makeTestDAG(t, 2)
	_, err := d.Apply(op("cx", nil, 0))
	code, _ := StructuralCode(err)
	assert.Equal(t, ErrCodeArityMismatch, code)
	assert.Equal(t, 0, d.NumOps())
}

func TestConditionOrdersOnClassicalRegister(t *testing.T) {
	d, _ := makeTestDAG(t, 1)
	require.NoError(t, d.AddRegister(ir.Register{Name: "c", Size: 2, Kind: ir.ClassicalWire}))

	m, err := d.Apply(ir.Instruction{Kind: "measure", Qubits: []ir.Wire{q(0)}, Clbits: []ir.Wire{ir.Clbit("c", 1)}})
	require.NoError(t, err)
	x, err := d.Apply(ir.Instruction{Kind: "x", Qubits: []ir.Wire{q(0)}, Condition: &ir.Condition{Register: "c", Value: 1}})
	require.NoError(t, err)

	assert.Equal(t, []Handle{m, x}, d.NodesOnWire(ir.Clbit("c", 1)))
	assert.Equal(t, []Handle{x}, d.NodesOnWire(ir.Clbit("c", 0)))
	require.NoError(t, d.CheckInvariants())

	_, err = d.Apply(ir.Instruction{Kind: "x", Qubits: []ir.Wire{q(0)}, Condition: &ir.Condition{Register: "nope", Value: 1}})
	code, _ := StructuralCode(err)
	assert.Equal(t, ErrCodeUnknownWire, code)
}

func TestTopologicalOrderIsDeterministic(t *testing.T) {
	d, h := makeTestDAG(t, 3,
		op("x", nil, 2),
		op("x", nil, 0),
		op("cx", nil, 0, 2),
		op("h", nil, 1),
	)
	assert.Equal(t, []Handle{h[0], h[1], h[2], h[3]}, d.TopologicalOps())

	c := d.ToCircuit()
	require.Len(t, c.Instructions, 4)
	assert.Equal(t, "cx q[0], q[2]", c.Instructions[2].String())
}

func TestFromCircuitRoundTrip(t *testing.T) {
	c := ir.Circuit{
		Registers: []ir.Register{{Name: "q", Size: 2, Kind: ir.QuantumWire}},
		Instructions: []ir.Instruction{
			op("u1", []float64{0.5}, 0),
			op("cx", nil, 0, 1),
		},
	}
	d, err := FromCircuit(c)
	require.NoError(t, err)
	assert.Equal(t, c, d.ToCircuit())

	fp1, err := d.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, ir.MustFingerprint(c), fp1)
}

func TestAddRegisterRejectsDuplicateName(t *testing.T) {
	d, _ := makeTestDAG(t, 1)
	err := d.AddRegister(ir.Register{Name: "q", Size: 1, Kind: ir.ClassicalWire})
	code, _ := StructuralCode(err)
	assert.Equal(t, ErrCodeDuplicateWire, code)
}

func TestCloneIsIndependent(t *testing.T) {
	d, h := makeTestDAG(t, 1, op("x", nil, 0), op("h", nil, 0))
	cp := d.Clone()
	require.NoError(t, cp.Remove(h[0]))

	assert.Equal(t, 2, d.NumOps())
	assert.Equal(t, 1, cp.NumOps())
	require.NoError(t, d.CheckInvariants())
	require.NoError(t, cp.CheckInvariants())
}

func TestCountByKind(t *testing.T) {
	d, _ := makeTestDAG(t, 2, op("x", nil, 0), op("x", nil, 1), op("cx", nil, 0, 1))
	assert.Equal(t, map[string]int{"x": 2, "cx": 1}, d.CountByKind())
}

func TestCheckInvariantsDetectsCorruption(t *testing.T) {
	d, h := makeTestDAG(t, 2, op("x", nil, 0), op("cx", nil, 0, 1))
	delete(d.next, edgeKey{h[0], q(0)})

	err := d.CheckInvariants()
	code, ok := StructuralCode(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeBrokenWire, code)
}

// Random rewrite sequences must keep every wire a strict total order.
func TestRandomRewritesPreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	single := []string{"x", "h", "s", "t"}
	for trial := 0; trial < 50; trial++ {
		d, _ := makeTestDAG(t, 4)
		for i := 0; i < 30; i++ {
			if rng.IntN(3) == 0 {
				a, b := rng.IntN(4), rng.IntN(4)
				if a == b {
					continue
				}
				_, err := d.Apply(op("cx", nil, a, b))
				require.NoError(t, err)
				continue
			}
			_, err := d.Apply(op(single[rng.IntN(len(single))], nil, rng.IntN(4)))
			require.NoError(t, err)
		}

		for step := 0; step < 20 && d.NumOps() > 0; step++ {
			ops := d.TopologicalOps()
			h := ops[rng.IntN(len(ops))]
			in, _ := d.Op(h)
			switch rng.IntN(3) {
			case 0:
				require.NoError(t, d.Remove(h))
			case 1:
				if len(in.Qubits) == 1 {
					require.NoError(t, d.Substitute(h, "u1", ir.Angles(rng.Float64())))
				}
			case 2:
				if in.Kind == "cx" {
					_, err := d.SubstituteSequence(h, []ir.Instruction{
						{Kind: "h", Qubits: []ir.Wire{in.Qubits[1]}},
						{Kind: "cz", Qubits: in.Qubits},
						{Kind: "h", Qubits: []ir.Wire{in.Qubits[1]}},
					})
					require.NoError(t, err)
				}
			}
			require.NoError(t, d.CheckInvariants(), "trial %d step %d", trial, step)
		}
	}
}

func TestNodeAccessors(t *testing.T) {
	d, h := makeTestDAG(t, 2, op("cx", nil, 1, 0))
	n, ok := d.Node(h[0])
	require.True(t, ok)
	assert.True(t, n.IsOp())
	assert.Equal(t, []ir.Wire{q(1), q(0)}, n.Wires())
	assert.Equal(t, "op", n.Type.String())

	_, ok = d.Op(Handle(9999))
	assert.False(t, ok)
	assert.Equal(t, []string{"cx"}, kinds(d, d.TopologicalOps()))
}
