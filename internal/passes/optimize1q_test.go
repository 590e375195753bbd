package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/testutil"
)

func TestOptimize1qFusesU1Chain(t *testing.T) {
	d, h := makeTestDAG(t, 1,
		op(gate.U1, []float64{0.3}, 0),
		op(gate.U1, []float64{0.4}, 0),
		op(gate.U1, []float64{0.5}, 0),
	)

	runPass(t, NewOptimize1q(), d)

	ops := instructions(d)
	require.Len(t, ops, 1)
	assert.Equal(t, gate.U1, ops[0].Kind)
	assert.InDelta(t, 1.2, ops[0].Params[0].Value, 1e-12)
	assert.True(t, d.Contains(h[0]), "the first node of the run is substituted")
	assert.False(t, d.Contains(h[1]))
	assert.False(t, d.Contains(h[2]))
}

func TestOptimize1qRemovesIdentityRuns(t *testing.T) {
	cat := gate.Standard()
	u := op(gate.U3, []float64{0.7, 0.2, -1.1}, 0)
	inv, err := cat.Inverse(u)
	require.NoError(t, err)
	d, _ := makeTestDAG(t, 2, u, inv, op(gate.H, nil, 1))

	runPass(t, NewOptimize1q(), d)

	assert.Equal(t, map[string]int{gate.H: 1}, d.CountByKind())
}

func TestOptimize1qClassifiesResult(t *testing.T) {
	tests := []struct {
		name string
		ops  []ir.Instruction
		want string
	}{
		{"u1 pair", []ir.Instruction{op(gate.U1, []float64{0.1}, 0), op(gate.U1, []float64{0.2}, 0)}, gate.U1},
		{"u2 from u1 and u2", []ir.Instruction{op(gate.U1, []float64{0.1}, 0), op(gate.U2, []float64{0.2, 0.3}, 0)}, gate.U2},
		{"general", []ir.Instruction{op(gate.U3, []float64{0.4, 0.1, 0.2}, 0), op(gate.U3, []float64{0.3, 0.5, 0.6}, 0)}, gate.U3},
		{"direct_rx joins", []ir.Instruction{op(gate.U1, []float64{0.4}, 0), op(gate.DirectRX, []float64{0.9}, 0)}, gate.U3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := makeTestDAG(t, 1, tt.ops...)
			before := d.ToCircuit()

			runPass(t, NewOptimize1q(), d)

			ops := instructions(d)
			require.Len(t, ops, 1)
			assert.Equal(t, tt.want, ops[0].Kind)
			requireEquivalent(t, before, d.ToCircuit())
		})
	}
}

func TestOptimize1qLeavesPassThroughOnlyRuns(t *testing.T) {
	d, _ := makeTestDAG(t, 1,
		op(gate.DirectRX, []float64{0.2}, 0),
		op(gate.DirectRX, []float64{0.3}, 0),
	)
	runPass(t, NewOptimize1q(), d)
	assert.Equal(t, 2, d.NumOps())
}

func TestOptimize1qDoesNotCrossParameterized(t *testing.T) {
	d, _ := makeTestDAG(t, 1,
		op(gate.U1, []float64{0.1}, 0),
		testutil.Symbolic(gate.U1, "theta", 0),
		op(gate.U1, []float64{0.2}, 0),
	)
	runPass(t, NewOptimize1q(), d)
	assert.Equal(t, 3, d.NumOps())
}

func TestOptimize1qCustomFamily(t *testing.T) {
	d, _ := makeTestDAG(t, 1, op(gate.H, nil, 0), op(gate.H, nil, 0))

	runPass(t, NewOptimize1q(), d)
	assert.Equal(t, 2, d.NumOps(), "h is not in the default family")

	runPass(t, NewOptimize1q(WithFamily(gate.H, gate.CX)), d)
	assert.Equal(t, 0, d.NumOps(), "h·h is the identity")
}

func TestOptimize1qUnitaryEquivalence(t *testing.T) {
	rng := testutil.Seeded(3)
	kinds := []struct {
		kind   string
		params int
	}{{gate.U1, 1}, {gate.U2, 2}, {gate.U3, 3}, {gate.DirectRX, 1}}

	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.IntN(5)
		ops := make([]ir.Instruction, n)
		for i := range ops {
			k := kinds[rng.IntN(len(kinds))]
			params := make([]float64, k.params)
			for j := range params {
				params[j] = testutil.RandomAngle(rng)
			}
			ops[i] = op(k.kind, params, 0)
		}
		ops[0] = op(gate.U3, []float64{testutil.RandomAngle(rng), testutil.RandomAngle(rng), testutil.RandomAngle(rng)}, 0)

		d, _ := makeTestDAG(t, 1, ops...)
		before := d.ToCircuit()
		runPass(t, NewOptimize1q(), d)

		assert.LessOrEqual(t, d.NumOps(), 1, "trial %d", trial)
		requireEquivalent(t, before, d.ToCircuit())
	}
}

func TestOptimize1qIsIdempotent(t *testing.T) {
	rng := testutil.Seeded(17)
	for trial := 0; trial < 20; trial++ {
		c := testutil.RandomCircuit(rng, 3, 50)
		d, err := dag.FromCircuit(c, dag.WithValidator(gate.Standard()))
		require.NoError(t, err)

		runPass(t, NewOptimize1q(), d)
		first, err := d.Fingerprint()
		require.NoError(t, err)
		requireEquivalent(t, c, d.ToCircuit())

		props := engine.NewPropertySet()
		_, err = NewOptimize1q().Run(d, props)
		require.NoError(t, err)
		second, err := d.Fingerprint()
		require.NoError(t, err)

		assert.Equal(t, first, second, "trial %d", trial)
	}
}

func TestRotationOf(t *testing.T) {
	cat := gate.Standard()
	for _, kind := range []string{gate.ID, gate.U1, gate.U2, gate.U3, gate.DirectRX, gate.RX, gate.RY, gate.RZ,
		gate.X, gate.Y, gate.Z, gate.H, gate.S, gate.Sdg, gate.T, gate.Tdg} {
		t.Run(kind, func(t *testing.T) {
			def, ok := cat.Lookup(kind)
			require.True(t, ok)
			params := make([]float64, def.NumParams)
			for i := range params {
				params[i] = 0.37 * float64(i+1)
			}
			in := op(kind, params, 0)
			rot, ok := rotationOf(in)
			require.True(t, ok)
			assert.True(t, Rotatable(kind))

			want, err := cat.Matrix(in)
			require.NoError(t, err)
			got := gate.Identity(2)
			if k, ok := classKinds[rot.Class]; ok {
				got, err = cat.Matrix(op(k, rot.Angles(), 0))
				require.NoError(t, err)
			}
			assert.True(t, want.EqualUpToPhase(got, 1e-9))
		})
	}
	assert.False(t, Rotatable(gate.CX))
	_, ok := rotationOf(testutil.Symbolic(gate.U1, "a", 0))
	assert.False(t, ok)
}
