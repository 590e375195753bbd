package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

func TestRegistryNames(t *testing.T) {
	assert.Equal(t, []string{
		NameCommutationAnalysis,
		NameDecompose,
		NameOptimize1q,
		NameZZInteraction,
		NameZZInteractionAdjacent,
	}, NewRegistry().Names())
}

func TestRegistryBuildsNamedPasses(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		p, err := r.Build(name, Config{})
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}
}

func TestRegistryUnknownPass(t *testing.T) {
	_, err := NewRegistry().Pipeline([]string{NameOptimize1q, "peephole_magic"}, Config{})
	require.Error(t, err)
	assert.True(t, engine.IsRuntimeError(err, engine.ErrCodeUnknownPass))
	assert.Contains(t, err.Error(), "peephole_magic")
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("noop", func(Config) engine.Pass { return NewZZInteractionAdjacent() }))
	assert.Error(t, r.Register(NameDecompose, nil))
	assert.Contains(t, r.Names(), "noop")
}

func TestParsePipeline(t *testing.T) {
	assert.Equal(t, DefaultPipeline, ParsePipeline(""))
	assert.Equal(t, DefaultPipeline, ParsePipeline(" , "))
	assert.Equal(t, []string{NameDecompose, NameOptimize1q}, ParsePipeline("decompose, optimize_1q"))
}

func TestDefaultPipelineEndToEnd(t *testing.T) {
	d, _ := makeTestDAG(t, 4, append(fourQubitFixture(),
		op(gate.U1, []float64{0.2}, 3),
		op(gate.U1, []float64{0.4}, 3),
	)...)
	before := d.ToCircuit()

	ps, err := NewRegistry().Pipeline(DefaultPipeline, Config{})
	require.NoError(t, err)
	out, report, err := engine.New(ps, engine.WithFixedPoint(true)).Run(context.Background(), d)
	require.NoError(t, err)

	assert.True(t, report.Converged)
	assert.Equal(t, 2, report.Iterations)
	assert.Equal(t, 10, report.OpsBefore)
	assert.Equal(t, 5, report.OpsAfter)
	assert.Equal(t, map[string]int{gate.ZZInteraction: 2, gate.RZ: 1, gate.CX: 1, gate.U1: 1}, out.CountByKind())
	requireEquivalent(t, before, out.ToCircuit())
}

func TestPipelineSharesCatalog(t *testing.T) {
	cat := gate.Standard()
	require.NoError(t, cat.Register(gate.Definition{
		Kind: gate.Kind{Name: "flip", NumQubits: 1, Unitary: true},
		Matrix: func([]float64) gate.Matrix {
			return gate.FromRows([]complex128{0, 1}, []complex128{1, 0})
		},
	}))
	d := dag.New(dag.WithValidator(cat))
	require.NoError(t, d.AddRegister(ir.Register{Name: "q", Size: 1, Kind: ir.QuantumWire}))
	require.NoError(t, d.Append(op("flip", nil, 0)))

	ps, err := NewRegistry().Pipeline([]string{NameCommutationAnalysis}, Config{Catalog: cat})
	require.NoError(t, err)
	props := engine.NewPropertySet()
	_, err = ps[0].Run(d, props)
	require.NoError(t, err)
	_, ok := CommutationSetFor(props, q(0))
	assert.True(t, ok)
}
