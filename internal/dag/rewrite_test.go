package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/ir"
)

func TestSubstituteInPlace(t *testing.T) {
	d, h := makeTestDAG(t, 2, op("x", nil, 0), op("cx", nil, 0, 1), op("h", nil, 0))
	gen := d.Generation()

	require.NoError(t, d.Substitute(h[1], "zz_interaction", ir.Angles(0.5)))

	in, ok := d.Op(h[1])
	require.True(t, ok)
	assert.Equal(t, "zz_interaction(0.5) q[0], q[1]", in.String())
	assert.Equal(t, []Handle{h[0], h[1], h[2]}, d.NodesOnWire(q(0)))
	assert.Greater(t, d.Generation(), gen)
	require.NoError(t, d.CheckInvariants())
}

func TestSubstituteArityMismatchLeavesNodeUntouched(t *testing.T) {
	d, h := makeTestDAG(t, 2, op("x", nil, 0))
	gen := d.Generation()

	err := d.Substitute(h[0], "cx", nil)
	code, ok := StructuralCode(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeArityMismatch, code)

	in, _ := d.Op(h[0])
	assert.Equal(t, "x", in.Kind)
	assert.Equal(t, gen, d.Generation())
}

func TestArityWithoutValidator(t *testing.T) {
	d := New()
	require.NoError(t, d.AddRegister(ir.Register{Name: "q", Size: 2, Kind: ir.QuantumWire}))
	x, err := d.Apply(op("x", nil, 0))
	require.NoError(t, err)
	_, err = d.Apply(op("cz", nil, 0, 1))
	require.NoError(t, err)
	gen := d.Generation()

	// cx was never applied, so its arity cannot be checked.
	err = d.Substitute(x, "cx", nil)
	code, ok := StructuralCode(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeArityMismatch, code)

	// cz is known to act on two qubits.
	err = d.Substitute(x, "cz", nil)
	code, _ = StructuralCode(err)
	assert.Equal(t, ErrCodeArityMismatch, code)

	_, err = d.SubstituteSequence(x, []ir.Instruction{op("h", nil, 0)})
	code, _ = StructuralCode(err)
	assert.Equal(t, ErrCodeArityMismatch, code)

	in, _ := d.Op(x)
	assert.Equal(t, "x", in.Kind)
	assert.Equal(t, gen, d.Generation())

	_, err = d.Apply(op("h", nil, 1))
	require.NoError(t, err)
	require.NoError(t, d.Clone().Substitute(x, "h", nil))
	require.NoError(t, d.Substitute(x, "h", nil))
	require.NoError(t, d.CheckInvariants())

	// A kind applied at two widths accepts either.
	_, err = d.Apply(op("barrier", nil, 0))
	require.NoError(t, err)
	_, err = d.Apply(op("barrier", nil, 0, 1))
	require.NoError(t, err)
	cz, err := d.Apply(op("cz", nil, 0, 1))
	require.NoError(t, err)
	require.NoError(t, d.Substitute(cz, "barrier", nil))
}

func TestReplaceRequiresSameWires(t *testing.T) {
	d, h := makeTestDAG(t, 2, op("cx", nil, 0, 1))

	err := d.Replace(h[0], op("cx", nil, 1, 0))
	code, _ := StructuralCode(err)
	assert.Equal(t, ErrCodeArityMismatch, code)

	require.NoError(t, d.Replace(h[0], op("cz", nil, 0, 1)))
	in, _ := d.Op(h[0])
	assert.Equal(t, "cz", in.Kind)
}

func TestRemoveReconnectsNeighbors(t *testing.T) {
	d, h := makeTestDAG(t, 2, op("x", nil, 0), op("cx", nil, 0, 1), op("h", nil, 1), op("z", nil, 0))

	require.NoError(t, d.Remove(h[1]))

	assert.Equal(t, []Handle{h[0], h[3]}, d.NodesOnWire(q(0)))
	assert.Equal(t, []Handle{h[2]}, d.NodesOnWire(q(1)))
	require.NoError(t, d.CheckInvariants())
}

func TestRemoveTwiceIsNodeRemoved(t *testing.T) {
	d, h := makeTestDAG(t, 1, op("x", nil, 0))
	require.NoError(t, d.Remove(h[0]))

	err := d.Remove(h[0])
	code, _ := StructuralCode(err)
	assert.Equal(t, ErrCodeNodeRemoved, code)

	err = d.Substitute(h[0], "y", nil)
	code, _ = StructuralCode(err)
	assert.Equal(t, ErrCodeNodeRemoved, code)
}

func TestRemoveRejectsBoundaryAndUnknown(t *testing.T) {
	d, _ := makeTestDAG(t, 1)

	err := d.Remove(d.input[q(0)])
	code, _ := StructuralCode(err)
	assert.Equal(t, ErrCodeNotAnOperation, code)

	err = d.Remove(Handle(12345))
	code, _ = StructuralCode(err)
	assert.Equal(t, ErrCodeNodeNotFound, code)
}

func TestRemoveDetectsInconsistentBookkeeping(t *testing.T) {
	d, h := makeTestDAG(t, 1, op("x", nil, 0), op("y", nil, 0), op("z", nil, 0))
	// Corrupt: the predecessor of y no longer points at y.
	d.next[edgeKey{h[0], q(0)}] = h[2]

	err := d.Remove(h[1])
	code, _ := StructuralCode(err)
	assert.Equal(t, ErrCodeBrokenWire, code)
	assert.True(t, d.Contains(h[1]), "failed remove must not excise the node")
}

func TestSubstituteSequence(t *testing.T) {
	d, h := makeTestDAG(t, 3, op("x", nil, 0), op("cx", nil, 0, 1), op("h", nil, 1), op("x", nil, 2))

	got, err := d.SubstituteSequence(h[1], []ir.Instruction{
		op("h", nil, 1),
		op("cz", nil, 0, 1),
		op("h", nil, 1),
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.NoError(t, d.CheckInvariants())

	assert.False(t, d.Contains(h[1]))
	assert.Equal(t, []Handle{h[0], got[1]}, d.NodesOnWire(q(0)))
	assert.Equal(t, []Handle{got[0], got[1], got[2], h[2]}, d.NodesOnWire(q(1)))
	assert.Equal(t, []Handle{h[3]}, d.NodesOnWire(q(2)))
}

func TestSubstituteSequenceEmptyRemoves(t *testing.T) {
	d, h := makeTestDAG(t, 1, op("x", nil, 0), op("y", nil, 0))
	got, err := d.SubstituteSequence(h[0], nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []Handle{h[1]}, d.NodesOnWire(q(0)))
}

func TestSubstituteSequenceIsAtomic(t *testing.T) {
	d, h := makeTestDAG(t, 3, op("cx", nil, 0, 1))
	gen := d.Generation()

	t.Run("foreign wire", func(t *testing.T) {
		_, err := d.SubstituteSequence(h[0], []ir.Instruction{op("x", nil, 0), op("x", nil, 2)})
		code, _ := StructuralCode(err)
		assert.Equal(t, ErrCodeUnknownWire, code)
	})
	t.Run("invalid arity", func(t *testing.T) {
		_, err := d.SubstituteSequence(h[0], []ir.Instruction{op("x", nil, 0), op("cx", nil, 1)})
		code, _ := StructuralCode(err)
		assert.Equal(t, ErrCodeArityMismatch, code)
	})

	assert.True(t, d.Contains(h[0]))
	assert.Equal(t, 1, d.NumOps())
	assert.Equal(t, gen, d.Generation())
	require.NoError(t, d.CheckInvariants())
}

func TestStructuralErrorMessage(t *testing.T) {
	err := &StructuralError{Code: ErrCodeBrokenWire, Node: 4, Wire: "q[1]", Message: "missing neighbor"}
	assert.Equal(t, "[BROKEN_WIRE] node 4 on q[1]: missing neighbor", err.Error())
	assert.True(t, IsStructuralError(err))
}
