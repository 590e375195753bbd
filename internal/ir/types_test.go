package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireString(t *testing.T) {
	assert.Equal(t, "q[0]", Qubit("q", 0).String())
	assert.Equal(t, "c[12]", Clbit("c", 12).String())
}

func TestParseWire(t *testing.T) {
	w, err := ParseWire("anc[3]", QuantumWire)
	require.NoError(t, err)
	assert.Equal(t, Qubit("anc", 3), w)

	for _, bad := range []string{"q", "[1]", "q[x]", "q[-1]", "q[1"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseWire(bad, QuantumWire)
			assert.Error(t, err)
		})
	}
}

func TestRegisterWires(t *testing.T) {
	r := Register{Name: "q", Size: 3, Kind: QuantumWire}
	assert.Equal(t, []Wire{Qubit("q", 0), Qubit("q", 1), Qubit("q", 2)}, r.Wires())
}

func TestInstructionQueries(t *testing.T) {
	in := Instruction{
		Kind:   "u3",
		Params: []Param{Angle(0.1), Symbol("phi"), Angle(0.3)},
		Qubits: []Wire{Qubit("q", 0)},
	}
	assert.True(t, in.IsParameterized())
	assert.False(t, in.IsConditioned())
	_, ok := in.Values()
	assert.False(t, ok)

	in.Params[1] = Angle(0.2)
	values, ok := in.Values()
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, values)
}

func TestInstructionCloneIsDeep(t *testing.T) {
	in := Instruction{
		Kind:      "u1",
		Params:    Angles(1),
		Qubits:    []Wire{Qubit("q", 0)},
		Condition: &Condition{Register: "c", Value: 1},
	}
	out := in.Clone()
	out.Params[0] = Angle(2)
	out.Qubits[0] = Qubit("q", 1)
	out.Condition.Value = 0

	assert.Equal(t, 1.0, in.Params[0].Value)
	assert.Equal(t, Qubit("q", 0), in.Qubits[0])
	assert.Equal(t, 1, in.Condition.Value)
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in       Instruction
		expected string
	}{
		{Instruction{Kind: "cx", Qubits: []Wire{Qubit("q", 0), Qubit("q", 1)}}, "cx q[0], q[1]"},
		{Instruction{Kind: "u1", Params: Angles(1.5707963267948966), Qubits: []Wire{Qubit("q", 2)}}, "u1(pi/2) q[2]"},
		{Instruction{Kind: "measure", Qubits: []Wire{Qubit("q", 0)}, Clbits: []Wire{Clbit("c", 0)}}, "measure q[0], c[0]"},
		{Instruction{Kind: "x", Qubits: []Wire{Qubit("q", 0)}, Condition: &Condition{Register: "c", Value: 1}}, "if(c==1) x q[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.String())
		})
	}
}

func TestCircuitCounts(t *testing.T) {
	c := Circuit{Registers: []Register{
		{Name: "q", Size: 2, Kind: QuantumWire},
		{Name: "c", Size: 2, Kind: ClassicalWire},
		{Name: "anc", Size: 1, Kind: QuantumWire},
	}}
	assert.Equal(t, 3, c.NumQubits())
	assert.Len(t, c.Wires(), 5)
}
