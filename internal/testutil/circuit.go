package testutil

import (
	"math"
	"math/rand/v2"

	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// Q returns qubit q[i].
func Q(i int) ir.Wire { return ir.Qubit("q", i) }

// Op builds an instruction on qubits of register q.
func Op(kind string, params []float64, qubits ...int) ir.Instruction {
	in := ir.Instruction{Kind: kind, Params: ir.Angles(params...)}
	for _, i := range qubits {
		in.Qubits = append(in.Qubits, Q(i))
	}
	return in
}

// Symbolic builds a one-parameter instruction with an unbound parameter.
func Symbolic(kind, symbol string, qubits ...int) ir.Instruction {
	in := Op(kind, nil, qubits...)
	in.Params = []ir.Param{ir.Symbol(symbol)}
	return in
}

// Circuit declares register q of the given size and appends ops.
func Circuit(qubits int, ops ...ir.Instruction) ir.Circuit {
	return ir.Circuit{
		Registers:    []ir.Register{{Name: "q", Size: qubits, Kind: ir.QuantumWire}},
		Instructions: append([]ir.Instruction{}, ops...),
	}
}

// oneQubitKinds lists the single-qubit kinds RandomCircuit draws from,
// with their parameter counts.
var oneQubitKinds = []struct {
	kind   string
	params int
}{
	{gate.U1, 1}, {gate.U2, 2}, {gate.U3, 3}, {gate.DirectRX, 1},
	{gate.RZ, 1}, {gate.H, 0}, {gate.Z, 0}, {gate.S, 0}, {gate.T, 0},
}

// RandomCircuit draws depth operations over qubits, mixing single-qubit
// rotations with cx. Angles are uniform in [-π, π).
func RandomCircuit(rng *rand.Rand, qubits, depth int) ir.Circuit {
	c := Circuit(qubits)
	for i := 0; i < depth; i++ {
		if qubits > 1 && rng.IntN(4) == 0 {
			ctl := rng.IntN(qubits)
			tgt := (ctl + 1 + rng.IntN(qubits-1)) % qubits
			c.Instructions = append(c.Instructions, Op(gate.CX, nil, ctl, tgt))
			continue
		}
		k := oneQubitKinds[rng.IntN(len(oneQubitKinds))]
		params := make([]float64, k.params)
		for j := range params {
			params[j] = RandomAngle(rng)
		}
		c.Instructions = append(c.Instructions, Op(k.kind, params, rng.IntN(qubits)))
	}
	return c
}

// RandomAngle returns an angle uniform in [-π, π).
func RandomAngle(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * math.Pi
}

// Seeded returns a deterministic generator for property tests.
func Seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
