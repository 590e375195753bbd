// Package sim computes dense unitaries and state vectors for small circuits.
// It exists to check rewrites: an optimized circuit must equal its input up
// to global phase.
package sim

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// MaxQubits bounds dense simulation.
const MaxQubits = 10

// DefaultTolerance is the element-wise tolerance of Equivalent.
const DefaultTolerance = 1e-8

// Matrixer resolves instruction matrices. *gate.Catalog satisfies it.
type Matrixer interface {
	Matrix(in ir.Instruction) (gate.Matrix, error)
}

// positions maps each qubit of a circuit to its big-endian index.
func positions(c ir.Circuit) (map[ir.Wire]int, int, error) {
	pos := make(map[ir.Wire]int)
	n := 0
	for _, r := range c.Registers {
		if r.Kind != ir.QuantumWire {
			continue
		}
		for _, w := range r.Wires() {
			pos[w] = n
			n++
		}
	}
	if n > MaxQubits {
		return nil, 0, fmt.Errorf("sim: %d qubits exceeds the dense limit of %d", n, MaxQubits)
	}
	if n == 0 {
		return nil, 0, fmt.Errorf("sim: circuit declares no qubits")
	}
	return pos, n, nil
}

// operator returns the embedded operator of one instruction, or ok=false
// for barriers.
func operator(m Matrixer, in ir.Instruction, pos map[ir.Wire]int, n int) (gate.Matrix, bool, error) {
	if in.Kind == gate.Barrier {
		return gate.Matrix{}, false, nil
	}
	if in.IsConditioned() {
		return gate.Matrix{}, false, fmt.Errorf("sim: conditioned %s has no unitary", in.Kind)
	}
	u, err := m.Matrix(in)
	if err != nil {
		return gate.Matrix{}, false, fmt.Errorf("sim: %s: %w", in, err)
	}
	at := make([]int, len(in.Qubits))
	for i, w := range in.Qubits {
		p, ok := pos[w]
		if !ok {
			return gate.Matrix{}, false, fmt.Errorf("sim: %s uses undeclared qubit %s", in.Kind, w)
		}
		at[i] = p
	}
	return gate.Embed(u, at, n), true, nil
}

// Unitary multiplies out a circuit: U = M_k ··· M_1.
func Unitary(m Matrixer, c ir.Circuit) (gate.Matrix, error) {
	pos, n, err := positions(c)
	if err != nil {
		return gate.Matrix{}, err
	}
	u := gate.Identity(1 << n)
	for _, in := range c.Instructions {
		op, ok, err := operator(m, in, pos, n)
		if err != nil {
			return gate.Matrix{}, err
		}
		if ok {
			u = op.Mul(u)
		}
	}
	return u, nil
}

// Equivalent reports whether two circuits over the same registers have equal
// unitaries up to global phase.
func Equivalent(m Matrixer, a, b ir.Circuit, tol float64) (bool, error) {
	ua, err := Unitary(m, a)
	if err != nil {
		return false, err
	}
	ub, err := Unitary(m, b)
	if err != nil {
		return false, err
	}
	return ua.EqualUpToPhase(ub, tol), nil
}

// StateVector is a pure state over n qubits in big-endian order.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0…0⟩.
func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// Clone returns an independent copy.
func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Apply multiplies the state by a full-width operator.
func (s *StateVector) Apply(op gate.Matrix) {
	out := make([]complex128, len(s.Amplitudes))
	for i := range out {
		var acc complex128
		for j, a := range s.Amplitudes {
			if a != 0 {
				acc += op.At(i, j) * a
			}
		}
		out[i] = acc
	}
	s.Amplitudes = out
}

// Probabilities returns |amplitude|² per basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		r := cmplx.Abs(a)
		probs[i] = r * r
	}
	return probs
}

// Overlap returns |⟨s|o⟩|.
func (s *StateVector) Overlap(o *StateVector) float64 {
	var acc complex128
	for i := range s.Amplitudes {
		acc += cmplx.Conj(s.Amplitudes[i]) * o.Amplitudes[i]
	}
	return cmplx.Abs(acc)
}

// Simulate runs a circuit on |0…0⟩, skipping barriers.
func Simulate(m Matrixer, c ir.Circuit) (*StateVector, error) {
	pos, n, err := positions(c)
	if err != nil {
		return nil, err
	}
	state := NewStateVector(n)
	for _, in := range c.Instructions {
		op, ok, err := operator(m, in, pos, n)
		if err != nil {
			return nil, err
		}
		if ok {
			state.Apply(op)
		}
	}
	return state, nil
}

// SameState reports whether two states agree up to global phase.
func SameState(a, b *StateVector, tol float64) bool {
	return len(a.Amplitudes) == len(b.Amplitudes) && math.Abs(a.Overlap(b)-1) <= tol
}
