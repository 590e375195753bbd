package ir

import "fmt"

// CompositeSpec is a user-defined gate given by a body of other kinds.
//
// Body qubit indices refer to the composite's own qubits 0..Qubits-1.
// Symbolic body parameters name one of Params, optionally negated.
type CompositeSpec struct {
	Name   string   `json:"name"`
	Qubits int      `json:"qubits"`
	Params []string `json:"params,omitempty"`
	Body   []BodyOp `json:"body"`
}

// BodyOp is one application inside a composite body.
type BodyOp struct {
	Op     string  `json:"op"`
	Qubits []int   `json:"qubits"`
	Params []Param `json:"params,omitempty"`
}

// InverseName returns the kind name under which the adjoint is registered.
func (s CompositeSpec) InverseName() string {
	return s.Name + "_dg"
}

// ParamIndex returns the position of a parameter name, or -1.
func (s CompositeSpec) ParamIndex(name string) int {
	for i, p := range s.Params {
		if p == name {
			return i
		}
	}
	return -1
}

// Bind resolves a body parameter against the caller's parameters.
func (s CompositeSpec) Bind(p Param, args []Param) (Param, error) {
	if p.IsBound() {
		return p, nil
	}
	name, negated := p.Symbol, false
	if len(name) > 0 && name[0] == '-' {
		name, negated = name[1:], true
	}
	i := s.ParamIndex(name)
	if i < 0 || i >= len(args) {
		return Param{}, fmt.Errorf("composite %s: unknown parameter %q", s.Name, name)
	}
	if negated {
		return args[i].Neg(), nil
	}
	return args[i], nil
}
