package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// WireKind distinguishes quantum timelines from classical ones.
type WireKind string

const (
	QuantumWire   WireKind = "qubit"
	ClassicalWire WireKind = "clbit"
)

// Wire identifies one timeline of the circuit.
//
// Two wires are the same wire iff register, index and kind are equal.
// Register names are unique across kinds within one circuit, so String()
// is a unique key.
type Wire struct {
	Register string   `json:"register"`
	Index    int      `json:"index"`
	Kind     WireKind `json:"kind"`
}

// Qubit returns the quantum wire register[index].
func Qubit(register string, index int) Wire {
	return Wire{Register: register, Index: index, Kind: QuantumWire}
}

// Clbit returns the classical wire register[index].
func Clbit(register string, index int) Wire {
	return Wire{Register: register, Index: index, Kind: ClassicalWire}
}

// String formats the wire as name[index], the key used for side-channel data.
func (w Wire) String() string {
	return fmt.Sprintf("%s[%d]", w.Register, w.Index)
}

// IsQuantum reports whether w is a qubit wire.
func (w Wire) IsQuantum() bool {
	return w.Kind == QuantumWire
}

// ParseWire parses "name[index]" into a wire of the given kind.
func ParseWire(s string, kind WireKind) (Wire, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return Wire{}, fmt.Errorf("invalid wire %q: expected name[index]", s)
	}
	idx, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil || idx < 0 {
		return Wire{}, fmt.Errorf("invalid wire %q: index must be a non-negative integer", s)
	}
	return Wire{Register: s[:open], Index: idx, Kind: kind}, nil
}

// Register declares a contiguous block of wires.
type Register struct {
	Name string   `json:"name"`
	Size int      `json:"size"`
	Kind WireKind `json:"kind"`
}

// Wires expands the register into its wires in index order.
func (r Register) Wires() []Wire {
	wires := make([]Wire, r.Size)
	for i := range wires {
		wires[i] = Wire{Register: r.Name, Index: i, Kind: r.Kind}
	}
	return wires
}

// Condition gates an instruction on a classical register holding Value.
type Condition struct {
	Register string `json:"register"`
	Value    int    `json:"value"`
}

// Instruction is one gate application as handed over by the circuit builder.
type Instruction struct {
	Kind      string     `json:"kind"`
	Params    []Param    `json:"params,omitempty"`
	Qubits    []Wire     `json:"qubits"`
	Clbits    []Wire     `json:"clbits,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
}

// IsConditioned reports whether the instruction carries a classical condition.
func (in Instruction) IsConditioned() bool {
	return in.Condition != nil
}

// IsParameterized reports whether any parameter is an unbound symbol.
func (in Instruction) IsParameterized() bool {
	for _, p := range in.Params {
		if !p.IsBound() {
			return true
		}
	}
	return false
}

// Values returns the bound parameter values. ok is false if any
// parameter is unbound.
func (in Instruction) Values() (values []float64, ok bool) {
	values = make([]float64, len(in.Params))
	for i, p := range in.Params {
		if !p.IsBound() {
			return nil, false
		}
		values[i] = p.Value
	}
	return values, true
}

// Wires returns qubits followed by clbits.
func (in Instruction) Wires() []Wire {
	wires := make([]Wire, 0, len(in.Qubits)+len(in.Clbits))
	wires = append(wires, in.Qubits...)
	return append(wires, in.Clbits...)
}

// Clone returns a deep copy so callers can mutate it freely.
func (in Instruction) Clone() Instruction {
	out := in
	out.Params = append([]Param(nil), in.Params...)
	out.Qubits = append([]Wire(nil), in.Qubits...)
	out.Clbits = append([]Wire(nil), in.Clbits...)
	if in.Condition != nil {
		c := *in.Condition
		out.Condition = &c
	}
	return out
}

// String renders the instruction in a compact assembly-like form,
// e.g. "u1(pi/2) q[0]" or "cx q[0], q[1]".
func (in Instruction) String() string {
	var b strings.Builder
	if in.Condition != nil {
		fmt.Fprintf(&b, "if(%s==%d) ", in.Condition.Register, in.Condition.Value)
	}
	b.WriteString(in.Kind)
	if len(in.Params) > 0 {
		parts := make([]string, len(in.Params))
		for i, p := range in.Params {
			parts[i] = p.String()
		}
		b.WriteString("(" + strings.Join(parts, ",") + ")")
	}
	wires := in.Wires()
	if len(wires) > 0 {
		parts := make([]string, len(wires))
		for i, w := range wires {
			parts[i] = w.String()
		}
		b.WriteString(" " + strings.Join(parts, ", "))
	}
	return b.String()
}

// Circuit is the flat description a DAG is built from and rendered back to.
type Circuit struct {
	Registers    []Register    `json:"registers"`
	Instructions []Instruction `json:"instructions"`
}

// Wires returns every declared wire in register declaration order.
func (c Circuit) Wires() []Wire {
	var wires []Wire
	for _, r := range c.Registers {
		wires = append(wires, r.Wires()...)
	}
	return wires
}

// NumQubits counts the declared quantum wires.
func (c Circuit) NumQubits() int {
	n := 0
	for _, r := range c.Registers {
		if r.Kind == QuantumWire {
			n += r.Size
		}
	}
	return n
}
