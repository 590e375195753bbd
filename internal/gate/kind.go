package gate

// Built-in kind names.
const (
	ID            = "id"
	U1            = "u1"
	U2            = "u2"
	U3            = "u3"
	DirectRX      = "direct_rx"
	RX            = "rx"
	RY            = "ry"
	RZ            = "rz"
	X             = "x"
	Y             = "y"
	Z             = "z"
	H             = "h"
	S             = "s"
	Sdg           = "sdg"
	T             = "t"
	Tdg           = "tdg"
	CX            = "cx"
	OpenCX        = "open_cx"
	CZ            = "cz"
	Swap          = "swap"
	CR            = "cr"
	ZZInteraction = "zz_interaction"
	Measure       = "measure"
	Reset         = "reset"
	Barrier       = "barrier"
)

// Variadic marks a kind whose qubit count is chosen per application.
const Variadic = -1

// Kind is the catalog entry identity: a tagged variant over all gate kinds.
type Kind struct {
	Name      string `json:"name"`
	NumQubits int    `json:"num_qubits"`
	NumClbits int    `json:"num_clbits"`
	NumParams int    `json:"num_params"`

	// Base names the kind applied to the target when every control is set.
	// Empty for uncontrolled kinds.
	Base string `json:"base,omitempty"`

	// Unitary is false for measure, reset and barrier.
	Unitary bool `json:"unitary"`

	// Composite is true for kinds defined by a body of other kinds.
	Composite bool `json:"composite,omitempty"`
}

// IsVariadic reports whether the qubit count varies per application.
func (k Kind) IsVariadic() bool {
	return k.NumQubits == Variadic
}

// IsControlled reports whether the kind has a base kind.
func (k Kind) IsControlled() bool {
	return k.Base != ""
}
