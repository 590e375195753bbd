package gate

import (
	"fmt"
	"strings"

	"github.com/roach88/qopt/internal/ir"
)

// Strategy selects how kinds with several known expansions are decomposed.
type Strategy int

const (
	// StrategyStandard expands into the u1/u2/u3/cx basis.
	StrategyStandard Strategy = iota

	// StrategyPulse expands into pulse-native primitives (u1, direct_rx, cr).
	StrategyPulse
)

// String returns the flag spelling of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyStandard:
		return "standard"
	case StrategyPulse:
		return "pulse"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy parses "standard" or "pulse". Empty means standard.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return StrategyStandard, nil
	case "pulse", "pulse-backed", "pulse_backed":
		return StrategyPulse, nil
	default:
		return 0, fmt.Errorf("unknown decomposition strategy %q (want standard or pulse)", s)
	}
}

// DirectionOracle answers whether a directed two-qubit primitive is native
// between two physical qubits.
type DirectionOracle interface {
	Native(control, target ir.Wire) bool
}

// AnyDirection treats every direction as native.
type AnyDirection struct{}

// Native always returns true.
func (AnyDirection) Native(control, target ir.Wire) bool { return true }

// DirectedPairs is a coupling set of native (control, target) pairs.
type DirectedPairs struct {
	pairs map[[2]ir.Wire]bool
}

// NewDirectedPairs builds a coupling set from (control, target) pairs.
func NewDirectedPairs(pairs ...[2]ir.Wire) DirectedPairs {
	d := DirectedPairs{pairs: make(map[[2]ir.Wire]bool, len(pairs))}
	for _, p := range pairs {
		d.pairs[p] = true
	}
	return d
}

// Native reports whether (control, target) is in the coupling set.
func (d DirectedPairs) Native(control, target ir.Wire) bool {
	return d.pairs[[2]ir.Wire{control, target}]
}

// ParseCouplings parses "q[0]>q[1],q[1]>q[2]" into a coupling set.
func ParseCouplings(s string) (DirectedPairs, error) {
	var pairs [][2]ir.Wire
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ends := strings.Split(part, ">")
		if len(ends) != 2 {
			return DirectedPairs{}, fmt.Errorf("invalid coupling %q: expected control>target", part)
		}
		c, err := ir.ParseWire(ends[0], ir.QuantumWire)
		if err != nil {
			return DirectedPairs{}, err
		}
		t, err := ir.ParseWire(ends[1], ir.QuantumWire)
		if err != nil {
			return DirectedPairs{}, err
		}
		pairs = append(pairs, [2]ir.Wire{c, t})
	}
	return NewDirectedPairs(pairs...), nil
}
