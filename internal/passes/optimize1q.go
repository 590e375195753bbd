package passes

import (
	"fmt"
	"math"

	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/rotation"
)

// DefaultFamily is the rotation family fused by Optimize1q.
var DefaultFamily = []string{gate.U1, gate.U2, gate.U3}

// DefaultPassThrough extends runs without defining them.
var DefaultPassThrough = []string{gate.DirectRX}

// rotationOf maps a bound single-qubit kind to its Euler form, up to
// global phase.
func rotationOf(in ir.Instruction) (rotation.Rotation, bool) {
	v, ok := in.Values()
	if !ok {
		return rotation.Rotation{}, false
	}
	switch in.Kind {
	case gate.ID:
		return rotation.Nop(), true
	case gate.U1, gate.RZ:
		return rotation.U1(v[0]), true
	case gate.U2:
		return rotation.U2(v[0], v[1]), true
	case gate.U3:
		return rotation.U3(v[0], v[1], v[2]), true
	case gate.DirectRX, gate.RX:
		return rotation.U3(v[0], -math.Pi/2, math.Pi/2), true
	case gate.RY:
		return rotation.U3(v[0], 0, 0), true
	case gate.X:
		return rotation.U3(math.Pi, 0, math.Pi), true
	case gate.Y:
		return rotation.U3(math.Pi, math.Pi/2, math.Pi/2), true
	case gate.H:
		return rotation.U2(0, math.Pi), true
	}
	if p, ok := gate.PhaseAngle(in); ok && p.IsBound() {
		return rotation.U1(p.Value), true
	}
	return rotation.Rotation{}, false
}

// Rotatable reports whether Optimize1q knows the Euler form of kind.
func Rotatable(kind string) bool {
	params := map[string]int{gate.U1: 1, gate.RZ: 1, gate.U2: 2, gate.U3: 3, gate.DirectRX: 1, gate.RX: 1, gate.RY: 1}
	in := ir.Instruction{Kind: kind, Params: make([]ir.Param, params[kind]), Qubits: []ir.Wire{{}}}
	_, ok := rotationOf(in)
	return ok
}

// classKinds maps a canonical class to the kind emitted for it.
var classKinds = map[rotation.Class]string{
	rotation.ClassU1: gate.U1,
	rotation.ClassU2: gate.U2,
	rotation.ClassU3: gate.U3,
}

// Optimize1q fuses runs of single-qubit rotations on each wire.
//
// INVARIANTS:
//   - a run is rewritten only when it has two or more nodes and at least
//     one family member
//   - the first node of a run is substituted, the rest are removed; a run
//     that composes to the identity is removed entirely
type Optimize1q struct {
	family      []string
	passThrough []string
	isFamily    map[string]bool
}

// Optimize1qOption configures Optimize1q.
type Optimize1qOption func(*Optimize1q)

// WithFamily replaces the rotation family. Kinds without an Euler form
// are ignored.
func WithFamily(kinds ...string) Optimize1qOption {
	return func(p *Optimize1q) {
		p.family = kinds
	}
}

// WithPassThrough replaces the pass-through kinds.
func WithPassThrough(kinds ...string) Optimize1qOption {
	return func(p *Optimize1q) {
		p.passThrough = kinds
	}
}

// NewOptimize1q creates the single-qubit fusion pass.
func NewOptimize1q(opts ...Optimize1qOption) *Optimize1q {
	p := &Optimize1q{
		family:      DefaultFamily,
		passThrough: DefaultPassThrough,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.family = rotatableOnly(p.family)
	p.passThrough = rotatableOnly(p.passThrough)
	p.isFamily = make(map[string]bool, len(p.family))
	for _, k := range p.family {
		p.isFamily[k] = true
	}
	return p
}

func rotatableOnly(kinds []string) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if Rotatable(k) {
			out = append(out, k)
		}
	}
	return out
}

// Name returns "optimize_1q".
func (p *Optimize1q) Name() string { return NameOptimize1q }

// Run fuses every eligible run.
func (p *Optimize1q) Run(d *dag.DAG, props *engine.PropertySet) (*dag.DAG, error) {
	fused := 0
	for _, r := range CollectRuns(d, p.family, p.passThrough) {
		if len(r.Nodes) < 2 {
			continue
		}
		result, ok, err := p.fold(d, r)
		if err != nil {
			return nil, fmt.Errorf("fuse run on %s: %w", r.Wire, err)
		}
		if !ok {
			continue
		}
		if err := rewriteRun(d, r, result); err != nil {
			return nil, err
		}
		fused++
	}
	if props != nil {
		props.AddRewrites(fused)
	}
	return d, nil
}

// fold composes a run in wire order. ok is false when the run holds no
// family member or a node without an Euler form.
func (p *Optimize1q) fold(d *dag.DAG, r Run) (rotation.Rotation, bool, error) {
	acc := rotation.NewAccumulator()
	member := false
	for _, h := range r.Nodes {
		in, _ := d.Op(h)
		rot, ok := rotationOf(in)
		if !ok {
			return rotation.Rotation{}, false, nil
		}
		member = member || p.isFamily[in.Kind]
		if err := acc.Push(rot); err != nil {
			return rotation.Rotation{}, false, err
		}
	}
	return acc.Result(), member, nil
}

func rewriteRun(d *dag.DAG, r Run, result rotation.Rotation) error {
	rest := r.Nodes[1:]
	if result.Class == rotation.ClassNop {
		rest = r.Nodes
	} else if err := d.Substitute(r.Nodes[0], classKinds[result.Class], ir.Angles(result.Angles()...)); err != nil {
		return err
	}
	for _, h := range rest {
		if err := d.Remove(h); err != nil {
			return err
		}
	}
	return nil
}
