package passes

import (
	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// Motif is one matched entangler, phase, entangler triple.
type Motif struct {
	First  dag.Handle
	Phase  dag.Handle
	Second dag.Handle
	Angle  ir.Param
}

// entangler returns the control and target of an unconditioned cx.
func entangler(in ir.Instruction) (control, target ir.Wire, ok bool) {
	if in.Kind != gate.CX || in.IsConditioned() || len(in.Qubits) != 2 || len(in.Clbits) != 0 {
		return ir.Wire{}, ir.Wire{}, false
	}
	return in.Qubits[0], in.Qubits[1], true
}

// phaseOn returns the angle of an unconditioned phase gate acting on w only.
func phaseOn(in ir.Instruction, w ir.Wire) (ir.Param, bool) {
	if in.IsConditioned() || len(in.Qubits) != 1 || in.Qubits[0] != w {
		return ir.Param{}, false
	}
	return gate.PhaseAngle(in)
}

// closes reports whether in is an entangler with exactly the wires of
// the opening one, in the same order.
func closes(in ir.Instruction, control, target ir.Wire) bool {
	c, t, ok := entangler(in)
	return ok && c == control && t == target
}

// applyMotif substitutes the first entangler and removes the other two.
func applyMotif(d *dag.DAG, m Motif) error {
	for _, h := range []dag.Handle{m.Phase, m.Second} {
		if !d.Contains(h) {
			return &dag.StructuralError{Code: dag.ErrCodeNodeRemoved, Node: h, Message: "motif member is gone"}
		}
	}
	if err := d.Substitute(m.First, gate.ZZInteraction, []ir.Param{m.Angle}); err != nil {
		return err
	}
	if err := d.Remove(m.Phase); err != nil {
		return err
	}
	return d.Remove(m.Second)
}

// ZZInteraction collapses cx, phase(θ), cx into zz_interaction(θ).
//
// Matching walks operations in topological order. Using the commutation
// partition of the target wire t and the control wire c, a cx n1 opens a
// match when:
//   - n2 is n1's next operation on t, a phase gate on t alone, in n1's
//     group or the one after it
//   - the closing cx n3 is n2's next operation on t, in n2's group or the
//     one after it, with n1's wires in the same order
//   - on c, n3 is in n1's group or the one after it
//
// The partition is recomputed after every match. A reversed closing cx or
// a phase on the control wire is not a match.
type ZZInteraction struct {
	commuter *Commuter
}

// NewZZInteraction creates the commutation-based motif matcher.
func NewZZInteraction(matrices Matrixer) *ZZInteraction {
	return &ZZInteraction{commuter: NewCommuter(matrices)}
}

// Name returns "zz_interaction".
func (p *ZZInteraction) Name() string { return NameZZInteraction }

// Run rewrites every match, greedily and without overlap.
func (p *ZZInteraction) Run(d *dag.DAG, props *engine.PropertySet) (*dag.DAG, error) {
	rewrites := 0
	sets := commutationFor(d, props, p.commuter)
	analyzed := d.Generation()
	for _, h := range d.TopologicalOps() {
		if !d.Contains(h) {
			continue
		}
		if d.Generation() != analyzed {
			sets = commutationFor(d, props, p.commuter)
			analyzed = d.Generation()
		}
		m, ok := p.match(d, sets, h)
		if !ok {
			continue
		}
		if err := applyMotif(d, m); err != nil {
			return nil, err
		}
		rewrites++
	}
	if props != nil {
		commutationFor(d, props, p.commuter)
		props.AddRewrites(rewrites)
	}
	return d, nil
}

// Match finds the motif opened by h against a fresh partition.
func (p *ZZInteraction) Match(d *dag.DAG, h dag.Handle) (Motif, bool) {
	return p.match(d, AnalyzeCommutation(d, p.commuter), h)
}

func (p *ZZInteraction) match(d *dag.DAG, sets map[ir.Wire]*CommutationSet, h dag.Handle) (Motif, bool) {
	in, _ := d.Op(h)
	c, t, ok := entangler(in)
	if !ok {
		return Motif{}, false
	}
	onTarget, onControl := sets[t], sets[c]
	if onTarget == nil || onControl == nil {
		return Motif{}, false
	}
	i, ok := onTarget.GroupOf(h)
	if !ok {
		return Motif{}, false
	}

	n2, ok := d.NextOnWire(h, t)
	if !ok {
		return Motif{}, false
	}
	phase, _ := d.Op(n2)
	angle, ok := phaseOn(phase, t)
	if !ok {
		return Motif{}, false
	}
	// A phase congruent to 0 commutes with cx and shares n1's group.
	g2, ok := onTarget.GroupOf(n2)
	if !ok || (g2 != i && g2 != i+1) {
		return Motif{}, false
	}

	n3, ok := d.NextOnWire(n2, t)
	if !ok {
		return Motif{}, false
	}
	if g3, ok := onTarget.GroupOf(n3); !ok || (g3 != g2 && g3 != g2+1) {
		return Motif{}, false
	}
	closing, _ := d.Op(n3)
	if !closes(closing, c, t) {
		return Motif{}, false
	}

	j, _ := onControl.GroupOf(h)
	k, ok := onControl.GroupOf(n3)
	if !ok || (k != j && k != j+1) {
		return Motif{}, false
	}
	return Motif{First: h, Phase: n2, Second: n3, Angle: angle}, true
}
