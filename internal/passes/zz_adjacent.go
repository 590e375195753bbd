package passes

import (
	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
)

// ZZInteractionAdjacent matches cx, phase, cx by direct adjacency: n2 follows
// n1 on the target wire, n3 follows n2 on the target wire and n1 on the
// control wire. ZZInteraction finds every match it finds.
type ZZInteractionAdjacent struct{}

// NewZZInteractionAdjacent creates the adjacency reference matcher.
func NewZZInteractionAdjacent() *ZZInteractionAdjacent {
	return &ZZInteractionAdjacent{}
}

// Name returns "zz_interaction_adjacent".
func (p *ZZInteractionAdjacent) Name() string { return NameZZInteractionAdjacent }

// Run rewrites every adjacent match in topological order.
func (p *ZZInteractionAdjacent) Run(d *dag.DAG, props *engine.PropertySet) (*dag.DAG, error) {
	rewrites := 0
	for _, h := range d.TopologicalOps() {
		if !d.Contains(h) {
			continue
		}
		m, ok := p.Match(d, h)
		if !ok {
			continue
		}
		if err := applyMotif(d, m); err != nil {
			return nil, err
		}
		rewrites++
	}
	if props != nil {
		props.AddRewrites(rewrites)
	}
	return d, nil
}

// Match finds the adjacent motif opened by h.
func (p *ZZInteractionAdjacent) Match(d *dag.DAG, h dag.Handle) (Motif, bool) {
	in, ok := d.Op(h)
	if !ok {
		return Motif{}, false
	}
	c, t, ok := entangler(in)
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
	n3, ok := d.NextOnWire(n2, t)
	if !ok {
		return Motif{}, false
	}
	closing, _ := d.Op(n3)
	if !closes(closing, c, t) {
		return Motif{}, false
	}
	if next, ok := d.NextOnWire(h, c); !ok || next != n3 {
		return Motif{}, false
	}
	return Motif{First: h, Phase: n2, Second: n3, Angle: angle}, true
}
