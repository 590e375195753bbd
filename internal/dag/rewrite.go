package dag

import (
	"github.com/roach88/qopt/internal/ir"
)

// opNode returns the live operation for h or the structural reason it
// cannot be rewritten.
func (d *DAG) opNode(h Handle) (*Node, error) {
	n, ok := d.nodes[h]
	if !ok {
		if d.retired[h] {
			return nil, structural(ErrCodeNodeRemoved, h, "node was already removed")
		}
		return nil, structural(ErrCodeNodeNotFound, h, "no such node")
	}
	if n.Type != NodeOp {
		return nil, structural(ErrCodeNotAnOperation, h, "boundary nodes cannot be rewritten")
	}
	return n, nil
}

// checkLinks verifies that h is consistently threaded on every wire.
func (d *DAG) checkLinks(n *Node) error {
	for _, w := range n.wires {
		p, okp := d.prev[edgeKey{n.Handle, w}]
		s, oks := d.next[edgeKey{n.Handle, w}]
		if !okp || !oks {
			return wireError(ErrCodeBrokenWire, n.Handle, w, "missing neighbor")
		}
		if d.next[edgeKey{p, w}] != n.Handle || d.prev[edgeKey{s, w}] != n.Handle {
			return wireError(ErrCodeBrokenWire, n.Handle, w, "neighbor bookkeeping is inconsistent")
		}
	}
	return nil
}

func sameWires(a, b []ir.Wire) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Substitute replaces the kind and parameters of h in place. The wires are
// kept; a new kind that does not fit them is an arity mismatch. Without a
// validator the new kind must already have been applied to the DAG.
func (d *DAG) Substitute(h Handle, kind string, params []ir.Param) error {
	n, err := d.opNode(h)
	if err != nil {
		return err
	}
	next := n.Op.Clone()
	next.Kind = kind
	next.Params = append([]ir.Param(nil), params...)
	if err := d.validate(next, h); err != nil {
		return err
	}
	n.Op = next
	d.generation++
	return nil
}

// Replace swaps the instruction of h for one on exactly the same wires.
func (d *DAG) Replace(h Handle, in ir.Instruction) error {
	n, err := d.opNode(h)
	if err != nil {
		return err
	}
	wires, err := d.nodeWires(in)
	if err != nil {
		return err
	}
	if !sameWires(wires, n.wires) {
		return structural(ErrCodeArityMismatch, h, "replacement %s changes the wire set", in.Kind)
	}
	if err := d.validate(in, h); err != nil {
		return err
	}
	n.Op = in.Clone()
	d.generation++
	return nil
}

// Remove excises h and reconnects each wire's predecessor to its successor.
func (d *DAG) Remove(h Handle) error {
	n, err := d.opNode(h)
	if err != nil {
		return err
	}
	if err := d.checkLinks(n); err != nil {
		return err
	}
	d.unlink(n)
	d.generation++
	return nil
}

func (d *DAG) unlink(n *Node) {
	for _, w := range n.wires {
		p := d.prev[edgeKey{n.Handle, w}]
		s := d.next[edgeKey{n.Handle, w}]
		d.link(p, s, w)
		delete(d.prev, edgeKey{n.Handle, w})
		delete(d.next, edgeKey{n.Handle, w})
	}
	delete(d.nodes, n.Handle)
	d.retired[n.Handle] = true
}

// SubstituteSequence replaces h by an ordered sequence of operations on a
// subset of its wires. An empty sequence removes h. It returns the handles
// of the new nodes in sequence order.
func (d *DAG) SubstituteSequence(h Handle, seq []ir.Instruction) ([]Handle, error) {
	n, err := d.opNode(h)
	if err != nil {
		return nil, err
	}
	if err := d.checkLinks(n); err != nil {
		return nil, err
	}
	allowed := make(map[ir.Wire]bool, len(n.wires))
	for _, w := range n.wires {
		allowed[w] = true
	}
	resolved := make([][]ir.Wire, len(seq))
	for i, in := range seq {
		wires, err := d.nodeWires(in)
		if err != nil {
			return nil, err
		}
		for _, w := range wires {
			if !allowed[w] {
				return nil, wireError(ErrCodeUnknownWire, h, w, "replacement %s leaves the node's wires", in.Kind)
			}
		}
		if err := d.validate(in, h); err != nil {
			return nil, err
		}
		resolved[i] = wires
	}

	// Validation is complete; nothing below can fail.
	last := make(map[ir.Wire]Handle, len(n.wires))
	succ := make(map[ir.Wire]Handle, len(n.wires))
	for _, w := range n.wires {
		last[w] = d.prev[edgeKey{h, w}]
		succ[w] = d.next[edgeKey{h, w}]
	}
	d.unlink(n)
	handles := make([]Handle, len(seq))
	for i, in := range seq {
		m := d.newNode(Node{Type: NodeOp, Op: in.Clone(), wires: resolved[i]})
		for _, w := range resolved[i] {
			d.link(last[w], m.Handle, w)
			d.link(m.Handle, succ[w], w)
			last[w] = m.Handle
		}
		handles[i] = m.Handle
	}
	d.generation++
	return handles, nil
}
