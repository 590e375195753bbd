package dag

import (
	"github.com/roach88/qopt/internal/ir"
)

// CheckInvariants verifies the structural invariants:
//
//   - every wire runs input → ops → output with consistent prev/next links
//   - every operation is threaded on exactly its own wires
//   - no edge belongs to a retired node
//   - the operation graph is acyclic
func (d *DAG) CheckInvariants() error {
	onWire := make(map[edgeKey]bool)
	for _, w := range d.wires {
		if err := d.checkWire(w, onWire); err != nil {
			return err
		}
	}
	for h, n := range d.nodes {
		if n.Type != NodeOp {
			continue
		}
		for _, w := range n.wires {
			if !onWire[edgeKey{h, w}] {
				return wireError(ErrCodeBrokenWire, h, w, "operation is not reachable along its wire")
			}
		}
	}
	for k := range d.next {
		if _, ok := d.nodes[k.node]; !ok {
			return wireError(ErrCodeBrokenWire, k.node, k.wire, "dangling successor edge")
		}
	}
	for k := range d.prev {
		if _, ok := d.nodes[k.node]; !ok {
			return wireError(ErrCodeBrokenWire, k.node, k.wire, "dangling predecessor edge")
		}
	}
	if _, complete := d.topological(); !complete {
		return structural(ErrCodeCycleDetected, 0, "operation graph contains a cycle")
	}
	return nil
}

func (d *DAG) checkWire(w ir.Wire, onWire map[edgeKey]bool) error {
	in, okIn := d.input[w]
	out, okOut := d.output[w]
	if !okIn || !okOut {
		return wireError(ErrCodeBrokenWire, 0, w, "missing boundary node")
	}
	if _, ok := d.prev[edgeKey{in, w}]; ok {
		return wireError(ErrCodeBrokenWire, in, w, "input boundary has a predecessor")
	}
	if _, ok := d.next[edgeKey{out, w}]; ok {
		return wireError(ErrCodeBrokenWire, out, w, "output boundary has a successor")
	}
	visited := make(map[Handle]bool)
	cur := in
	for cur != out {
		if visited[cur] {
			return wireError(ErrCodeCycleDetected, cur, w, "wire revisits a node")
		}
		visited[cur] = true
		nxt, ok := d.next[edgeKey{cur, w}]
		if !ok {
			return wireError(ErrCodeBrokenWire, cur, w, "wire ends before the output boundary")
		}
		if d.prev[edgeKey{nxt, w}] != cur {
			return wireError(ErrCodeBrokenWire, nxt, w, "predecessor link does not point back")
		}
		node, ok := d.nodes[nxt]
		if !ok {
			return wireError(ErrCodeBrokenWire, nxt, w, "successor is not a live node")
		}
		if nxt != out {
			if node.Type != NodeOp {
				return wireError(ErrCodeBrokenWire, nxt, w, "boundary node inside the wire")
			}
			if !containsWire(node.wires, w) {
				return wireError(ErrCodeBrokenWire, nxt, w, "operation threaded on a foreign wire")
			}
			onWire[edgeKey{nxt, w}] = true
		}
		cur = nxt
	}
	return nil
}

func containsWire(wires []ir.Wire, w ir.Wire) bool {
	for _, x := range wires {
		if x == w {
			return true
		}
	}
	return false
}
