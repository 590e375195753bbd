package passes

import (
	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/ir"
)

// Run is a maximal chain of fusible single-qubit operations on one wire,
// in wire order.
type Run struct {
	Wire  ir.Wire
	Nodes []dag.Handle
}

// CollectRuns finds the runs of every quantum wire.
//
// A run continues while the next operation is unconditioned, acts on one
// qubit only and has a kind in family or passThrough. A parameterized
// operation is split off into a run of its own so no run crosses it.
// Length-1 runs are returned like any other.
func CollectRuns(d *dag.DAG, family, passThrough []string) []Run {
	allowed := make(map[string]bool, len(family)+len(passThrough))
	for _, k := range family {
		allowed[k] = true
	}
	for _, k := range passThrough {
		allowed[k] = true
	}

	var runs []Run
	for _, w := range d.QuantumWires() {
		var cur []dag.Handle
		flush := func() {
			if len(cur) > 0 {
				runs = append(runs, Run{Wire: w, Nodes: cur})
				cur = nil
			}
		}
		for _, h := range d.NodesOnWire(w) {
			in, _ := d.Op(h)
			if !fusible(in, allowed) {
				flush()
				continue
			}
			if in.IsParameterized() {
				flush()
				cur = []dag.Handle{h}
				flush()
				continue
			}
			cur = append(cur, h)
		}
		flush()
	}
	return runs
}

func fusible(in ir.Instruction, allowed map[string]bool) bool {
	return allowed[in.Kind] && !in.IsConditioned() && len(in.Qubits) == 1 && len(in.Clbits) == 0
}
