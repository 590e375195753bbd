package passes

import (
	"strconv"
	"strings"

	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// CommutationTolerance is the entrywise tolerance of the matrix check.
const CommutationTolerance = 1e-10

// maxCommutationQubits bounds the joint wire set checked numerically.
// Larger pairs are reported as not commuting.
const maxCommutationQubits = 6

// Matrixer yields the unitary of an instruction. *gate.Catalog satisfies it.
type Matrixer interface {
	Matrix(in ir.Instruction) (gate.Matrix, error)
}

// CommutationSet is the ordered partition of one wire into groups.
// Members of a group mutually commute; consecutive groups are ordered.
type CommutationSet struct {
	Wire       ir.Wire
	Generation uint64
	Groups     [][]dag.Handle

	index map[dag.Handle]int
}

// GroupOf returns the index of the group holding h.
func (s *CommutationSet) GroupOf(h dag.Handle) (int, bool) {
	i, ok := s.index[h]
	return i, ok
}

// Group returns the members of group i, or nil when i is out of range.
func (s *CommutationSet) Group(i int) []dag.Handle {
	if i < 0 || i >= len(s.Groups) {
		return nil
	}
	return s.Groups[i]
}

// Commuter decides whether two operations commute. Unknown pairs do not.
type Commuter struct {
	matrices Matrixer
	cache    map[[2]string]bool
}

// NewCommuter creates a Commuter backed by matrices.
func NewCommuter(matrices Matrixer) *Commuter {
	return &Commuter{matrices: matrices, cache: make(map[[2]string]bool)}
}

// Commute reports whether a and b commute on their joint qubits.
//
// Conditioned, classical, parameterized and non-unitary operations never
// commute with anything. Operations on disjoint qubits always do.
func (c *Commuter) Commute(a, b ir.Instruction) bool {
	if !c.eligible(a) || !c.eligible(b) {
		return false
	}
	key := [2]string{cacheKey(a), cacheKey(b)}
	if key[1] < key[0] {
		key[0], key[1] = key[1], key[0]
	}
	if v, ok := c.cache[key]; ok {
		return v
	}
	v := c.commute(a, b)
	c.cache[key] = v
	return v
}

// cacheKey identifies an eligible instruction by kind, exact angles and
// qubits. Rendered text is not used because it rounds angles near pi forms.
func cacheKey(in ir.Instruction) string {
	var b strings.Builder
	b.WriteString(in.Kind)
	for _, p := range in.Params {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Value, 'g', -1, 64))
	}
	b.WriteByte(';')
	for _, w := range in.Qubits {
		b.WriteByte(' ')
		b.WriteString(w.String())
	}
	return b.String()
}

func (c *Commuter) eligible(in ir.Instruction) bool {
	return !in.IsConditioned() && len(in.Clbits) == 0 && !in.IsParameterized() && len(in.Qubits) > 0
}

func (c *Commuter) commute(a, b ir.Instruction) bool {
	pos := make(map[ir.Wire]int)
	for _, w := range append(append([]ir.Wire(nil), a.Qubits...), b.Qubits...) {
		if _, ok := pos[w]; !ok {
			pos[w] = len(pos)
		}
	}
	n := len(pos)
	if n == len(a.Qubits)+len(b.Qubits) {
		return true
	}
	if n > maxCommutationQubits {
		return false
	}
	ma, err := c.matrices.Matrix(a)
	if err != nil {
		return false
	}
	mb, err := c.matrices.Matrix(b)
	if err != nil {
		return false
	}
	ea := gate.Embed(ma, positionsOf(a.Qubits, pos), n)
	eb := gate.Embed(mb, positionsOf(b.Qubits, pos), n)
	return ea.Commutes(eb, CommutationTolerance)
}

func positionsOf(wires []ir.Wire, pos map[ir.Wire]int) []int {
	out := make([]int, len(wires))
	for i, w := range wires {
		out[i] = pos[w]
	}
	return out
}

// AnalyzeCommutation partitions every wire of d. An operation joins the
// open group iff it commutes with every member already in it.
func AnalyzeCommutation(d *dag.DAG, c *Commuter) map[ir.Wire]*CommutationSet {
	sets := make(map[ir.Wire]*CommutationSet)
	for _, w := range d.Wires() {
		set := &CommutationSet{Wire: w, Generation: d.Generation(), index: make(map[dag.Handle]int)}
		var open []dag.Handle
		var openOps []ir.Instruction
		for _, h := range d.NodesOnWire(w) {
			in, _ := d.Op(h)
			joins := len(open) > 0
			for _, member := range openOps {
				if !c.Commute(member, in) {
					joins = false
					break
				}
			}
			if !joins && len(open) > 0 {
				set.Groups = append(set.Groups, open)
				open, openOps = nil, nil
			}
			open = append(open, h)
			openOps = append(openOps, in)
			set.index[h] = len(set.Groups)
		}
		if len(open) > 0 {
			set.Groups = append(set.Groups, open)
		}
		sets[w] = set
	}
	return sets
}

// CommutationAnalysis publishes a CommutationSet per wire.
type CommutationAnalysis struct {
	commuter *Commuter
}

// NewCommutationAnalysis creates the analysis pass.
func NewCommutationAnalysis(matrices Matrixer) *CommutationAnalysis {
	return &CommutationAnalysis{commuter: NewCommuter(matrices)}
}

// Name returns "commutation_analysis".
func (p *CommutationAnalysis) Name() string { return NameCommutationAnalysis }

// Run publishes the partition and leaves the DAG untouched.
func (p *CommutationAnalysis) Run(d *dag.DAG, props *engine.PropertySet) (*dag.DAG, error) {
	publish(props, AnalyzeCommutation(d, p.commuter))
	return d, nil
}

func publish(props *engine.PropertySet, sets map[ir.Wire]*CommutationSet) {
	for w, s := range sets {
		props.Set(w.String(), s)
	}
}

// commutationFor returns the published sets when they match the DAG's
// generation, recomputing and republishing otherwise.
func commutationFor(d *dag.DAG, props *engine.PropertySet, c *Commuter) map[ir.Wire]*CommutationSet {
	sets := make(map[ir.Wire]*CommutationSet)
	fresh := props != nil
	for _, w := range d.Wires() {
		if !fresh {
			break
		}
		v, ok := props.Get(w.String())
		s, isSet := v.(*CommutationSet)
		if !ok || !isSet || s.Generation != d.Generation() {
			fresh = false
			break
		}
		sets[w] = s
	}
	if fresh {
		return sets
	}
	sets = AnalyzeCommutation(d, c)
	if props != nil {
		publish(props, sets)
	}
	return sets
}

// CommutationSetFor reads the published partition of w.
func CommutationSetFor(props *engine.PropertySet, w ir.Wire) (*CommutationSet, bool) {
	v, ok := props.Get(w.String())
	if !ok {
		return nil, false
	}
	s, ok := v.(*CommutationSet)
	return s, ok
}
