package dag

import (
	"container/heap"
	"sort"

	"github.com/roach88/qopt/internal/ir"
)

// Handle is a stable node identity. Handles are never reused.
type Handle int64

// NodeType distinguishes boundary nodes from operations.
type NodeType int

const (
	NodeInput NodeType = iota
	NodeOutput
	NodeOp
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case NodeInput:
		return "in"
	case NodeOutput:
		return "out"
	case NodeOp:
		return "op"
	default:
		return "unknown"
	}
}

// Node is one vertex of the DAG.
type Node struct {
	Handle Handle
	Type   NodeType

	// Wire is set on boundary nodes.
	Wire ir.Wire

	// Op is set on operation nodes.
	Op ir.Instruction

	// wires lists every wire the node sits on, in a fixed order:
	// qubits, clbits, then condition clbits.
	wires []ir.Wire
}

// Wires returns the wires the node is ordered on.
func (n Node) Wires() []ir.Wire {
	return append([]ir.Wire(nil), n.wires...)
}

// IsOp reports whether the node is an operation.
func (n Node) IsOp() bool {
	return n.Type == NodeOp
}

type edgeKey struct {
	node Handle
	wire ir.Wire
}

// Validator checks an instruction's arity and parameters. *gate.Catalog
// satisfies it.
//
// Without a validator a DAG learns each kind's qubit count from Apply.
// Rewrites may then only introduce kinds the DAG has already seen, at the
// width they were seen at; any other kind is an arity mismatch.
type Validator interface {
	Validate(in ir.Instruction) error
}

// Option configures a DAG.
type Option func(*DAG)

// WithValidator checks every applied or substituted instruction.
func WithValidator(v Validator) Option {
	return func(d *DAG) {
		d.validator = v
	}
}

// DAG is a circuit as a directed acyclic graph with per-wire total order.
type DAG struct {
	registers []ir.Register
	regByName map[string]ir.Register
	wires     []ir.Wire
	known     map[ir.Wire]bool

	nodes   map[Handle]*Node
	retired map[Handle]bool
	next    map[edgeKey]Handle
	prev    map[edgeKey]Handle
	input   map[ir.Wire]Handle
	output  map[ir.Wire]Handle

	lastHandle Handle
	generation uint64
	validator  Validator
	arity      map[string]int // learned from Apply when validator is nil
}

const variadic = -1

// New creates an empty DAG.
func New(opts ...Option) *DAG {
	d := &DAG{
		regByName: make(map[string]ir.Register),
		known:     make(map[ir.Wire]bool),
		nodes:     make(map[Handle]*Node),
		retired:   make(map[Handle]bool),
		next:      make(map[edgeKey]Handle),
		prev:      make(map[edgeKey]Handle),
		input:     make(map[ir.Wire]Handle),
		output:    make(map[ir.Wire]Handle),
		arity:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromCircuit builds a DAG from registers and instructions in order.
func FromCircuit(c ir.Circuit, opts ...Option) (*DAG, error) {
	d := New(opts...)
	for _, r := range c.Registers {
		if err := d.AddRegister(r); err != nil {
			return nil, err
		}
	}
	for _, in := range c.Instructions {
		if _, err := d.Apply(in); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *DAG) newNode(n Node) *Node {
	d.lastHandle++
	n.Handle = d.lastHandle
	p := &n
	d.nodes[n.Handle] = p
	return p
}

// AddRegister declares a register and creates its boundary nodes.
func (d *DAG) AddRegister(r ir.Register) error {
	if _, exists := d.regByName[r.Name]; exists {
		return &StructuralError{Code: ErrCodeDuplicateWire, Wire: r.Name, Message: "register already declared"}
	}
	if r.Size <= 0 {
		return &StructuralError{Code: ErrCodeInvalidOperation, Wire: r.Name, Message: "register size must be positive"}
	}
	d.registers = append(d.registers, r)
	d.regByName[r.Name] = r
	for _, w := range r.Wires() {
		in := d.newNode(Node{Type: NodeInput, Wire: w, wires: []ir.Wire{w}})
		out := d.newNode(Node{Type: NodeOutput, Wire: w, wires: []ir.Wire{w}})
		d.input[w] = in.Handle
		d.output[w] = out.Handle
		d.next[edgeKey{in.Handle, w}] = out.Handle
		d.prev[edgeKey{out.Handle, w}] = in.Handle
		d.wires = append(d.wires, w)
		d.known[w] = true
	}
	d.generation++
	return nil
}

// nodeWires resolves the wires an instruction is ordered on.
func (d *DAG) nodeWires(in ir.Instruction) ([]ir.Wire, error) {
	wires := make([]ir.Wire, 0, len(in.Qubits)+len(in.Clbits))
	seen := make(map[ir.Wire]bool)
	for _, w := range in.Wires() {
		if !d.known[w] {
			return nil, wireError(ErrCodeUnknownWire, 0, w, "%s uses an undeclared wire", in.Kind)
		}
		if seen[w] {
			return nil, wireError(ErrCodeDuplicateWire, 0, w, "%s lists the wire twice", in.Kind)
		}
		seen[w] = true
		wires = append(wires, w)
	}
	if in.Condition != nil {
		reg, ok := d.regByName[in.Condition.Register]
		if !ok || reg.Kind != ir.ClassicalWire {
			return nil, &StructuralError{Code: ErrCodeUnknownWire, Wire: in.Condition.Register, Message: "condition register is not a declared classical register"}
		}
		for _, w := range reg.Wires() {
			if !seen[w] {
				seen[w] = true
				wires = append(wires, w)
			}
		}
	}
	return wires, nil
}

// validate checks in against the validator, or against the learned arity
// table when there is none. Apply (node 0) is unchecked without a validator.
func (d *DAG) validate(in ir.Instruction, node Handle) error {
	if d.validator != nil {
		if err := d.validator.Validate(in); err != nil {
			return &StructuralError{Code: ErrCodeArityMismatch, Node: node, Message: err.Error(), Err: err}
		}
		return nil
	}
	if node == 0 {
		return nil
	}
	want, ok := d.arity[in.Kind]
	switch {
	case !ok:
		return structural(ErrCodeArityMismatch, node, "arity of %s is unknown without a validator", in.Kind)
	case want != variadic && want != len(in.Qubits):
		return structural(ErrCodeArityMismatch, node, "%s acts on %d qubits, got %d", in.Kind, want, len(in.Qubits))
	}
	return nil
}

// learnArity records the qubit count of an applied kind. A kind applied at
// two widths, such as a barrier, is variadic from then on.
func (d *DAG) learnArity(in ir.Instruction) {
	if d.validator != nil {
		return
	}
	if want, ok := d.arity[in.Kind]; ok && want != len(in.Qubits) {
		d.arity[in.Kind] = variadic
		return
	}
	if _, ok := d.arity[in.Kind]; !ok {
		d.arity[in.Kind] = len(in.Qubits)
	}
}

// Apply appends an operation at the end of every wire it touches.
func (d *DAG) Apply(in ir.Instruction) (Handle, error) {
	wires, err := d.nodeWires(in)
	if err != nil {
		return 0, err
	}
	if err := d.validate(in, 0); err != nil {
		return 0, err
	}
	d.learnArity(in)
	n := d.newNode(Node{Type: NodeOp, Op: in.Clone(), wires: wires})
	for _, w := range wires {
		out := d.output[w]
		last := d.prev[edgeKey{out, w}]
		d.link(last, n.Handle, w)
		d.link(n.Handle, out, w)
	}
	d.generation++
	return n.Handle, nil
}

// Append is Apply without the handle, so a DAG can serve as a gate.Appender.
func (d *DAG) Append(in ir.Instruction) error {
	_, err := d.Apply(in)
	return err
}

func (d *DAG) link(from, to Handle, w ir.Wire) {
	d.next[edgeKey{from, w}] = to
	d.prev[edgeKey{to, w}] = from
}

// Generation increases on every mutation.
func (d *DAG) Generation() uint64 {
	return d.generation
}

// Registers returns the declared registers in declaration order.
func (d *DAG) Registers() []ir.Register {
	return append([]ir.Register(nil), d.registers...)
}

// Wires returns every declared wire in declaration order.
func (d *DAG) Wires() []ir.Wire {
	return append([]ir.Wire(nil), d.wires...)
}

// QuantumWires returns the declared qubits in declaration order.
func (d *DAG) QuantumWires() []ir.Wire {
	var out []ir.Wire
	for _, w := range d.wires {
		if w.IsQuantum() {
			out = append(out, w)
		}
	}
	return out
}

// HasWire reports whether w is declared.
func (d *DAG) HasWire(w ir.Wire) bool {
	return d.known[w]
}

// Node returns a copy of the node for h.
func (d *DAG) Node(h Handle) (Node, bool) {
	n, ok := d.nodes[h]
	if !ok {
		return Node{}, false
	}
	out := *n
	out.Op = n.Op.Clone()
	return out, true
}

// Op returns the instruction of an operation node.
func (d *DAG) Op(h Handle) (ir.Instruction, bool) {
	n, ok := d.nodes[h]
	if !ok || n.Type != NodeOp {
		return ir.Instruction{}, false
	}
	return n.Op.Clone(), true
}

// Contains reports whether h is a live operation node.
func (d *DAG) Contains(h Handle) bool {
	n, ok := d.nodes[h]
	return ok && n.Type == NodeOp
}

// NumOps counts the live operation nodes.
func (d *DAG) NumOps() int {
	count := 0
	for _, n := range d.nodes {
		if n.Type == NodeOp {
			count++
		}
	}
	return count
}

// CountByKind counts operation nodes per kind.
func (d *DAG) CountByKind() map[string]int {
	counts := make(map[string]int)
	for _, n := range d.nodes {
		if n.Type == NodeOp {
			counts[n.Op.Kind]++
		}
	}
	return counts
}

// NextOnWire returns the operation following h on w. ok is false at the
// output boundary or when h is not on w.
func (d *DAG) NextOnWire(h Handle, w ir.Wire) (Handle, bool) {
	s, ok := d.next[edgeKey{h, w}]
	if !ok || !d.Contains(s) {
		return 0, false
	}
	return s, true
}

// PrevOnWire returns the operation preceding h on w. ok is false at the
// input boundary or when h is not on w.
func (d *DAG) PrevOnWire(h Handle, w ir.Wire) (Handle, bool) {
	p, ok := d.prev[edgeKey{h, w}]
	if !ok || !d.Contains(p) {
		return 0, false
	}
	return p, true
}

// Successors returns the distinct operation successors of h, sorted.
func (d *DAG) Successors(h Handle) []Handle {
	return d.neighbors(h, d.next)
}

// Predecessors returns the distinct operation predecessors of h, sorted.
func (d *DAG) Predecessors(h Handle) []Handle {
	return d.neighbors(h, d.prev)
}

func (d *DAG) neighbors(h Handle, edges map[edgeKey]Handle) []Handle {
	n, ok := d.nodes[h]
	if !ok {
		return []Handle{}
	}
	seen := make(map[Handle]bool)
	out := []Handle{}
	for _, w := range n.wires {
		m, ok := edges[edgeKey{h, w}]
		if ok && d.Contains(m) && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NodesOnWire returns the operations on w from input to output.
func (d *DAG) NodesOnWire(w ir.Wire) []Handle {
	out := []Handle{}
	in, ok := d.input[w]
	if !ok {
		return out
	}
	end := d.output[w]
	for cur := d.next[edgeKey{in, w}]; cur != end; {
		out = append(out, cur)
		nxt, ok := d.next[edgeKey{cur, w}]
		if !ok {
			break
		}
		cur = nxt
	}
	return out
}

type handleHeap []Handle

func (h handleHeap) Len() int           { return len(h) }
func (h handleHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h handleHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *handleHeap) Push(x any)        { *h = append(*h, x.(Handle)) }
func (h *handleHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// TopologicalOps returns every operation in a deterministic topological
// order. Among ready nodes the smallest handle goes first.
func (d *DAG) TopologicalOps() []Handle {
	order, _ := d.topological()
	return order
}

// topological runs Kahn's algorithm over operation nodes. complete is false
// when some operation was never released, which means a cycle.
func (d *DAG) topological() (order []Handle, complete bool) {
	indegree := make(map[Handle]int)
	ready := &handleHeap{}
	total := 0
	for h, n := range d.nodes {
		if n.Type != NodeOp {
			continue
		}
		total++
		indegree[h] = len(d.Predecessors(h))
		if indegree[h] == 0 {
			heap.Push(ready, h)
		}
	}
	order = make([]Handle, 0, total)
	for ready.Len() > 0 {
		h := heap.Pop(ready).(Handle)
		order = append(order, h)
		for _, s := range d.Successors(h) {
			indegree[s]--
			if indegree[s] == 0 {
				heap.Push(ready, s)
			}
		}
	}
	return order, len(order) == total
}

// ToCircuit renders the DAG back to a flat circuit in topological order.
func (d *DAG) ToCircuit() ir.Circuit {
	c := ir.Circuit{
		Registers:    d.Registers(),
		Instructions: []ir.Instruction{},
	}
	for _, h := range d.TopologicalOps() {
		c.Instructions = append(c.Instructions, d.nodes[h].Op.Clone())
	}
	return c
}

// Fingerprint returns the content address of the rendered circuit.
func (d *DAG) Fingerprint() (string, error) {
	return ir.Fingerprint(d.ToCircuit())
}

// Clone returns a deep copy with the same handles and generation.
func (d *DAG) Clone() *DAG {
	out := New(WithValidator(d.validator))
	out.registers = d.Registers()
	for k, v := range d.regByName {
		out.regByName[k] = v
	}
	out.wires = d.Wires()
	for k, v := range d.known {
		out.known[k] = v
	}
	for k, v := range d.arity {
		out.arity[k] = v
	}
	for h, n := range d.nodes {
		cp := *n
		cp.Op = n.Op.Clone()
		cp.wires = append([]ir.Wire(nil), n.wires...)
		out.nodes[h] = &cp
	}
	for h := range d.retired {
		out.retired[h] = true
	}
	for k, v := range d.next {
		out.next[k] = v
	}
	for k, v := range d.prev {
		out.prev[k] = v
	}
	for k, v := range d.input {
		out.input[k] = v
	}
	for k, v := range d.output {
		out.output[k] = v
	}
	out.lastHandle = d.lastHandle
	out.generation = d.generation
	return out
}
