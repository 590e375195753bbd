package gate

import (
	"fmt"
	"sort"

	"github.com/roach88/qopt/internal/ir"
)

// maxExpansionDepth bounds composite matrix derivation.
const maxExpansionDepth = 32

// MatrixFunc returns the unitary for bound parameter values.
type MatrixFunc func(params []float64) Matrix

// InverseFunc returns the kind and parameters of the adjoint.
type InverseFunc func(params []ir.Param) (kind string, inverse []ir.Param, err error)

// DecomposeFunc returns an ordered substitution rule for one application.
type DecomposeFunc func(req Request) ([]Step, error)

// Step is one entry of a substitution rule. Qubits index into the parent
// application's qubit list.
type Step struct {
	Kind   string
	Params []ir.Param
	Qubits []int
}

// Request carries one application into a DecomposeFunc.
type Request struct {
	Params   []ir.Param
	Qubits   []ir.Wire
	Strategy Strategy
	Oracle   DirectionOracle
}

// Definition is a Kind plus the functions that give it meaning.
// Any function may be nil.
type Definition struct {
	Kind
	Matrix    MatrixFunc
	Inverse   InverseFunc
	Decompose DecomposeFunc
}

// Appender is the stable primitive named constructors compose against.
type Appender interface {
	Append(in ir.Instruction) error
}

// Catalog is a registry of gate definitions keyed by kind name.
type Catalog struct {
	defs map[string]Definition
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]Definition)}
}

// Standard returns a fresh catalog holding every built-in kind.
func Standard() *Catalog {
	c := NewCatalog()
	for _, def := range builtins() {
		if err := c.Register(def); err != nil {
			panic(err)
		}
	}
	return c
}

// Register adds a definition. Names are unique.
func (c *Catalog) Register(def Definition) error {
	if def.Name == "" {
		return NewCatalogError(ErrCodeInvalidDefinition, "", "kind name is required")
	}
	if _, exists := c.defs[def.Name]; exists {
		return NewCatalogError(ErrCodeDuplicateKind, def.Name, "kind already registered")
	}
	if def.NumQubits == 0 || def.NumQubits < Variadic {
		return NewCatalogError(ErrCodeInvalidDefinition, def.Name, "invalid qubit count %d", def.NumQubits)
	}
	if def.NumParams < 0 || def.NumClbits < 0 {
		return NewCatalogError(ErrCodeInvalidDefinition, def.Name, "negative param or clbit count")
	}
	c.defs[def.Name] = def
	return nil
}

// Lookup returns the definition for name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.defs[name]
	return ok
}

// Kinds returns every registered kind sorted by name.
func (c *Catalog) Kinds() []Kind {
	kinds := make([]Kind, 0, len(c.defs))
	for _, def := range c.defs {
		kinds = append(kinds, def.Kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].Name < kinds[j].Name })
	return kinds
}

// Clone returns an independent copy that can be extended.
func (c *Catalog) Clone() *Catalog {
	out := NewCatalog()
	for name, def := range c.defs {
		out.defs[name] = def
	}
	return out
}

func (c *Catalog) lookup(name string) (Definition, error) {
	def, ok := c.defs[name]
	if !ok {
		return Definition{}, NewCatalogError(ErrCodeUnknownKind, name, "kind is not registered")
	}
	return def, nil
}

// Validate checks an instruction against its kind's arity and parameter count.
func (c *Catalog) Validate(in ir.Instruction) error {
	def, err := c.lookup(in.Kind)
	if err != nil {
		return err
	}
	if def.IsVariadic() {
		if len(in.Qubits) == 0 {
			return NewCatalogError(ErrCodeArityMismatch, in.Kind, "variadic kind needs at least one qubit")
		}
	} else if len(in.Qubits) != def.NumQubits {
		return NewCatalogError(ErrCodeArityMismatch, in.Kind, "expected %d qubits, got %d", def.NumQubits, len(in.Qubits))
	}
	if len(in.Clbits) != def.NumClbits {
		return NewCatalogError(ErrCodeArityMismatch, in.Kind, "expected %d clbits, got %d", def.NumClbits, len(in.Clbits))
	}
	if len(in.Params) != def.NumParams {
		return NewCatalogError(ErrCodeParamMismatch, in.Kind, "expected %d params, got %d", def.NumParams, len(in.Params))
	}
	seen := make(map[ir.Wire]bool, len(in.Qubits)+len(in.Clbits))
	for _, w := range in.Qubits {
		if !w.IsQuantum() {
			return NewCatalogError(ErrCodeArityMismatch, in.Kind, "%s is not a qubit", w)
		}
		if seen[w] {
			return NewCatalogError(ErrCodeArityMismatch, in.Kind, "qubit %s listed twice", w)
		}
		seen[w] = true
	}
	for _, w := range in.Clbits {
		if w.IsQuantum() {
			return NewCatalogError(ErrCodeArityMismatch, in.Kind, "%s is not a clbit", w)
		}
		if seen[w] {
			return NewCatalogError(ErrCodeArityMismatch, in.Kind, "clbit %s listed twice", w)
		}
		seen[w] = true
	}
	return nil
}

// Build constructs a validated instruction for a named kind.
func (c *Catalog) Build(name string, params []ir.Param, qubits ...ir.Wire) (ir.Instruction, error) {
	in := ir.Instruction{
		Kind:   name,
		Params: append([]ir.Param(nil), params...),
		Qubits: append([]ir.Wire(nil), qubits...),
	}
	if err := c.Validate(in); err != nil {
		return ir.Instruction{}, err
	}
	return in, nil
}

// Apply builds a named instruction and appends it to a.
func (c *Catalog) Apply(a Appender, name string, params []ir.Param, qubits ...ir.Wire) error {
	in, err := c.Build(name, params, qubits...)
	if err != nil {
		return err
	}
	return a.Append(in)
}

// Matrix returns the unitary of an instruction on its own qubits.
// Composite kinds without a MatrixFunc are multiplied out from their body.
func (c *Catalog) Matrix(in ir.Instruction) (Matrix, error) {
	return c.matrix(in, 0)
}

func (c *Catalog) matrix(in ir.Instruction, depth int) (Matrix, error) {
	def, err := c.lookup(in.Kind)
	if err != nil {
		return Matrix{}, err
	}
	if !def.Unitary {
		return Matrix{}, NewCatalogError(ErrCodeNoMatrix, in.Kind, "kind is not unitary")
	}
	values, ok := in.Values()
	if !ok {
		return Matrix{}, NewCatalogError(ErrCodeUnboundParameter, in.Kind, "matrix needs bound parameters")
	}
	if def.Matrix != nil {
		return def.Matrix(values), nil
	}
	if def.Decompose == nil {
		return Matrix{}, NewCatalogError(ErrCodeNoMatrix, in.Kind, "kind has neither matrix nor body")
	}
	if depth >= maxExpansionDepth {
		return Matrix{}, NewCatalogError(ErrCodeInvalidDefinition, in.Kind, "expansion deeper than %d", maxExpansionDepth)
	}
	steps, err := def.Decompose(Request{Params: in.Params, Qubits: in.Qubits, Strategy: StrategyStandard, Oracle: AnyDirection{}})
	if err != nil {
		return Matrix{}, err
	}
	n := len(in.Qubits)
	u := Identity(1 << n)
	for _, st := range steps {
		sub, err := c.matrix(ir.Instruction{Kind: st.Kind, Params: st.Params, Qubits: stepWires(in.Qubits, st.Qubits)}, depth+1)
		if err != nil {
			return Matrix{}, fmt.Errorf("%s body: %w", in.Kind, err)
		}
		u = Embed(sub, st.Qubits, n).Mul(u)
	}
	return u, nil
}

// Inverse returns the adjoint instruction on the same wires.
func (c *Catalog) Inverse(in ir.Instruction) (ir.Instruction, error) {
	def, err := c.lookup(in.Kind)
	if err != nil {
		return ir.Instruction{}, err
	}
	if def.Inverse == nil {
		return ir.Instruction{}, NewCatalogError(ErrCodeNoInverse, in.Kind, "kind has no inverse")
	}
	kind, params, err := def.Inverse(in.Params)
	if err != nil {
		return ir.Instruction{}, err
	}
	out := in.Clone()
	out.Kind = kind
	out.Params = params
	return out, nil
}

// Decompose expands an instruction one level. The condition of in is
// copied onto every produced instruction.
func (c *Catalog) Decompose(in ir.Instruction, strategy Strategy, oracle DirectionOracle) ([]ir.Instruction, error) {
	def, err := c.lookup(in.Kind)
	if err != nil {
		return nil, err
	}
	if def.Decompose == nil {
		return nil, NewCatalogError(ErrCodeNoDecomposition, in.Kind, "kind has no decomposition")
	}
	if oracle == nil {
		oracle = AnyDirection{}
	}
	steps, err := def.Decompose(Request{Params: in.Params, Qubits: in.Qubits, Strategy: strategy, Oracle: oracle})
	if err != nil {
		return nil, err
	}
	out := make([]ir.Instruction, 0, len(steps))
	for _, st := range steps {
		for _, q := range st.Qubits {
			if q < 0 || q >= len(in.Qubits) {
				return nil, NewCatalogError(ErrCodeInvalidDefinition, in.Kind, "step %s uses qubit index %d", st.Kind, q)
			}
		}
		next := ir.Instruction{
			Kind:   st.Kind,
			Params: append([]ir.Param(nil), st.Params...),
			Qubits: stepWires(in.Qubits, st.Qubits),
		}
		if in.Condition != nil {
			cond := *in.Condition
			next.Condition = &cond
		}
		if err := c.Validate(next); err != nil {
			return nil, fmt.Errorf("%s decomposition: %w", in.Kind, err)
		}
		out = append(out, next)
	}
	return out, nil
}

func stepWires(qubits []ir.Wire, idx []int) []ir.Wire {
	wires := make([]ir.Wire, len(idx))
	for i, q := range idx {
		wires[i] = qubits[q]
	}
	return wires
}
