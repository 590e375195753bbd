package passes

import (
	"fmt"

	"github.com/roach88/qopt/internal/dag"
	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// maxDecomposeRounds bounds repeated expansion of freshly produced nodes.
const maxDecomposeRounds = 32

// Decomposer expands one instruction a single level. *gate.Catalog
// satisfies it.
type Decomposer interface {
	Decompose(in ir.Instruction, strategy gate.Strategy, oracle gate.DirectionOracle) ([]ir.Instruction, error)
}

// Decompose expands nodes through catalog substitution rules until no
// selected node is left.
//
// With explicit kinds, every node of those kinds must decompose under the
// strategy. Without kinds the pass unrolls: every node with a rule is
// expanded and nodes without one are kept as primitives.
type Decompose struct {
	rules    Decomposer
	kinds    map[string]bool
	strategy gate.Strategy
	oracle   gate.DirectionOracle
}

// DecomposeOption configures Decompose.
type DecomposeOption func(*Decompose)

// WithKinds restricts expansion to the named kinds.
func WithKinds(kinds ...string) DecomposeOption {
	return func(p *Decompose) {
		for _, k := range kinds {
			p.kinds[k] = true
		}
	}
}

// WithStrategy selects the substitution rules, standard by default.
func WithStrategy(s gate.Strategy) DecomposeOption {
	return func(p *Decompose) {
		p.strategy = s
	}
}

// WithOracle sets the directionality oracle for two-qubit primitives.
func WithOracle(o gate.DirectionOracle) DecomposeOption {
	return func(p *Decompose) {
		p.oracle = o
	}
}

// NewDecompose creates the decomposition pass.
func NewDecompose(rules Decomposer, opts ...DecomposeOption) *Decompose {
	p := &Decompose{
		rules:    rules,
		kinds:    make(map[string]bool),
		strategy: gate.StrategyStandard,
		oracle:   gate.AnyDirection{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "decompose".
func (p *Decompose) Name() string { return NameDecompose }

// Run expands selected nodes, repeating over their products.
func (p *Decompose) Run(d *dag.DAG, props *engine.PropertySet) (*dag.DAG, error) {
	unroll := len(p.kinds) == 0
	total := 0
	for round := 0; ; round++ {
		expanded := 0
		for _, h := range d.TopologicalOps() {
			in, ok := d.Op(h)
			if !ok || (!unroll && !p.kinds[in.Kind]) {
				continue
			}
			seq, err := p.rules.Decompose(in, p.strategy, p.oracle)
			if err != nil {
				if unroll && gate.IsCatalogError(err, gate.ErrCodeNoDecomposition) {
					continue
				}
				return nil, fmt.Errorf("decompose %s: %w", in, err)
			}
			if _, err := d.SubstituteSequence(h, seq); err != nil {
				return nil, err
			}
			expanded++
		}
		total += expanded
		if expanded == 0 {
			break
		}
		if round+1 >= maxDecomposeRounds {
			return nil, gate.NewCatalogError(gate.ErrCodeInvalidDefinition, "",
				"expansion still producing nodes after %d rounds", maxDecomposeRounds)
		}
	}
	if props != nil {
		props.AddRewrites(total)
	}
	return d, nil
}
