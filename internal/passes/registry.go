package passes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/qopt/internal/engine"
	"github.com/roach88/qopt/internal/gate"
)

// Pass names accepted by the registry.
const (
	NameCommutationAnalysis   = "commutation_analysis"
	NameOptimize1q            = "optimize_1q"
	NameZZInteraction         = "zz_interaction"
	NameZZInteractionAdjacent = "zz_interaction_adjacent"
	NameDecompose             = "decompose"
)

// DefaultPipeline is the pipeline used when none is configured.
var DefaultPipeline = []string{NameCommutationAnalysis, NameZZInteraction, NameOptimize1q}

// Config is shared by every constructor of one pipeline.
type Config struct {
	// Catalog supplies matrices and substitution rules. Nil means
	// gate.Standard().
	Catalog *gate.Catalog

	// Strategy and Oracle configure the decompose pass.
	Strategy gate.Strategy
	Oracle   gate.DirectionOracle

	// DecomposeKinds restricts the decompose pass; empty unrolls.
	DecomposeKinds []string

	// Family and PassThrough override the optimize_1q defaults when set.
	Family      []string
	PassThrough []string
}

func (c Config) catalog() *gate.Catalog {
	if c.Catalog == nil {
		return gate.Standard()
	}
	return c.Catalog
}

// Constructor builds a pass from the pipeline configuration.
type Constructor func(cfg Config) engine.Pass

// Registry maps pass names to constructors.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns a registry holding every built-in pass.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.constructors[NameCommutationAnalysis] = func(cfg Config) engine.Pass {
		return NewCommutationAnalysis(cfg.catalog())
	}
	r.constructors[NameOptimize1q] = func(cfg Config) engine.Pass {
		var opts []Optimize1qOption
		if len(cfg.Family) > 0 {
			opts = append(opts, WithFamily(cfg.Family...))
		}
		if cfg.PassThrough != nil {
			opts = append(opts, WithPassThrough(cfg.PassThrough...))
		}
		return NewOptimize1q(opts...)
	}
	r.constructors[NameZZInteraction] = func(cfg Config) engine.Pass {
		return NewZZInteraction(cfg.catalog())
	}
	r.constructors[NameZZInteractionAdjacent] = func(Config) engine.Pass {
		return NewZZInteractionAdjacent()
	}
	r.constructors[NameDecompose] = func(cfg Config) engine.Pass {
		opts := []DecomposeOption{WithStrategy(cfg.Strategy), WithKinds(cfg.DecomposeKinds...)}
		if cfg.Oracle != nil {
			opts = append(opts, WithOracle(cfg.Oracle))
		}
		return NewDecompose(cfg.catalog(), opts...)
	}
	return r
}

// Register adds a constructor under a new name.
func (r *Registry) Register(name string, ctor Constructor) error {
	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("pass %q already registered", name)
	}
	r.constructors[name] = ctor
	return nil
}

// Names returns the registered pass names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the named pass.
func (r *Registry) Build(name string, cfg Config) (engine.Pass, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, engine.NewUnknownPassError(name, r.Names())
	}
	return ctor(cfg), nil
}

// Pipeline constructs the named passes in order. All passes share one
// catalog instance.
func (r *Registry) Pipeline(names []string, cfg Config) ([]engine.Pass, error) {
	cfg.Catalog = cfg.catalog()
	out := make([]engine.Pass, 0, len(names))
	for _, name := range names {
		p, err := r.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ParsePipeline splits a comma-separated pass list. An empty string
// yields DefaultPipeline.
func ParsePipeline(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return append([]string(nil), DefaultPipeline...)
	}
	return names
}
