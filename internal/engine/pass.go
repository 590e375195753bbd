package engine

import (
	"sort"

	"github.com/roach88/qopt/internal/dag"
)

// Pass is one pipeline stage. Run borrows the DAG exclusively and returns
// the DAG to hand to the next stage (usually the same one, mutated).
//
// Re-running a pass on its own output must be a no-op or converge.
type Pass interface {
	Name() string
	Run(d *dag.DAG, props *PropertySet) (*dag.DAG, error)
}

// PropertySet is the side channel shared by the passes of one pipeline run.
// Keys are strings such as a formatted wire name; values are pass-produced
// data. Readers must not assume a value is still valid after another pass
// mutated the DAG.
type PropertySet struct {
	values   map[string]any
	rewrites int
}

// NewPropertySet returns an empty property set.
func NewPropertySet() *PropertySet {
	return &PropertySet{values: make(map[string]any)}
}

// Set stores v under key.
func (p *PropertySet) Set(key string, v any) {
	p.values[key] = v
}

// Get returns the value under key.
func (p *PropertySet) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Delete removes key.
func (p *PropertySet) Delete(key string) {
	delete(p.values, key)
}

// Keys returns the stored keys in sorted order.
func (p *PropertySet) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddRewrites lets the running pass report how many rewrites it applied.
func (p *PropertySet) AddRewrites(n int) {
	p.rewrites += n
}

// takeRewrites returns and clears the rewrite counter.
func (p *PropertySet) takeRewrites() int {
	n := p.rewrites
	p.rewrites = 0
	return n
}
