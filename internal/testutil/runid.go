package testutil

// DefaultRunID is issued when no run id is configured.
const DefaultRunID = "test-run-default"

// StaticRunIDGenerator issues the same run id on every call, so every
// pipeline of one scenario renders the same report header.
//
// Unlike engine.FixedGenerator it never runs out.
type StaticRunIDGenerator struct {
	id string
}

// NewStaticRunIDGenerator creates the generator. An empty id falls back
// to DefaultRunID.
func NewStaticRunIDGenerator(id string) *StaticRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &StaticRunIDGenerator{id: id}
}

// Generate implements engine.RunIDGenerator.
func (g *StaticRunIDGenerator) Generate() string {
	return g.id
}
