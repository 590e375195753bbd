// Package harness runs optimization scenarios.
//
// A scenario is a YAML file declaring an input circuit, the pass pipeline to
// run over it and the expectations on the optimized circuit: operation
// counts, rendered instructions, unitary equivalence, idempotence or an
// expected error code. Scenarios may load CUE composite-gate libraries.
//
// Runs are deterministic: the engine gets a static run id and a fresh
// deterministic clock, so the same scenario always produces the same
// snapshot. Snapshots are compared against golden files with goldie.
//
//	s, err := harness.LoadScenario("testdata/scenarios/zz_fixture.yaml")
//	result, err := harness.Run(ctx, s)
//	if !result.Pass {
//	    for _, msg := range result.Errors { ... }
//	}
package harness
