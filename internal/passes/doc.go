// Package passes implements the peephole optimization passes.
//
// Every pass satisfies engine.Pass. Passes rewrite the DAG in place through
// the dag rewriter and report how many rewrites they applied.
//
// ANALYSIS:
//
// CommutationAnalysis partitions each wire into ordered groups of operations
// that mutually commute, and publishes one CommutationSet per wire into the
// property set under the wire's name ("q[0]"). A set records the DAG
// generation it was computed for; consumers recompute when it is stale.
//
// REWRITES:
//
//   - Optimize1q fuses runs of single-qubit rotations into one u1, u2 or u3,
//     or removes the run when it composes to the identity.
//   - ZZInteraction collapses cx, phase, cx on the same wires into one
//     zz_interaction gate, matching across commuting operations on the
//     control wire.
//   - ZZInteractionAdjacent matches the same motif by direct adjacency only.
//     It exists as a reference for differential testing.
//   - Decompose expands nodes through catalog substitution rules.
//
// NewRegistry maps pass names to constructors so pipelines can be assembled
// from configuration.
package passes
