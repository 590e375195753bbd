// Package dag provides the circuit DAG and its rewrite primitives.
//
// Nodes are addressed by stable integer handles; the DAG owns the
// handle→node map and a per-wire doubly linked order. Every wire begins at
// an input boundary node and ends at an output boundary node, and the
// operation nodes touching a wire form a strict total order between them.
//
// # Ownership
//
// A DAG has a single writer. Passes borrow it exclusively for the duration
// of one run; the DAG itself does no locking.
//
// # Mutation
//
// Substitute, Replace, Remove and SubstituteSequence validate everything up
// front and only then mutate, so a failed call leaves the DAG untouched.
// Every successful mutation bumps Generation, which analyses use to detect
// stale side-channel data.
package dag
