// Package engine runs optimization passes over a circuit DAG.
//
// ARCHITECTURE:
//
// Pass Pipeline:
// An Engine holds an ordered list of passes. Run hands the DAG to each pass
// in turn together with one shared PropertySet, the side channel analyses
// publish into and later passes read from.
//
// Pipeline Flow:
// 1. Fingerprint the input DAG
// 2. For each pass: run it, check DAG invariants, record a PassReport
// 3. With WithFixedPoint, repeat until the fingerprint stops changing,
// bounded by WithMaxIterations
// 4. Return the DAG and a Report stamped with a run ID and logical seq
//
// Each pass holds exclusive mutation rights while it runs. Passes never run
// concurrently; the engine is synchronous and deterministic.
//
// CRITICAL PATTERNS:
//
// CP-2: Logical Clock
// Reports are stamped with a monotonic seq from Clock.Next().
// Wall-clock time is recorded for metrics only, never for ordering.
//
// CP-5: Fatal errors propagate
// StructuralError and AlgebraVerificationError abort the pipeline. They are
// wrapped in a RuntimeError that keeps the original reachable via errors.As.
package engine
