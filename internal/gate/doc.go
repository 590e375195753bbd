// Package gate provides the gate catalog: a registry of gate kinds and the
// pure functions that give each kind its meaning.
//
// # Architecture
//
// A gate kind is a tagged variant (Kind) carrying its name, fixed arity,
// parameter count and optional base kind. Behavior lives in a Definition
// next to the Kind as plain function values:
//
//	Matrix    - unitary for bound parameters (nil for non-unitary kinds)
//	Inverse   - kind and parameters of the adjoint
//	Decompose - ordered (kind, qubit indices) substitution rule
//
// Catalogs are values. Standard() returns the built-in set; callers extend a
// Clone() with composite definitions (see internal/compiler) instead of
// mutating shared state.
//
// # Critical Patterns
//
// CP-1: Explicit decomposition strategy
//   - Decompose takes a Strategy (standard or pulse-backed) every call
//   - There is no process-wide toggle
//
// CP-2: Injected directionality
//   - Hardware asymmetry of two-qubit primitives is asked of a
//     DirectionOracle; the catalog carries no coupling table
//
// CP-3: Big-endian matrices
//   - The first listed qubit is the most significant bit of a basis index
package gate
