// Package store provides the SQLite run ledger.
//
// The ledger is append-only:
//   - runs: one row per pipeline run, keyed by run id
//   - pass_results: one row per pass execution, keyed by (run_id, idx)
//
// # Ordering
//
// Runs are ordered by seq, the engine's logical clock, NEVER by timestamps.
// A CLI process resumes its clock from LastSeq so seqs stay unique across
// processes. Every query ends in ORDER BY seq ASC, id ASC COLLATE BINARY
// (runs) or idx ASC (pass results).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Pipelines are stored as canonical JSON arrays (ir.MarshalCanonical);
// fingerprints are the qopt/circuit/v1 hashes computed by ir.Fingerprint.
package store
