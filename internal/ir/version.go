package ir

// Version constants for the circuit schema and engine.
const (
	// IRVersion is the circuit schema version carried in fingerprints.
	IRVersion = "1"

	// EngineVersion is the qopt engine version.
	EngineVersion = "0.1.0"
)
