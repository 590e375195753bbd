package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCircuit     = "qopt/circuit/v1"
	DomainInstruction = "qopt/instruction/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// WireValue encodes a wire as a canonical object.
func WireValue(w Wire) IRObject {
	return IRObject{
		"register": IRString(w.Register),
		"index":    IRInt(w.Index),
		"kind":     IRString(w.Kind),
	}
}

// ParamValue encodes a parameter; bound angles become decimal strings.
func ParamValue(p Param) IRObject {
	if !p.IsBound() {
		return IRObject{"symbol": IRString(p.Symbol)}
	}
	return IRObject{"value": AngleValue(p.Value)}
}

// InstructionValue encodes an instruction as a canonical object.
func InstructionValue(in Instruction) IRObject {
	params := make(IRArray, len(in.Params))
	for i, p := range in.Params {
		params[i] = ParamValue(p)
	}
	qubits := make(IRArray, len(in.Qubits))
	for i, w := range in.Qubits {
		qubits[i] = WireValue(w)
	}
	clbits := make(IRArray, len(in.Clbits))
	for i, w := range in.Clbits {
		clbits[i] = WireValue(w)
	}
	obj := IRObject{
		"kind":   IRString(in.Kind),
		"params": params,
		"qubits": qubits,
		"clbits": clbits,
	}
	if in.Condition != nil {
		obj["condition"] = IRObject{
			"register": IRString(in.Condition.Register),
			"value":    IRInt(in.Condition.Value),
		}
	}
	return obj
}

// CircuitValue encodes a whole circuit as a canonical object.
func CircuitValue(c Circuit) IRObject {
	regs := make(IRArray, len(c.Registers))
	for i, r := range c.Registers {
		regs[i] = IRObject{
			"name": IRString(r.Name),
			"size": IRInt(r.Size),
			"kind": IRString(r.Kind),
		}
	}
	ops := make(IRArray, len(c.Instructions))
	for i, in := range c.Instructions {
		ops[i] = InstructionValue(in)
	}
	return IRObject{
		"registers":    regs,
		"instructions": ops,
	}
}

// Fingerprint computes the content address of a circuit.
// Instruction order is significant, so callers render the circuit in a
// deterministic topological order before hashing.
func Fingerprint(c Circuit) (string, error) {
	canonical, err := MarshalCanonical(CircuitValue(c))
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCircuit, canonical), nil
}

// InstructionHash computes the content address of a single instruction.
func InstructionHash(in Instruction) (string, error) {
	canonical, err := MarshalCanonical(InstructionValue(in))
	if err != nil {
		return "", fmt.Errorf("InstructionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInstruction, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(c Circuit) string {
	fp, err := Fingerprint(c)
	if err != nil {
		panic(err)
	}
	return fp
}
