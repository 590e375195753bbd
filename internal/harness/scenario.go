package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// Scenario defines an optimization scenario: an input circuit, the pipeline
// to run over it and the expectations on the result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Registers declares the circuit's quantum and classical registers.
	Registers Registers `yaml:"registers"`

	// Ops is the input circuit in program order.
	Ops []OpStep `yaml:"ops"`

	// Passes names the pipeline. Empty means passes.DefaultPipeline.
	Passes []string `yaml:"passes,omitempty"`

	// Strategy selects the decomposition rules: "standard" or "pulse".
	Strategy string `yaml:"strategy,omitempty"`

	// Couplings lists native cx directions as "q[0]>q[1],...".
	// Empty means every direction is native.
	Couplings string `yaml:"couplings,omitempty"`

	// Decompose restricts the decompose pass to these kinds.
	Decompose []string `yaml:"decompose,omitempty"`

	// FixedPoint repeats the pipeline until the circuit stops changing.
	FixedPoint bool `yaml:"fixed_point,omitempty"`

	// MaxIterations bounds fixed-point runs. Zero means the engine default.
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// Gates lists CUE composite-gate libraries.
	// Paths are relative to the scenario file location.
	Gates []string `yaml:"gates,omitempty"`

	// Expect holds the assertions on the optimized circuit.
	Expect Expect `yaml:"expect"`

	// RunID is an optional fixed run id for deterministic reports.
	// If empty, defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`
}

// Registers maps register names to sizes. Registers are declared in name
// order, quantum before classical.
type Registers struct {
	Qubits map[string]int `yaml:"qubits"`
	Clbits map[string]int `yaml:"clbits,omitempty"`
}

// OpStep is one instruction of the input circuit.
type OpStep struct {
	// Gate is the kind name, e.g. "cx" or a composite from Gates.
	Gate string `yaml:"gate"`

	// Params accepts numbers, pi expressions ("pi/2") and symbols.
	Params []ParamValue `yaml:"params,omitempty"`

	// Qubits and Clbits are wires written name[index].
	Qubits []string `yaml:"qubits"`
	Clbits []string `yaml:"clbits,omitempty"`

	// Condition gates the op on a classical register value.
	Condition *ir.Condition `yaml:"condition,omitempty"`
}

// ParamValue is a parameter decoded from a YAML scalar.
type ParamValue struct {
	ir.Param
}

// UnmarshalYAML parses the scalar with ir.ParseParam.
func (p *ParamValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: parameter must be a scalar", node.Line)
	}
	v, err := ir.ParseParam(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	p.Param = v
	return nil
}

// Expect specifies assertions on the optimized circuit.
// Every field is optional; an empty Expect only checks that the run succeeds.
type Expect struct {
	// Ops is the exact operation count after optimization.
	Ops *int `yaml:"ops,omitempty"`

	// Counts are exact per-kind operation counts. Kinds not listed are
	// not checked; a count of 0 asserts absence.
	Counts map[string]int `yaml:"counts,omitempty"`

	// Contains lists instructions that must appear in the output, written
	// the way ir.Instruction.String renders them (e.g. "cx q[0], q[1]").
	Contains []string `yaml:"contains,omitempty"`

	// Circuit is the exact rendered output in program order.
	Circuit []string `yaml:"circuit,omitempty"`

	// Equivalent checks the output unitary against the input, up to
	// global phase.
	Equivalent bool `yaml:"equivalent,omitempty"`

	// Idempotent checks that rerunning the pipeline changes nothing.
	Idempotent bool `yaml:"idempotent,omitempty"`

	// Error is the error code the pipeline must fail with, e.g.
	// ITERATIONS_EXCEEDED. Other expectations are skipped when set.
	Error string `yaml:"error,omitempty"`
}

// IsEmpty reports whether no assertion is configured.
func (e Expect) IsEmpty() bool {
	return e.Ops == nil && len(e.Counts) == 0 && len(e.Contains) == 0 && len(e.Circuit) == 0 &&
		!e.Equivalent && !e.Idempotent && e.Error == ""
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Gate library paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, lib := range scenario.Gates {
		if !filepath.IsAbs(lib) {
			scenario.Gates[i] = filepath.Join(base, lib)
		}
	}
	for _, lib := range scenario.Gates {
		if _, err := os.Stat(lib); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: gate library not found: %s", lib)
		}
	}

	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Registers.Qubits) == 0 {
		return fmt.Errorf("registers.qubits is required and must be non-empty")
	}
	for name, size := range s.Registers.Qubits {
		if size <= 0 {
			return fmt.Errorf("registers.qubits.%s: size must be positive", name)
		}
		if _, dup := s.Registers.Clbits[name]; dup {
			return fmt.Errorf("register %q declared as both qubits and clbits", name)
		}
	}
	for name, size := range s.Registers.Clbits {
		if size <= 0 {
			return fmt.Errorf("registers.clbits.%s: size must be positive", name)
		}
	}

	if _, err := gate.ParseStrategy(s.Strategy); err != nil {
		return err
	}
	if _, err := gate.ParseCouplings(s.Couplings); err != nil {
		return fmt.Errorf("couplings: %w", err)
	}
	if s.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be non-negative")
	}

	for i, op := range s.Ops {
		if op.Gate == "" {
			return fmt.Errorf("ops[%d]: gate is required", i)
		}
		if len(op.Qubits) == 0 {
			return fmt.Errorf("ops[%d]: qubits is required", i)
		}
	}

	for kind, n := range s.Expect.Counts {
		if n < 0 {
			return fmt.Errorf("expect.counts.%s: count must be non-negative", kind)
		}
	}
	if s.Expect.Ops != nil && *s.Expect.Ops < 0 {
		return fmt.Errorf("expect.ops: count must be non-negative")
	}

	return nil
}

// Circuit builds the input circuit. Wire syntax errors are reported here;
// arity and kind errors surface when the DAG is built against a catalog.
func (s *Scenario) Circuit() (ir.Circuit, error) {
	var c ir.Circuit
	for _, name := range sortedKeys(s.Registers.Qubits) {
		c.Registers = append(c.Registers, ir.Register{Name: name, Size: s.Registers.Qubits[name], Kind: ir.QuantumWire})
	}
	for _, name := range sortedKeys(s.Registers.Clbits) {
		c.Registers = append(c.Registers, ir.Register{Name: name, Size: s.Registers.Clbits[name], Kind: ir.ClassicalWire})
	}

	for i, op := range s.Ops {
		in := ir.Instruction{Kind: op.Gate, Condition: op.Condition}
		for _, p := range op.Params {
			in.Params = append(in.Params, p.Param)
		}
		for _, q := range op.Qubits {
			w, err := ir.ParseWire(q, ir.QuantumWire)
			if err != nil {
				return ir.Circuit{}, fmt.Errorf("ops[%d]: %w", i, err)
			}
			in.Qubits = append(in.Qubits, w)
		}
		for _, cb := range op.Clbits {
			w, err := ir.ParseWire(cb, ir.ClassicalWire)
			if err != nil {
				return ir.Circuit{}, fmt.Errorf("ops[%d]: %w", i, err)
			}
			in.Clbits = append(in.Clbits, w)
		}
		c.Instructions = append(c.Instructions, in)
	}
	return c, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
