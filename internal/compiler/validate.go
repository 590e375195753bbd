package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrUnknownBodyOp   = "E101" // body op is neither built in nor in the library
	ErrQubitOutOfRange = "E102" // body qubit index or arity is wrong
	ErrUnknownParamRef = "E103" // body parameter names no composite parameter
	ErrParamCount      = "E104" // body op has the wrong number of parameters
	ErrShadowsBuiltin  = "E105" // composite name collides with a catalog kind
	ErrRecursive       = "E106" // composite references itself
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// KindLookup resolves built-in kinds. *gate.Catalog satisfies it.
type KindLookup interface {
	Lookup(name string) (gate.Definition, bool)
}

// arity is the shape a body op must match.
type arity struct {
	qubits  int
	params  int
	unitary bool
}

// Validate checks a composite library against the base catalog.
// Returns all errors found (does not fail-fast).
func Validate(specs []ir.CompositeSpec, base KindLookup) []ValidationError {
	var errs []ValidationError

	library := make(map[string]arity, 2*len(specs))
	for _, spec := range specs {
		a := arity{qubits: spec.Qubits, params: len(spec.Params), unitary: true}
		library[spec.Name] = a
		library[spec.InverseName()] = a
	}

	names := make(map[string]string)
	for _, spec := range specs {
		for _, name := range []string{spec.Name, spec.InverseName()} {
			// E105: no collision with the catalog or another composite's adjoint
			if _, ok := base.Lookup(name); ok {
				errs = append(errs, ValidationError{
					Field:   "gate." + spec.Name,
					Message: fmt.Sprintf("%q shadows a built-in kind", name),
					Code:    ErrShadowsBuiltin,
				})
			}
			if owner, ok := names[name]; ok {
				errs = append(errs, ValidationError{
					Field:   "gate." + spec.Name,
					Message: fmt.Sprintf("%q is already defined by gate %s", name, owner),
					Code:    ErrShadowsBuiltin,
				})
			}
			names[name] = spec.Name
		}
		errs = append(errs, validateComposite(spec, base, library)...)
	}

	// E106: recursion through body references. Body ops naming a built-in
	// resolve to the built-in, so shadowing gates are left to E105.
	for _, cycle := range AnalyzeRecursion(unshadowed(specs, base)) {
		errs = append(errs, ValidationError{
			Field:   "gate." + cycle.Path[0],
			Message: cycle.Message,
			Code:    ErrRecursive,
		})
	}

	return errs
}

// unshadowed drops composites whose name or adjoint collides with base.
func unshadowed(specs []ir.CompositeSpec, base KindLookup) []ir.CompositeSpec {
	out := make([]ir.CompositeSpec, 0, len(specs))
	for _, spec := range specs {
		_, name := base.Lookup(spec.Name)
		_, inverse := base.Lookup(spec.InverseName())
		if !name && !inverse {
			out = append(out, spec)
		}
	}
	return out
}

// validateComposite checks parameter names and every body op of one gate.
func validateComposite(spec ir.CompositeSpec, base KindLookup, library map[string]arity) []ValidationError {
	var errs []ValidationError
	field := "gate." + spec.Name

	seen := make(map[string]bool, len(spec.Params))
	for i, name := range spec.Params {
		if seen[name] || strings.HasPrefix(name, "-") || name == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.params[%d]", field, i),
				Message: fmt.Sprintf("invalid or duplicate parameter name %q", name),
				Code:    ErrUnknownParamRef,
			})
		}
		seen[name] = true
	}

	for i, op := range spec.Body {
		opField := fmt.Sprintf("%s.body[%d]", field, i)

		// E101: op must resolve
		want, ok := library[op.Op]
		if def, builtin := base.Lookup(op.Op); builtin {
			want, ok = arity{qubits: def.NumQubits, params: def.NumParams, unitary: def.Unitary && def.NumClbits == 0}, true
		}
		if !ok {
			errs = append(errs, ValidationError{
				Field:   opField + ".op",
				Message: fmt.Sprintf("unknown op %q", op.Op),
				Code:    ErrUnknownBodyOp,
			})
			continue
		}
		if !want.unitary {
			errs = append(errs, ValidationError{
				Field:   opField + ".op",
				Message: fmt.Sprintf("op %q is not unitary", op.Op),
				Code:    ErrUnknownBodyOp,
			})
			continue
		}

		// E102: qubit indices and arity
		errs = append(errs, validateBodyQubits(spec, op, want, opField)...)

		// E104: param count
		if len(op.Params) != want.params {
			errs = append(errs, ValidationError{
				Field:   opField + ".params",
				Message: fmt.Sprintf("op %q expects %d params, got %d", op.Op, want.params, len(op.Params)),
				Code:    ErrParamCount,
			})
		}

		// E103: param references
		for j, p := range op.Params {
			if p.IsBound() {
				continue
			}
			if spec.ParamIndex(strings.TrimPrefix(p.Symbol, "-")) < 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.params[%d]", opField, j),
					Message: fmt.Sprintf("unknown parameter %q", p.Symbol),
					Code:    ErrUnknownParamRef,
				})
			}
		}
	}

	return errs
}

func validateBodyQubits(spec ir.CompositeSpec, op ir.BodyOp, want arity, field string) []ValidationError {
	var errs []ValidationError
	if want.qubits == gate.Variadic {
		if len(op.Qubits) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".qubits",
				Message: fmt.Sprintf("op %q needs at least one qubit", op.Op),
				Code:    ErrQubitOutOfRange,
			})
		}
	} else if len(op.Qubits) != want.qubits {
		errs = append(errs, ValidationError{
			Field:   field + ".qubits",
			Message: fmt.Sprintf("op %q expects %d qubits, got %d", op.Op, want.qubits, len(op.Qubits)),
			Code:    ErrQubitOutOfRange,
		})
	}

	used := make(map[int]bool, len(op.Qubits))
	for j, q := range op.Qubits {
		if q < 0 || q >= spec.Qubits {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.qubits[%d]", field, j),
				Message: fmt.Sprintf("qubit index %d out of range [0, %d)", q, spec.Qubits),
				Code:    ErrQubitOutOfRange,
			})
		} else if used[q] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.qubits[%d]", field, j),
				Message: fmt.Sprintf("qubit index %d listed twice", q),
				Code:    ErrQubitOutOfRange,
			})
		}
		used[q] = true
	}
	return errs
}
