package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// LibraryError collects the validation failures of a composite library.
type LibraryError struct {
	Errors []ValidationError
}

func (e *LibraryError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("gate library has %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Extend validates specs against base and returns a clone of base with
// every composite registered. Each composite also registers its adjoint
// under <name>_dg; the pair are each other's inverse.
//
// Matrices are derived by the catalog from the body, so a composite
// definition only carries its decomposition.
func Extend(base *gate.Catalog, specs []ir.CompositeSpec) (*gate.Catalog, error) {
	if errs := Validate(specs, base); len(errs) > 0 {
		return nil, &LibraryError{Errors: errs}
	}

	cat := base.Clone()
	for _, spec := range specs {
		kind := gate.Kind{
			Name:      spec.Name,
			NumQubits: spec.Qubits,
			NumParams: len(spec.Params),
			Unitary:   true,
			Composite: true,
		}
		inverseKind := kind
		inverseKind.Name = spec.InverseName()

		defs := []gate.Definition{
			{
				Kind:      kind,
				Inverse:   renamed(inverseKind.Name),
				Decompose: bodyRule(spec),
			},
			{
				Kind:      inverseKind,
				Inverse:   renamed(kind.Name),
				Decompose: adjointRule(cat, spec),
			},
		}
		for _, def := range defs {
			if err := cat.Register(def); err != nil {
				return nil, fmt.Errorf("register %s: %w", def.Name, err)
			}
		}
	}
	return cat, nil
}

// renamed maps an application to the same parameters under another kind.
func renamed(kind string) gate.InverseFunc {
	return func(params []ir.Param) (string, []ir.Param, error) {
		return kind, append([]ir.Param(nil), params...), nil
	}
}

// bodyRule expands a composite into its body with parameters bound.
// The rule is the same under every strategy.
func bodyRule(spec ir.CompositeSpec) gate.DecomposeFunc {
	return func(req gate.Request) ([]gate.Step, error) {
		steps := make([]gate.Step, 0, len(spec.Body))
		for _, op := range spec.Body {
			params := make([]ir.Param, len(op.Params))
			for i, p := range op.Params {
				bound, err := spec.Bind(p, req.Params)
				if err != nil {
					return nil, gate.NewCatalogError(gate.ErrCodeInvalidDefinition, spec.Name, "%v", err)
				}
				params[i] = bound
			}
			steps = append(steps, gate.Step{
				Kind:   op.Op,
				Params: params,
				Qubits: append([]int(nil), op.Qubits...),
			})
		}
		return steps, nil
	}
}

// adjointRule expands <name>_dg into the reversed body of inverses.
func adjointRule(cat *gate.Catalog, spec ir.CompositeSpec) gate.DecomposeFunc {
	forward := bodyRule(spec)
	return func(req gate.Request) ([]gate.Step, error) {
		steps, err := forward(req)
		if err != nil {
			return nil, err
		}
		out := make([]gate.Step, 0, len(steps))
		for i := len(steps) - 1; i >= 0; i-- {
			st := steps[i]
			in := ir.Instruction{Kind: st.Kind, Params: st.Params, Qubits: localWires(st.Qubits)}
			inv, err := cat.Inverse(in)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", spec.InverseName(), err)
			}
			out = append(out, gate.Step{Kind: inv.Kind, Params: inv.Params, Qubits: st.Qubits})
		}
		return out, nil
	}
}

func localWires(idx []int) []ir.Wire {
	wires := make([]ir.Wire, len(idx))
	for i, q := range idx {
		wires[i] = ir.Qubit("q", q)
	}
	return wires
}
