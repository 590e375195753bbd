package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qopt/internal/ir"
)

// CompileComposite parses a CUE value into a CompositeSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the gate struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`gate: zz_like: { ... }`)
//	spec, err := CompileComposite(v.LookupPath(cue.ParsePath("gate.zz_like")))
func CompileComposite(v cue.Value) (*ir.CompositeSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.CompositeSpec{}

	// Gate name comes from the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	qubitsVal := v.LookupPath(cue.ParsePath("qubits"))
	if !qubitsVal.Exists() {
		return nil, &CompileError{
			Field:   "qubits",
			Message: "qubits is required",
			Pos:     v.Pos(),
		}
	}
	n, err := qubitsVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if n < 1 {
		return nil, &CompileError{
			Field:   "qubits",
			Message: fmt.Sprintf("qubits must be at least 1, got %d", n),
			Pos:     qubitsVal.Pos(),
		}
	}
	spec.Qubits = int(n)

	spec.Params, err = parseParamNames(v)
	if err != nil {
		return nil, err
	}

	spec.Body, err = parseBody(v)
	if err != nil {
		return nil, err
	}
	if len(spec.Body) == 0 {
		return nil, &CompileError{
			Field:   "body",
			Message: "body must hold at least one op",
			Pos:     v.Pos(),
		}
	}

	return spec, nil
}

// CompileLibrary compiles every composite under the top-level gate field.
// A value without one yields no composites.
func CompileLibrary(v cue.Value) ([]ir.CompositeSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	gatesVal := v.LookupPath(cue.ParsePath("gate"))
	if !gatesVal.Exists() {
		return nil, nil
	}
	iter, err := gatesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []ir.CompositeSpec
	for iter.Next() {
		spec, err := CompileComposite(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("gate.%s: %w", iter.Label(), err)
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// CompileSource compiles a single CUE document holding a gate library.
func CompileSource(filename, src string) ([]ir.CompositeSpec, error) {
	v := cuecontext.New().CompileString(src, cue.Filename(filename))
	return CompileLibrary(v)
}

// parseParamNames extracts the optional params list.
func parseParamNames(v cue.Value) ([]string, error) {
	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, nil
	}
	iter, err := paramsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var names []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "params",
				Message: "parameter names must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		names = append(names, name)
	}
	return names, nil
}

// parseBody extracts the body ops in order.
func parseBody(v cue.Value) ([]ir.BodyOp, error) {
	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, &CompileError{
			Field:   "body",
			Message: "body is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := bodyVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var body []ir.BodyOp
	for i := 0; iter.Next(); i++ {
		op, err := parseBodyOp(iter.Value(), fmt.Sprintf("body[%d]", i))
		if err != nil {
			return nil, err
		}
		body = append(body, op)
	}
	return body, nil
}

// parseBodyOp parses {op, qubits, params?}.
func parseBodyOp(v cue.Value, field string) (ir.BodyOp, error) {
	var op ir.BodyOp

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return op, &CompileError{
			Field:   field + ".op",
			Message: "op is required",
			Pos:     v.Pos(),
		}
	}
	name, err := opVal.String()
	if err != nil {
		return op, formatCUEError(err)
	}
	op.Op = name

	qubitsVal := v.LookupPath(cue.ParsePath("qubits"))
	if !qubitsVal.Exists() {
		return op, &CompileError{
			Field:   field + ".qubits",
			Message: "qubits is required",
			Pos:     v.Pos(),
		}
	}
	qIter, err := qubitsVal.List()
	if err != nil {
		return op, formatCUEError(err)
	}
	for qIter.Next() {
		idx, err := qIter.Value().Int64()
		if err != nil {
			return op, &CompileError{
				Field:   field + ".qubits",
				Message: "qubit indices must be integers",
				Pos:     qIter.Value().Pos(),
			}
		}
		op.Qubits = append(op.Qubits, int(idx))
	}

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		pIter, err := paramsVal.List()
		if err != nil {
			return op, formatCUEError(err)
		}
		for pIter.Next() {
			p, err := parseBodyParam(pIter.Value(), field+".params")
			if err != nil {
				return op, err
			}
			op.Params = append(op.Params, p)
		}
	}

	return op, nil
}

// parseBodyParam accepts a number, a pi expression string or a parameter
// reference string such as "theta" or "-theta".
func parseBodyParam(v cue.Value, field string) (ir.Param, error) {
	switch v.Kind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return ir.Param{}, formatCUEError(err)
		}
		return ir.Angle(f), nil
	case cue.StringKind:
		s, _ := v.String()
		p, err := ir.ParseParam(s)
		if err != nil {
			return ir.Param{}, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return p, nil
	default:
		return ir.Param{}, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported parameter kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
