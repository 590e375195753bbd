package dag

import (
	"errors"
	"fmt"

	"github.com/roach88/qopt/internal/ir"
)

// StructuralErrorCode classifies structural failures.
type StructuralErrorCode string

const (
	ErrCodeArityMismatch    StructuralErrorCode = "ARITY_MISMATCH"
	ErrCodeNodeRemoved      StructuralErrorCode = "NODE_REMOVED"
	ErrCodeNodeNotFound     StructuralErrorCode = "NODE_NOT_FOUND"
	ErrCodeNotAnOperation   StructuralErrorCode = "NOT_AN_OPERATION"
	ErrCodeBrokenWire       StructuralErrorCode = "BROKEN_WIRE"
	ErrCodeUnknownWire      StructuralErrorCode = "UNKNOWN_WIRE"
	ErrCodeDuplicateWire    StructuralErrorCode = "DUPLICATE_WIRE"
	ErrCodeCycleDetected    StructuralErrorCode = "CYCLE_DETECTED"
	ErrCodeInvalidOperation StructuralErrorCode = "INVALID_OPERATION"
)

// StructuralError reports a wire or arity violation. It is fatal to the
// pass that raised it.
type StructuralError struct {
	Code    StructuralErrorCode
	Node    Handle
	Wire    string
	Message string

	// Err is the validator failure behind an arity error, if any.
	Err error
}

func (e *StructuralError) Error() string {
	switch {
	case e.Wire != "" && e.Node != 0:
		return fmt.Sprintf("[%s] node %d on %s: %s", e.Code, e.Node, e.Wire, e.Message)
	case e.Wire != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Wire, e.Message)
	case e.Node != 0:
		return fmt.Sprintf("[%s] node %d: %s", e.Code, e.Node, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the validator failure.
func (e *StructuralError) Unwrap() error {
	return e.Err
}

func structural(code StructuralErrorCode, node Handle, format string, args ...any) *StructuralError {
	return &StructuralError{Code: code, Node: node, Message: fmt.Sprintf(format, args...)}
}

func wireError(code StructuralErrorCode, node Handle, w ir.Wire, format string, args ...any) *StructuralError {
	return &StructuralError{Code: code, Node: node, Wire: w.String(), Message: fmt.Sprintf(format, args...)}
}

// IsStructuralError reports whether err is a StructuralError.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// StructuralCode returns the code of a StructuralError in err's chain.
func StructuralCode(err error) (StructuralErrorCode, bool) {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return "", false
}
