package gate

import (
	"errors"
	"fmt"
)

// CatalogErrorCode classifies catalog failures.
type CatalogErrorCode string

const (
	ErrCodeUnknownKind       CatalogErrorCode = "UNKNOWN_KIND"
	ErrCodeDuplicateKind     CatalogErrorCode = "DUPLICATE_KIND"
	ErrCodeArityMismatch     CatalogErrorCode = "ARITY_MISMATCH"
	ErrCodeParamMismatch     CatalogErrorCode = "PARAM_MISMATCH"
	ErrCodeUnboundParameter  CatalogErrorCode = "UNBOUND_PARAMETER"
	ErrCodeNoMatrix          CatalogErrorCode = "NO_MATRIX"
	ErrCodeNoInverse         CatalogErrorCode = "NO_INVERSE"
	ErrCodeNoDecomposition   CatalogErrorCode = "NO_DECOMPOSITION"
	ErrCodeInvalidDefinition CatalogErrorCode = "INVALID_DEFINITION"
)

// CatalogError reports a failed catalog lookup or evaluation.
type CatalogError struct {
	Code    CatalogErrorCode
	Kind    string
	Message string
}

func (e *CatalogError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("gate: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gate %s: %s: %s", e.Kind, e.Code, e.Message)
}

// ErrorCode returns the code as a plain string for metrics labels.
func (e *CatalogError) ErrorCode() string {
	return string(e.Code)
}

// NewCatalogError creates a CatalogError.
func NewCatalogError(code CatalogErrorCode, kind, format string, args ...any) *CatalogError {
	return &CatalogError{Code: code, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsCatalogError reports whether err is a CatalogError with the given code.
func IsCatalogError(err error, code CatalogErrorCode) bool {
	var ce *CatalogError
	return errors.As(err, &ce) && ce.Code == code
}
