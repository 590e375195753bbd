package rotation

import (
	"errors"
	"fmt"
)

// AlgebraVerificationError reports that a composed Euler triple failed its
// quaternion round-trip check. It indicates a defect in the algebra and is
// never retried.
type AlgebraVerificationError struct {
	Input   Quaternion
	Derived Quaternion
	Overlap float64
}

func (e *AlgebraVerificationError) Error() string {
	return fmt.Sprintf("rotation: YZY→ZYZ round trip overlap %.17g below 1-%g (input %+v, derived %+v)",
		e.Overlap, VerifyTolerance, e.Input, e.Derived)
}

// ErrorCode labels the error for metrics.
func (e *AlgebraVerificationError) ErrorCode() string {
	return "ALGEBRA_VERIFICATION"
}

// IsAlgebraVerificationError reports whether err is an AlgebraVerificationError.
func IsAlgebraVerificationError(err error) bool {
	var ave *AlgebraVerificationError
	return errors.As(err, &ave)
}
