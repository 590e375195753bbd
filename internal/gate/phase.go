package gate

import (
	"math"

	"github.com/roach88/qopt/internal/ir"
)

// fixedPhases maps parameterless diagonal phase kinds to their angle.
var fixedPhases = map[string]float64{
	Z:   math.Pi,
	S:   math.Pi / 2,
	Sdg: -math.Pi / 2,
	T:   math.Pi / 4,
	Tdg: -math.Pi / 4,
}

// PhaseAngle returns θ when in is a single-qubit phase diag(1, e^{iθ}) up to
// global phase. rz and u1 return their parameter, which may be symbolic.
func PhaseAngle(in ir.Instruction) (ir.Param, bool) {
	if len(in.Qubits) != 1 || len(in.Clbits) != 0 {
		return ir.Param{}, false
	}
	switch in.Kind {
	case RZ, U1:
		if len(in.Params) != 1 {
			return ir.Param{}, false
		}
		return in.Params[0], true
	}
	if v, ok := fixedPhases[in.Kind]; ok {
		return ir.Angle(v), true
	}
	return ir.Param{}, false
}
