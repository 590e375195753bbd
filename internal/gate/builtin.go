package gate

import (
	"math"
	"math/cmplx"

	"github.com/roach88/qopt/internal/ir"
)

func expi(a float64) complex128 {
	return cmplx.Exp(complex(0, a))
}

func u3Matrix(theta, phi, lambda float64) Matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return FromRows(
		[]complex128{c, -expi(lambda) * s},
		[]complex128{expi(phi) * s, expi(phi+lambda) * c},
	)
}

func rxMatrix(theta float64) Matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(0, math.Sin(theta/2))
	return FromRows(
		[]complex128{c, -s},
		[]complex128{-s, c},
	)
}

func ryMatrix(theta float64) Matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return FromRows(
		[]complex128{c, -s},
		[]complex128{s, c},
	)
}

// crMatrix is X_c·exp(−iθ/2 Z⊗X) with the control as most significant qubit.
func crMatrix(theta float64) Matrix {
	c, is := complex(math.Cos(theta/2), 0), complex(0, math.Sin(theta/2))
	return FromRows(
		[]complex128{0, 0, c, is},
		[]complex128{0, 0, is, c},
		[]complex128{c, -is, 0, 0},
		[]complex128{-is, c, 0, 0},
	)
}

func fixed(m Matrix) MatrixFunc {
	return func([]float64) Matrix { return m }
}

func selfInverse(name string) InverseFunc {
	return func(params []ir.Param) (string, []ir.Param, error) {
		return name, append([]ir.Param(nil), params...), nil
	}
}

func adjointKind(name string) InverseFunc {
	return func(params []ir.Param) (string, []ir.Param, error) {
		return name, nil, nil
	}
}

func negated(name string) InverseFunc {
	return func(params []ir.Param) (string, []ir.Param, error) {
		out := make([]ir.Param, len(params))
		for i, p := range params {
			out[i] = p.Neg()
		}
		return name, out, nil
	}
}

// rewrite is a single-step decomposition onto qubit 0.
func rewrite(kind string, params func(p []ir.Param) []ir.Param) DecomposeFunc {
	return func(req Request) ([]Step, error) {
		var ps []ir.Param
		if params != nil {
			ps = params(req.Params)
		}
		return []Step{{Kind: kind, Params: ps, Qubits: []int{0}}}, nil
	}
}

func constant(values ...float64) func([]ir.Param) []ir.Param {
	return func([]ir.Param) []ir.Param { return ir.Angles(values...) }
}

func bound(kind string, params []ir.Param) ([]float64, error) {
	values := make([]float64, len(params))
	for i, p := range params {
		if !p.IsBound() {
			return nil, NewCatalogError(ErrCodeUnboundParameter, kind, "parameter %s must be bound", p.Symbol)
		}
		values[i] = p.Value
	}
	return values, nil
}

// pulseEuler expands u3(θ,φ,λ) as u1(λ−π/2), direct_rx(θ), u1(φ+π/2).
// Unbound angles stay symbolic by splitting the π/2 frame shifts out.
func pulseEuler(theta, phi, lambda ir.Param, q int) []Step {
	on := []int{q}
	if phi.IsBound() && lambda.IsBound() {
		return []Step{
			{Kind: U1, Params: ir.Angles(lambda.Value - math.Pi/2), Qubits: on},
			{Kind: DirectRX, Params: []ir.Param{theta}, Qubits: on},
			{Kind: U1, Params: ir.Angles(phi.Value + math.Pi/2), Qubits: on},
		}
	}
	return []Step{
		{Kind: U1, Params: []ir.Param{lambda}, Qubits: on},
		{Kind: U1, Params: ir.Angles(-math.Pi / 2), Qubits: on},
		{Kind: DirectRX, Params: []ir.Param{theta}, Qubits: on},
		{Kind: U1, Params: ir.Angles(math.Pi / 2), Qubits: on},
		{Kind: U1, Params: []ir.Param{phi}, Qubits: on},
	}
}

// pulseCX emits the cross-resonance form of cx(c, t).
func pulseCX(c, t int) []Step {
	return []Step{
		{Kind: U1, Params: ir.Angles(math.Pi / 2), Qubits: []int{c}},
		{Kind: DirectRX, Params: ir.Angles(math.Pi), Qubits: []int{c}},
		{Kind: DirectRX, Params: ir.Angles(math.Pi / 2), Qubits: []int{t}},
		{Kind: CR, Params: ir.Angles(math.Pi / 2), Qubits: []int{c, t}},
	}
}

// directedPulseCX uses the native direction when available and otherwise
// conjugates the reversed form with Hadamards on both wires.
func directedPulseCX(req Request) []Step {
	if req.Oracle.Native(req.Qubits[0], req.Qubits[1]) {
		return pulseCX(0, 1)
	}
	h := func(q int) Step { return Step{Kind: U2, Params: ir.Angles(0, math.Pi), Qubits: []int{q}} }
	steps := []Step{h(0), h(1)}
	steps = append(steps, pulseCX(1, 0)...)
	return append(steps, h(0), h(1))
}

func cxDecompose(req Request) ([]Step, error) {
	if req.Strategy != StrategyPulse {
		return nil, NewCatalogError(ErrCodeNoDecomposition, CX, "cx is primitive under the %s strategy", req.Strategy)
	}
	return directedPulseCX(req), nil
}

func openCXDecompose(req Request) ([]Step, error) {
	if req.Strategy != StrategyPulse {
		return []Step{
			{Kind: X, Qubits: []int{0}},
			{Kind: CX, Qubits: []int{0, 1}},
			{Kind: X, Qubits: []int{0}},
		}, nil
	}
	if req.Oracle.Native(req.Qubits[0], req.Qubits[1]) {
		return []Step{
			{Kind: U1, Params: ir.Angles(-math.Pi / 2), Qubits: []int{0}},
			{Kind: DirectRX, Params: ir.Angles(math.Pi / 2), Qubits: []int{1}},
			{Kind: CR, Params: ir.Angles(math.Pi / 2), Qubits: []int{0, 1}},
			{Kind: DirectRX, Params: ir.Angles(math.Pi), Qubits: []int{0}},
		}, nil
	}
	flip := Step{Kind: DirectRX, Params: ir.Angles(math.Pi), Qubits: []int{0}}
	steps := []Step{flip}
	steps = append(steps, directedPulseCX(req)...)
	return append(steps, flip), nil
}

func u3Decompose(req Request) ([]Step, error) {
	if req.Strategy != StrategyPulse {
		return nil, NewCatalogError(ErrCodeNoDecomposition, U3, "u3 is primitive under the %s strategy", req.Strategy)
	}
	return pulseEuler(req.Params[0], req.Params[1], req.Params[2], 0), nil
}

func u2Decompose(req Request) ([]Step, error) {
	if req.Strategy != StrategyPulse {
		return nil, NewCatalogError(ErrCodeNoDecomposition, U2, "u2 is primitive under the %s strategy", req.Strategy)
	}
	return pulseEuler(ir.Angle(math.Pi/2), req.Params[0], req.Params[1], 0), nil
}

func u2Inverse(params []ir.Param) (string, []ir.Param, error) {
	v, err := bound(U2, params)
	if err != nil {
		return "", nil, err
	}
	return U2, ir.Angles(-v[1]-math.Pi, -v[0]+math.Pi), nil
}

func u3Inverse(params []ir.Param) (string, []ir.Param, error) {
	return U3, []ir.Param{params[0].Neg(), params[2].Neg(), params[1].Neg()}, nil
}

func builtins() []Definition {
	sqrt2 := complex(1/math.Sqrt2, 0)
	oneQubit := func(name string, params int) Kind {
		return Kind{Name: name, NumQubits: 1, NumParams: params, Unitary: true}
	}
	twoQubit := func(name string, params int, base string) Kind {
		return Kind{Name: name, NumQubits: 2, NumParams: params, Base: base, Unitary: true}
	}
	return []Definition{
		{
			Kind:    oneQubit(ID, 0),
			Matrix:  fixed(Identity(2)),
			Inverse: selfInverse(ID),
		},
		{
			Kind:    oneQubit(U1, 1),
			Matrix:  func(p []float64) Matrix { return Diag(1, expi(p[0])) },
			Inverse: negated(U1),
		},
		{
			Kind:      oneQubit(U2, 2),
			Matrix:    func(p []float64) Matrix { return u3Matrix(math.Pi/2, p[0], p[1]) },
			Inverse:   u2Inverse,
			Decompose: u2Decompose,
		},
		{
			Kind:      oneQubit(U3, 3),
			Matrix:    func(p []float64) Matrix { return u3Matrix(p[0], p[1], p[2]) },
			Inverse:   u3Inverse,
			Decompose: u3Decompose,
		},
		{
			Kind:    oneQubit(DirectRX, 1),
			Matrix:  func(p []float64) Matrix { return rxMatrix(p[0]) },
			Inverse: negated(DirectRX),
		},
		{
			Kind:    oneQubit(RX, 1),
			Matrix:  func(p []float64) Matrix { return rxMatrix(p[0]) },
			Inverse: negated(RX),
			Decompose: func(req Request) ([]Step, error) {
				return []Step{{Kind: U3, Params: []ir.Param{req.Params[0], ir.Angle(-math.Pi / 2), ir.Angle(math.Pi / 2)}, Qubits: []int{0}}}, nil
			},
		},
		{
			Kind:    oneQubit(RY, 1),
			Matrix:  func(p []float64) Matrix { return ryMatrix(p[0]) },
			Inverse: negated(RY),
			Decompose: func(req Request) ([]Step, error) {
				return []Step{{Kind: U3, Params: []ir.Param{req.Params[0], ir.Angle(0), ir.Angle(0)}, Qubits: []int{0}}}, nil
			},
		},
		{
			Kind:      oneQubit(RZ, 1),
			Matrix:    func(p []float64) Matrix { return Diag(expi(-p[0]/2), expi(p[0]/2)) },
			Inverse:   negated(RZ),
			Decompose: rewrite(U1, func(p []ir.Param) []ir.Param { return []ir.Param{p[0]} }),
		},
		{
			Kind:      oneQubit(X, 0),
			Matrix:    fixed(FromRows([]complex128{0, 1}, []complex128{1, 0})),
			Inverse:   selfInverse(X),
			Decompose: rewrite(U3, constant(math.Pi, 0, math.Pi)),
		},
		{
			Kind:      oneQubit(Y, 0),
			Matrix:    fixed(FromRows([]complex128{0, -1i}, []complex128{1i, 0})),
			Inverse:   selfInverse(Y),
			Decompose: rewrite(U3, constant(math.Pi, math.Pi/2, math.Pi/2)),
		},
		{
			Kind:      oneQubit(Z, 0),
			Matrix:    fixed(Diag(1, -1)),
			Inverse:   selfInverse(Z),
			Decompose: rewrite(U1, constant(math.Pi)),
		},
		{
			Kind:      oneQubit(H, 0),
			Matrix:    fixed(FromRows([]complex128{sqrt2, sqrt2}, []complex128{sqrt2, -sqrt2})),
			Inverse:   selfInverse(H),
			Decompose: rewrite(U2, constant(0, math.Pi)),
		},
		{
			Kind:      oneQubit(S, 0),
			Matrix:    fixed(Diag(1, 1i)),
			Inverse:   adjointKind(Sdg),
			Decompose: rewrite(U1, constant(math.Pi/2)),
		},
		{
			Kind:      oneQubit(Sdg, 0),
			Matrix:    fixed(Diag(1, -1i)),
			Inverse:   adjointKind(S),
			Decompose: rewrite(U1, constant(-math.Pi/2)),
		},
		{
			Kind:      oneQubit(T, 0),
			Matrix:    fixed(Diag(1, expi(math.Pi/4))),
			Inverse:   adjointKind(Tdg),
			Decompose: rewrite(U1, constant(math.Pi/4)),
		},
		{
			Kind:      oneQubit(Tdg, 0),
			Matrix:    fixed(Diag(1, expi(-math.Pi/4))),
			Inverse:   adjointKind(T),
			Decompose: rewrite(U1, constant(-math.Pi/4)),
		},
		{
			Kind: twoQubit(CX, 0, X),
			Matrix: fixed(FromRows(
				[]complex128{1, 0, 0, 0},
				[]complex128{0, 1, 0, 0},
				[]complex128{0, 0, 0, 1},
				[]complex128{0, 0, 1, 0},
			)),
			Inverse:   selfInverse(CX),
			Decompose: cxDecompose,
		},
		{
			Kind: twoQubit(OpenCX, 0, ""),
			Matrix: fixed(FromRows(
				[]complex128{0, 1, 0, 0},
				[]complex128{1, 0, 0, 0},
				[]complex128{0, 0, 1, 0},
				[]complex128{0, 0, 0, 1},
			)),
			Inverse:   selfInverse(OpenCX),
			Decompose: openCXDecompose,
		},
		{
			Kind:    twoQubit(CZ, 0, Z),
			Matrix:  fixed(Diag(1, 1, 1, -1)),
			Inverse: selfInverse(CZ),
			Decompose: func(Request) ([]Step, error) {
				h := Step{Kind: H, Qubits: []int{1}}
				return []Step{h, {Kind: CX, Qubits: []int{0, 1}}, h}, nil
			},
		},
		{
			Kind: twoQubit(Swap, 0, ""),
			Matrix: fixed(FromRows(
				[]complex128{1, 0, 0, 0},
				[]complex128{0, 0, 1, 0},
				[]complex128{0, 1, 0, 0},
				[]complex128{0, 0, 0, 1},
			)),
			Inverse: selfInverse(Swap),
			Decompose: func(Request) ([]Step, error) {
				return []Step{
					{Kind: CX, Qubits: []int{0, 1}},
					{Kind: CX, Qubits: []int{1, 0}},
					{Kind: CX, Qubits: []int{0, 1}},
				}, nil
			},
		},
		{
			Kind:    twoQubit(CR, 1, ""),
			Matrix:  func(p []float64) Matrix { return crMatrix(p[0]) },
			Inverse: selfInverse(CR),
		},
		{
			Kind: twoQubit(ZZInteraction, 1, ""),
			Matrix: func(p []float64) Matrix {
				ph := expi(p[0])
				return Diag(1, ph, ph, 1)
			},
			Inverse: negated(ZZInteraction),
			Decompose: func(req Request) ([]Step, error) {
				return []Step{
					{Kind: CX, Qubits: []int{0, 1}},
					{Kind: U1, Params: []ir.Param{req.Params[0]}, Qubits: []int{1}},
					{Kind: CX, Qubits: []int{0, 1}},
				}, nil
			},
		},
		{Kind: Kind{Name: Measure, NumQubits: 1, NumClbits: 1}},
		{Kind: Kind{Name: Reset, NumQubits: 1}},
		{Kind: Kind{Name: Barrier, NumQubits: Variadic}},
	}
}
