package rotation

import "math"

// Compose returns the canonical rotation equal to left·right up to global
// phase. right acts first.
//
// Shortcuts cover the pairs whose product stays in a restricted class;
// everything else goes through the verified YZY→ZYZ conversion with the
// middle angle left.λ + right.φ.
func Compose(left, right Rotation) (Rotation, error) {
	if right.Class == ClassNop {
		return collapse(left), nil
	}
	if left.Class == ClassNop {
		return collapse(right), nil
	}

	var out Rotation
	switch [2]Class{left.Class, right.Class} {
	case [2]Class{ClassU1, ClassU1}:
		out = U1(right.Lambda + left.Lambda)
	case [2]Class{ClassU1, ClassU2}:
		out = U2(right.Phi+left.Lambda, right.Lambda)
	case [2]Class{ClassU2, ClassU1}:
		out = U2(left.Phi, right.Lambda+left.Lambda)
	case [2]Class{ClassU1, ClassU3}:
		out = U3(right.Theta, right.Phi+left.Lambda, right.Lambda)
	case [2]Class{ClassU3, ClassU1}:
		out = U3(left.Theta, left.Phi, right.Lambda+left.Lambda)
	case [2]Class{ClassU2, ClassU2}:
		// Ry(π/2)·Rz(α)·Ry(π/2) = Rz(π/2)·Ry(π−α)·Rz(π/2)
		out = U3(math.Pi-left.Lambda-right.Phi, left.Phi+math.Pi/2, right.Lambda+math.Pi/2)
	default:
		mid, err := YZYToZYZ(left.Theta, left.Lambda+right.Phi, right.Theta)
		if err != nil {
			return Rotation{}, err
		}
		out = U3(mid.Theta, left.Phi+mid.Phi, right.Lambda+mid.Lambda)
	}
	return collapse(out), nil
}

// collapse canonicalizes a rotation into the smallest class that holds it.
func collapse(r Rotation) Rotation {
	r.Theta, r.Phi, r.Lambda = chop(r.Theta), chop(r.Phi), chop(r.Lambda)

	if (r.Class == ClassU2 || r.Class == ClassU3) && congruent(r.Theta, 0) {
		r = U1(r.Theta + r.Phi + r.Lambda)
	}
	if r.Class == ClassU3 {
		switch {
		case congruent(r.Theta, math.Pi/2):
			r = U2(r.Phi, r.Lambda+(r.Theta-math.Pi/2))
		case congruent(r.Theta, -math.Pi/2):
			r = U2(r.Phi+math.Pi, r.Lambda-math.Pi+(r.Theta+math.Pi/2))
		}
	}

	switch r.Class {
	case ClassU1:
		lambda := wrapPositive(chop(r.Lambda))
		if congruent(lambda, 0) {
			return Nop()
		}
		return U1(lambda)
	case ClassU2:
		return U2(chop(wrap(r.Phi)), chop(wrap(r.Lambda)))
	case ClassU3:
		return U3(r.Theta, chop(wrap(r.Phi)), chop(wrap(r.Lambda)))
	default:
		return Nop()
	}
}

// Canonical collapses a single rotation without composing it.
func Canonical(r Rotation) Rotation {
	return collapse(r)
}

// Inverse returns the rotation that undoes r up to global phase.
func Inverse(r Rotation) Rotation {
	switch r.Class {
	case ClassU1:
		return U1(-r.Lambda)
	case ClassU2:
		return U2(-r.Lambda-math.Pi, -r.Phi+math.Pi)
	case ClassU3:
		return U3(-r.Theta, -r.Lambda, -r.Phi)
	default:
		return Nop()
	}
}

// Accumulator folds rotations in the order they act.
type Accumulator struct {
	acc   Rotation
	count int
}

// NewAccumulator starts from the identity.
func NewAccumulator() *Accumulator {
	return &Accumulator{acc: Nop()}
}

// Push applies next after everything pushed so far.
func (a *Accumulator) Push(next Rotation) error {
	r, err := Compose(next, a.acc)
	if err != nil {
		return err
	}
	a.acc = r
	a.count++
	return nil
}

// Result returns the canonical rotation of everything pushed.
func (a *Accumulator) Result() Rotation {
	return a.acc
}

// Len counts pushed rotations.
func (a *Accumulator) Len() int {
	return a.count
}

// Fold composes rotations given in the order they act.
func Fold(rs ...Rotation) (Rotation, error) {
	acc := NewAccumulator()
	for _, r := range rs {
		if err := acc.Push(r); err != nil {
			return Rotation{}, err
		}
	}
	return acc.Result(), nil
}
