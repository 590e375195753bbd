package rotation

import (
	"fmt"
	"math"
)

// Tolerances.
const (
	// ChopTolerance is the magnitude below which an angle becomes exactly 0.
	ChopTolerance = 1e-15

	// VerifyTolerance bounds 1 − |⟨q_yzy, q_zyz⟩| in the self-check.
	VerifyTolerance = 1e-9

	// CongruenceTolerance decides θ ≡ α (mod 2π) when collapsing.
	CongruenceTolerance = 1e-12
)

// Class is the canonical shape of a rotation.
type Class int

const (
	// ClassNop is the identity up to global phase.
	ClassNop Class = iota
	// ClassU1 is a pure Z rotation: one free angle λ.
	ClassU1
	// ClassU2 is the restricted form with θ = π/2: free angles φ, λ.
	ClassU2
	// ClassU3 is a general rotation.
	ClassU3
)

// String returns the string representation of the Class.
func (c Class) String() string {
	switch c {
	case ClassNop:
		return "nop"
	case ClassU1:
		return "u1"
	case ClassU2:
		return "u2"
	case ClassU3:
		return "u3"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Euler is a Z-Y-Z triple: U(θ, φ, λ) = Rz(φ)·Ry(θ)·Rz(λ) up to global phase.
type Euler struct {
	Theta  float64 `json:"theta"`
	Phi    float64 `json:"phi"`
	Lambda float64 `json:"lambda"`
}

// Quaternion returns the SU(2) quaternion of the triple.
func (e Euler) Quaternion() Quaternion {
	return FromEuler([3]Axis{AxisZ, AxisY, AxisZ}, [3]float64{e.Phi, e.Theta, e.Lambda})
}

// Rotation is an Euler triple together with its canonical class.
// Only the angles the class uses are meaningful.
type Rotation struct {
	Class Class
	Euler
}

// Nop is the identity rotation.
func Nop() Rotation { return Rotation{Class: ClassNop} }

// U1 is a pure Z rotation by lambda.
func U1(lambda float64) Rotation {
	return Rotation{Class: ClassU1, Euler: Euler{Lambda: lambda}}
}

// U2 is the θ = π/2 rotation.
func U2(phi, lambda float64) Rotation {
	return Rotation{Class: ClassU2, Euler: Euler{Theta: math.Pi / 2, Phi: phi, Lambda: lambda}}
}

// U3 is a general rotation.
func U3(theta, phi, lambda float64) Rotation {
	return Rotation{Class: ClassU3, Euler: Euler{Theta: theta, Phi: phi, Lambda: lambda}}
}

// String formats the rotation as class(angles).
func (r Rotation) String() string {
	switch r.Class {
	case ClassNop:
		return "nop"
	case ClassU1:
		return fmt.Sprintf("u1(%g)", r.Lambda)
	case ClassU2:
		return fmt.Sprintf("u2(%g,%g)", r.Phi, r.Lambda)
	default:
		return fmt.Sprintf("u3(%g,%g,%g)", r.Theta, r.Phi, r.Lambda)
	}
}

// Angles returns the parameters the class carries, in kind order.
func (r Rotation) Angles() []float64 {
	switch r.Class {
	case ClassU1:
		return []float64{r.Lambda}
	case ClassU2:
		return []float64{r.Phi, r.Lambda}
	case ClassU3:
		return []float64{r.Theta, r.Phi, r.Lambda}
	default:
		return nil
	}
}

// chop zeroes angles below ChopTolerance.
func chop(v float64) float64 {
	if math.Abs(v) < ChopTolerance {
		return 0
	}
	return v
}

// congruent reports v ≡ target (mod 2π) within CongruenceTolerance.
func congruent(v, target float64) bool {
	d := math.Mod(v-target, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d < CongruenceTolerance || 2*math.Pi-d < CongruenceTolerance
}

// wrap maps v into (−π, π].
func wrap(v float64) float64 {
	v = math.Mod(v, 2*math.Pi)
	if v <= -math.Pi {
		v += 2 * math.Pi
	} else if v > math.Pi {
		v -= 2 * math.Pi
	}
	return v
}

// wrapPositive maps v into [0, 2π).
func wrapPositive(v float64) float64 {
	v = math.Mod(v, 2*math.Pi)
	if v < 0 {
		v += 2 * math.Pi
	}
	if 2*math.Pi-v < CongruenceTolerance {
		v = 0
	}
	return v
}

// YZYToZYZ re-expresses Ry(θ1)·Rz(ξ)·Ry(θ2) as Rz(φ)·Ry(θ)·Rz(λ) and
// verifies the conversion by rebuilding the quaternion.
func YZYToZYZ(theta1, xi, theta2 float64) (Euler, error) {
	in := FromEuler([3]Axis{AxisY, AxisZ, AxisY}, [3]float64{theta1, xi, theta2})
	theta, phi, lambda := in.ZYZ()
	out := Euler{Theta: theta, Phi: phi, Lambda: lambda}
	derived := out.Quaternion()
	if overlap := math.Abs(in.Dot(derived)); overlap < 1-VerifyTolerance {
		return Euler{}, &AlgebraVerificationError{Input: in, Derived: derived, Overlap: overlap}
	}
	return out, nil
}
