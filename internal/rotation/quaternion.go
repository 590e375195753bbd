package rotation

import "math"

// Quaternion is a unit quaternion w + xi + yj + zk standing for the SU(2)
// element w·I − i(x·X + y·Y + z·Z). The Hamilton product matches operator
// composition order.
type Quaternion struct {
	W, X, Y, Z float64
}

// Axis names a rotation axis.
type Axis byte

const (
	AxisX Axis = 'x'
	AxisY Axis = 'y'
	AxisZ Axis = 'z'
)

// AxisRotation returns the quaternion of a rotation by angle about axis.
func AxisRotation(axis Axis, angle float64) Quaternion {
	c, s := math.Cos(angle/2), math.Sin(angle/2)
	switch axis {
	case AxisX:
		return Quaternion{W: c, X: s}
	case AxisY:
		return Quaternion{W: c, Y: s}
	default:
		return Quaternion{W: c, Z: s}
	}
}

// FromEuler multiplies three axis rotations left to right, so the last
// axis acts first.
func FromEuler(axes [3]Axis, angles [3]float64) Quaternion {
	q := AxisRotation(axes[0], angles[0])
	q = q.Mul(AxisRotation(axes[1], angles[1]))
	return q.Mul(AxisRotation(axes[2], angles[2]))
}

// Mul returns the Hamilton product q·o.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Dot returns the four-dimensional inner product.
func (q Quaternion) Dot(o Quaternion) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

// Norm returns the Euclidean norm.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.Dot(q))
}

// Normalize scales q to unit norm.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n == 0 {
		return Quaternion{W: 1}
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// ZYZ returns (θ, φ, λ) with q = qz(φ)·qy(θ)·qz(λ) up to sign, θ ∈ [0, π].
//
// With c = cos(θ/2), s = sin(θ/2):
//
//	w = c·cos((φ+λ)/2)   z = c·sin((φ+λ)/2)
//	y = s·cos((φ−λ)/2)   x = −s·sin((φ−λ)/2)
func (q Quaternion) ZYZ() (theta, phi, lambda float64) {
	q = q.Normalize()
	sum := math.Atan2(q.Z, q.W)
	diff := math.Atan2(-q.X, q.Y)
	theta = 2 * math.Atan2(math.Hypot(q.X, q.Y), math.Hypot(q.W, q.Z))
	return theta, sum + diff, sum - diff
}
