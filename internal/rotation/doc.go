// Package rotation implements closed-form composition of single-qubit
// rotations in Z-Y-Z Euler form.
//
// Two triples compose by rewriting the inner Ry·Rz·Ry sandwich as a unit
// quaternion and reading it back as Rz·Ry·Rz. Every conversion is checked by
// rebuilding the quaternion; a failed check is an AlgebraVerificationError.
//
// Results are canonicalized into the smallest class that holds them:
//
//	θ ≡ 0       → u1, and u1 with λ ≡ 0 → nop
//	θ ≡ ±π/2    → u2
//	otherwise   → u3
package rotation
