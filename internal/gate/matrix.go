package gate

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Matrix is a dense square complex matrix in row-major order.
type Matrix struct {
	n    int
	data []complex128
}

// NewMatrix returns the n×n zero matrix.
func NewMatrix(n int) Matrix {
	return Matrix{n: n, data: make([]complex128, n*n)}
}

// Identity returns the n×n identity.
func Identity(n int) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// FromRows builds a matrix from equal-length rows.
func FromRows(rows ...[]complex128) Matrix {
	n := len(rows)
	m := NewMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			panic(fmt.Sprintf("gate: row %d has %d columns, want %d", i, len(row), n))
		}
		copy(m.data[i*n:], row)
	}
	return m
}

// Diag builds a diagonal matrix.
func Diag(values ...complex128) Matrix {
	m := NewMatrix(len(values))
	for i, v := range values {
		m.data[i*m.n+i] = v
	}
	return m
}

// Dim returns the matrix dimension.
func (m Matrix) Dim() int { return m.n }

// At returns the element at row i, column j.
func (m Matrix) At(i, j int) complex128 { return m.data[i*m.n+j] }

// NumQubits returns log2 of the dimension.
func (m Matrix) NumQubits() int {
	q := 0
	for d := m.n; d > 1; d >>= 1 {
		q++
	}
	return q
}

// Mul returns m·o.
func (m Matrix) Mul(o Matrix) Matrix {
	if m.n != o.n {
		panic(fmt.Sprintf("gate: dimension mismatch %d vs %d", m.n, o.n))
	}
	n := m.n
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			a := m.data[i*n+k]
			if a == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.data[i*n+j] += a * o.data[k*n+j]
			}
		}
	}
	return out
}

// Adjoint returns the conjugate transpose.
func (m Matrix) Adjoint() Matrix {
	out := NewMatrix(m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			out.data[j*m.n+i] = cmplx.Conj(m.data[i*m.n+j])
		}
	}
	return out
}

// Kron returns the tensor product m⊗o.
func (m Matrix) Kron(o Matrix) Matrix {
	n := m.n * o.n
	out := NewMatrix(n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			a := m.data[i*m.n+j]
			if a == 0 {
				continue
			}
			for k := 0; k < o.n; k++ {
				for l := 0; l < o.n; l++ {
					out.data[(i*o.n+k)*n+j*o.n+l] = a * o.data[k*o.n+l]
				}
			}
		}
	}
	return out
}

// ApproxEqual reports element-wise equality within tol.
func (m Matrix) ApproxEqual(o Matrix, tol float64) bool {
	if m.n != o.n {
		return false
	}
	for i := range m.data {
		if cmplx.Abs(m.data[i]-o.data[i]) > tol {
			return false
		}
	}
	return true
}

// EqualUpToPhase reports whether o = e^{iα}·m for some α, within tol.
func (m Matrix) EqualUpToPhase(o Matrix, tol float64) bool {
	if m.n != o.n {
		return false
	}
	pivot, best := 0, 0.0
	for i, v := range m.data {
		if a := cmplx.Abs(v); a > best {
			pivot, best = i, a
		}
	}
	if best < tol {
		return o.ApproxEqual(m, tol)
	}
	phase := o.data[pivot] / m.data[pivot]
	if math.Abs(cmplx.Abs(phase)-1) > tol {
		return false
	}
	for i := range m.data {
		if cmplx.Abs(o.data[i]-phase*m.data[i]) > tol {
			return false
		}
	}
	return true
}

// IsDiagonal reports whether every off-diagonal element is within tol of 0.
func (m Matrix) IsDiagonal(tol float64) bool {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i != j && cmplx.Abs(m.data[i*m.n+j]) > tol {
				return false
			}
		}
	}
	return true
}

// Commutes reports whether m·o = o·m within tol.
func (m Matrix) Commutes(o Matrix, tol float64) bool {
	return m.Mul(o).ApproxEqual(o.Mul(m), tol)
}

// Embed lifts an operator on len(positions) qubits into an n-qubit space.
// positions[i] is the big-endian index of the operator's i-th qubit.
func Embed(m Matrix, positions []int, n int) Matrix {
	k := len(positions)
	if m.n != 1<<k {
		panic(fmt.Sprintf("gate: %d-qubit operator embedded at %d positions", m.NumQubits(), k))
	}
	dim := 1 << n
	var mask int
	for _, p := range positions {
		mask |= 1 << (n - 1 - p)
	}
	sub := func(x int) int {
		s := 0
		for i, p := range positions {
			s |= ((x >> (n - 1 - p)) & 1) << (k - 1 - i)
		}
		return s
	}
	out := NewMatrix(dim)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			if r&^mask != c&^mask {
				continue
			}
			out.data[r*dim+c] = m.data[sub(r)*m.n+sub(c)]
		}
	}
	return out
}
