package mat

import (
	"math/cmplx"

	"github.com/pkg/errors"
)

// Dense is a dense complex matrix in row-major order.
type Dense struct {
	rows int
	cols int
	data []complex128
}

func NewDense(rows, cols int) *Dense {
	return &Dense{rows: rows, cols: cols, data: make([]complex128, rows*cols)}
}

// DenseFrom builds a Dense from row slices.
func DenseFrom(rows [][]complex128) *Dense {
	d := NewDense(len(rows), len(rows[0]))
	for i, row := range rows {
		copy(d.data[i*d.cols:(i+1)*d.cols], row)
	}
	return d
}

func (d *Dense) Rows() int { return d.rows }
func (d *Dense) Cols() int { return d.cols }

func (d *Dense) At(i, j int) complex128 {
	return d.data[i*d.cols+j]
}

func (d *Dense) Set(i, j int, v complex128) {
	d.data[i*d.cols+j] = v
}

func (d *Dense) Copy() *Dense {
	c := NewDense(d.rows, d.cols)
	copy(c.data, d.data)
	return c
}

// Mul returns a @ b.
func (a *Dense) Mul(b *Dense) *Dense {
	if a.cols != b.rows {
		panic("wrong dimensions")
	}
	c := NewDense(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			aik := a.data[i*a.cols+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				c.data[i*c.cols+j] += aik * b.data[k*b.cols+j]
			}
		}
	}
	return c
}

func (d *Dense) Trace() complex128 {
	if d.rows != d.cols {
		panic("not square")
	}
	var t complex128
	for i := 0; i < d.rows; i++ {
		t += d.data[i*d.cols+i]
	}
	return t
}

// MatrixPower returns d raised to the non-negative integer power n by binary
// exponentiation.
func (d *Dense) MatrixPower(n int) (*Dense, error) {
	if d.rows != d.cols {
		return nil, errors.Errorf("not square %d %d", d.rows, d.cols)
	}
	if n < 0 {
		return nil, errors.Errorf("negative power %d", n)
	}

	p := NewDense(d.rows, d.cols)
	for i := 0; i < d.rows; i++ {
		p.Set(i, i, 1)
	}
	sq := d.Copy()
	for n > 0 {
		if n&1 == 1 {
			p = p.Mul(sq)
		}
		n >>= 1
		if n > 0 {
			sq = sq.Mul(sq)
		}
	}
	return p, nil
}

// LU is the LU factorization with partial pivoting of a square complex matrix,
// used by the shift-invert eigensolver path.
type LU struct {
	n    int
	lu   []complex128
	perm []int
}

func FactorizeLU(a *Dense) (*LU, error) {
	if a.rows != a.cols {
		return nil, errors.Errorf("not square %d %d", a.rows, a.cols)
	}
	n := a.rows
	f := &LU{n: n, lu: make([]complex128, n*n), perm: make([]int, n)}
	copy(f.lu, a.data)
	for i := range f.perm {
		f.perm[i] = i
	}

	for k := 0; k < n; k++ {
		// Pivot on the largest remaining entry in column k.
		p, pAbs := k, cabs(f.lu[k*n+k])
		for i := k + 1; i < n; i++ {
			if v := cabs(f.lu[i*n+k]); v > pAbs {
				p, pAbs = i, v
			}
		}
		if pAbs == 0 {
			return nil, errors.Errorf("singular at column %d", k)
		}
		if p != k {
			for j := 0; j < n; j++ {
				f.lu[k*n+j], f.lu[p*n+j] = f.lu[p*n+j], f.lu[k*n+j]
			}
			f.perm[k], f.perm[p] = f.perm[p], f.perm[k]
		}

		piv := f.lu[k*n+k]
		for i := k + 1; i < n; i++ {
			m := f.lu[i*n+k] / piv
			f.lu[i*n+k] = m
			for j := k + 1; j < n; j++ {
				f.lu[i*n+j] -= m * f.lu[k*n+j]
			}
		}
	}
	return f, nil
}

// Solve computes dst = A^{-1} b.
func (f *LU) Solve(dst, b []complex128) {
	n := f.n
	if len(dst) != n || len(b) != n {
		panic("wrong dimensions")
	}

	// Forward substitution on the permuted right hand side.
	for i := 0; i < n; i++ {
		v := b[f.perm[i]]
		for j := 0; j < i; j++ {
			v -= f.lu[i*n+j] * dst[j]
		}
		dst[i] = v
	}
	// Back substitution.
	for i := n - 1; i >= 0; i-- {
		v := dst[i]
		for j := i + 1; j < n; j++ {
			v -= f.lu[i*n+j] * dst[j]
		}
		dst[i] = v / f.lu[i*n+i]
	}
}

func cabs(v complex128) float64 {
	return cmplx.Abs(v)
}
