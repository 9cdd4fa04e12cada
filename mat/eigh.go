package mat

import (
	"github.com/pkg/errors"
	gmat "gonum.org/v1/gonum/mat"
)

// Eigvalsh returns the eigenvalues of a Hermitian matrix in ascending order.
//
// The complex problem is solved through the real symmetric 2n x 2n embedding
// [[X, -Y], [Y, X]] of A = X + iY, whose spectrum is that of A with every
// eigenvalue doubled.
func Eigvalsh(d *Dense) ([]float64, error) {
	if d.rows != d.cols {
		return nil, errors.Errorf("not square %d %d", d.rows, d.cols)
	}
	n := d.rows

	b := gmat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := real(d.At(i, j)), imag(d.At(i, j))
			b.SetSym(i, j, x)
			b.SetSym(n+i, n+j, x)
			// The upper triangle of the antisymmetric block.
			b.SetSym(i, n+j, -y)
			if i != j {
				b.SetSym(j, n+i, y)
			}
		}
	}

	var eig gmat.EigenSym
	if ok := eig.Factorize(b, false); !ok {
		return nil, errors.Errorf("factorization failed")
	}
	doubled := eig.Values(nil)

	// Ascending order is preserved when dropping the duplicates.
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = doubled[2*i]
	}
	return vals, nil
}

// EigSymTridiag returns the eigenvalues in ascending order and the
// corresponding eigenvectors of the symmetric tridiagonal matrix with diagonal
// alpha and off-diagonal beta.
func EigSymTridiag(alpha, beta []float64) ([]float64, [][]float64, error) {
	n := len(alpha)
	if len(beta) != n-1 {
		return nil, nil, errors.Errorf("%d %d", len(alpha), len(beta))
	}

	t := gmat.NewSymDense(n, nil)
	for i, a := range alpha {
		t.SetSym(i, i, a)
	}
	for i, b := range beta {
		t.SetSym(i, i+1, b)
	}

	var eig gmat.EigenSym
	if ok := eig.Factorize(t, true); !ok {
		return nil, nil, errors.Errorf("factorization failed")
	}
	vals := eig.Values(nil)
	var ev gmat.Dense
	eig.VectorsTo(&ev)

	vecs := make([][]float64, n)
	for i := range vecs {
		vecs[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			vecs[i][j] = ev.At(j, i)
		}
	}
	return vals, vecs, nil
}
