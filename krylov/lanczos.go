package krylov

import (
	"math"
	"math/cmplx"
	"math/rand"
	"slices"

	"github.com/pkg/errors"

	"spinchain/mat"
)

const (
	// breakdownTol is the basis-vector norm below which the Krylov space is
	// considered exhausted.
	breakdownTol = 1e-12
	// symTol is the relative size of the imaginary part of a Lanczos
	// diagonal entry beyond which the operator is no longer behaving as
	// Hermitian.
	symTol = 1e-8
)

// Which selects the part of the spectrum an eigensolve targets.
type Which int

const (
	SmallestReal Which = iota
	LargestReal
	LargestMagnitude
)

// EigOptions are options for Eigsolve.
type EigOptions struct {
	nev     int
	which   Which
	tol     float64
	ncv     int
	maxIts  int
	vectors bool
}

// NewEigOptions returns the default eigensolver options.
func NewEigOptions() EigOptions {
	opt := EigOptions{}
	opt.nev = 1
	opt.which = SmallestReal
	opt.tol = 1e-9
	opt.maxIts = 300
	return opt
}

// NEV sets the minimum number of eigenpairs sought.
func (opt EigOptions) NEV(n int) EigOptions {
	opt.nev = n
	return opt
}

// SetWhich selects the part of the spectrum sought.
func (opt EigOptions) SetWhich(w Which) EigOptions {
	opt.which = w
	return opt
}

// Tol sets the residual tolerance.
func (opt EigOptions) Tol(tol float64) EigOptions {
	opt.tol = tol
	return opt
}

// NCV sets the Krylov subspace dimension.
func (opt EigOptions) NCV(ncv int) EigOptions {
	opt.ncv = ncv
	return opt
}

// MaxIterations sets the maximum number of restarts.
func (opt EigOptions) MaxIterations(i int) EigOptions {
	opt.maxIts = i
	return opt
}

// Vectors requests eigenvectors in the result.
func (opt EigOptions) Vectors(v bool) EigOptions {
	opt.vectors = v
	return opt
}

// MaxIts returns the configured iteration limit.
func (opt EigOptions) MaxIts() int { return opt.maxIts }

// Eigsolve computes eigenpairs of a Hermitian operator by restarted Lanczos
// iteration with locking of converged pairs.
//
// The start vector is drawn from a fixed-seed generator so that cooperating
// processes calling collectively take identical branches.
func Eigsolve(op Operator, options ...EigOptions) (Result, error) {
	opt := NewEigOptions()
	if len(options) > 0 {
		opt = options[0]
	}

	n := op.Dim()
	if n < 1 {
		return Result{}, errors.Errorf("dimension %d", n)
	}
	if opt.nev < 1 {
		return Result{}, errors.Errorf("nev %d", opt.nev)
	}
	nev := min(opt.nev, n)
	m := opt.ncv
	if m <= 0 {
		m = min(n, max(2*nev+8, 16))
	}
	m = min(max(m, nev+1), n)
	if opt.tol <= 0 {
		opt.tol = NewEigOptions().tol
	}

	rng := rand.New(rand.NewSource(1))
	locked := make([][]complex128, 0, nev)
	vals := make([]float64, 0, nev)
	start := randVector(rng, n)

	res := Result{}
	var reason Reason
Loop:
	for it := 0; it < opt.maxIts; it++ {
		res.Iterations = it + 1

		q, ok := deflate(start, locked, rng)
		if !ok {
			reason = DivergedBreakdown
			break
		}

		V := make([][]complex128, 0, m)
		V = append(V, q)
		alpha := make([]float64, 0, m)
		beta := make([]float64, 0, m)
		w := make([]complex128, n)
		happy := false
		for j := 0; j < m; j++ {
			op.MatVec(w, V[j])
			a := dot(V[j], w)
			if math.IsNaN(real(a)) || math.IsInf(real(a), 0) {
				reason = DivergedBreakdown
				break Loop
			}
			if math.Abs(imag(a)) > symTol*math.Max(1, cmplx.Abs(a)) {
				reason = DivergedSymmetryLost
				break Loop
			}
			alpha = append(alpha, real(a))

			axpy(-complex(alpha[j], 0), V[j], w)
			if j > 0 {
				axpy(-complex(beta[j-1], 0), V[j-1], w)
			}
			// Full reorthogonalization against locked pairs and the
			// current basis, in two passes.
			for iter := 0; iter < 2; iter++ {
				for _, u := range locked {
					axpy(-dot(u, w), u, w)
				}
				for _, u := range V {
					axpy(-dot(u, w), u, w)
				}
			}

			b := nrm2(w)
			beta = append(beta, b)
			if j == m-1 {
				break
			}
			if b < breakdownTol {
				happy = true
				break
			}
			next := make([]complex128, n)
			for i, wi := range w {
				next[i] = wi / complex(b, 0)
			}
			V = append(V, next)
		}

		k := len(alpha)
		tvals, tvecs, err := mat.EigSymTridiag(alpha, beta[:k-1])
		if err != nil {
			return Result{}, errors.Wrap(err, "")
		}
		bk := beta[k-1]
		if happy {
			bk = 0
		}

		var nextStart []complex128
		for _, i := range ritzOrder(tvals, opt.which) {
			resid := bk * math.Abs(tvecs[i][k-1])
			if resid > opt.tol*math.Max(math.Abs(tvals[i]), 1) {
				nextStart = ritzVector(V, tvecs[i])
				break
			}
			locked = append(locked, ritzVector(V, tvecs[i]))
			vals = append(vals, tvals[i])
		}

		if len(locked) >= nev || len(locked) >= n {
			reason = Converged
			break
		}
		if nextStart == nil {
			nextStart = randVector(rng, n)
		}
		start = nextStart
	}

	if reason == 0 {
		reason = DivergedIterations
	}
	res.Reason = reason
	res.NConv = len(locked)
	res.Values = vals
	if opt.vectors {
		res.Vectors = locked
	}
	return res, nil
}

func ritzOrder(vals []float64, which Which) []int {
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	switch which {
	case SmallestReal:
		// EigSymTridiag already returns ascending values.
	case LargestReal:
		slices.Reverse(order)
	case LargestMagnitude:
		slices.SortStableFunc(order, func(a, b int) int {
			switch {
			case math.Abs(vals[a]) > math.Abs(vals[b]):
				return -1
			case math.Abs(vals[a]) < math.Abs(vals[b]):
				return 1
			}
			return 0
		})
	}
	return order
}

func ritzVector(V [][]complex128, s []float64) []complex128 {
	y := make([]complex128, len(V[0]))
	for j := range V {
		axpy(complex(s[j], 0), V[j], y)
	}
	if b := nrm2(y); b > 0 {
		for i := range y {
			y[i] /= complex(b, 0)
		}
	}
	return y
}

// deflate returns a normalized copy of v with the locked directions projected
// out, retrying from random vectors when v lies entirely in their span.
func deflate(v []complex128, locked [][]complex128, rng *rand.Rand) ([]complex128, bool) {
	for try := 0; try < 4; try++ {
		q := make([]complex128, len(v))
		copy(q, v)
		for iter := 0; iter < 2; iter++ {
			for _, u := range locked {
				axpy(-dot(u, q), u, q)
			}
		}
		if b := nrm2(q); b > breakdownTol {
			for i := range q {
				q[i] /= complex(b, 0)
			}
			return q, true
		}
		v = randVector(rng, len(v))
	}
	return nil, false
}

func randVector(rng *rand.Rand, n int) []complex128 {
	v := make([]complex128, n)
	for i := range v {
		v[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	return v
}

func dot(x, y []complex128) complex128 {
	var s complex128
	for i, xi := range x {
		s += cmplx.Conj(xi) * y[i]
	}
	return s
}

func nrm2(x []complex128) float64 {
	var s float64
	for _, xi := range x {
		s += real(xi)*real(xi) + imag(xi)*imag(xi)
	}
	return math.Sqrt(s)
}

func axpy(a complex128, x, y []complex128) {
	for i, xi := range x {
		y[i] += a * xi
	}
}
