package krylov

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"spinchain/mat"
)

// Algo selects the matrix exponential algorithm.
type Algo int

const (
	// AlgoExpokit advances with a fixed sub-step length derived from the
	// Krylov error bound (see Tstep).
	AlgoExpokit Algo = iota
	// AlgoKrylov adapts the sub-step length to a local error estimate.
	AlgoKrylov
)

// ExpOptions are options for Expv.
type ExpOptions struct {
	tol    float64
	ncv    int
	maxIts int
	algo   Algo
	norm   float64
}

// NewExpOptions returns the default matrix exponential options.
func NewExpOptions() ExpOptions {
	opt := ExpOptions{}
	opt.tol = 1e-7
	opt.ncv = 30
	opt.maxIts = 10000
	opt.algo = AlgoExpokit
	return opt
}

// Tol sets the requested accuracy. Error estimation is difficult for Krylov
// exponentiation; the error is merely kept somewhat close to tol.
func (opt ExpOptions) Tol(tol float64) ExpOptions {
	opt.tol = tol
	return opt
}

// NCV sets the Krylov subspace dimension. Larger values reduce the number of
// sub-steps but cost memory and matrix multiplies linearly.
func (opt ExpOptions) NCV(ncv int) ExpOptions {
	opt.ncv = ncv
	return opt
}

// MaxIterations sets the maximum number of sub-steps.
func (opt ExpOptions) MaxIterations(i int) ExpOptions {
	opt.maxIts = i
	return opt
}

// SetAlgo selects the exponentiation algorithm.
func (opt ExpOptions) SetAlgo(a Algo) ExpOptions {
	opt.algo = a
	return opt
}

// Norm supplies an operator norm estimate. When zero, the norm is estimated
// with a few power iterations.
func (opt ExpOptions) Norm(nrm float64) ExpOptions {
	opt.norm = nrm
	return opt
}

// MaxIts returns the configured iteration limit.
func (opt ExpOptions) MaxIts() int { return opt.maxIts }

// Expv computes dst = exp(scale*A) @ src for a Hermitian operator A, by
// repeated projection onto Krylov subspaces.
func Expv(dst []complex128, op Operator, scale complex128, src []complex128, options ...ExpOptions) (Result, error) {
	opt := NewExpOptions()
	if len(options) > 0 {
		opt = options[0]
	}

	n := op.Dim()
	if len(dst) != n || len(src) != n {
		return Result{}, errors.Errorf("%d %d %d", len(dst), len(src), n)
	}
	if opt.tol <= 0 {
		opt.tol = NewExpOptions().tol
	}
	m := opt.ncv
	if m <= 1 {
		m = NewExpOptions().ncv
	}
	m = min(m, n)

	total := cmplx.Abs(scale)
	if total == 0 {
		copy(dst, src)
		return Result{Reason: Converged}, nil
	}
	direction := scale / complex(total, 0)

	nrm := opt.norm
	if nrm <= 0 {
		nrm = estimateNorm(op)
	}
	if nrm == 0 {
		// Zero operator: the exponential is the identity.
		copy(dst, src)
		return Result{Reason: Converged}, nil
	}

	tstep, err := Tstep(m, nrm, opt.tol)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}

	w := make([]complex128, n)
	copy(w, src)
	res := Result{}
	var done float64
	for done < total*(1-1e-14) {
		if res.Iterations >= opt.maxIts {
			res.Reason = DivergedIterations
			return res, nil
		}
		res.Iterations++

		tau := math.Min(tstep, total-done)
		next, errLoc, err := expvStep(op, w, direction*complex(tau, 0), m)
		if err != nil {
			return Result{}, errors.Wrap(err, "")
		}
		if !allFinite(next) {
			res.Reason = DivergedBreakdown
			return res, nil
		}

		if opt.algo == AlgoKrylov {
			// Shrink the sub-step while the local error estimate
			// overshoots, grow it back when comfortably below.
			ref := opt.tol * math.Max(nrm2(w), 1)
			if errLoc > ref && tau > total*1e-8 {
				tstep = tau / 2
				continue
			}
			if errLoc < 0.01*ref {
				tstep *= 2
			}
		}

		w = next
		done += tau
	}

	copy(dst, w)
	res.Reason = Converged
	return res, nil
}

// expvStep projects w onto an m-dimensional Krylov subspace and applies the
// exponential of the projected operator.
func expvStep(op Operator, w []complex128, subscale complex128, m int) ([]complex128, float64, error) {
	n := len(w)
	beta := nrm2(w)
	if beta == 0 {
		return make([]complex128, n), 0, nil
	}

	V := make([][]complex128, 0, m)
	v0 := make([]complex128, n)
	for i, wi := range w {
		v0[i] = wi / complex(beta, 0)
	}
	V = append(V, v0)

	alpha := make([]float64, 0, m)
	offd := make([]float64, 0, m)
	u := make([]complex128, n)
	var residNorm float64
	for j := 0; j < m; j++ {
		op.MatVec(u, V[j])
		a := real(dot(V[j], u))
		alpha = append(alpha, a)

		axpy(-complex(a, 0), V[j], u)
		if j > 0 {
			axpy(-complex(offd[j-1], 0), V[j-1], u)
		}
		for iter := 0; iter < 2; iter++ {
			for _, q := range V {
				axpy(-dot(q, u), q, u)
			}
		}

		b := nrm2(u)
		if j == m-1 {
			residNorm = b
			break
		}
		if b < breakdownTol {
			// Happy breakdown: the Krylov space is invariant and the
			// projected exponential is exact.
			residNorm = 0
			break
		}
		offd = append(offd, b)
		next := make([]complex128, n)
		for i, ui := range u {
			next[i] = ui / complex(b, 0)
		}
		V = append(V, next)
	}

	k := len(alpha)
	tvals, tvecs, err := mat.EigSymTridiag(alpha, offd[:k-1])
	if err != nil {
		return nil, 0, errors.Wrap(err, "")
	}

	// y = Q exp(subscale*D) Q^T e1, in the eigenbasis of the projection.
	y := make([]complex128, k)
	for i := 0; i < k; i++ {
		e := cmplx.Exp(subscale*complex(tvals[i], 0)) * complex(tvecs[i][0], 0)
		for j := 0; j < k; j++ {
			y[j] += e * complex(tvecs[i][j], 0)
		}
	}

	next := make([]complex128, n)
	for j := 0; j < k; j++ {
		axpy(complex(beta, 0)*y[j], V[j], next)
	}
	errLoc := beta * residNorm * cmplx.Abs(y[k-1])
	return next, errLoc, nil
}

// estimateNorm estimates the spectral norm with a few power iterations.
func estimateNorm(op Operator) float64 {
	n := op.Dim()
	v := make([]complex128, n)
	for i := range v {
		// A fixed, dense start vector keeps the estimate deterministic.
		v[i] = complex(1/math.Sqrt(float64(n)), 0)
	}
	w := make([]complex128, n)

	var nrm float64
	for iter := 0; iter < 5; iter++ {
		op.MatVec(w, v)
		nrm = nrm2(w)
		if nrm == 0 {
			return 0
		}
		for i, wi := range w {
			v[i] = wi / complex(nrm, 0)
		}
	}
	return nrm
}

func allFinite(v []complex128) bool {
	for _, x := range v {
		if cmplx.IsNaN(x) || cmplx.IsInf(x) {
			return false
		}
	}
	return true
}
