package krylov

import (
	"math"

	"github.com/pkg/errors"
)

// Tstep computes the length of a sub-step in an Expokit-style matrix
// exponential solve, from the asymptotic error bound of a Krylov subspace of
// dimension ncv for an operator of norm nrm.
func Tstep(ncv int, nrm, tol float64) (float64, error) {
	if ncv <= 0 {
		return 0, errors.Errorf("ncv %d", ncv)
	}
	if nrm <= 0 || tol <= 0 {
		return 0, errors.Errorf("nrm %f tol %g", nrm, tol)
	}

	k := float64(ncv)
	f := math.Pow((k+1)/2.72, k+1) * math.Sqrt(2*math.Pi*(k+1))
	t := math.Pow((1/nrm)*(f*tol)/(4.0*nrm), 1/k)
	// Round up to two significant digits.
	s := math.Pow(10, math.Floor(math.Log10(t))-1)
	return math.Ceil(t/s) * s, nil
}

// EstimateComputeTime estimates the cost of an Expokit exponential solve for
// evolution time t, in units of matrix multiplies.
func EstimateComputeTime(t float64, ncv int, nrm, tol float64) (float64, error) {
	if t <= 0 {
		return 0, errors.Errorf("t %f", t)
	}
	tstep, err := Tstep(ncv, nrm, tol)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	iters := math.Ceil(t / tstep)
	return float64(ncv) * iters, nil
}
