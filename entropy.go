package spinchain

import (
	"math"

	"github.com/pkg/errors"

	"spinchain/mat"
)

// rankTol is the eigenvalue cutoff below which a density matrix eigenvalue
// counts as zero when measuring rank.
const rankTol = 1e-10

// RenyiMethod selects how RenyiEntropy evaluates the trace of rho^alpha.
type RenyiMethod string

const (
	// RenyiEigsolve diagonalizes the density matrix. Works for any alpha.
	RenyiEigsolve RenyiMethod = "eigsolve"
	// RenyiMatrixPower multiplies the density matrix into itself. Requires
	// integer alpha.
	RenyiMatrixPower RenyiMethod = "matrix_power"
)

// EntanglementEntropy computes the Von Neumann entropy of the spins listed in
// keep, after tracing out the rest of the chain.
//
// Like ReducedDensityMatrix, the value is computed on the distinguished
// process only, except that an empty keep yields 0 everywhere. All processes
// must call it together.
func EntanglementEntropy(rt *Runtime, state *State, keep []int) (float64, bool, error) {
	dm, ok, err := ReducedDensityMatrix(rt, state, keep)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	s, err := DMEntropy(dm)
	if err != nil {
		return 0, false, err
	}
	return s, true, nil
}

// DMEntropy computes the Von Neumann entropy -Tr(rho log rho) of a density
// matrix.
func DMEntropy(dm *mat.Dense) (float64, error) {
	w, err := mat.Eigvalsh(dm)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	var s float64
	for _, v := range w {
		// Zero eigenvalues contribute nothing; negative ones are numerical
		// noise around zero.
		if v > 0 {
			s -= v * math.Log(v)
		}
	}
	return s, nil
}

// RenyiEntropy computes the Renyi entropy of index alpha of the spins listed
// in keep, after tracing out the rest of the chain. alpha = 1 gives the Von
// Neumann entropy and math.Inf(1) the min-entropy.
//
// Same collective semantics as EntanglementEntropy.
func RenyiEntropy(rt *Runtime, state *State, keep []int, alpha float64, method RenyiMethod) (float64, bool, error) {
	dm, ok, err := ReducedDensityMatrix(rt, state, keep)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	s, err := DMRenyiEntropy(dm, alpha, method)
	if err != nil {
		return 0, false, err
	}
	return s, true, nil
}

// DMRenyiEntropy computes the Renyi entropy log(Tr(rho^alpha))/(1-alpha) of a
// density matrix.
func DMRenyiEntropy(dm *mat.Dense, alpha float64, method RenyiMethod) (float64, error) {
	if alpha < 0 {
		return 0, errors.Wrapf(ErrValidation, "alpha %f", alpha)
	}

	switch {
	case alpha == 0:
		// Hartley entropy, the log of the rank.
		w, err := mat.Eigvalsh(dm)
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		rank := 0
		for _, v := range w {
			if v > rankTol {
				rank++
			}
		}
		return math.Log(float64(rank)), nil
	case alpha == 1:
		return DMEntropy(dm)
	case math.IsInf(alpha, 1):
		// Min-entropy, minus the log of the largest eigenvalue.
		w, err := mat.Eigvalsh(dm)
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		return -math.Log(w[len(w)-1]), nil
	}

	var trace float64
	switch method {
	case RenyiEigsolve:
		w, err := mat.Eigvalsh(dm)
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		// Small negative eigenvalues are round-off noise, and a fractional
		// power of a negative number is undefined, so drop them.
		for _, v := range w {
			if v > 0 {
				trace += math.Pow(v, alpha)
			}
		}
	case RenyiMatrixPower:
		n := int(alpha)
		if float64(n) != alpha {
			return 0, errors.Wrapf(ErrUnsupportedMethod,
				"matrix_power requires an integer alpha, got %f", alpha)
		}
		p, err := dm.MatrixPower(n)
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		trace = real(p.Trace())
	default:
		return 0, errors.Wrapf(ErrUnsupportedMethod, "method %q", method)
	}
	return math.Log(trace) / (1 - alpha), nil
}
