// Package krylov implements the iterative solvers the spinchain drivers
// orchestrate: a restarted Lanczos eigensolver for Hermitian operators and a
// Krylov approximation of the matrix exponential acting on a vector.
//
// Solvers report their outcome as a Result carrying a signed Reason code
// instead of returning an error, so that callers running collectively can
// branch on globally agreed values.
package krylov

// Operator is a Hermitian linear map. MatVec must not modify src.
type Operator interface {
	Dim() int
	MatVec(dst, src []complex128)
}

// Reason classifies the outcome of a solve. Positive values mean success.
type Reason int

const (
	Converged Reason = 1

	DivergedIterations   Reason = -1
	DivergedBreakdown    Reason = -2
	DivergedSymmetryLost Reason = -3
	DivergedOther        Reason = -4
)

func (r Reason) String() string {
	switch r {
	case Converged:
		return "converged"
	case DivergedIterations:
		return "diverged_iterations"
	case DivergedBreakdown:
		return "diverged_breakdown"
	case DivergedSymmetryLost:
		return "diverged_symmetry_lost"
	default:
		return "diverged_other"
	}
}

// Result is the outcome of a solve.
// Values and Vectors are in the order the solver converged them, which is not
// necessarily sorted by value.
type Result struct {
	Reason     Reason
	Iterations int
	// NConv is the number of converged eigenpairs. It may exceed the
	// requested count if extra pairs happened to converge.
	NConv   int
	Values  []float64
	Vectors [][]complex128
}
