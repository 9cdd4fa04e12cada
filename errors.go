package spinchain

import (
	"fmt"

	"github.com/pkg/errors"

	"spinchain/krylov"
)

var (
	// ErrIncompatibleSubspace reports an operator/state/subspace mismatch,
	// detected before any solver call.
	ErrIncompatibleSubspace = errors.New("incompatible subspace")

	// ErrConfiguration reports a numeric mode unsupported by the current
	// runtime configuration.
	ErrConfiguration = errors.New("unsupported configuration")

	// ErrShellShiftInvert reports a shift-invert solve requested on a shell
	// operator. Shift-invert factors the operator, which is impossible
	// without an explicit matrix.
	ErrShellShiftInvert = errors.New("shift-invert not supported for shell operators")

	// ErrConvergence reports a solver that ran but did not reach a
	// satisfactory result.
	ErrConvergence = errors.New("solver failed to converge")

	// ErrMaxIterations is the iteration-limit-exceeded case of
	// ErrConvergence.
	ErrMaxIterations = fmt.Errorf("maximum iterations reached: %w", ErrConvergence)

	// ErrValidation reports a malformed argument, such as an out-of-order
	// keep index set.
	ErrValidation = errors.New("invalid argument")

	// ErrProductBasis reports a reduced-density-matrix request on a
	// subspace whose basis does not factor spin by spin.
	ErrProductBasis = errors.New("subspace does not have a product state basis")

	// ErrUnsupportedMethod reports an invalid computation method name, or a
	// method applied to arguments it cannot handle.
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// ConvergenceError carries the outcome of a failed solve: the backend reason,
// how many quantities converged versus how many were requested, and the
// iteration limit when that limit was the cause.
type ConvergenceError struct {
	Reason    krylov.Reason
	NConv     int
	Requested int
	// MaxIts is the configured iteration limit; meaningful when Reason is
	// DivergedIterations, so the caller knows what to raise.
	MaxIts int
}

func (e *ConvergenceError) Error() string {
	switch {
	case e.Reason == krylov.DivergedIterations:
		return fmt.Sprintf("solver reached maximum number of iterations without converging. "+
			"try increasing the limit with the MaxIterations option (current value: %d)", e.MaxIts)
	case e.NConv < e.Requested:
		return fmt.Sprintf("solver converged %d of %d requested eigenpairs", e.NConv, e.Requested)
	default:
		return fmt.Sprintf("solver failed to converge with reason %s", e.Reason)
	}
}

func (e *ConvergenceError) Unwrap() error {
	if e.Reason == krylov.DivergedIterations {
		return ErrMaxIterations
	}
	return ErrConvergence
}

// classifyConvergence turns a backend result into the error taxonomy. A
// positive reason with a satisfied converged count is the only success path.
// The classification depends only on globally agreed reason codes and counts,
// so every cooperating process takes the same branch.
func classifyConvergence(res krylov.Result, requested, maxIts int) error {
	if res.Reason > 0 && res.NConv >= requested {
		return nil
	}
	return &ConvergenceError{Reason: res.Reason, NConv: res.NConv, Requested: requested, MaxIts: maxIts}
}
