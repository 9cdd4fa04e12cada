package spinchain

import (
	"github.com/pkg/errors"

	"spinchain/krylov"
)

// EvolveOptions are options for Evolve. Zero values leave the corresponding
// solver parameter at its default.
type EvolveOptions struct {
	result  *State
	tol     float64
	ncv     int
	algo    krylov.Algo
	algoSet bool
	maxIts  int
}

// NewEvolveOptions returns the default evolution options.
func NewEvolveOptions() EvolveOptions {
	return EvolveOptions{}
}

// Result sets the state the solve writes into. Passing a result avoids
// reallocating distributed memory when evolving repeatedly; the buffer stays
// owned by the caller and is overwritten.
func (opt EvolveOptions) Result(result *State) EvolveOptions {
	opt.result = result
	return opt
}

// Tol sets the requested accuracy of the evolution.
func (opt EvolveOptions) Tol(tol float64) EvolveOptions {
	opt.tol = tol
	return opt
}

// NCV sets the Krylov subspace size. Larger values reduce the iteration count
// but cost memory and matrix multiplies linearly.
func (opt EvolveOptions) NCV(ncv int) EvolveOptions {
	opt.ncv = ncv
	return opt
}

// Algo selects the matrix exponential algorithm. The default is the
// Expokit-style integrator.
func (opt EvolveOptions) Algo(a krylov.Algo) EvolveOptions {
	opt.algo = a
	opt.algoSet = true
	return opt
}

// MaxIterations sets the solver's iteration limit.
func (opt EvolveOptions) MaxIterations(i int) EvolveOptions {
	opt.maxIts = i
	return opt
}

// Evolve computes result = exp(-iHt) state, the evolution of a quantum state
// under the Hamiltonian H for time t in natural units. A t with zero real part
// is imaginary-time evolution, for which the evolution operator's scale is
// pure-real decay and the solver takes a cheaper path.
//
// Evolve is collective: every cooperating process must call it with
// equivalent arguments.
func Evolve(rt *Runtime, H *Operator, state *State, t complex128, options ...EvolveOptions) (*State, error) {
	opt := NewEvolveOptions()
	if len(options) > 0 {
		opt = options[0]
	}

	if err := state.AssertInitialized(); err != nil {
		return nil, err
	}
	rt.ensureInit()
	if err := H.EstablishL(); err != nil {
		return nil, err
	}

	if !H.HasSubspace(state.subspace, state.subspace) {
		return nil, errors.Wrap(ErrIncompatibleSubspace,
			"Hamiltonian and state are defined on different subspaces")
	}

	result := opt.result
	if result == nil {
		var err error
		result, err = NewState(rt, H.l, state.subspace)
		if err != nil {
			return nil, err
		}
	} else if state.l != result.l || !state.subspace.Equal(result.subspace) {
		return nil, errors.Wrap(ErrIncompatibleSubspace,
			"input and result states are on different subspaces")
	}

	if t == 0 {
		if err := state.Copy(result); err != nil {
			return nil, err
		}
		return result, nil
	}

	if !rt.cfg.ComplexEnabled && real(t) != 0 {
		return nil, errors.Wrap(ErrConfiguration,
			"complex arithmetic must be enabled to perform real time evolution")
	}

	scale := -1i * t
	if imag(scale) == 0 {
		// Imaginary time evolution: the scale is pure real.
		scale = complex(real(scale), 0)
	}

	h, err := H.GetMat(state.subspace, state.subspace)
	if err != nil {
		return nil, err
	}

	kopt := krylov.NewExpOptions().Norm(h.normBound())
	switch {
	case opt.tol > 0:
		kopt = kopt.Tol(opt.tol)
	case rt.cfg.Tol > 0:
		kopt = kopt.Tol(rt.cfg.Tol)
	}
	switch {
	case opt.ncv > 0:
		kopt = kopt.NCV(opt.ncv)
	case rt.cfg.NCV > 0:
		kopt = kopt.NCV(rt.cfg.NCV)
	}
	if opt.algoSet {
		kopt = kopt.SetAlgo(opt.algo)
	}
	switch {
	case opt.maxIts > 0:
		kopt = kopt.MaxIterations(opt.maxIts)
	case rt.cfg.MaxIterations > 0:
		kopt = kopt.MaxIterations(rt.cfg.MaxIterations)
	}

	res, err := krylov.Expv(result.vec, h, scale, state.vec, kopt)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	rt.Logger().Debug().
		Stringer("reason", res.Reason).
		Int("iterations", res.Iterations).
		Msg("evolve")
	if cerr := classifyConvergence(res, 0, kopt.MaxIts()); cerr != nil {
		return nil, cerr
	}

	result.SetInitialized()
	return result, nil
}
