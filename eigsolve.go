package spinchain

import (
	"github.com/pkg/errors"

	"spinchain/krylov"
	"spinchain/mat"
)

// EigWhich selects which eigenvalues an eigensolve seeks.
type EigWhich string

const (
	// Smallest seeks the eigenvalues with smallest real part, such as the
	// ground state.
	Smallest EigWhich = "smallest"
	// Largest seeks the eigenvalues with largest real part.
	Largest EigWhich = "largest"
	// Exterior seeks the eigenvalues largest in absolute magnitude.
	Exterior EigWhich = "exterior"
	// Target seeks the eigenvalues closest to a given target, by
	// shift-invert.
	Target EigWhich = "target"
)

// EigsolveOptions are options for Eigsolve.
type EigsolveOptions struct {
	getvecs   bool
	nev       int
	which     EigWhich
	target    float64
	hasTarget bool
	tol       float64
	subspace  Subspace
	maxIts    int
}

// NewEigsolveOptions returns the default eigensolve options: the single
// eigenvalue with smallest real part, no eigenvectors.
func NewEigsolveOptions() EigsolveOptions {
	opt := EigsolveOptions{}
	opt.nev = 1
	opt.which = Smallest
	return opt
}

// Vectors requests eigenvectors along with the eigenvalues.
func (opt EigsolveOptions) Vectors(v bool) EigsolveOptions {
	opt.getvecs = v
	return opt
}

// NEV sets the minimum number of eigenpairs sought. The solver may return
// more if extra pairs happen to converge.
func (opt EigsolveOptions) NEV(nev int) EigsolveOptions {
	opt.nev = nev
	return opt
}

// SetWhich selects which eigenvalues to seek.
func (opt EigsolveOptions) SetWhich(w EigWhich) EigsolveOptions {
	opt.which = w
	return opt
}

// SetTarget requests the eigenvalues with real part closest to target, using
// the shift-invert method. Setting a target forces which to Target.
func (opt EigsolveOptions) SetTarget(target float64) EigsolveOptions {
	opt.target = target
	opt.hasTarget = true
	return opt
}

// Tol sets the tolerance of the computation.
func (opt EigsolveOptions) Tol(tol float64) EigsolveOptions {
	opt.tol = tol
	return opt
}

// OnSubspace solves on the given subspace instead of the operator's currently
// configured one.
func (opt EigsolveOptions) OnSubspace(sub Subspace) EigsolveOptions {
	opt.subspace = sub
	return opt
}

// MaxIterations sets the eigensolver's iteration limit.
func (opt EigsolveOptions) MaxIterations(i int) EigsolveOptions {
	opt.maxIts = i
	return opt
}

// shiftInvertOp applies (H - target*I)^{-1} through an LU factorization.
type shiftInvertOp struct {
	dim int
	lu  *mat.LU
}

func (s *shiftInvertOp) Dim() int { return s.dim }
func (s *shiftInvertOp) MatVec(dst, src []complex128) {
	s.lu.Solve(dst, src)
}

// Eigsolve solves for a subset of the eigenpairs of the Hermitian operator H.
// By default it finds the eigenvalue with the smallest real part.
//
// Eigenvalues are returned in the order the solver converged them, which is
// not necessarily ascending; callers needing sorted output must sort
// explicitly. When eigenvectors are requested, each is a new initialized
// State on the solve's subspace.
//
// Eigsolve is collective: every cooperating process must call it with
// equivalent arguments.
func Eigsolve(rt *Runtime, H *Operator, options ...EigsolveOptions) ([]float64, []*State, error) {
	opt := NewEigsolveOptions()
	if len(options) > 0 {
		opt = options[0]
	}

	rt.ensureInit()
	if err := H.EstablishL(); err != nil {
		return nil, nil, err
	}
	if opt.nev < 1 {
		return nil, nil, errors.Wrapf(ErrValidation, "nev %d", opt.nev)
	}

	sub := opt.subspace
	if sub == nil {
		sub = H.Subspace()
	} else if !H.HasSubspace(sub, nil) {
		return nil, nil, errors.Wrap(ErrIncompatibleSubspace,
			"requested subspace has not been added to operator")
	}

	which := opt.which
	if opt.hasTarget {
		which = Target
		if H.shell {
			return nil, nil, errors.Wrap(ErrShellShiftInvert, "")
		}
	} else if which == Target {
		return nil, nil, errors.Wrap(ErrValidation, "must specify a target when setting which to Target")
	}

	h, err := H.GetMat(sub, sub)
	if err != nil {
		return nil, nil, err
	}

	var op krylov.Operator = h
	var kwhich krylov.Which
	switch which {
	case Smallest:
		kwhich = krylov.SmallestReal
	case Largest:
		kwhich = krylov.LargestReal
	case Exterior:
		kwhich = krylov.LargestMagnitude
	case Target:
		// Shift-invert: the wanted eigenvalues become the largest in
		// magnitude of (H - target*I)^{-1}.
		kwhich = krylov.LargestMagnitude
		shifted := h.coo.Dense()
		for i := 0; i < h.dim; i++ {
			shifted.Set(i, i, shifted.At(i, i)-complex(opt.target, 0))
		}
		lu, err := mat.FactorizeLU(shifted)
		if err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
		op = &shiftInvertOp{dim: h.dim, lu: lu}
	default:
		return nil, nil, errors.Wrapf(ErrValidation, "which %q", which)
	}

	kopt := krylov.NewEigOptions().NEV(opt.nev).SetWhich(kwhich).Vectors(opt.getvecs)
	switch {
	case opt.tol > 0:
		kopt = kopt.Tol(opt.tol)
	case rt.cfg.Tol > 0:
		kopt = kopt.Tol(rt.cfg.Tol)
	default:
		// Scale the default tolerance by the operator's row density, as
		// denser operators accumulate proportionally more error per
		// multiply.
		kopt = kopt.Tol(1e-9 * float64(max(H.nnz, 1)))
	}
	switch {
	case opt.maxIts > 0:
		kopt = kopt.MaxIterations(opt.maxIts)
	case rt.cfg.MaxIterations > 0:
		kopt = kopt.MaxIterations(rt.cfg.MaxIterations)
	}
	if rt.cfg.NCV > 0 {
		kopt = kopt.NCV(rt.cfg.NCV)
	}

	res, err := krylov.Eigsolve(op, kopt)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	rt.Logger().Debug().
		Stringer("reason", res.Reason).
		Int("iterations", res.Iterations).
		Int("nconv", res.NConv).
		Msg("eigsolve")
	if cerr := classifyConvergence(res, opt.nev, kopt.MaxIts()); cerr != nil {
		return nil, nil, cerr
	}

	evals := res.Values
	if opt.hasTarget {
		// Map the inverted spectrum back.
		for i, theta := range evals {
			evals[i] = opt.target + 1/theta
		}
	}

	var evecs []*State
	if opt.getvecs {
		evecs = make([]*State, 0, res.NConv)
		for _, v := range res.Vectors {
			st, err := NewState(rt, H.l, sub)
			if err != nil {
				return nil, nil, err
			}
			copy(st.vec, v)
			st.SetInitialized()
			evecs = append(evecs, st)
		}
	}
	return evals, evecs, nil
}
