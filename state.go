package spinchain

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// State is a vector on a subspace of the spin chain's Hilbert space. It must
// be explicitly marked initialized before use; operations that produce a new
// State mark it initialized on success.
type State struct {
	rt          *Runtime
	l           int
	subspace    Subspace
	vec         []complex128
	initialized bool
}

// NewState allocates an uninitialized state on the given subspace. A nil
// subspace means the full space.
func NewState(rt *Runtime, L int, subspace Subspace) (*State, error) {
	if L < 1 {
		return nil, errors.Errorf("L %d", L)
	}
	rt.ensureInit()
	if subspace == nil {
		subspace = Full{}
	}
	s := &State{rt: rt, l: L, subspace: subspace}
	s.vec = make([]complex128, subspace.Dimension(L))
	return s, nil
}

func (s *State) L() int             { return s.l }
func (s *State) Subspace() Subspace { return s.subspace }

// Vec is the state's vector. Mutating it directly does not mark the state
// initialized.
func (s *State) Vec() []complex128 { return s.vec }

// AssertInitialized fails if the state was never written.
func (s *State) AssertInitialized() error {
	if !s.initialized {
		return errors.Errorf("state was never initialized")
	}
	return nil
}

func (s *State) SetInitialized() { s.initialized = true }

// SetProduct sets the state to the product basis state with the given
// full-space configuration (bit i is the configuration of spin i).
func (s *State) SetProduct(state int) error {
	if state < 0 || state >= 1<<s.l {
		return errors.Wrapf(ErrValidation, "state %d for L=%d", state, s.l)
	}
	idx := s.subspace.StateToIdx(s.l, state)
	if idx < 0 {
		return errors.Wrapf(ErrIncompatibleSubspace, "product state %d is not in subspace %s", state, s.subspace)
	}
	for i := range s.vec {
		s.vec[i] = 0
	}
	s.vec[idx] = 1
	s.initialized = true
	return nil
}

// SetRandom sets the state to a normalized pseudo-random vector. The seed is
// explicit so that cooperating processes produce the same state.
func (s *State) SetRandom(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	var norm float64
	for i := range s.vec {
		v := complex(rng.NormFloat64(), rng.NormFloat64())
		s.vec[i] = v
		norm += real(v)*real(v) + imag(v)*imag(v)
	}
	norm = math.Sqrt(norm)
	for i := range s.vec {
		s.vec[i] /= complex(norm, 0)
	}
	s.initialized = true
}

// Copy writes this state into dst. The two must share a subspace.
func (s *State) Copy(dst *State) error {
	if err := s.AssertInitialized(); err != nil {
		return err
	}
	if s.l != dst.l || !s.subspace.Equal(dst.subspace) {
		return errors.Wrap(ErrIncompatibleSubspace, "copy between different subspaces")
	}
	copy(dst.vec, s.vec)
	dst.initialized = true
	return nil
}

// Dot returns the inner product <s|o>.
func (s *State) Dot(o *State) (complex128, error) {
	if err := s.AssertInitialized(); err != nil {
		return 0, err
	}
	if err := o.AssertInitialized(); err != nil {
		return 0, err
	}
	if s.l != o.l || !s.subspace.Equal(o.subspace) {
		return 0, errors.Wrap(ErrIncompatibleSubspace, "inner product between different subspaces")
	}
	var d complex128
	for i, v := range s.vec {
		d += complex(real(v), -imag(v)) * o.vec[i]
	}
	return d, nil
}

// Norm returns the Euclidean norm of the state vector.
func (s *State) Norm() float64 {
	var n float64
	for _, v := range s.vec {
		n += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(n)
}
