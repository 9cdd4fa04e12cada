package spinchain

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/pkg/errors"
)

// Subspace restricts the Hilbert space an operator or state is defined on.
// Basis states of the full space are labelled by integers whose bit i is the
// configuration of spin i.
//
// Subspace identity is load-bearing for compatibility checks: two subspaces
// are equal only if their enumerations agree, not merely their dimensions.
type Subspace interface {
	// Dimension is the number of basis states for a chain of length L.
	Dimension(L int) int

	// ProductStateBasis reports whether the basis factors spin by spin.
	// Only such subspaces support reduced density matrix extraction.
	ProductStateBasis() bool

	// IdxToState maps a subspace basis index to its full product-basis
	// configuration.
	IdxToState(L, idx int) int

	// StateToIdx maps a full product-basis configuration to its subspace
	// index, or -1 if the configuration is not in the subspace.
	StateToIdx(L, state int) int

	Equal(Subspace) bool
	String() string
}

// Full is the unrestricted Hilbert space of dimension 2^L.
type Full struct{}

func (Full) Dimension(L int) int         { return 1 << L }
func (Full) ProductStateBasis() bool     { return true }
func (Full) IdxToState(L, idx int) int   { return idx }
func (Full) StateToIdx(L, state int) int { return state }
func (Full) String() string              { return "Full" }
func (Full) Equal(other Subspace) bool {
	_, ok := other.(Full)
	return ok
}

// Parity is the subspace of states with a fixed spin parity. Its dimension is
// half the full space: the first L-1 spins enumerate the basis and the last
// spin is fixed by the sector.
type Parity struct {
	sector int
}

// NewParity returns the parity subspace for sector 0 (even) or 1 (odd).
func NewParity(sector int) (Parity, error) {
	if sector != 0 && sector != 1 {
		return Parity{}, errors.Errorf("sector %d", sector)
	}
	return Parity{sector: sector}, nil
}

func (p Parity) Sector() int             { return p.sector }
func (p Parity) Dimension(L int) int     { return 1 << (L - 1) }
func (p Parity) ProductStateBasis() bool { return true }
func (p Parity) String() string          { return fmt.Sprintf("Parity(%d)", p.sector) }

func (p Parity) IdxToState(L, idx int) int {
	state := idx
	if bits.OnesCount(uint(idx))&1 != p.sector {
		state |= 1 << (L - 1)
	}
	return state
}

func (p Parity) StateToIdx(L, state int) int {
	if bits.OnesCount(uint(state))&1 != p.sector {
		return -1
	}
	return state &^ (1 << (L - 1))
}

func (p Parity) Equal(other Subspace) bool {
	o, ok := other.(Parity)
	return ok && o.sector == p.sector
}

// Auto is a subspace given by an explicit, externally enumerated basis list,
// such as the orbit representatives of a symmetry automorphism. Its basis does
// not factor spin by spin.
type Auto struct {
	states []int
}

// NewAuto builds a subspace from a strictly increasing list of full-space
// basis states.
func NewAuto(states []int) (*Auto, error) {
	if len(states) == 0 {
		return nil, errors.Errorf("empty basis")
	}
	for i, s := range states {
		if s < 0 {
			return nil, errors.Errorf("state %d at %d", s, i)
		}
		if i > 0 && s <= states[i-1] {
			return nil, errors.Errorf("basis not strictly increasing at %d", i)
		}
	}
	return &Auto{states: slices.Clone(states)}, nil
}

func (a *Auto) Dimension(L int) int     { return len(a.states) }
func (a *Auto) ProductStateBasis() bool { return false }
func (a *Auto) String() string          { return fmt.Sprintf("Auto(%d)", len(a.states)) }

func (a *Auto) IdxToState(L, idx int) int { return a.states[idx] }

func (a *Auto) StateToIdx(L, state int) int {
	i, ok := slices.BinarySearch(a.states, state)
	if !ok {
		return -1
	}
	return i
}

func (a *Auto) Equal(other Subspace) bool {
	o, ok := other.(*Auto)
	return ok && slices.Equal(o.states, a.states)
}
