package spinchain

import (
	"github.com/pkg/errors"

	"spinchain/mat"
)

// ReducedDensityMatrix traces out all spins not listed in keep and returns the
// density matrix of the remaining ones, of dimension 2^len(keep). keep must be
// strictly increasing.
//
// The matrix is computed on the distinguished process only; every other
// process returns (nil, false, nil). All processes must call it together. An
// empty keep traces out everything, leaving the scalar matrix [[1]] on all
// processes.
func ReducedDensityMatrix(rt *Runtime, state *State, keep []int) (*mat.Dense, bool, error) {
	rt.ensureInit()
	if err := state.AssertInitialized(); err != nil {
		return nil, false, err
	}
	if !state.Subspace().ProductStateBasis() {
		return nil, false, errors.Wrapf(ErrProductBasis,
			"cannot compute reduced density matrix on subspace %s", state.Subspace())
	}
	L := state.L()
	for i, s := range keep {
		if i > 0 && s <= keep[i-1] {
			return nil, false, errors.Wrap(ErrValidation, "keep array must be strictly increasing")
		}
		// The bound is inclusive: index L names a spin just past the chain,
		// which doubles the matrix with a zero block but leaves the trace
		// and all entropies unchanged.
		if s < 0 || s > L {
			return nil, false, errors.Wrapf(ErrValidation, "spin index %d out of range", s)
		}
	}
	if len(keep) == 0 {
		// Tracing out the whole chain leaves the trivial unit matrix, a
		// deterministic value every process can hold.
		one := mat.NewDense(1, 1)
		one.Set(0, 0, 1)
		return one, true, nil
	}
	if !rt.Distinguished() {
		return nil, false, nil
	}

	keepMask := 0
	for _, s := range keep {
		keepMask |= 1 << s
	}

	// Bucket the amplitudes by traced-spin configuration. Within a bucket the
	// state restricted to the kept spins is pure, so the density matrix is the
	// sum of the buckets' outer products.
	kdim := 1 << len(keep)
	buckets := map[int][]complex128{}
	sub := state.Subspace()
	for idx, amp := range state.vec {
		if amp == 0 {
			continue
		}
		full := sub.IdxToState(L, idx)
		a, b := splitBits(full, keepMask, L)
		bucket, ok := buckets[b]
		if !ok {
			bucket = make([]complex128, kdim)
			buckets[b] = bucket
		}
		bucket[a] += amp
	}

	rho := mat.NewDense(kdim, kdim)
	for _, bucket := range buckets {
		for i, vi := range bucket {
			if vi == 0 {
				continue
			}
			for j, vj := range bucket {
				rho.Set(i, j, rho.At(i, j)+vi*conj(vj))
			}
		}
	}
	return rho, true, nil
}

// splitBits packs the bits of state selected by mask into a and the rest
// into b, each preserving bit order.
func splitBits(state, mask, L int) (a, b int) {
	ai, bi := 0, 0
	for i := 0; i < L; i++ {
		bit := (state >> i) & 1
		if mask>>i&1 == 1 {
			a |= bit << ai
			ai++
		} else {
			b |= bit << bi
			bi++
		}
	}
	return a, b
}

func conj(v complex128) complex128 {
	return complex(real(v), -imag(v))
}
