package spinchain

import (
	"math/bits"

	"github.com/pkg/errors"

	"spinchain/mat"
)

// Operator is a Hermitian linear map on the Hilbert space of an L-site spin
// chain. It is defined on the full space and materialized for a subspace pair
// on demand.
type Operator struct {
	l     int
	coo   *mat.COO
	apply func(dst, src []complex128)
	shell bool
	nnz   int

	left  Subspace
	right Subspace
	pairs [][2]Subspace
}

// NewOperator builds an operator from its explicit full-space matrix. L may be
// zero, in which case it is established lazily from the matrix dimension.
func NewOperator(L int, m *mat.COO) (*Operator, error) {
	if m.Rows() != m.Cols() {
		return nil, errors.Errorf("not square %d %d", m.Rows(), m.Cols())
	}
	op := &Operator{l: L, coo: m, nnz: m.NNZPerRow()}
	op.left, op.right = Full{}, Full{}
	if L > 0 && m.Rows() != 1<<L {
		return nil, errors.Errorf("dimension %d for L=%d", m.Rows(), L)
	}
	return op, nil
}

// NewShellOperator builds a matrix-free operator from its full-space action.
// nnz is the number of nonzeros per row of the equivalent explicit matrix,
// used for error-tolerance scaling.
func NewShellOperator(L int, nnz int, apply func(dst, src []complex128)) (*Operator, error) {
	if L < 1 {
		return nil, errors.Errorf("L %d", L)
	}
	op := &Operator{l: L, apply: apply, shell: true, nnz: max(nnz, 1)}
	op.left, op.right = Full{}, Full{}
	return op, nil
}

func (op *Operator) Shell() bool { return op.shell }
func (op *Operator) NNZ() int    { return op.nnz }
func (op *Operator) L() int      { return op.l }

// EstablishL resolves the chain length, inferring it from the matrix
// dimension if it was not set at construction.
func (op *Operator) EstablishL() error {
	if op.l > 0 {
		return nil
	}
	if op.coo == nil {
		return errors.Errorf("chain length not set")
	}
	n := op.coo.Rows()
	if n < 2 || n&(n-1) != 0 {
		return errors.Errorf("dimension %d is not a power of two", n)
	}
	op.l = bits.TrailingZeros(uint(n))
	return nil
}

// AddSubspace registers a subspace pair the operator may be materialized on,
// and makes it current. A nil right means right equals left.
func (op *Operator) AddSubspace(left, right Subspace) {
	if right == nil {
		right = left
	}
	op.pairs = append(op.pairs, [2]Subspace{left, right})
	op.left, op.right = left, right
}

// SetSubspace makes the given subspace pair current without registering it.
func (op *Operator) SetSubspace(sub Subspace) { op.left, op.right = sub, sub }

// Subspace is the operator's currently configured left subspace.
func (op *Operator) Subspace() Subspace { return op.left }

// HasSubspace reports whether the operator is defined for the subspace pair.
// The full space is always supported; other pairs must have been added. A nil
// right means right equals left.
func (op *Operator) HasSubspace(left, right Subspace) bool {
	if left == nil {
		return false
	}
	if right == nil {
		right = left
	}
	if left.Equal(Full{}) && right.Equal(Full{}) {
		return true
	}
	for _, p := range op.pairs {
		if p[0].Equal(left) && p[1].Equal(right) {
			return true
		}
	}
	return false
}

// matHandle is the materialization of an operator on a subspace pair, in the
// form the krylov solvers consume.
type matHandle struct {
	dim int
	coo *mat.COO

	// Shell path: apply acts on the full space, scatter/gather map the
	// subspace into it.
	apply    func(dst, src []complex128)
	idxState []int
	fullSrc  []complex128
	fullDst  []complex128
}

func (h *matHandle) Dim() int { return h.dim }

func (h *matHandle) MatVec(dst, src []complex128) {
	if h.coo != nil {
		h.coo.MatVec(dst, src)
		return
	}
	for i := range h.fullSrc {
		h.fullSrc[i] = 0
	}
	for i, s := range h.idxState {
		h.fullSrc[s] = src[i]
	}
	h.apply(h.fullDst, h.fullSrc)
	for i, s := range h.idxState {
		dst[i] = h.fullDst[s]
	}
}

// normBound is an upper bound on the operator norm, or 0 when unknown.
func (h *matHandle) normBound() float64 {
	if h.coo == nil {
		return 0
	}
	return h.coo.NormBound()
}

// GetMat materializes the operator for a validated subspace pair.
func (op *Operator) GetMat(left, right Subspace) (*matHandle, error) {
	if err := op.EstablishL(); err != nil {
		return nil, err
	}
	if right == nil {
		right = left
	}
	if !op.HasSubspace(left, right) {
		return nil, errors.Wrapf(ErrIncompatibleSubspace,
			"operator does not support subspace pair (%s, %s)", left, right)
	}

	rows := left.Dimension(op.l)
	cols := right.Dimension(op.l)

	if op.shell {
		h := &matHandle{
			dim:     rows,
			apply:   op.apply,
			fullSrc: make([]complex128, 1<<op.l),
			fullDst: make([]complex128, 1<<op.l),
		}
		h.idxState = make([]int, rows)
		for i := range h.idxState {
			h.idxState[i] = left.IdxToState(op.l, i)
		}
		return h, nil
	}

	if left.Equal(Full{}) && right.Equal(Full{}) {
		return &matHandle{dim: rows, coo: op.coo}, nil
	}

	rowIdx := make(map[int]int, rows)
	for i := 0; i < rows; i++ {
		rowIdx[left.IdxToState(op.l, i)] = i
	}
	colIdx := make(map[int]int, cols)
	for j := 0; j < cols; j++ {
		colIdx[right.IdxToState(op.l, j)] = j
	}
	return &matHandle{dim: rows, coo: op.coo.Project(rowIdx, colIdx, rows, cols)}, nil
}
