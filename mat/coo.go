// Package mat provides the sparse and small dense complex matrices underlying
// the spinchain solvers.
package mat

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

var (
	PauliX = [][]complex128{
		{0, 1},
		{1, 0},
	}
	PauliY = [][]complex128{
		{0, -1i},
		{1i, 0},
	}
	PauliZ = [][]complex128{
		{1, 0},
		{0, -1},
	}
)

type vRowCol struct {
	v   complex128
	row int
	col int
}

// COO is a sparse matrix in coordinate format, with entries kept in row-major
// order.
type COO struct {
	rows int
	cols int
	data []vRowCol

	m map[[2]int]complex128
}

func M(dense [][]complex128) *COO {
	m := &COO{rows: len(dense), cols: len(dense[0]), data: make([]vRowCol, 0), m: make(map[[2]int]complex128)}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.data = append(m.data, vRowCol{v: v, row: i, col: j})
		}
	}
	return m
}

func COOZeros(rows, cols int) *COO {
	m := M([][]complex128{{0}})
	m.Zeros(rows, cols)
	return m
}

func COOIdentity(rows int) *COO {
	m := M([][]complex128{{0}})
	m.Zeros(rows, rows)
	for i := 0; i < rows; i++ {
		m.data = append(m.data, vRowCol{v: 1, row: i, col: i})
	}
	return m
}

func (m *COO) Rows() int { return m.rows }
func (m *COO) Cols() int { return m.cols }

func (m *COO) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	m.data = m.data[:0]
}

func (m *COO) Scalar(v complex128) {
	m.rows, m.cols = 1, 1
	m.data = m.data[:0]
	m.data = append(m.data, vRowCol{v: v, row: 0, col: 0})
}

func (m *COO) Set(i, j int, v complex128) {
	for k, e := range m.data {
		if e.row == i && e.col == j {
			m.data[k].v = v
			return
		}
	}
	m.data = append(m.data, vRowCol{v: v, row: i, col: j})
	slices.SortFunc(m.data, rowMajor)
}

func (a *COO) Equal(b *COO) bool {
	if a.rows != b.rows {
		return false
	}
	if a.cols != b.cols {
		return false
	}
	if len(a.data) != len(b.data) {
		return false
	}
	for i, av := range a.data {
		if av != b.data[i] {
			return false
		}
	}
	return true
}

// Add does a += c*b.
// b must be either 1x1, a column of a's height, or of a's exact shape. The
// broadcast forms add only to a's stored entries; a single broadcast entry may
// serve a whole row, so it is never consumed.
func (a *COO) Add(c complex128, b *COO) {
	clear(b.m)
	for _, v := range b.data {
		b.m[[2]int{v.row, v.col}] = v.v
	}

	full := b.rows == a.rows && b.cols == a.cols
	for i, av := range a.data {
		var byx [2]int
		switch {
		case full:
			byx[0], byx[1] = av.row, av.col
		case b.rows == 1 && b.cols == 1:
		case b.rows == a.rows && b.cols == 1:
			byx[0] = av.row
		default:
			panic("wrong dimensions")
		}
		bv := b.m[byx]
		if full {
			delete(b.m, byx)
		}

		a.data[i].v = av.v + c*bv
	}

	a.data = slices.DeleteFunc(a.data, func(v vRowCol) bool {
		return v.v == 0
	})
	if full {
		// Entries of b at positions a does not store.
		for yx, bv := range b.m {
			a.data = append(a.data, vRowCol{v: c * bv, row: yx[0], col: yx[1]})
		}
	}
	slices.SortFunc(a.data, rowMajor)
	clear(b.m)
}

// Kron does a = kron(a, b).
func (a *COO) Kron(b *COO) {
	rows := a.rows * b.rows
	cols := a.cols * b.cols
	a.rows, a.cols = rows, cols

	prevElemNum := len(a.data)
	for i := prevElemNum - 1; i >= 0; i-- {
		av := a.data[i]
		a.data[i].v = 0
		for _, bv := range b.data {
			ky := av.row*b.rows + bv.row
			kx := av.col*b.cols + bv.col
			a.data = append(a.data, vRowCol{v: av.v * bv.v, row: ky, col: kx})
		}
	}

	a.data = slices.DeleteFunc(a.data, func(v vRowCol) bool {
		return v.v == 0
	})
	slices.SortFunc(a.data, rowMajor)
}

// MatVec computes dst = m @ src.
func (m *COO) MatVec(dst, src []complex128) {
	if len(src) != m.cols || len(dst) != m.rows {
		panic(fmt.Sprintf("%d %d %d %d", len(dst), len(src), m.rows, m.cols))
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, v := range m.data {
		dst[v.row] += v.v * src[v.col]
	}
}

// NNZPerRow returns the maximum number of nonzeros in any row.
func (m *COO) NNZPerRow() int {
	var most, cur int
	curRow := -1
	for _, v := range m.data {
		if v.row != curRow {
			curRow, cur = v.row, 0
		}
		cur++
		most = max(most, cur)
	}
	return most
}

// NormBound returns an upper bound on the spectral radius from the
// Gerschgorin circles.
// Theorem A3, Bounds for the eigenvalues of a matrix, Kenneth R. Garren.
func (m *COO) NormBound() float64 {
	if len(m.data) == 0 {
		return 0
	}

	var bound float64
	curRow := m.data[0].row
	var curCenter complex128
	var curRadius float64
	flush := func() {
		if r := cabs(curCenter) + curRadius; r > bound {
			bound = r
		}
	}
	for _, v := range m.data {
		if v.row != curRow {
			flush()
			curRow, curCenter, curRadius = v.row, 0, 0
		}
		if v.row == v.col {
			curCenter = v.v
		} else {
			curRadius += cabs(v.v)
		}
	}
	flush()
	return bound
}

// Project returns the restriction of m to the given row and column index sets,
// p[i][j] = m[rowIdx[i], colIdx[j]].
func (m *COO) Project(rowIdx, colIdx map[int]int, rows, cols int) *COO {
	p := COOZeros(rows, cols)
	for _, v := range m.data {
		i, ok := rowIdx[v.row]
		if !ok {
			continue
		}
		j, ok := colIdx[v.col]
		if !ok {
			continue
		}
		p.data = append(p.data, vRowCol{v: v.v, row: i, col: j})
	}
	slices.SortFunc(p.data, rowMajor)
	return p
}

func (m *COO) Dense() *Dense {
	d := NewDense(m.rows, m.cols)
	for _, v := range m.data {
		d.Set(v.row, v.col, v.v)
	}
	return d
}

func (m *COO) String() string {
	clear(m.m)
	for _, v := range m.data {
		m.m[[2]int{v.row, v.col}] = v.v
	}

	lines := []string{}
	for i := 0; i < m.rows; i++ {
		cs := []string{}
		for j := 0; j < m.cols; j++ {
			v := m.m[[2]int{i, j}]
			switch {
			case imag(v) == 0:
				cs = append(cs, format(real(v)))
			case real(v) == 0:
				cs = append(cs, format(imag(v))+"i")
			default:
				cs = append(cs, format(real(v))+"+"+format(imag(v))+"i")
			}
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}

	clear(m.m)
	return strings.Join(lines, "\n")
}

func rowMajor(a, b vRowCol) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}

func format(v float64) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return " 0"
	}

	s := fmt.Sprintf("%v", v)

	// Add a space before non-negative numbers to align with other negative numbers in the same column.
	if v >= 0 {
		s = " " + s
	}

	return s
}
