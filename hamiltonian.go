package spinchain

import (
	"github.com/pkg/errors"

	"spinchain/mat"
)

var identity = mat.COOIdentity(2)

// SiteOperator returns the full-space matrix acting with the given 2x2
// single-spin operators on their sites and the identity elsewhere. Spin i
// occupies bit i, so the Kronecker chain runs from site L-1 down to site 0.
func SiteOperator(L int, sites map[int][][]complex128) *mat.COO {
	system := mat.M([][]complex128{{1}})
	for i := L - 1; i >= 0; i-- {
		p, ok := sites[i]
		if ok {
			system.Kron(mat.M(p))
		} else {
			system.Kron(identity)
		}
	}
	return system
}

// TransverseFieldIsing builds the open-chain transverse-field Ising
// Hamiltonian H = -sum_i sigma^z_i sigma^z_{i+1} - h sum_i sigma^x_i.
func TransverseFieldIsing(L int, h float64) (*Operator, error) {
	if L < 1 {
		return nil, errors.Errorf("L %d", L)
	}

	hamiltonian := mat.COOZeros(1<<L, 1<<L)
	for i := 0; i < L; i++ {
		if i+1 < L {
			zz := SiteOperator(L, map[int][][]complex128{i: mat.PauliZ, i + 1: mat.PauliZ})
			hamiltonian.Add(-1, zz)
		}
		x := SiteOperator(L, map[int][][]complex128{i: mat.PauliX})
		hamiltonian.Add(complex(-h, 0), x)
	}

	return NewOperator(L, hamiltonian)
}
