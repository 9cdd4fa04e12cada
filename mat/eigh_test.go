package mat

import (
	"fmt"
	"math"
	"testing"
)

func TestEigvalsh(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m *COO
		w []float64
	}{
		{m: M(PauliX), w: []float64{-1, 1}},
		{m: M(PauliY), w: []float64{-1, 1}},
		{m: M(PauliZ), w: []float64{-1, 1}},
		{
			m: M([][]complex128{
				{2, 1i},
				{-1i, 2},
			}),
			w: []float64{1, 3},
		},
		{m: COOIdentity(3), w: []float64{1, 1, 1}},
	}
	for _, test := range tests {
		test := test
		t.Run(fmt.Sprintf("%s", test.m), func(t *testing.T) {
			t.Parallel()
			w, err := Eigvalsh(test.m.Dense())
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if len(w) != len(test.w) {
				t.Fatalf("%v, expected %v", w, test.w)
			}
			for i := range w {
				if math.Abs(w[i]-test.w[i]) > 1e-9 {
					t.Fatalf("%v, expected %v", w, test.w)
				}
			}
		})
	}
}

func TestEigSymTridiag(t *testing.T) {
	t.Parallel()
	// [[0, 1], [1, 0]] has eigenvalues -1, 1 with eigenvectors
	// (1, -1)/sqrt(2) and (1, 1)/sqrt(2).
	vals, vecs, err := EigSymTridiag([]float64{0, 0}, []float64{1})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := []float64{-1, 1}
	for i := range vals {
		if math.Abs(vals[i]-want[i]) > 1e-12 {
			t.Fatalf("%v, expected %v", vals, want)
		}
	}
	s := 1 / math.Sqrt(2)
	if math.Abs(math.Abs(vecs[0][0])-s) > 1e-12 || math.Abs(vecs[0][0]+vecs[0][1]) > 1e-12 {
		t.Fatalf("%v", vecs[0])
	}
	if math.Abs(math.Abs(vecs[1][0])-s) > 1e-12 || math.Abs(vecs[1][0]-vecs[1][1]) > 1e-12 {
		t.Fatalf("%v", vecs[1])
	}

	// A single diagonal entry is its own eigenpair.
	vals, vecs, err = EigSymTridiag([]float64{3}, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if math.Abs(vals[0]-3) > 1e-12 || math.Abs(math.Abs(vecs[0][0])-1) > 1e-12 {
		t.Fatalf("%v %v", vals, vecs)
	}
}
