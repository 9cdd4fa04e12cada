package mat

import (
	"math/cmplx"
	"testing"
)

func TestMatrixPower(t *testing.T) {
	t.Parallel()
	x := M(PauliX).Dense()

	// sigma_x squared is the identity.
	p, err := x.MatrixPower(2)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	id := COOIdentity(2).Dense()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.Abs(p.At(i, j)-id.At(i, j)) > 1e-12 {
				t.Fatalf("%v, expected %v", p, id)
			}
		}
	}

	// The zeroth power is the identity.
	p, err = x.MatrixPower(0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if p.At(0, 0) != 1 || p.At(0, 1) != 0 {
		t.Fatalf("%v", p)
	}

	if _, err := x.MatrixPower(-1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTrace(t *testing.T) {
	t.Parallel()
	d := M([][]complex128{
		{1, 5},
		{7, 2i},
	}).Dense()
	if tr := d.Trace(); tr != 1+2i {
		t.Fatalf("%v, expected 1+2i", tr)
	}
}

func TestLUSolve(t *testing.T) {
	t.Parallel()
	a := M([][]complex128{
		{2, 1i, 0},
		{-1i, 3, 1},
		{0, 1, 4},
	}).Dense()
	lu, err := FactorizeLU(a)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	x := []complex128{1, -2i, 0.5}
	b := make([]complex128, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b[i] += a.At(i, j) * x[j]
		}
	}

	got := make([]complex128, 3)
	lu.Solve(got, b)
	for i := range got {
		if cmplx.Abs(got[i]-x[i]) > 1e-12 {
			t.Fatalf("%v, expected %v", got, x)
		}
	}
}

func TestLUSingular(t *testing.T) {
	t.Parallel()
	a := M([][]complex128{
		{1, 2},
		{2, 4},
	}).Dense()
	if _, err := FactorizeLU(a); err == nil {
		t.Fatalf("expected error")
	}
}
