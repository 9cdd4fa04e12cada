package spinchain

import (
	"testing"

	"spinchain/mat"
)

func TestSiteOperator(t *testing.T) {
	t.Parallel()
	// Spin 0 occupies the least significant bit, so sigma^x on site 0 of a
	// 2-spin chain couples states 0-1 and 2-3.
	got := SiteOperator(2, map[int][][]complex128{0: mat.PauliX})
	want := mat.M([][]complex128{
		{0, 1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	})
	if !got.Equal(want) {
		t.Fatalf("%s, expected %s", got, want)
	}

	got = SiteOperator(2, map[int][][]complex128{1: mat.PauliZ})
	want = mat.M([][]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, -1, 0},
		{0, 0, 0, -1},
	})
	if !got.Equal(want) {
		t.Fatalf("%s, expected %s", got, want)
	}
}

func TestTransverseFieldIsingZeroField(t *testing.T) {
	t.Parallel()
	// Without a field the Hamiltonian is -sigma^z_0 sigma^z_1, diagonal with
	// entries -1, 1, 1, -1.
	H, err := TransverseFieldIsing(2, 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	h, err := H.GetMat(Full{}, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	want := []complex128{-1, 1, 1, -1}
	src := make([]complex128, 4)
	dst := make([]complex128, 4)
	for i := range want {
		for j := range src {
			src[j] = 0
		}
		src[i] = 1
		h.MatVec(dst, src)
		if dst[i] != want[i] {
			t.Fatalf("%d: %v, expected %v", i, dst[i], want[i])
		}
	}
}

func TestTransverseFieldIsingHermitian(t *testing.T) {
	t.Parallel()
	H, err := TransverseFieldIsing(3, 0.8)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	d := dense(t, H)
	for i := 0; i < d.Rows(); i++ {
		for j := 0; j < d.Cols(); j++ {
			a, b := d.At(i, j), d.At(j, i)
			if real(a) != real(b) || imag(a) != -imag(b) {
				t.Fatalf("%d %d: %v %v", i, j, a, b)
			}
		}
	}
}
