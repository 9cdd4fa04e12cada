package spinchain

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"spinchain/mat"
)

func TestEvolveZeroTime(t *testing.T) {
	t.Parallel()
	rt := NewRuntime()
	H, err := TransverseFieldIsing(3, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 3, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi.SetRandom(3)

	// Zero time must copy the state without touching the solver.
	out, err := Evolve(rt, H, psi, 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	d, err := psi.Dot(out)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if cmplx.Abs(d-1) > 1e-12 {
		t.Fatalf("%v", d)
	}
}

func TestEvolveSpinFlip(t *testing.T) {
	t.Parallel()
	// exp(-i (pi/2) sigma_x)|0> = -i|1>.
	rt := NewRuntime()
	H, err := NewOperator(1, mat.M(mat.PauliX))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 1, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := psi.SetProduct(0); err != nil {
		t.Fatalf("%+v", err)
	}

	out, err := Evolve(rt, H, psi, complex(math.Pi/2, 0))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	one, err := NewState(rt, 1, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := one.SetProduct(1); err != nil {
		t.Fatalf("%+v", err)
	}
	d, err := one.Dot(out)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if math.Abs(cmplx.Abs(d)-1) > 1e-6 {
		t.Fatalf("%v", d)
	}
}

func TestEvolveNormPreserved(t *testing.T) {
	t.Parallel()
	rt := NewRuntime()
	H, err := TransverseFieldIsing(4, 0.7)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 4, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi.SetRandom(11)

	out, err := Evolve(rt, H, psi, 1.3)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if math.Abs(out.Norm()-1) > 1e-6 {
		t.Fatalf("%f", out.Norm())
	}
}

func TestEvolveImaginaryTime(t *testing.T) {
	t.Parallel()
	// For t = -i tau the evolution is exp(-H tau), which damps the excited
	// component of sigma_z.
	rt := NewRuntime()
	H, err := NewOperator(1, mat.M(mat.PauliZ))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 1, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	s := complex(1/math.Sqrt(2), 0)
	psi.Vec()[0], psi.Vec()[1] = s, s
	psi.SetInitialized()

	const tau = 2.0
	out, err := Evolve(rt, H, psi, complex(0, -tau))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	// Amplitudes become e^{-tau}/sqrt(2) and e^{tau}/sqrt(2).
	v := out.Vec()
	if cmplx.Abs(v[0]-s*complex(math.Exp(-tau), 0)) > 1e-5 {
		t.Fatalf("%v", v[0])
	}
	if cmplx.Abs(v[1]-s*complex(math.Exp(tau), 0)) > 1e-4 {
		t.Fatalf("%v", v[1])
	}
}

func TestEvolveResultBuffer(t *testing.T) {
	t.Parallel()
	rt := NewRuntime()
	H, err := TransverseFieldIsing(3, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 3, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi.SetRandom(5)
	buf, err := NewState(rt, 3, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	out, err := Evolve(rt, H, psi, 0.5, NewEvolveOptions().Result(buf))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if out != buf {
		t.Fatalf("result buffer not used")
	}
	if err := buf.AssertInitialized(); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestEvolveUninitializedState(t *testing.T) {
	t.Parallel()
	rt := NewRuntime()
	H, err := TransverseFieldIsing(2, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 2, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := Evolve(rt, H, psi, 1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEvolveSubspaceMismatch(t *testing.T) {
	t.Parallel()
	rt := NewRuntime()
	H, err := TransverseFieldIsing(2, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	even, err := NewParity(0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 2, even)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := psi.SetProduct(0); err != nil {
		t.Fatalf("%+v", err)
	}

	if _, err := Evolve(rt, H, psi, 1); !errors.Is(err, ErrIncompatibleSubspace) {
		t.Fatalf("%+v", err)
	}
}

func TestEvolveRealTimeDisabled(t *testing.T) {
	t.Parallel()
	rt := NewRuntime()
	cfg := DefaultConfig()
	cfg.ComplexEnabled = false
	if err := rt.Initialize(&cfg); err != nil {
		t.Fatalf("%+v", err)
	}

	H, err := TransverseFieldIsing(2, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 2, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi.SetRandom(1)

	if _, err := Evolve(rt, H, psi, 1); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("%+v", err)
	}
	// Imaginary time evolution stays available.
	if _, err := Evolve(rt, H, psi, complex(0, -0.5)); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestEvolveMaxIterations(t *testing.T) {
	t.Parallel()
	rt := NewRuntime()
	H, err := TransverseFieldIsing(4, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi, err := NewState(rt, 4, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	psi.SetRandom(2)

	_, err = Evolve(rt, H, psi, 1000, NewEvolveOptions().MaxIterations(1))
	if !errors.Is(err, ErrMaxIterations) || !errors.Is(err, ErrConvergence) {
		t.Fatalf("%+v", err)
	}
	var cerr *ConvergenceError
	if !errors.As(err, &cerr) || cerr.MaxIts != 1 {
		t.Fatalf("%+v", err)
	}
}
