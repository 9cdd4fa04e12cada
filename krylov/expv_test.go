package krylov

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"spinchain/mat"
)

func TestExpvDiagonal(t *testing.T) {
	t.Parallel()
	op := &diagOp{d: []float64{1, 2, 3, -1}}
	src := []complex128{0.5, -0.25, 1, 2i}
	dst := make([]complex128, 4)

	res, err := Expv(dst, op, -0.5, src)
	require.NoError(t, err)
	require.Equal(t, Converged, res.Reason)
	for i, d := range op.d {
		want := complex(math.Exp(-0.5*d), 0) * src[i]
		require.InDelta(t, 0, cmplx.Abs(dst[i]-want), 1e-6)
	}
}

func TestExpvUnitary(t *testing.T) {
	t.Parallel()
	// exp(-i theta sigma_x)|0> = cos(theta)|0> - i sin(theta)|1>.
	theta := 0.7
	src := []complex128{1, 0}
	dst := make([]complex128, 2)

	res, err := Expv(dst, &cooOp{m: mat.M(mat.PauliX)}, complex(0, -theta), src)
	require.NoError(t, err)
	require.Equal(t, Converged, res.Reason)
	require.InDelta(t, 0, cmplx.Abs(dst[0]-complex(math.Cos(theta), 0)), 1e-6)
	require.InDelta(t, 0, cmplx.Abs(dst[1]-complex(0, -math.Sin(theta))), 1e-6)
}

func TestExpvZeroScale(t *testing.T) {
	t.Parallel()
	op := &diagOp{d: []float64{1, 2}}
	src := []complex128{3, 4i}
	dst := make([]complex128, 2)

	res, err := Expv(dst, op, 0, src)
	require.NoError(t, err)
	require.Equal(t, Converged, res.Reason)
	require.Equal(t, src, dst)
}

func TestExpvAdaptive(t *testing.T) {
	t.Parallel()
	op := &diagOp{d: []float64{1, 2, 3, -1}}
	src := []complex128{0.5, -0.25, 1, 2i}
	dst := make([]complex128, 4)

	opt := NewExpOptions().SetAlgo(AlgoKrylov).NCV(3)
	res, err := Expv(dst, op, -2, src, opt)
	require.NoError(t, err)
	require.Equal(t, Converged, res.Reason)
	for i, d := range op.d {
		want := complex(math.Exp(-2*d), 0) * src[i]
		require.InDelta(t, 0, cmplx.Abs(dst[i]-want), 1e-4)
	}
}

func TestExpvMaxIterations(t *testing.T) {
	t.Parallel()
	op := &diagOp{d: []float64{1, 2}}
	src := []complex128{1, 1}
	dst := make([]complex128, 2)

	res, err := Expv(dst, op, 1000, src, NewExpOptions().MaxIterations(1))
	require.NoError(t, err)
	require.Equal(t, DivergedIterations, res.Reason)
}

func TestTstep(t *testing.T) {
	t.Parallel()
	ts, err := Tstep(30, 10, 1e-7)
	require.NoError(t, err)
	require.Greater(t, ts, 0.0)

	// Larger subspaces allow longer sub-steps.
	ts2, err := Tstep(40, 10, 1e-7)
	require.NoError(t, err)
	require.Greater(t, ts2, ts)

	_, err = Tstep(0, 10, 1e-7)
	require.Error(t, err)
	_, err = Tstep(30, -1, 1e-7)
	require.Error(t, err)
	_, err = Tstep(30, 10, 0)
	require.Error(t, err)
}

func TestEstimateComputeTime(t *testing.T) {
	t.Parallel()
	c, err := EstimateComputeTime(1, 30, 10, 1e-7)
	require.NoError(t, err)
	require.Greater(t, c, 0.0)

	// Cost grows with evolution time.
	c2, err := EstimateComputeTime(100, 30, 10, 1e-7)
	require.NoError(t, err)
	require.Greater(t, c2, c)

	_, err = EstimateComputeTime(-1, 30, 10, 1e-7)
	require.Error(t, err)
}
