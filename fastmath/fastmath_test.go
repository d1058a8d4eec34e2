package fastmath_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvica/fastmath"
)

// linspace32 returns n float32 points evenly spaced over [lo, hi].
func linspace32(lo, hi float64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(lo + (hi-lo)*float64(i)/float64(n-1))
	}
	return out
}

// requireRel asserts |got-want| <= rel*|want| + abs for every element.
func requireRel(t *testing.T, name string, in, got []float32, ref func(float64) float64, rel, abs float64) {
	t.Helper()
	for i := range in {
		want := ref(float64(in[i]))
		diff := math.Abs(float64(got[i]) - want)
		require.LessOrEqualf(t, diff, rel*math.Abs(want)+abs,
			"%s(%g): got %g want %g", name, in[i], got[i], want)
	}
}

func TestExpWithinBound(t *testing.T) {
	in := linspace32(-87, 88, 20011)
	got := make([]float32, len(in))
	fastmath.Exp(got, in)
	requireRel(t, "exp", in, got, math.Exp, fastmath.MaxRelError, 0)
}

func TestExpSaturation(t *testing.T) {
	in := []float32{-200, 200, float32(math.NaN())}
	got := make([]float32, len(in))
	fastmath.Exp(got, in)
	require.Equal(t, float32(0), got[0])
	require.True(t, math.IsInf(float64(got[1]), 1))
	require.True(t, math.IsNaN(float64(got[2])))
}

func TestLogWithinBound(t *testing.T) {
	// Log-spaced positive inputs from 1e-30 to 1e30, plus a dense band around 1.
	in := make([]float32, 0, 24000)
	for _, e := range linspace32(-30, 30, 12000) {
		in = append(in, float32(math.Pow(10, float64(e))))
	}
	in = append(in, linspace32(0.5, 2, 12000)...)
	got := make([]float32, len(in))
	fastmath.Log(got, in)
	requireRel(t, "log", in, got, math.Log, fastmath.MaxRelError, 1e-7)
}

func TestLogSpecialValues(t *testing.T) {
	in := []float32{0, -1, float32(math.Inf(1)), 1e-40}
	got := make([]float32, len(in))
	fastmath.Log(got, in)
	require.True(t, math.IsInf(float64(got[0]), -1))
	require.True(t, math.IsNaN(float64(got[1])))
	require.True(t, math.IsInf(float64(got[2]), 1))
	// Subnormal input keeps full relative accuracy.
	want := math.Log(float64(in[3]))
	require.InDelta(t, want, float64(got[3]), fastmath.MaxRelError*math.Abs(want))
}

func TestTanhWithinBound(t *testing.T) {
	in := linspace32(-12, 12, 24001)
	got := make([]float32, len(in))
	fastmath.Tanh(got, in)
	requireRel(t, "tanh", in, got, math.Tanh, fastmath.MaxRelError, 1e-9)
}

func TestLogCoshTanhVec(t *testing.T) {
	in := linspace32(-20, 20, 8000)
	var x, lc, th fastmath.Vec
	for i := 0; i+fastmath.Lanes <= len(in); i += fastmath.Lanes {
		copy(x[:], in[i:i+fastmath.Lanes])
		fastmath.LogCoshTanhVec(&x, &lc, &th)
		for l := range x {
			u := float64(x[l])
			wantLC := math.Log(math.Cosh(u))
			require.InDeltaf(t, wantLC, float64(lc[l]), 2e-6*(1+math.Abs(wantLC)), "logcosh(%g)", u)
			require.InDeltaf(t, math.Tanh(u), float64(th[l]), fastmath.MaxRelError, "tanh(%g)", u)
		}
	}
}

// TestTailLanes checks that lengths that are not a multiple of Lanes are
// handled exactly like full lanes.
func TestTailLanes(t *testing.T) {
	for _, n := range []int{1, fastmath.Lanes - 1, fastmath.Lanes + 5, 3*fastmath.Lanes + 1} {
		in := linspace32(-3, 3, n+1)[:n]
		got := make([]float32, n)
		fastmath.Tanh(got, in)
		var v fastmath.Vec
		for i, x := range in {
			v[0] = x
			fastmath.TanhVec(&v)
			require.Equal(t, v[0], got[i], "n=%d i=%d", n, i)
		}
	}
}

func TestEvaluatorModes(t *testing.T) {
	require.True(t, fastmath.NewEvaluator[float64](0).Exact())
	require.True(t, fastmath.NewEvaluator[float64](fastmath.MaxRelError/2).Exact())
	require.False(t, fastmath.NewEvaluator[float64](fastmath.MaxRelError).Exact())
	require.False(t, fastmath.Evaluator[float32]{}.Exact())
}

func TestEvaluatorApproxMatchesExact(t *testing.T) {
	const n = 1003 // deliberately not a multiple of Lanes
	x := make([]float64, n)
	for i := range x {
		x[i] = -6 + 12*float64(i)/float64(n-1)
	}
	approx := fastmath.NewEvaluator[float64](1e-5)
	exact := fastmath.NewEvaluator[float64](0)

	thA := make([]float64, n)
	thE := make([]float64, n)
	const bias = 0.25
	sumA := approx.LogCoshTanh(x, bias, thA)
	sumE := exact.LogCoshTanh(x, bias, thE)
	require.InDelta(t, sumE, sumA, 1e-5*n)
	for i := range x {
		require.InDelta(t, thE[i], thA[i], 2e-6)
	}

	// Skipping the tanh output does not change the sum.
	require.Equal(t, sumA, approx.LogCoshTanh(x, bias, nil))

	expA := make([]float64, n)
	expE := make([]float64, n)
	approx.Exp(expA, x)
	exact.Exp(expE, x)
	for i := range x {
		require.InDelta(t, expE[i], expA[i], 2*fastmath.MaxRelError*expE[i])
	}
}

func TestEvaluatorLogFloat32(t *testing.T) {
	in := []float32{0.125, 1, 3, 1e6}
	got := make([]float32, len(in))
	fastmath.Evaluator[float32]{}.Log(got, in)
	requireRel(t, "log", in, got, math.Log, fastmath.MaxRelError, 1e-7)

	exact := make([]float32, len(in))
	fastmath.NewEvaluator[float32](0).Log(exact, in)
	requireRel(t, "log", in, exact, math.Log, 1e-7, 0)
}
