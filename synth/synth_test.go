package synth_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvica/matrix"
	"github.com/katalvlaran/lvica/synth"
)

func TestArtificial(t *testing.T) {
	s, err := synth.Artificial(1000, synth.DefaultSpan)
	require.NoError(t, err)
	require.Equal(t, synth.Channels, s.Rows())
	require.Equal(t, 1000, s.Cols())

	// Sample 500 sits at t = 0.
	for c, want := range []float64{1, 1, 0, 0} {
		got, err := s.At(c, 500)
		require.NoError(t, err)
		require.InDelta(t, want, got, 1e-12)
	}
	// First sample sits at t = -10.
	got, _ := s.At(3, 0)
	require.InDelta(t, math.Sin(100), got, 1e-12)

	_, err = synth.Artificial(0, 1)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = synth.Artificial(10, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestRandomMixingDeterministic(t *testing.T) {
	a, err := synth.RandomMixing(4, 7)
	require.NoError(t, err)
	b, err := synth.RandomMixing(4, 7)
	require.NoError(t, err)
	require.Equal(t, a.Data(), b.Data())
	for _, v := range a.Data() {
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
	c, err := synth.RandomMixing(4, 8)
	require.NoError(t, err)
	require.NotEqual(t, a.Data(), c.Data())
}

func TestMix(t *testing.T) {
	a, err := matrix.NewDenseFrom(2, 2, []float64{1, 2, 0, 1})
	require.NoError(t, err)
	s, err := matrix.NewDenseFrom(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	x, err := synth.Mix(a, s)
	require.NoError(t, err)
	require.Equal(t, []float64{9, 12, 15, 4, 5, 6}, x.Data())

	wrong, err := matrix.NewDense[float64](3, 3)
	require.NoError(t, err)
	_, err = synth.Mix(wrong, s)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = synth.Mix(nil, s)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}
