package batch_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvica/batch"
)

func TestNewRejectsInvalidShape(t *testing.T) {
	for _, tc := range []struct{ samples, width int }{
		{0, 1},
		{10, 0},
		{-3, 2},
		{10, 11},
	} {
		t.Run(fmt.Sprintf("%dx%d", tc.samples, tc.width), func(t *testing.T) {
			_, err := batch.New(tc.samples, tc.width)
			require.ErrorIs(t, err, batch.ErrInvalidShape)
		})
	}
}

func TestBoundsCoverAllSamples(t *testing.T) {
	for _, tc := range []struct {
		samples, width, count, last int
	}{
		{10, 10, 1, 10},
		{10, 3, 4, 1},
		{12, 4, 3, 4},
		{40001, 40000, 2, 1},
	} {
		t.Run(fmt.Sprintf("%d/%d", tc.samples, tc.width), func(t *testing.T) {
			b, err := batch.New(tc.samples, tc.width)
			require.NoError(t, err)
			require.Equal(t, tc.count, b.Count())
			require.Equal(t, tc.width, b.Width())
			require.Equal(t, tc.samples, b.Samples())

			next := 0
			for k := 0; k < b.Count(); k++ {
				off, size, err := b.Bounds(k)
				require.NoError(t, err)
				require.Equal(t, next, off, "batches must be contiguous")
				if k < b.Count()-1 {
					require.Equal(t, tc.width, size)
				} else {
					require.Equal(t, tc.last, size)
				}
				next = off + size
			}
			require.Equal(t, tc.samples, next)
		})
	}
}

func TestBoundsOutOfRange(t *testing.T) {
	b, err := batch.New(10, 4)
	require.NoError(t, err)
	for _, k := range []int{-1, 3, 100} {
		_, _, err = b.Bounds(k)
		require.ErrorIs(t, err, batch.ErrOutOfRange)
	}
}
