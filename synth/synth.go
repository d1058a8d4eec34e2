// SPDX-License-Identifier: MIT
// Package synth generates benchmark signals for the estimator.
//
// Artificial produces four deterministic waveforms sampled over
// t ∈ [-span/2, span/2):
//
//	s0 = sin 3t + cos 6t
//	s1 = cos 10t
//	s2 = sin 5t
//	s3 = sin t²
//
// Mix combines channel-major sources with a random mixing matrix whose
// entries are uniform on [0, 1).
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvica/linalg"
	"github.com/katalvlaran/lvica/matrix"
)

// Channels is the number of waveforms Artificial returns.
const Channels = 4

// DefaultSpan is the default width of the time window.
const DefaultSpan = 20.0

// Artificial returns the 4×nf source matrix.
func Artificial(nf int, span float64) (*matrix.Dense[float64], error) {
	if nf < 1 || !(span > 0) {
		return nil, fmt.Errorf("synth.Artificial(nf=%d, span=%g): %w", nf, span, matrix.ErrInvalidDimensions)
	}
	out, err := matrix.NewDense[float64](Channels, nf)
	if err != nil {
		return nil, err
	}
	d := out.Data()
	step := span / float64(nf)
	for f := 0; f < nf; f++ {
		t := -span/2 + float64(f)*step
		d[f] = math.Sin(3*t) + math.Cos(6*t)
		d[nf+f] = math.Cos(10 * t)
		d[2*nf+f] = math.Sin(5 * t)
		d[3*nf+f] = math.Sin(t * t)
	}
	return out, nil
}

// RandomMixing returns an nc×nc matrix with entries uniform on [0, 1),
// drawn from a PCG stream seeded with seed.
func RandomMixing(nc int, seed uint64) (*matrix.Dense[float64], error) {
	m, err := matrix.NewDense[float64](nc, nc)
	if err != nil {
		return nil, err
	}
	u := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
	d := m.Data()
	for i := range d {
		d[i] = u.Rand()
	}
	return m, nil
}

// Mix returns a·s.
func Mix(a, s *matrix.Dense[float64]) (*matrix.Dense[float64], error) {
	if a == nil || s == nil {
		return nil, matrix.ErrNilMatrix
	}
	if err := matrix.ValidateSquare(a); err != nil {
		return nil, fmt.Errorf("synth.Mix: %w", err)
	}
	nc, nf := s.Shape()
	if a.Rows() != nc {
		return nil, fmt.Errorf("synth.Mix: %d×%d mixing for %d channels: %w", a.Rows(), a.Cols(), nc, matrix.ErrDimensionMismatch)
	}
	out, err := matrix.NewDense[float64](nc, nf)
	if err != nil {
		return nil, err
	}
	linalg.Gonum[float64]{}.Gemm(linalg.NoTrans, linalg.NoTrans, nc, nf, nc,
		1, a.Data(), nc, s.Data(), nf, 0, out.Data(), nf)
	return out, nil
}
