// SPDX-License-Identifier: MIT
// Package whiten computes the sphering transform applied to observed data
// before unmixing.
//
// The sphering matrix S = C^{-1/2} is built from the sample covariance C of
// the channels (unbiased, NF-1 denominator) through its symmetric
// eigendecomposition C = V·diag(λ)·Vᵀ:
//
//	S = V·diag(1/√λ)·Vᵀ
//
// S is symmetric and S·C·S = I.
package whiten

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/lvica/matrix"
)

var (
	// ErrRankDeficient is returned when the covariance has a non-positive or
	// numerically negligible eigenvalue.
	ErrRankDeficient = errors.New("whiten: covariance is rank deficient")

	// ErrEigen is returned when the eigendecomposition does not converge.
	ErrEigen = errors.New("whiten: eigendecomposition failed")
)

// RankTolerance scales the smallest admissible eigenvalue: λ must exceed
// nc·RankTolerance·λmax. The covariance is always formed in float64.
const RankTolerance = 1e-12

// Sphere returns the nc×nc sphering matrix of the channel-major nc×nf data.
//
// Errors:
//   - matrix.ErrInvalidDimensions for nc<1, nf<2 or len(data) != nc*nf.
//   - ErrRankDeficient when some eigenvalue λ <= nc·RankTolerance·λmax.
//   - ErrEigen when gonum fails to factorize.
func Sphere[T matrix.Float](nc, nf int, data []T) (*matrix.Dense[T], error) {
	if nc < 1 || nf < 2 || len(data) != nc*nf {
		return nil, fmt.Errorf("whiten.Sphere(%d×%d, len=%d): %w", nc, nf, len(data), matrix.ErrInvalidDimensions)
	}

	// Observations are columns of data; stat wants them as rows.
	var x64 []float64
	if d, ok := any(data).([]float64); ok {
		x64 = d
	} else {
		x64 = make([]float64, len(data))
		for i, v := range data {
			x64[i] = float64(v)
		}
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, mat.NewDense(nc, nf, x64).T(), nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return nil, fmt.Errorf("whiten.Sphere: %w", ErrEigen)
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	lmax := 0.0
	for _, l := range vals {
		lmax = math.Max(lmax, l)
	}
	floor := float64(nc) * RankTolerance * lmax
	for i, l := range vals {
		if !(l > floor) {
			return nil, fmt.Errorf("whiten.Sphere: eigenvalue %d = %g (max %g): %w", i, l, lmax, ErrRankDeficient)
		}
	}

	// S = V·diag(1/√λ)·Vᵀ
	scaled := mat.DenseCopyOf(&vecs)
	scaled.Apply(func(_, j int, v float64) float64 { return v / math.Sqrt(vals[j]) }, scaled)
	var s mat.Dense
	s.Mul(scaled, vecs.T())

	out, err := matrix.NewDense[T](nc, nc)
	if err != nil {
		return nil, err
	}
	dst := out.Data()
	for i := 0; i < nc; i++ {
		for j := 0; j < nc; j++ {
			dst[i*nc+j] = T(s.At(i, j))
		}
	}

	return out, nil
}
