// SPDX-License-Identifier: MIT

package ica

import (
	"math"

	"github.com/katalvlaran/lvica/matrix"
)

// AmariIndex measures how far the square matrix P = Unmixing·Mixing is from
// a scaled permutation matrix:
//
//	A(P) = 1/(2n(n-1)) · [ Σ_i (Σ_j |p_ij| / max_k |p_ik| - 1)
//	                     + Σ_j (Σ_i |p_ij| / max_k |p_kj| - 1) ]
//
// The result lies in [0, 1] and is 0 exactly for a scaled permutation.
// It returns NaN for nil, non-square or 1×1 input, or a zero row/column.
func AmariIndex(p *matrix.Dense[float64]) float64 {
	if p == nil || p.Rows() != p.Cols() || p.Rows() < 2 {
		return math.NaN()
	}
	n := p.Rows()
	d := p.Data()

	var sum float64
	for i := 0; i < n; i++ {
		var rowSum, rowMax float64
		for j := 0; j < n; j++ {
			v := math.Abs(d[i*n+j])
			rowSum += v
			rowMax = math.Max(rowMax, v)
		}
		sum += rowSum/rowMax - 1
	}
	for j := 0; j < n; j++ {
		var colSum, colMax float64
		for i := 0; i < n; i++ {
			v := math.Abs(d[i*n+j])
			colSum += v
			colMax = math.Max(colMax, v)
		}
		sum += colSum/colMax - 1
	}

	return sum / float64(2*n*(n-1))
}
