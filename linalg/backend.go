// SPDX-License-Identifier: MIT
// Package linalg defines the dense linear-algebra backend consumed by the
// likelihood objective and the estimation driver.
//
// Purpose:
//   - Declare the three kernels the core needs: general matrix multiply,
//     LU factorization with partial pivoting, and inversion from that factor.
//   - Provide two interchangeable implementations: Native (pure Go) and
//     Gonum (gonum BLAS/LAPACK).
//
// Conventions:
//   - All matrices are row-major; lda/ldb/ldc are row strides (>= column count).
//   - ipiv is zero-based: row i was interchanged with row ipiv[i].
//   - A factor produced by one backend must be inverted by the same backend.
package linalg

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvica/matrix"
)

var (
	// ErrSingular is returned when the LU factor has an exactly zero pivot.
	ErrSingular = errors.New("linalg: singular matrix")

	// ErrUnknownBackend is returned by Lookup for an unregistered name.
	ErrUnknownBackend = errors.New("linalg: unknown backend")
)

// Transpose selects op(X) = X or op(X) = Xᵀ in Gemm.
type Transpose bool

const (
	NoTrans Transpose = false
	Trans   Transpose = true
)

// Backend is the dense linear-algebra contract, instantiated per precision.
type Backend[T matrix.Float] interface {
	// Name identifies the implementation ("native", "gonum").
	Name() string

	// Gemm computes C = alpha·op(A)·op(B) + beta·C, where op(A) is m×k,
	// op(B) is k×n and C is m×n.
	Gemm(tA, tB Transpose, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int)

	// Getrf factors the n×n matrix a in place as P·A = L·U (L unit lower,
	// stored below the diagonal; U on and above it) and fills ipiv.
	// ErrSingular is returned when a pivot is exactly zero; a is still the
	// completed factor in that case.
	Getrf(n int, a []T, lda int, ipiv []int) error

	// Getri overwrites an LU factor produced by Getrf with A⁻¹.
	Getri(n int, a []T, lda int, ipiv []int) error
}

// Backend names accepted by Lookup.
const (
	NameNative = "native"
	NameGonum  = "gonum"
)

// Lookup returns the backend registered under name. The empty name selects Gonum.
func Lookup[T matrix.Float](name string) (Backend[T], error) {
	switch name {
	case "", NameGonum:
		return Gonum[T]{}, nil
	case NameNative:
		return Native[T]{}, nil
	}

	return nil, fmt.Errorf("linalg.Lookup(%q): %w", name, ErrUnknownBackend)
}

// LogAbsDet returns log|det A| computed from an LU factor of A, together with
// the ratio min|U_ii| / max|U_ii|. A ratio of 0 (or NaN) marks an exactly
// singular or non-finite factor; small ratios mark near-singular matrices.
//
// Complexity: O(n).
func LogAbsDet[T matrix.Float](n int, lu []T, lda int) (logDet, pivotRatio float64) {
	if n == 0 {
		return 0, 1
	}
	var d, lo, hi float64
	lo = math.Inf(1)
	for i := 0; i < n; i++ {
		d = math.Abs(float64(lu[i*lda+i]))
		logDet += math.Log(d) // sum of logs; the product underflows for large n
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	if hi == 0 || math.IsInf(hi, 0) || math.IsNaN(hi) {
		return logDet, 0
	}

	return logDet, lo / hi
}
