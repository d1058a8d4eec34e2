// SPDX-License-Identifier: MIT

package linalg

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvica/matrix"
)

// zeroPivot is the sentinel for detecting an exactly singular factor.
const zeroPivot = 0.0

// Native is the pure-Go backend. It has no state and is safe for concurrent use.
type Native[T matrix.Float] struct{}

var (
	_ Backend[float32] = Native[float32]{}
	_ Backend[float64] = Native[float64]{}
)

// Name implements Backend.
func (Native[T]) Name() string { return NameNative }

// Gemm implements Backend with an i-k-j loop order: the innermost loop walks
// contiguous rows of B and C whenever B is not transposed.
//
// Complexity: O(m*n*k).
func (Native[T]) Gemm(tA, tB Transpose, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int) {
	var i, p, j int
	// Stage 1: C = beta·C.
	for i = 0; i < m; i++ {
		row := c[i*ldc : i*ldc+n]
		switch beta {
		case 0:
			clear(row)
		case 1:
		default:
			for j = range row {
				row[j] *= beta
			}
		}
	}
	if alpha == 0 || k == 0 {
		return
	}

	// Stage 2: C += alpha·op(A)·op(B).
	var av T
	for i = 0; i < m; i++ {
		crow := c[i*ldc : i*ldc+n]
		for p = 0; p < k; p++ {
			if tA == NoTrans {
				av = a[i*lda+p]
			} else {
				av = a[p*lda+i]
			}
			if av == 0 {
				continue // skip zero for performance
			}
			av *= alpha
			if tB == NoTrans {
				brow := b[p*ldb : p*ldb+n]
				for j = range brow {
					crow[j] += av * brow[j]
				}
			} else {
				for j = 0; j < n; j++ {
					crow[j] += av * b[j*ldb+p]
				}
			}
		}
	}
}

// Getrf implements Backend with right-looking Doolittle elimination and
// partial (row) pivoting.
//
// Complexity: O(n^3) time, O(1) extra space.
func (Native[T]) Getrf(n int, a []T, lda int, ipiv []int) error {
	var (
		i, j, k, p int
		best, v    float64
		pivot, l   T
		singular   = -1
	)
	for j = 0; j < n; j++ {
		// Choose the largest magnitude in column j at or below the diagonal.
		p, best = j, math.Abs(float64(a[j*lda+j]))
		for i = j + 1; i < n; i++ {
			if v = math.Abs(float64(a[i*lda+j])); v > best {
				p, best = i, v
			}
		}
		ipiv[j] = p
		if p != j {
			rj := a[j*lda : j*lda+n]
			rp := a[p*lda : p*lda+n]
			for k = 0; k < n; k++ {
				rj[k], rp[k] = rp[k], rj[k]
			}
		}

		pivot = a[j*lda+j]
		if pivot == zeroPivot {
			if singular < 0 {
				singular = j
			}
			continue // column already zero below the diagonal
		}
		for i = j + 1; i < n; i++ {
			l = a[i*lda+j] / pivot
			a[i*lda+j] = l
			if l == 0 {
				continue
			}
			for k = j + 1; k < n; k++ {
				a[i*lda+k] -= l * a[j*lda+k]
			}
		}
	}
	if singular >= 0 {
		return fmt.Errorf("Getrf: zero pivot at %d: %w", singular, ErrSingular)
	}

	return nil
}

// Getri implements Backend. For each basis vector e_col it solves
// L·y = P·e_col then U·x = y and writes x into column col of the result.
//
// Complexity: O(n^3) time, O(n^2) scratch.
func (Native[T]) Getri(n int, a []T, lda int, ipiv []int) error {
	// Row permutation: row r of P·A is row perm[r] of A.
	perm := make([]int, n)
	for r := range perm {
		perm[r] = r
	}
	for r := 0; r < n; r++ {
		perm[r], perm[ipiv[r]] = perm[ipiv[r]], perm[r]
	}

	var (
		col, i, k  int
		sum, pivot T
		y          = make([]T, n)   // forward substitution workspace
		x          = make([]T, n)   // backward substitution workspace
		inv        = make([]T, n*n) // result, copied into a at the end
	)
	for col = 0; col < n; col++ {
		// Forward substitution: L·y = P·e_col (unit diagonal).
		for i = 0; i < n; i++ {
			sum = 0
			for k = 0; k < i; k++ {
				sum += a[i*lda+k] * y[k]
			}
			if perm[i] == col {
				y[i] = 1 - sum
			} else {
				y[i] = -sum
			}
		}
		// Backward substitution: U·x = y.
		for i = n - 1; i >= 0; i-- {
			sum = 0
			for k = i + 1; k < n; k++ {
				sum += a[i*lda+k] * x[k]
			}
			pivot = a[i*lda+i]
			if pivot == zeroPivot {
				return fmt.Errorf("Getri: zero pivot at %d: %w", i, ErrSingular)
			}
			x[i] = (y[i] - sum) / pivot
		}
		for i = 0; i < n; i++ {
			inv[i*n+col] = x[i]
		}
	}
	for i = 0; i < n; i++ {
		copy(a[i*lda:i*lda+n], inv[i*n:i*n+n])
	}

	return nil
}
