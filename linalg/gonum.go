// SPDX-License-Identifier: MIT

package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"

	"github.com/katalvlaran/lvica/matrix"
)

// Gonum routes the kernels through gonum's blas32/blas64 and lapack64
// wrappers, so a cgo BLAS registered with blas64.Use is picked up as well.
// LAPACK has no single-precision wrapper in gonum; float32 factors are
// computed in float64 and rounded back.
type Gonum[T matrix.Float] struct{}

var (
	_ Backend[float32] = Gonum[float32]{}
	_ Backend[float64] = Gonum[float64]{}
)

// Name implements Backend.
func (Gonum[T]) Name() string { return NameGonum }

func blasTrans(t Transpose) blas.Transpose {
	if t == Trans {
		return blas.Trans
	}
	return blas.NoTrans
}

// stored returns the row/column counts of X as laid out in memory.
func stored(t Transpose, rows, cols int) (int, int) {
	if t == Trans {
		return cols, rows
	}
	return rows, cols
}

// Gemm implements Backend.
func (Gonum[T]) Gemm(tA, tB Transpose, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int) {
	if m == 0 || n == 0 {
		return
	}
	ar, ac := stored(tA, m, k)
	br, bc := stored(tB, k, n)

	switch av := any(a).(type) {
	case []float64:
		blas64.Gemm(blasTrans(tA), blasTrans(tB), float64(alpha),
			blas64.General{Rows: ar, Cols: ac, Stride: lda, Data: av},
			blas64.General{Rows: br, Cols: bc, Stride: ldb, Data: any(b).([]float64)},
			float64(beta),
			blas64.General{Rows: m, Cols: n, Stride: ldc, Data: any(c).([]float64)})
	case []float32:
		blas32.Gemm(blasTrans(tA), blasTrans(tB), float32(alpha),
			blas32.General{Rows: ar, Cols: ac, Stride: lda, Data: av},
			blas32.General{Rows: br, Cols: bc, Stride: ldb, Data: any(b).([]float32)},
			float32(beta),
			blas32.General{Rows: m, Cols: n, Stride: ldc, Data: any(c).([]float32)})
	}
}

// Getrf implements Backend.
func (Gonum[T]) Getrf(n int, a []T, lda int, ipiv []int) error {
	if n == 0 {
		return nil
	}
	g, writeBack := widen(n, a, lda)
	ok := lapack64.Getrf(g, ipiv[:n])
	writeBack()
	if !ok {
		return fmt.Errorf("Getrf: %w", ErrSingular)
	}

	return nil
}

// Getri implements Backend.
func (Gonum[T]) Getri(n int, a []T, lda int, ipiv []int) error {
	if n == 0 {
		return nil
	}
	g, writeBack := widen(n, a, lda)

	// Workspace query, then the inversion proper.
	work := []float64{0}
	lapack64.Getri(g, ipiv[:n], work, -1)
	lwork := max(int(work[0]), n)
	work = make([]float64, lwork)
	ok := lapack64.Getri(g, ipiv[:n], work, lwork)
	writeBack()
	if !ok {
		return fmt.Errorf("Getri: %w", ErrSingular)
	}

	return nil
}

// widen exposes the n×n block of a as a blas64.General. For float64 the
// storage is shared and writeBack is a no-op; for float32 a packed copy is
// made and writeBack rounds it into a.
func widen[T matrix.Float](n int, a []T, lda int) (blas64.General, func()) {
	if d, ok := any(a).([]float64); ok {
		return blas64.General{Rows: n, Cols: n, Stride: lda, Data: d}, func() {}
	}

	d := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d[i*n+j] = float64(a[i*lda+j])
		}
	}
	g := blas64.General{Rows: n, Cols: n, Stride: n, Data: d}

	return g, func() {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				a[i*lda+j] = T(d[i*n+j])
			}
		}
	}
}
