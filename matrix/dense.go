// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Expose the flat buffer (Data, Row) so numeric kernels can run tight loops.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Row: O(1).

package matrix

import (
	"fmt"
	"strings"
)

// Float is the set of scalar types every lvica kernel is instantiated for.
type Float interface {
	float32 | float64
}

// ---------- error context tags ----------

const (
	ctxAt  = "At"
	ctxSet = "Set"
	ctxRow = "Row"
)

// denseErrorf attaches method context and coordinates to a sentinel error.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense[T Float] struct {
	r, c int // row and column counts (> 0)
	data []T // contiguous row-major storage (len == r*c)
}

// NewDense creates an r×c zero matrix using row-major storage.
//
// Errors:
//   - ErrInvalidDimensions when rows<=0 or cols<=0.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense[T Float](rows, cols int) (*Dense[T], error) {
	// Validate shape.
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense[T]{r: rows, c: cols, data: make([]T, rows*cols)}, nil
}

// NewDenseFrom wraps data (len == rows*cols, row-major) without copying.
// The caller keeps ownership of data; mutations are visible both ways.
//
// Errors:
//   - ErrInvalidDimensions for non-positive shape.
//   - ErrDimensionMismatch when len(data) != rows*cols.
func NewDenseFrom[T Float](rows, cols int, data []T) (*Dense[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, matrixErrorf(opNewDense, ErrInvalidDimensions)
	}
	if len(data) != rows*cols {
		return nil, matrixErrorf(opNewDense, ErrDimensionMismatch)
	}

	return &Dense[T]{r: rows, c: cols, data: data}, nil
}

// NewIdentity returns I_n.
// Complexity: O(n^2) zeroing + O(n) diagonal writes.
func NewIdentity[T Float](n int) (*Dense[T], error) {
	id, err := NewDense[T](n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ { // fixed i order
		id.data[i*n+i] = 1
	}

	return id, nil
}

// Rows returns the row count.
func (m *Dense[T]) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense[T]) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call.
func (m *Dense[T]) Shape() (rows, cols int) { return m.r, m.c }

// Data returns the flat row-major backing slice (no copy).
// Hot kernels index it directly as data[i*Cols()+j].
func (m *Dense[T]) Data() []T { return m.data }

// indexOf computes the row-major offset or returns ErrOutOfRange.
func (m *Dense[T]) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Complexity: O(1).
func (m *Dense[T]) At(row, col int) (T, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err) // wrap with context
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns ErrOutOfRange.
// Complexity: O(1).
func (m *Dense[T]) Set(row, col int, v T) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	m.data[off] = v

	return nil
}

// Row returns a no-copy slice over row i.
//
// Errors:
//   - ErrOutOfRange when i is outside [0, Rows()).
func (m *Dense[T]) Row(i int) ([]T, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}
	base := i * m.c

	return m.data[base : base+m.c : base+m.c], nil
}

// Clone returns a deep copy (new buffer).
// Complexity: O(r*c).
func (m *Dense[T]) Clone() *Dense[T] {
	cp := make([]T, len(m.data))
	copy(cp, m.data)

	return &Dense[T]{r: m.r, c: m.c, data: cp}
}

// String provides a readable row-wise dump for diagnostics.
// Not for hot paths; prefer printing a few rows of large matrices.
func (m *Dense[T]) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString("[")
		base = i * m.c
		for j = 0; j < m.c; j++ {
			fmt.Fprintf(&b, "%g", m.data[base+j])
			if j+1 < m.c {
				b.WriteString(", ")
			}
		}
		b.WriteString("]\n")
	}

	return b.String()
}

// Convert returns a copy of src with every element converted to S.
// Used at precision boundaries (float32 data feeding float64 statistics).
func Convert[S, T Float](src *Dense[T]) (*Dense[S], error) {
	if src == nil {
		return nil, matrixErrorf(opConvert, ErrNilMatrix)
	}
	out := make([]S, len(src.data))
	for i, v := range src.data {
		out[i] = S(v)
	}

	return &Dense[S]{r: src.r, c: src.c, data: out}, nil
}
