// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All functions in this package return these sentinels (optionally wrapped
// with an operation tag via matrixErrorf) and tests match them with errors.Is.
// No function panics on user-triggered error conditions.

package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands
	// or a backing slice whose length does not match rows*cols.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNilMatrix indicates that a nil *Dense (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrBadPermutation indicates a permutation that is not a bijection on 0..n-1.
	ErrBadPermutation = errors.New("matrix: invalid permutation")
)

// Operation tags for uniform error wrapping.
const (
	opNewDense  = "NewDenseFrom"
	opPermute   = "PermuteColumns"
	opAllClose  = "AllClose"
	opConvert   = "Convert"
	opCheckFini = "ValidateFinite"
)

// matrixErrorf wraps err with an operation tag, preserving it for errors.Is.
// Call only with a non-nil err.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
