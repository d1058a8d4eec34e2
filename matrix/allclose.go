// SPDX-License-Identifier: MIT

package matrix

import "math"

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// NaN != anything. Time: O(r*c). Space: O(1). Deterministic.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol|; NaN/Inf tolerances are rejected.
func AllClose[T Float](a, b *Dense[T], rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	var av, bv float64
	for idx := range a.data {
		av, bv = float64(a.data[idx]), float64(b.data[idx])
		// NaN fails the comparison below on its own.
		if !(math.Abs(av-bv) <= atol+rtol*math.Abs(bv)) {
			return false, nil // early-exit on first violation
		}
	}

	return true, nil
}
