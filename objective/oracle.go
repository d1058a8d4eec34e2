// SPDX-License-Identifier: MIT

package objective

import (
	"fmt"

	"github.com/katalvlaran/lvica/matrix"
	"github.com/katalvlaran/lvica/optim"
)

// Oracle binds the objective to batch k for the float64 optimizer boundary.
// The returned oracle shares the Likelihood's scratch and, like it, is not
// safe for concurrent use.
func (l *Likelihood[T]) Oracle(k int) optim.Oracle {
	return &batchOracle[T]{l: l, k: k, x: make([]T, l.Dim()), g: make([]T, l.Dim())}
}

type batchOracle[T matrix.Float] struct {
	l    *Likelihood[T]
	k    int
	x, g []T
}

// Evaluate implements optim.Oracle.
func (o *batchOracle[T]) Evaluate(x, grad []float64) (float64, error) {
	if len(x) != len(o.x) {
		return 0, fmt.Errorf("objective.Oracle: len(x)=%d, want %d: %w", len(x), len(o.x), matrix.ErrDimensionMismatch)
	}
	for i, v := range x {
		o.x[i] = T(v)
	}
	if grad == nil {
		return o.l.evaluate(o.k, o.x, nil)
	}
	if len(grad) != len(o.g) {
		return 0, fmt.Errorf("objective.Oracle: len(grad)=%d, want %d: %w", len(grad), len(o.g), matrix.ErrDimensionMismatch)
	}
	v, err := o.l.evaluate(o.k, o.x, o.g)
	if err != nil {
		return 0, err
	}
	for i, g := range o.g {
		grad[i] = float64(g)
	}

	return v, nil
}
