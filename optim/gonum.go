// SPDX-License-Identifier: MIT

package optim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Gonum minimizes with gonum's quasi-Newton family. The zero value is ready
// to use; a fresh method is built per call, so no curvature state leaks
// between minibatches.
type Gonum struct{}

var _ Minimizer = Gonum{}

// Minimize implements Minimizer.
//
// Errors:
//   - the oracle's own error, unchanged for errors.Is, when an evaluation fails.
//   - ErrUnknownStrategy for an invalid Settings strategy.
//   - ErrOptimizer for other gonum failures. A stalled line search is not an
//     error: Result.Stalled is set instead.
func (Gonum) Minimize(o Oracle, x0 []float64, s Settings) (Result, error) {
	method, err := newMethod(s.Direction, s.LineSearch)
	if err != nil {
		return Result{}, err
	}

	c := &cachedOracle{o: o, grad: make([]float64, len(x0))}
	prob := optimize.Problem{
		Func:   c.value,
		Grad:   c.gradient,
		Status: c.status,
	}
	settings := &optimize.Settings{
		MajorIterations:   max(s.MaxIterations, 0),
		GradientThreshold: s.GradientThreshold,
	}

	res, err := optimize.Minimize(prob, x0, settings, method)
	if c.err != nil {
		return Result{}, c.err
	}

	out := Result{X: append([]float64(nil), x0...), F: math.NaN(), Evaluations: c.calls}
	if res != nil {
		if len(res.Location.X) == len(x0) {
			copy(out.X, res.Location.X)
		}
		out.F = res.Location.F
		out.Iterations = res.Stats.MajorIterations
	}
	if err != nil {
		if !isStall(err) {
			return out, fmt.Errorf("optim.Gonum: %v: %w", err, ErrOptimizer)
		}
		out.Stalled = true
		if res == nil {
			out.F, _ = o.Evaluate(out.X, nil)
		}
	}

	return out, nil
}

// isStall reports line-search failures that leave a usable best point.
func isStall(err error) bool {
	return errors.Is(err, optimize.ErrNoProgress) ||
		errors.Is(err, optimize.ErrLinesearcherFailure) ||
		errors.Is(err, optimize.ErrNonDescentDirection)
}

func newMethod(d Direction, l LineSearch) (optimize.Method, error) {
	var ls optimize.Linesearcher
	switch l {
	case "", MoreThuente:
		ls = &optimize.MoreThuente{}
	case Bisection:
		ls = &optimize.Bisection{}
	case Backtracking:
		ls = &optimize.Backtracking{}
	default:
		return nil, fmt.Errorf("optim: line search %q: %w", l, ErrUnknownStrategy)
	}

	switch d {
	case "", BFGS:
		return &optimize.BFGS{Linesearcher: ls}, nil
	case LBFGS:
		return &optimize.LBFGS{Linesearcher: ls}, nil
	case CG:
		return &optimize.CG{Linesearcher: ls}, nil
	case GradientDescent:
		return &optimize.GradientDescent{Linesearcher: ls}, nil
	}
	return nil, fmt.Errorf("optim: direction %q: %w", d, ErrUnknownStrategy)
}

// cachedOracle evaluates value and gradient together and serves gonum's
// separate Func/Grad callbacks from the last evaluation. The first oracle
// error is latched and reported through Status, which stops the run.
type cachedOracle struct {
	o     Oracle
	x     []float64
	f     float64
	grad  []float64
	calls int
	err   error
}

func (c *cachedOracle) eval(x []float64) {
	if c.err != nil {
		return
	}
	if c.x != nil && floats.Equal(c.x, x) {
		return
	}
	c.calls++
	f, err := c.o.Evaluate(x, c.grad)
	if err != nil {
		c.err = err
		c.f = math.Inf(1)
		return
	}
	c.f = f
	c.x = append(c.x[:0], x...)
}

func (c *cachedOracle) value(x []float64) float64 {
	c.eval(x)
	return c.f
}

func (c *cachedOracle) gradient(grad, x []float64) {
	c.eval(x)
	if c.err != nil {
		for i := range grad {
			grad[i] = math.NaN()
		}
		return
	}
	copy(grad, c.grad)
}

func (c *cachedOracle) status() (optimize.Status, error) {
	if c.err != nil {
		return optimize.Failure, c.err
	}
	return optimize.NotTerminated, nil
}
