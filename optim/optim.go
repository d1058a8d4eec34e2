// SPDX-License-Identifier: MIT
// Package optim is the iterative-minimizer contract used by the trainer, with
// an adapter over gonum.org/v1/gonum/optimize.
//
// The trainer treats the minimizer as a black box: it hands over an Oracle
// bound to one minibatch, a starting point and an iteration cap, and takes
// back the new parameter vector.
package optim

import (
	"errors"
	"fmt"
)

var (
	// ErrOptimizer wraps failures reported by the underlying minimizer.
	ErrOptimizer = errors.New("optim: optimizer failure")

	// ErrUnknownStrategy is returned for an unrecognized direction or line search.
	ErrUnknownStrategy = errors.New("optim: unknown strategy")
)

// Oracle evaluates a scalar objective. When grad is non-nil it must be filled
// with the gradient at x. x must not be modified.
type Oracle interface {
	Evaluate(x, grad []float64) (float64, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(x, grad []float64) (float64, error)

// Evaluate implements Oracle.
func (f OracleFunc) Evaluate(x, grad []float64) (float64, error) { return f(x, grad) }

// Direction selects the search-direction strategy.
type Direction string

const (
	BFGS            Direction = "bfgs"
	LBFGS           Direction = "lbfgs"
	CG              Direction = "cg"
	GradientDescent Direction = "gradient-descent"
)

// LineSearch selects the step-length strategy.
type LineSearch string

const (
	MoreThuente  LineSearch = "more-thuente"
	Bisection    LineSearch = "bisection"
	Backtracking LineSearch = "backtracking"
)

// ParseDirection validates s as a Direction. The empty string selects BFGS.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case "":
		return BFGS, nil
	case BFGS, LBFGS, CG, GradientDescent:
		return d, nil
	}
	return "", fmt.Errorf("optim.ParseDirection(%q): %w", s, ErrUnknownStrategy)
}

// ParseLineSearch validates s as a LineSearch. The empty string selects MoreThuente.
func ParseLineSearch(s string) (LineSearch, error) {
	switch l := LineSearch(s); l {
	case "":
		return MoreThuente, nil
	case MoreThuente, Bisection, Backtracking:
		return l, nil
	}
	return "", fmt.Errorf("optim.ParseLineSearch(%q): %w", s, ErrUnknownStrategy)
}

// Settings bound one Minimize call.
type Settings struct {
	Direction  Direction
	LineSearch LineSearch

	// MaxIterations caps major iterations; <= 0 means no cap.
	MaxIterations int

	// GradientThreshold stops when the gradient infinity norm drops below it.
	GradientThreshold float64
}

// Result is the outcome of one Minimize call.
type Result struct {
	X           []float64 // final (best) parameters
	F           float64   // objective at X
	Iterations  int       // major iterations performed
	Evaluations int       // oracle calls

	// Stalled is set when the line search could not make progress. X then
	// holds the best point reached, which may equal the start.
	Stalled bool
}

// Minimizer runs a bounded minimization from x0. x0 is not modified.
type Minimizer interface {
	Minimize(o Oracle, x0 []float64, s Settings) (Result, error)
}
