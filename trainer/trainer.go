// SPDX-License-Identifier: MIT
// Package trainer runs the epoch × minibatch optimization loop.
//
// Each epoch visits every batch in order. For each batch the minimizer is
// given an oracle bound to that batch and a small iteration cap, and the
// parameters it returns are carried into the next batch. There is no early
// stopping: the loop always runs the requested number of epochs.
package trainer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvica/optim"
)

var (
	// ErrInvalidArgument indicates non-positive epochs/inner or a parameter
	// vector of the wrong length.
	ErrInvalidArgument = errors.New("trainer: invalid argument")

	// ErrNonFinite indicates the minimizer returned NaN or ±Inf parameters.
	ErrNonFinite = errors.New("trainer: non-finite parameters")
)

// DefaultInnerIterations is the per-batch iteration cap.
const DefaultInnerIterations = 3

// Objective is what the trainer needs from a minibatch objective.
type Objective interface {
	NumBatches() int
	Dim() int
	Oracle(batch int) optim.Oracle
}

// Epoch is the record emitted after every epoch.
type Epoch struct {
	Index   int
	Value   float64 // objective on batch 0, after its inner iterations
	Stalls  int     // stalled batches in this epoch
	Evals   int     // oracle calls in this epoch
	Elapsed time.Duration
}

// Report summarizes a Run.
type Report struct {
	// History[e] is the batch-0 objective value of epoch e. Diagnostic only.
	History     []float64
	Stalls      int
	Evaluations int
}

// Trainer drives a Minimizer over the batches of an Objective.
type Trainer struct {
	min       optim.Minimizer
	settings  optim.Settings
	logger    *slog.Logger
	verbosity int
	observer  func(Epoch)
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithVerbosity gates logging: 1 logs every epoch, 2 also every batch.
func WithVerbosity(v int) Option {
	return func(t *Trainer) { t.verbosity = v }
}

// WithSettings sets the minimizer strategy and gradient threshold.
// MaxIterations is overridden by the inner argument of Run.
func WithSettings(s optim.Settings) Option {
	return func(t *Trainer) { t.settings = s }
}

// WithObserver registers fn to receive every epoch record.
func WithObserver(fn func(Epoch)) Option {
	return func(t *Trainer) { t.observer = fn }
}

// New returns a Trainer over min.
func New(min optim.Minimizer, opts ...Option) *Trainer {
	t := &Trainer{min: min, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run optimizes x in place for epochs passes over all batches of obj with at
// most inner iterations per batch.
//
// Errors:
//   - ErrInvalidArgument for bad arguments.
//   - the objective's own errors (e.g. a degenerate estimate), unchanged.
//   - optim.ErrOptimizer for minimizer failures other than a stall.
//   - ErrNonFinite when the minimizer returns NaN/Inf parameters.
//
// On error x holds the parameters after the last successful batch.
func (t *Trainer) Run(obj Objective, x []float64, epochs, inner int) (Report, error) {
	if epochs < 1 || inner < 1 || len(x) != obj.Dim() {
		return Report{}, fmt.Errorf("trainer.Run(epochs=%d, inner=%d, len(x)=%d, dim=%d): %w",
			epochs, inner, len(x), obj.Dim(), ErrInvalidArgument)
	}

	settings := t.settings
	settings.MaxIterations = inner
	nb := obj.NumBatches()
	rep := Report{History: make([]float64, 0, epochs)}

	for e := 0; e < epochs; e++ {
		start := time.Now()
		rec := Epoch{Index: e}
		for k := 0; k < nb; k++ {
			res, err := t.min.Minimize(obj.Oracle(k), x, settings)
			rec.Evals += res.Evaluations
			if err != nil {
				rep.Evaluations += rec.Evals
				return rep, fmt.Errorf("trainer: epoch %d batch %d: %w", e, k, err)
			}
			if !finite(res.X) {
				rep.Evaluations += rec.Evals
				return rep, fmt.Errorf("trainer: epoch %d batch %d: %w", e, k, ErrNonFinite)
			}
			copy(x, res.X)
			if res.Stalled {
				rec.Stalls++
			}
			if k == 0 {
				rec.Value = res.F
			}
			if t.verbosity >= 2 {
				t.logger.Debug("batch", "epoch", e, "batch", k, "value", res.F,
					"iterations", res.Iterations, "stalled", res.Stalled)
			}
		}
		rec.Elapsed = time.Since(start)

		rep.History = append(rep.History, rec.Value)
		rep.Stalls += rec.Stalls
		rep.Evaluations += rec.Evals
		if t.verbosity >= 1 {
			t.logger.Info("epoch", "epoch", e, "value", rec.Value,
				"stalls", rec.Stalls, "evals", rec.Evals, "elapsed", rec.Elapsed)
		}
		if t.observer != nil {
			t.observer(rec)
		}
	}

	return rep, nil
}

func finite(x []float64) bool {
	if len(x) == 0 {
		return true
	}
	return !floats.HasNaN(x) && !math.IsInf(floats.Max(x), 1) && !math.IsInf(floats.Min(x), -1)
}
