// SPDX-License-Identifier: MIT

package ica

import (
	"log/slog"

	"github.com/katalvlaran/lvica/optim"
	"github.com/katalvlaran/lvica/trainer"
)

// Option customizes Estimate.
type Option func(*options)

type options struct {
	cfg      Config
	logger   *slog.Logger
	min      optim.Minimizer
	observer func(trainer.Epoch)
}

func newOptions(opts []Option) options {
	o := options{
		cfg:    DefaultConfig(),
		logger: slog.Default(),
		min:    optim.Gonum{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(c Config) Option { return func(o *options) { o.cfg = c } }

// WithMaxEpochs sets the number of passes over the data.
func WithMaxEpochs(n int) Option { return func(o *options) { o.cfg.MaxEpochs = n } }

// WithInnerIterations sets the optimizer iteration cap per batch.
func WithInnerIterations(n int) Option { return func(o *options) { o.cfg.InnerIterations = n } }

// WithBatchWidth sets the minibatch width; 0 selects min(DefaultBatchWidth, NF).
func WithBatchWidth(n int) Option { return func(o *options) { o.cfg.BatchWidth = n } }

// WithVerbosity sets the logging level of the training loop (0, 1 or 2).
func WithVerbosity(v int) Option { return func(o *options) { o.cfg.Verbosity = v } }

// WithTolerance sets the accepted relative error of the fast-math kernels.
func WithTolerance(tol float64) Option { return func(o *options) { o.cfg.Tolerance = tol } }

// WithKurtosisBias sets the bias added to every kurtosis estimate.
func WithKurtosisBias(eps float64) Option { return func(o *options) { o.cfg.KurtosisBias = eps } }

// WithSeed sets the column shuffle seed; 0 selects matrix.DefaultSeed.
func WithSeed(seed int64) Option { return func(o *options) { o.cfg.Seed = seed } }

// WithDirection selects the optimizer search direction.
func WithDirection(d optim.Direction) Option {
	return func(o *options) { o.cfg.Direction = string(d) }
}

// WithLineSearch selects the optimizer line search.
func WithLineSearch(l optim.LineSearch) Option {
	return func(o *options) { o.cfg.LineSearch = string(l) }
}

// WithGradientThreshold sets the per-batch gradient stopping threshold.
func WithGradientThreshold(g float64) Option {
	return func(o *options) { o.cfg.GradientThreshold = g }
}

// WithBackend selects the linear-algebra backend by name.
func WithBackend(name string) Option { return func(o *options) { o.cfg.Backend = name } }

// WithLogger sets the logger used by the training loop.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMinimizer replaces the gonum minimizer.
func WithMinimizer(m optim.Minimizer) Option {
	return func(o *options) {
		if m != nil {
			o.min = m
		}
	}
}

// WithEpochObserver receives every epoch record of the training loop.
func WithEpochObserver(fn func(trainer.Epoch)) Option {
	return func(o *options) { o.observer = fn }
}
