// SPDX-License-Identifier: MIT

package ica

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/lvica/linalg"
	"github.com/katalvlaran/lvica/matrix"
	"github.com/katalvlaran/lvica/objective"
	"github.com/katalvlaran/lvica/optim"
	"github.com/katalvlaran/lvica/trainer"
	"github.com/katalvlaran/lvica/whiten"
)

var (
	// ErrInvalidConfiguration indicates bad options or data dimensions.
	ErrInvalidConfiguration = errors.New("ica: invalid configuration")

	// ErrBackend indicates a linear-algebra or optimizer failure.
	ErrBackend = errors.New("ica: backend failure")

	// ErrDegenerate indicates a singular unmixing matrix or non-finite
	// objective during training, or rank-deficient input data.
	ErrDegenerate = objective.ErrDegenerate
)

// sphereScale multiplies the sphering matrix before training.
const sphereScale = 2

// Result is a completed estimation.
type Result[T matrix.Float] struct {
	// Sources is NC×NF, in the sample order of the input data.
	Sources *matrix.Dense[T]

	W      *matrix.Dense[T] // NC×NC unmixing of the sphered data
	Bias   []T              // NC
	Sphere *matrix.Dense[T] // C^{-1/2}

	// Permutation is the column order seen by the trainer: training column j
	// was input column Permutation[j].
	Permutation []int

	History []float64 // batch-0 objective per epoch
	Stalls  int
	RunID   uuid.UUID
	Elapsed time.Duration
}

// Unmixing returns W·2·Sphere, the transform mapping raw data to sources
// (before the bias).
func (r *Result[T]) Unmixing() *matrix.Dense[T] {
	nc := r.W.Rows()
	out, _ := matrix.NewDense[T](nc, nc)
	linalg.Native[T]{}.Gemm(linalg.NoTrans, linalg.NoTrans, nc, nc, nc,
		sphereScale, r.W.Data(), nc, r.Sphere.Data(), nc, 0, out.Data(), nc)
	return out
}

// Estimate runs ICA on the channel-major NC×NF data.
//
// Steps: sphere the data, scale by 2, shuffle columns with the seeded RNG,
// train (W, b) from (I, 0) over minibatches, then apply the estimate to the
// unshuffled sphered data.
//
// Errors:
//   - ErrInvalidConfiguration for bad options or dimensions.
//   - ErrDegenerate for rank-deficient data or a degenerate estimate.
//   - ErrBackend for linear-algebra or optimizer failures.
func Estimate[T matrix.Float](data *matrix.Dense[T], opts ...Option) (*Result[T], error) {
	start := time.Now()
	o := newOptions(opts)
	cfg := o.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, configErrorf("nil data")
	}
	nc, nf := data.Shape()
	if nf < 2 {
		return nil, configErrorf("need at least 2 samples, got %d", nf)
	}
	width := cfg.BatchWidth
	if width == 0 {
		width = min(DefaultBatchWidth, nf)
	}
	if width > nf {
		return nil, configErrorf("batch_width=%d exceeds %d samples", width, nf)
	}
	be, err := linalg.Lookup[T](cfg.Backend)
	if err != nil {
		return nil, configErrorf("%v", err)
	}

	sphere, err := whiten.Sphere(nc, nf, data.Data())
	switch {
	case errors.Is(err, whiten.ErrRankDeficient):
		return nil, fmt.Errorf("ica: %w: %w", ErrDegenerate, err)
	case err != nil:
		return nil, fmt.Errorf("ica: %w: %w", ErrBackend, err)
	}

	mixed, err := matrix.NewDense[T](nc, nf)
	if err != nil {
		return nil, configErrorf("%v", err)
	}
	be.Gemm(linalg.NoTrans, linalg.NoTrans, nc, nf, nc,
		sphereScale, sphere.Data(), nc, data.Data(), nf, 0, mixed.Data(), nf)

	perm := matrix.Permutation(nf, matrix.NewRNG(cfg.Seed))
	shuffled, err := matrix.PermuteColumns(mixed, perm)
	if err != nil {
		return nil, fmt.Errorf("ica: %w", err)
	}

	obj, err := objective.New(shuffled, width,
		objective.WithKurtosisBias(cfg.KurtosisBias),
		objective.WithTolerance(cfg.Tolerance),
		objective.WithBackend(cfg.Backend))
	if err != nil {
		return nil, configErrorf("%v", err)
	}

	dir, _ := optim.ParseDirection(cfg.Direction)
	ls, _ := optim.ParseLineSearch(cfg.LineSearch)
	tr := trainer.New(o.min,
		trainer.WithLogger(o.logger),
		trainer.WithVerbosity(cfg.Verbosity),
		trainer.WithObserver(o.observer),
		trainer.WithSettings(optim.Settings{
			Direction:         dir,
			LineSearch:        ls,
			GradientThreshold: cfg.GradientThreshold,
		}))

	x := identityParams(nc)
	rep, err := tr.Run(obj, x, cfg.MaxEpochs, cfg.InnerIterations)
	if err != nil {
		return nil, classify(err)
	}

	res := &Result[T]{
		Sphere:      sphere,
		Permutation: perm,
		History:     rep.History,
		Stalls:      rep.Stalls,
		RunID:       uuid.New(),
	}
	res.W, res.Bias = unpack[T](nc, x)
	if res.Sources, err = reconstruct(be, res.W, res.Bias, mixed); err != nil {
		return nil, fmt.Errorf("ica: %w", err)
	}
	res.Elapsed = time.Since(start)
	if cfg.Verbosity >= 1 {
		o.logger.Info("estimate done", "run_id", res.RunID, "channels", nc, "samples", nf,
			"batch_width", width, "epochs", cfg.MaxEpochs, "stalls", res.Stalls, "elapsed", res.Elapsed)
	}

	return res, nil
}

// EstimateIndependentComponents is the flat entry point: data is NC×NF
// row-major and the NC×NF recovered sources are returned in the same layout.
func EstimateIndependentComponents[T matrix.Float](data []T, nc, nf int, opts ...Option) ([]T, error) {
	if nc < 1 || nf < 1 {
		return nil, configErrorf("dimensions %d×%d must be positive", nc, nf)
	}
	m, err := matrix.NewDenseFrom(nc, nf, data)
	if err != nil {
		return nil, configErrorf("%v", err)
	}
	res, err := Estimate(m, opts...)
	if err != nil {
		return nil, err
	}
	return res.Sources.Data(), nil
}

// classify maps training errors onto the package sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrDegenerate):
		return fmt.Errorf("ica: %w", err)
	case errors.Is(err, trainer.ErrNonFinite):
		return fmt.Errorf("ica: %w: %w", ErrDegenerate, err)
	case errors.Is(err, trainer.ErrInvalidArgument):
		return fmt.Errorf("ica: %w: %w", ErrInvalidConfiguration, err)
	default:
		return fmt.Errorf("ica: %w: %w", ErrBackend, err)
	}
}

func identityParams(nc int) []float64 {
	x := make([]float64, nc*nc+nc)
	for i := 0; i < nc; i++ {
		x[i*nc+i] = 1
	}
	return x
}

func unpack[T matrix.Float](nc int, x []float64) (*matrix.Dense[T], []T) {
	w, _ := matrix.NewDense[T](nc, nc)
	wd := w.Data()
	for i := range wd {
		wd[i] = T(x[i])
	}
	b := make([]T, nc)
	for i := range b {
		b[i] = T(x[nc*nc+i])
	}
	return w, b
}

// reconstruct returns W·mixed + b.
func reconstruct[T matrix.Float](be linalg.Backend[T], w *matrix.Dense[T], b []T, mixed *matrix.Dense[T]) (*matrix.Dense[T], error) {
	nc, nf := mixed.Shape()
	out, err := matrix.NewDense[T](nc, nf)
	if err != nil {
		return nil, err
	}
	od := out.Data()
	be.Gemm(linalg.NoTrans, linalg.NoTrans, nc, nf, nc,
		1, w.Data(), nc, mixed.Data(), nf, 0, od, nf)
	for c := 0; c < nc; c++ {
		row := od[c*nf : (c+1)*nf]
		for f := range row {
			row[f] += b[c]
		}
	}
	if err = matrix.ValidateFinite(out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDegenerate, err)
	}
	return out, nil
}
