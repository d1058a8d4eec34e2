// SPDX-License-Identifier: MIT
// Package objective evaluates the negative log-likelihood of the linear ICA
// model and its gradient on one minibatch of samples.
//
// Model, for data X (NC×NF) and parameters W (NC×NC), b (NC):
//
//	z1 = W·X_batch,  x = z1 + b (per component)
//	H  = log|det W| + Σ_c mean_f log p_c(x_cf)
//
// The density of each component is chosen per evaluation from the sign of
// its excess kurtosis (plus a small bias):
//
//	sub-Gaussian   log p(x) = -(x²+1)/2 + log cosh x
//	super-Gaussian log p(x) = -2·log cosh x - x²/2
//
// The objective is -H. With φ = x - tanh x (sub) or x + 2·tanh x (super):
//
//	∂/∂b = mean_f φ
//	∂/∂W = -(I - φ·z1ᵀ/T)·W⁻ᵀ
//
// where T is the actual sample count of the batch. Parameters are packed as
// W row-major in [0, NC²) followed by b in [NC², NC²+NC).
package objective

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvica/batch"
	"github.com/katalvlaran/lvica/fastmath"
	"github.com/katalvlaran/lvica/linalg"
	"github.com/katalvlaran/lvica/matrix"
)

var (
	// ErrDegenerate indicates a singular or near-singular W, or a
	// non-finite objective value.
	ErrDegenerate = errors.New("objective: degenerate estimate")

	// ErrBackend wraps linear-algebra failures other than singularity.
	ErrBackend = errors.New("objective: backend failure")

	// ErrBatchOutOfRange indicates a batch index outside [0, NumBatches()).
	ErrBatchOutOfRange = batch.ErrOutOfRange
)

// Branch is the density family selected for one component.
type Branch int8

const (
	SuperGaussian Branch = iota // kurtosis >= 0
	SubGaussian                 // kurtosis < 0
)

// String implements fmt.Stringer.
func (b Branch) String() string {
	if b == SubGaussian {
		return "sub-gaussian"
	}
	return "super-gaussian"
}

// Likelihood is the minibatch objective over one data matrix. It owns its
// scratch buffers and is not safe for concurrent use.
type Likelihood[T matrix.Float] struct {
	data    []T // NC×NF, channel-major
	nc, nf  int
	batches batch.Batcher

	be     linalg.Backend[T]
	eval   fastmath.Evaluator[T]
	kbias  float64
	degTol float64

	// Scratch, sized once.
	w, lu, g []T // NC×NC
	ipiv     []int
	bias     []T  // NC
	z1, phi  []T  // NC×B, packed with stride T of the current batch
	kurt     []T  // NC
	branch   []Branch
}

// New builds an objective over data split into batches of width.
// data is referenced, not copied, and must not change while in use.
//
// Errors:
//   - matrix.ErrNilMatrix for nil data.
//   - batch.ErrInvalidShape for a width outside [1, NF].
//   - linalg.ErrUnknownBackend for an unknown backend name.
func New[T matrix.Float](data *matrix.Dense[T], width int, opts ...Option) (*Likelihood[T], error) {
	if err := matrix.ValidateNotNil(data); err != nil {
		return nil, fmt.Errorf("objective.New: %w", err)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	nc, nf := data.Shape()
	bt, err := batch.New(nf, width)
	if err != nil {
		return nil, fmt.Errorf("objective.New: %w", err)
	}
	be, err := linalg.Lookup[T](cfg.backend)
	if err != nil {
		return nil, fmt.Errorf("objective.New: %w", err)
	}
	if cfg.degenerateTol <= 0 {
		cfg.degenerateTol = float64(nc) * epsilon[T]()
	}

	return &Likelihood[T]{
		data:    data.Data(),
		nc:      nc,
		nf:      nf,
		batches: bt,
		be:      be,
		eval:    fastmath.NewEvaluator[T](cfg.tolerance),
		kbias:   cfg.kurtosisBias,
		degTol:  cfg.degenerateTol,
		w:       make([]T, nc*nc),
		lu:      make([]T, nc*nc),
		g:       make([]T, nc*nc),
		ipiv:    make([]int, nc),
		bias:    make([]T, nc),
		z1:      make([]T, nc*width),
		phi:     make([]T, nc*width),
		kurt:    make([]T, nc),
		branch:  make([]Branch, nc),
	}, nil
}

// Channels returns NC.
func (l *Likelihood[T]) Channels() int { return l.nc }

// Dim returns the parameter count NC²+NC.
func (l *Likelihood[T]) Dim() int { return l.nc*l.nc + l.nc }

// NumBatches returns ceil(NF/B).
func (l *Likelihood[T]) NumBatches() int { return l.batches.Count() }

// Batcher exposes the batch layout.
func (l *Likelihood[T]) Batcher() batch.Batcher { return l.batches }

// Value returns -H on batch k.
func (l *Likelihood[T]) Value(k int, params []T) (T, error) {
	v, err := l.evaluate(k, params, nil)
	return T(v), err
}

// Gradient writes ∂(-H)/∂params on batch k into grad.
func (l *Likelihood[T]) Gradient(k int, params, grad []T) error {
	if grad == nil {
		return fmt.Errorf("objective.Gradient: nil grad: %w", matrix.ErrDimensionMismatch)
	}
	_, err := l.evaluate(k, params, grad)
	return err
}

// ValueGradient returns -H on batch k and writes its gradient into grad.
func (l *Likelihood[T]) ValueGradient(k int, params, grad []T) (T, error) {
	if grad == nil {
		return 0, fmt.Errorf("objective.ValueGradient: nil grad: %w", matrix.ErrDimensionMismatch)
	}
	v, err := l.evaluate(k, params, grad)
	return T(v), err
}

// Kurtosis writes the biased excess kurtosis of every component on batch k
// into dst (allocated when nil) and returns it.
func (l *Likelihood[T]) Kurtosis(k int, params, dst []T) ([]T, error) {
	tb, err := l.prepare(k, params, nil)
	if err != nil {
		return nil, err
	}
	if dst == nil {
		dst = make([]T, l.nc)
	}
	if err = matrix.ValidateVecLen(dst, l.nc); err != nil {
		return nil, fmt.Errorf("objective.Kurtosis: %w", err)
	}
	l.kurtosis(tb)
	copy(dst, l.kurt)

	return dst, nil
}

// Branches returns the density family each component selects on batch k.
func (l *Likelihood[T]) Branches(k int, params []T) ([]Branch, error) {
	tb, err := l.prepare(k, params, nil)
	if err != nil {
		return nil, err
	}
	l.kurtosis(tb)

	return append([]Branch(nil), l.branch...), nil
}

// prepare validates inputs, decodes params and projects the batch:
// z1 = W·X[:, off:off+T]. It returns T.
func (l *Likelihood[T]) prepare(k int, params, grad []T) (int, error) {
	if err := matrix.ValidateVecLen(params, l.Dim()); err != nil {
		return 0, fmt.Errorf("objective: params: %w", err)
	}
	if grad != nil {
		if err := matrix.ValidateVecLen(grad, l.Dim()); err != nil {
			return 0, fmt.Errorf("objective: grad: %w", err)
		}
	}
	off, tb, err := l.batches.Bounds(k)
	if err != nil {
		return 0, fmt.Errorf("objective: %w", err)
	}

	nn := l.nc * l.nc
	copy(l.w, params[:nn])
	copy(l.bias, params[nn:])
	l.be.Gemm(linalg.NoTrans, linalg.NoTrans, l.nc, tb, l.nc,
		1, l.w, l.nc, l.data[off:], l.nf, 0, l.z1, tb)

	return tb, nil
}

// kurtosis fills l.kurt and l.branch from z1 and the bias.
func (l *Likelihood[T]) kurtosis(tb int) {
	var m2, m4, u float64
	for c := 0; c < l.nc; c++ {
		row := l.z1[c*tb : c*tb+tb]
		bc := float64(l.bias[c])
		m2, m4 = 0, 0
		for _, v := range row {
			u = float64(v) + bc
			u *= u
			m2 += u
			m4 += u * u
		}
		m2 /= float64(tb)
		m4 /= float64(tb)
		kurt := m4/(m2*m2) - 3 + l.kbias
		l.kurt[c] = T(kurt)
		if kurt < 0 {
			l.branch[c] = SubGaussian
		} else {
			l.branch[c] = SuperGaussian
		}
	}
}

// evaluate computes -H on batch k and, when grad != nil, its gradient.
func (l *Likelihood[T]) evaluate(k int, params, grad []T) (float64, error) {
	tb, err := l.prepare(k, params, grad)
	if err != nil {
		return 0, err
	}
	nc, nn := l.nc, l.nc*l.nc

	// log|det W| from the LU factor; the same factor is inverted below.
	copy(l.lu, l.w)
	if err = l.be.Getrf(nc, l.lu, nc, l.ipiv); err != nil {
		if errors.Is(err, linalg.ErrSingular) {
			return 0, fmt.Errorf("objective: %v: %w", err, ErrDegenerate)
		}
		return 0, fmt.Errorf("objective: %v: %w", err, ErrBackend)
	}
	logDet, ratio := linalg.LogAbsDet(nc, l.lu, nc)
	if !(ratio >= l.degTol) || math.IsInf(logDet, 0) || math.IsNaN(logDet) {
		return 0, fmt.Errorf("objective: pivot ratio %g below %g: %w", ratio, l.degTol, ErrDegenerate)
	}

	l.kurtosis(tb)

	var (
		h     = logDet
		n     = float64(tb)
		phi   []T
		coef  T
		sumLC float64
		sumSq float64
		sumPh float64
		u     T
	)
	for c := 0; c < nc; c++ {
		row := l.z1[c*tb : c*tb+tb]
		bc := l.bias[c]
		if grad != nil {
			phi = l.phi[c*tb : c*tb+tb]
		} else {
			phi = nil
		}
		sumLC = l.eval.LogCoshTanh(row, bc, phi) // phi holds tanh x for now
		sumSq = 0
		for _, v := range row {
			u = v + bc
			sumSq += float64(u) * float64(u)
		}
		if l.branch[c] == SubGaussian {
			h += (sumLC - 0.5*(sumSq+n)) / n
			coef = -1
		} else {
			h += (-2*sumLC - 0.5*sumSq) / n
			coef = 2
		}

		if grad == nil {
			continue
		}
		sumPh = 0
		for f, v := range row {
			u = v + bc
			phi[f] = u + coef*phi[f]
			sumPh += float64(phi[f])
		}
		grad[nn+c] = T(sumPh / n)
	}

	value := -h
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("objective: value %g: %w", value, ErrDegenerate)
	}
	if grad == nil {
		return value, nil
	}

	// g = I - φ·z1ᵀ/T
	l.be.Gemm(linalg.NoTrans, linalg.Trans, nc, nc, tb,
		T(-1/n), l.phi, tb, l.z1, tb, 0, l.g, nc)
	for c := 0; c < nc; c++ {
		l.g[c*nc+c] += 1
	}
	// dW = -g·W⁻ᵀ
	if err = l.be.Getri(nc, l.lu, nc, l.ipiv); err != nil {
		if errors.Is(err, linalg.ErrSingular) {
			return 0, fmt.Errorf("objective: %v: %w", err, ErrDegenerate)
		}
		return 0, fmt.Errorf("objective: %v: %w", err, ErrBackend)
	}
	l.be.Gemm(linalg.NoTrans, linalg.Trans, nc, nc, nc,
		-1, l.g, nc, l.lu, nc, 0, grad[:nn], nc)

	return value, nil
}

// epsilon is the machine epsilon of T.
func epsilon[T matrix.Float]() float64 {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return 0x1p-23
	}
	return 0x1p-52
}
