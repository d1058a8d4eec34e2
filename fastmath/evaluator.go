package fastmath

import (
	"math"

	"github.com/katalvlaran/lvica/matrix"
)

// Evaluator dispatches transcendental kernels over []T for one precision.
// The zero value uses the approximate lane kernels.
type Evaluator[T matrix.Float] struct {
	exact bool
}

// NewEvaluator picks the lane kernels when tolerance >= MaxRelError and
// exact float64 math otherwise.
func NewEvaluator[T matrix.Float](tolerance float64) Evaluator[T] {
	return Evaluator[T]{exact: tolerance < MaxRelError}
}

// Exact reports whether the evaluator bypasses the approximations.
func (e Evaluator[T]) Exact() bool { return e.exact }

// Exp writes e^src[i] into dst[i].
func (e Evaluator[T]) Exp(dst, src []T) {
	if e.exact {
		for i, v := range src {
			dst[i] = T(math.Exp(float64(v)))
		}
		return
	}
	applyT(dst, src, ExpVec)
}

// Log writes ln src[i] into dst[i].
func (e Evaluator[T]) Log(dst, src []T) {
	if e.exact {
		for i, v := range src {
			dst[i] = T(math.Log(float64(v)))
		}
		return
	}
	applyT(dst, src, LogVec)
}

// Tanh writes tanh src[i] into dst[i].
func (e Evaluator[T]) Tanh(dst, src []T) {
	if e.exact {
		for i, v := range src {
			dst[i] = T(math.Tanh(float64(v)))
		}
		return
	}
	applyT(dst, src, TanhVec)
}

// LogCoshTanh evaluates u = x[i] + bias for every sample, stores tanh u into
// tanh[i] (skipped when tanh is nil) and returns Σ log cosh u accumulated in
// float64.
func (e Evaluator[T]) LogCoshTanh(x []T, bias T, tanh []T) float64 {
	if e.exact {
		return logCoshTanhExact(x, bias, tanh)
	}

	var u, lc, th Vec
	var sum float64
	n := len(x)
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		for l := 0; l < Lanes; l++ {
			u[l] = float32(x[i+l] + bias)
		}
		LogCoshTanhVec(&u, &lc, &th)
		for l := 0; l < Lanes; l++ {
			sum += float64(lc[l])
		}
		if tanh != nil {
			for l := 0; l < Lanes; l++ {
				tanh[i+l] = T(th[l])
			}
		}
	}
	if rem := n - i; rem > 0 {
		u = Vec{}
		for l := 0; l < rem; l++ {
			u[l] = float32(x[i+l] + bias)
		}
		LogCoshTanhVec(&u, &lc, &th)
		for l := 0; l < rem; l++ {
			sum += float64(lc[l])
			if tanh != nil {
				tanh[i+l] = T(th[l])
			}
		}
	}

	return sum
}

func logCoshTanhExact[T matrix.Float](x []T, bias T, tanh []T) float64 {
	var sum, u, au float64
	for i, v := range x {
		u = float64(v + bias)
		au = math.Abs(u)
		sum += au + math.Log1p(math.Exp(-2*au)) - math.Ln2
		if tanh != nil {
			tanh[i] = T(math.Tanh(u))
		}
	}

	return sum
}

// applyT narrows src to float32 lanes, runs kernel and widens into dst.
func applyT[T matrix.Float](dst, src []T, kernel func(*Vec)) {
	var v Vec
	n := len(src)
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		for l := 0; l < Lanes; l++ {
			v[l] = float32(src[i+l])
		}
		kernel(&v)
		for l := 0; l < Lanes; l++ {
			dst[i+l] = T(v[l])
		}
	}
	if rem := n - i; rem > 0 {
		v = Vec{}
		for l := 0; l < rem; l++ {
			v[l] = float32(src[i+l])
		}
		kernel(&v)
		for l := 0; l < rem; l++ {
			dst[i+l] = T(v[l])
		}
	}
}
