// Package lvica separates multichannel signals into statistically independent
// sources by maximum-likelihood independent component analysis.
//
// What is lvica?
//
//	A pure-Go toolkit that brings together:
//		• Dense storage: generic float32/float64 matrices with seeded column permutation
//		• Linear algebra: pluggable GEMM/LU/inverse backends (gonum or native)
//		• Whitening: symmetric inverse square root of the sample covariance
//		• Fast math: vectorized-friendly log-cosh and tanh kernels
//		• Likelihood: per-minibatch negative log-likelihood with sub/super-Gaussian switching
//		• Training: quasi-Newton minibatch epochs on top of gonum/optimize
//		• Models: portable msgpack snapshots that unmix new data
//
// Under the hood, everything is organized under these subpackages:
//
//	matrix/    Dense[T], validators, permutation
//	linalg/    Backend[T], log|det| from an LU factorization
//	fastmath/  approximate log cosh / tanh and the per-row evaluator
//	batch/     fixed-width minibatch bounds over a sample stream
//	whiten/    sphering matrix
//	objective/ likelihood value and gradient per batch
//	optim/     Minimizer over gonum/optimize
//	trainer/   epoch loop with stall accounting and logging
//	ica/       end-to-end Estimate driver and configuration
//	model/     persisted unmixing models
//	synth/     artificial sources for demos and tests
//
// Quick start:
//
//	go get github.com/katalvlaran/lvica
//
//	res, err := ica.Estimate(x, ica.WithMaxEpochs(50))
//	if err != nil { /* handle */ }
//	sources := res.Sources
//
// The lvica command wraps the same pipeline: `lvica demo`, `lvica estimate`,
// `lvica apply` and `lvica config`.
package lvica
