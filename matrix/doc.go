// Package matrix provides the dense, row-major storage shared by every lvica
// package.
//
// The package provides:
//
//   - Dense[T], a generic row-major matrix over float32 or float64 with
//     bounds-checked At/Set and direct flat-slice access for hot loops.
//   - Column permutation driven by a deterministic, seedable RNG, used to
//     break temporal structure in sample streams before minibatching.
//   - AllClose and the central validators used by kernels across lvica.
//
// Multichannel signals are stored channel-major: row c holds every sample of
// channel c, so a minibatch of samples is a contiguous window of columns in
// each row.
package matrix
