// Package batch splits a sample axis into fixed-width minibatches.
//
// A Batcher over NF samples with width B yields ceil(NF/B) batches; every
// batch has exactly B samples except the last, which holds NF mod B samples
// when B does not divide NF.
package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape indicates non-positive sample count or width, or a width
	// larger than the sample count.
	ErrInvalidShape = errors.New("batch: invalid shape")

	// ErrOutOfRange indicates a batch index outside [0, Count()).
	ErrOutOfRange = errors.New("batch: index out of range")
)

// Batcher maps batch indices to sample windows. It is immutable and safe for
// concurrent use.
type Batcher struct {
	samples int // NF
	width   int // B
	count   int // ceil(NF/B)
}

// New returns a Batcher over samples split into windows of width.
//
// Errors:
//   - ErrInvalidShape when samples <= 0, width <= 0 or width > samples.
func New(samples, width int) (Batcher, error) {
	if samples <= 0 || width <= 0 || width > samples {
		return Batcher{}, fmt.Errorf("batch.New(samples=%d, width=%d): %w", samples, width, ErrInvalidShape)
	}

	return Batcher{
		samples: samples,
		width:   width,
		count:   (samples + width - 1) / width,
	}, nil
}

// Samples returns the total sample count NF.
func (b Batcher) Samples() int { return b.samples }

// Width returns the nominal batch width B.
func (b Batcher) Width() int { return b.width }

// Count returns the number of batches, ceil(NF/B).
func (b Batcher) Count() int { return b.count }

// Bounds returns the first sample offset and the actual sample count of batch k.
// The count is B for every batch but possibly the last.
//
// Errors:
//   - ErrOutOfRange when k is outside [0, Count()).
func (b Batcher) Bounds(k int) (offset, size int, err error) {
	if k < 0 || k >= b.count {
		return 0, 0, fmt.Errorf("batch.Bounds(%d) of %d: %w", k, b.count, ErrOutOfRange)
	}
	offset = k * b.width
	size = min(b.width, b.samples-offset)

	return offset, size, nil
}
