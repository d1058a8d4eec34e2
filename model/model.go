// SPDX-License-Identifier: MIT
// Package model persists a fitted unmixing transform and applies it to new
// data.
//
// A Model stores W, b and the sphering matrix of one estimation. Applying it
// to raw data X (NC×NF) computes W·(2·Sphere·X) + b, the same transform the
// estimation applied to its own input. Models are encoded with msgpack.
package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/katalvlaran/lvica/ica"
	"github.com/katalvlaran/lvica/linalg"
	"github.com/katalvlaran/lvica/matrix"
)

var (
	// ErrCorrupt indicates a decoded model with inconsistent fields.
	ErrCorrupt = errors.New("model: corrupt model")

	// ErrChannels indicates data whose channel count differs from the model's.
	ErrChannels = errors.New("model: channel count mismatch")
)

// sphereScale matches the scale the estimation applies to the sphered data.
const sphereScale = 2

// Model is the persisted form of an estimation result. Matrices are
// row-major and stored in float64 regardless of the estimation precision.
type Model struct {
	RunID     string    `msgpack:"run_id"`
	Channels  int       `msgpack:"channels"`
	W         []float64 `msgpack:"w"`
	Bias      []float64 `msgpack:"bias"`
	Sphere    []float64 `msgpack:"sphere"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// FromResult captures res as a Model.
func FromResult[T matrix.Float](res *ica.Result[T]) *Model {
	nc := res.W.Rows()
	return &Model{
		RunID:     res.RunID.String(),
		Channels:  nc,
		W:         widen(res.W.Data()),
		Bias:      widen(res.Bias),
		Sphere:    widen(res.Sphere.Data()),
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks shapes and the run identifier.
func (m *Model) Validate() error {
	nc := m.Channels
	switch {
	case nc < 1:
		return fmt.Errorf("channels=%d: %w", nc, ErrCorrupt)
	case len(m.W) != nc*nc:
		return fmt.Errorf("len(w)=%d, want %d: %w", len(m.W), nc*nc, ErrCorrupt)
	case len(m.Bias) != nc:
		return fmt.Errorf("len(bias)=%d, want %d: %w", len(m.Bias), nc, ErrCorrupt)
	case len(m.Sphere) != nc*nc:
		return fmt.Errorf("len(sphere)=%d, want %d: %w", len(m.Sphere), nc*nc, ErrCorrupt)
	}
	if _, err := uuid.Parse(m.RunID); err != nil {
		return fmt.Errorf("run_id %q: %v: %w", m.RunID, err, ErrCorrupt)
	}
	return nil
}

// Encode writes m to w as msgpack.
func (m *Model) Encode(w io.Writer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(m)
}

// Decode reads a msgpack model from r and validates it.
func Decode(r io.Reader) (*Model, error) {
	var m Model
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode: %v: %w", err, ErrCorrupt)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes m to path.
func (m *Model) Save(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads a model from path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Unmixing returns W·2·Sphere as NC×NC float64.
func (m *Model) Unmixing() *matrix.Dense[float64] {
	nc := m.Channels
	out, _ := matrix.NewDense[float64](nc, nc)
	linalg.Native[float64]{}.Gemm(linalg.NoTrans, linalg.NoTrans, nc, nc, nc,
		sphereScale, m.W, nc, m.Sphere, nc, 0, out.Data(), nc)
	return out
}

// Apply returns W·(2·Sphere·X) + b for channel-major data X.
//
// Errors:
//   - matrix.ErrNilMatrix for nil data.
//   - ErrChannels when data does not have m.Channels rows.
func Apply[T matrix.Float](m *Model, data *matrix.Dense[T]) (*matrix.Dense[T], error) {
	if err := matrix.ValidateNotNil(data); err != nil {
		return nil, fmt.Errorf("model.Apply: %w", err)
	}
	nc, nf := data.Shape()
	if nc != m.Channels {
		return nil, fmt.Errorf("model.Apply: data has %d channels, model %d: %w", nc, m.Channels, ErrChannels)
	}

	u := m.Unmixing().Data()
	ut := make([]T, len(u))
	for i, v := range u {
		ut[i] = T(v)
	}
	out, err := matrix.NewDense[T](nc, nf)
	if err != nil {
		return nil, fmt.Errorf("model.Apply: %w", err)
	}
	od := out.Data()
	linalg.Gonum[T]{}.Gemm(linalg.NoTrans, linalg.NoTrans, nc, nf, nc,
		1, ut, nc, data.Data(), nf, 0, od, nf)
	for c := 0; c < nc; c++ {
		b := T(m.Bias[c])
		row := od[c*nf : (c+1)*nf]
		for f := range row {
			row[f] += b
		}
	}
	return out, nil
}

func widen[T matrix.Float](src []T) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}
