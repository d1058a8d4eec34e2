package model_test

import (
	"bytes"
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvica/ica"
	"github.com/katalvlaran/lvica/matrix"
	"github.com/katalvlaran/lvica/model"
)

func mixture(t *testing.T, nf int) *matrix.Dense[float64] {
	t.Helper()
	lap := distuv.Laplace{Mu: 0, Scale: 1, Src: rand.NewPCG(1, 2)}
	uni := distuv.Uniform{Min: -1, Max: 1, Src: rand.NewPCG(3, 4)}
	d := make([]float64, 2*nf)
	for f := 0; f < nf; f++ {
		s1, s2 := lap.Rand(), uni.Rand()
		d[f] = s1 + 0.5*s2
		d[nf+f] = 0.3*s1 + s2
	}
	m, err := matrix.NewDenseFrom(2, nf, d)
	require.NoError(t, err)
	return m
}

func TestSaveLoadApplyReproducesEstimate(t *testing.T) {
	data := mixture(t, 3000)
	res, err := ica.Estimate(data, ica.WithMaxEpochs(5), ica.WithBatchWidth(1000))
	require.NoError(t, err)

	m := model.FromResult(res)
	require.NoError(t, m.Validate())
	require.Equal(t, res.RunID.String(), m.RunID)

	path := filepath.Join(t.TempDir(), "run.lvica")
	require.NoError(t, m.Save(path))
	loaded, err := model.Load(path)
	require.NoError(t, err)
	require.Equal(t, m.W, loaded.W)
	require.Equal(t, m.Bias, loaded.Bias)
	require.Equal(t, m.Sphere, loaded.Sphere)
	require.True(t, m.CreatedAt.Equal(loaded.CreatedAt))

	out, err := model.Apply(loaded, data)
	require.NoError(t, err)
	want := res.Sources.Data()
	for i, v := range out.Data() {
		require.InDelta(t, want[i], v, 1e-9*(1+math.Abs(want[i])))
	}
}

func TestApplyFloat32(t *testing.T) {
	m := &model.Model{
		RunID:    uuid.NewString(),
		Channels: 2,
		W:        []float64{1, 0, 0, 1},
		Bias:     []float64{1, -1},
		Sphere:   []float64{0.5, 0, 0, 0.25},
	}
	data, err := matrix.NewDenseFrom(2, 3, []float32{2, 4, 6, 4, 8, 12})
	require.NoError(t, err)
	out, err := model.Apply(m, data)
	require.NoError(t, err)
	require.Equal(t, []float32{3, 5, 7, 1, 3, 5}, out.Data())

	wide, err := matrix.NewDense[float32](3, 3)
	require.NoError(t, err)
	_, err = model.Apply(m, wide)
	require.ErrorIs(t, err, model.ErrChannels)
	_, err = model.Apply[float32](m, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestDecodeRejectsCorrupt(t *testing.T) {
	good := model.Model{
		RunID:    uuid.NewString(),
		Channels: 2,
		W:        []float64{1, 0, 0, 1},
		Bias:     []float64{0, 0},
		Sphere:   []float64{1, 0, 0, 1},
	}
	var buf bytes.Buffer
	require.NoError(t, good.Encode(&buf))
	_, err := model.Decode(&buf)
	require.NoError(t, err)

	for _, tc := range []struct {
		name   string
		mutate func(*model.Model)
	}{
		{"channels", func(m *model.Model) { m.Channels = 0 }},
		{"w", func(m *model.Model) { m.W = m.W[:3] }},
		{"bias", func(m *model.Model) { m.Bias = nil }},
		{"sphere", func(m *model.Model) { m.Sphere = append(m.Sphere, 1) }},
		{"run id", func(m *model.Model) { m.RunID = "not-a-uuid" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bad := good
			bad.W = append([]float64(nil), good.W...)
			bad.Sphere = append([]float64(nil), good.Sphere...)
			tc.mutate(&bad)
			raw, err := msgpack.Marshal(&bad)
			require.NoError(t, err)
			_, err = model.Decode(bytes.NewReader(raw))
			require.ErrorIs(t, err, model.ErrCorrupt)
			require.ErrorIs(t, bad.Encode(&bytes.Buffer{}), model.ErrCorrupt)
		})
	}

	_, err = model.Decode(bytes.NewReader([]byte{0xc1}))
	require.ErrorIs(t, err, model.ErrCorrupt)
}
