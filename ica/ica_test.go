package ica_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lvica/ica"
	"github.com/katalvlaran/lvica/linalg"
	"github.com/katalvlaran/lvica/matrix"
	"github.com/katalvlaran/lvica/optim"
	"github.com/katalvlaran/lvica/trainer"
	"github.com/katalvlaran/lvica/whiten"
)

// mixing is the known 2×2 mixing matrix A.
var mixing = []float64{
	1.0, 0.6,
	0.4, 1.0,
}

// mixture returns A·S for a Laplace source and a uniform source.
func mixture(t *testing.T, nf int) *matrix.Dense[float64] {
	t.Helper()
	lap := distuv.Laplace{Mu: 0, Scale: 1, Src: rand.NewPCG(21, 22)}
	uni := distuv.Uniform{Min: -1, Max: 1, Src: rand.NewPCG(23, 24)}
	d := make([]float64, 2*nf)
	for f := 0; f < nf; f++ {
		s1, s2 := lap.Rand(), uni.Rand()
		d[f] = mixing[0]*s1 + mixing[1]*s2
		d[nf+f] = mixing[2]*s1 + mixing[3]*s2
	}
	m, err := matrix.NewDenseFrom(2, nf, d)
	require.NoError(t, err)
	return m
}

// amari returns the Amari index of Unmixing·A.
func amari[T matrix.Float](t *testing.T, res *ica.Result[T]) float64 {
	t.Helper()
	u, err := matrix.Convert[float64](res.Unmixing())
	require.NoError(t, err)
	var p mat.Dense
	p.Mul(mat.NewDense(2, 2, u.Data()), mat.NewDense(2, 2, mixing))
	pm, err := matrix.NewDenseFrom(2, 2, p.RawMatrix().Data)
	require.NoError(t, err)
	return ica.AmariIndex(pm)
}

type EstimateSuite struct {
	suite.Suite
	data *matrix.Dense[float64]
}

func TestEstimateSuite(t *testing.T) { suite.Run(t, new(EstimateSuite)) }

func (s *EstimateSuite) SetupSuite() {
	s.data = mixture(s.T(), 20000)
}

func (s *EstimateSuite) TestRecoversSources() {
	res, err := ica.Estimate(s.data, ica.WithMaxEpochs(30), ica.WithBatchWidth(5000))
	s.Require().NoError(err)

	s.Less(amari(s.T(), res), 0.1)
	s.Len(res.History, 30)
	s.Equal(2, res.Sources.Rows())
	s.Equal(20000, res.Sources.Cols())
	s.NotEqual(uuid.Nil, res.RunID)

	// Sources are W·(2·Sphere·data) + b in input order.
	u := res.Unmixing()
	for _, f := range []int{0, 1, 777, 19999} {
		for c := 0; c < 2; c++ {
			want := float64(res.Bias[c])
			for k := 0; k < 2; k++ {
				uk, _ := u.At(c, k)
				xk, _ := s.data.At(k, f)
				want += uk * xk
			}
			got, _ := res.Sources.At(c, f)
			s.InDelta(want, got, 1e-9*(1+math.Abs(want)))
		}
	}
}

func (s *EstimateSuite) TestDeterministic() {
	opts := []ica.Option{ica.WithMaxEpochs(3), ica.WithBatchWidth(4000), ica.WithSeed(42)}
	a, err := ica.Estimate(s.data, opts...)
	s.Require().NoError(err)
	b, err := ica.Estimate(s.data, opts...)
	s.Require().NoError(err)
	s.Equal(a.Sources.Data(), b.Sources.Data())
	s.Equal(a.History, b.History)
	s.Equal(a.Permutation, b.Permutation)
	s.NotEqual(a.RunID, b.RunID)

	c, err := ica.Estimate(s.data, ica.WithMaxEpochs(3), ica.WithBatchWidth(4000), ica.WithSeed(43))
	s.Require().NoError(err)
	s.NotEqual(a.Permutation, c.Permutation)
}

func (s *EstimateSuite) TestNativeBackend() {
	res, err := ica.Estimate(s.data,
		ica.WithMaxEpochs(30), ica.WithBatchWidth(5000), ica.WithBackend(linalg.NameNative))
	s.Require().NoError(err)
	s.Less(amari(s.T(), res), 0.1)
}

func (s *EstimateSuite) TestFloat32() {
	d32, err := matrix.Convert[float32](s.data)
	s.Require().NoError(err)
	res, err := ica.Estimate(d32, ica.WithMaxEpochs(30), ica.WithBatchWidth(5000))
	s.Require().NoError(err)
	s.Less(amari(s.T(), res), 0.15)
}

func (s *EstimateSuite) TestFlatEntryPoint() {
	out, err := ica.EstimateIndependentComponents(s.data.Data(), 2, 20000, ica.WithMaxEpochs(2))
	s.Require().NoError(err)
	s.Len(out, 40000)

	_, err = ica.EstimateIndependentComponents(s.data.Data(), 3, 20000)
	s.ErrorIs(err, ica.ErrInvalidConfiguration)
	_, err = ica.EstimateIndependentComponents(s.data.Data(), 0, 20000)
	s.ErrorIs(err, ica.ErrInvalidConfiguration)
}

func (s *EstimateSuite) TestLogging() {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	var epochs []trainer.Epoch
	_, err := ica.Estimate(s.data,
		ica.WithMaxEpochs(2),
		ica.WithVerbosity(1),
		ica.WithLogger(logger),
		ica.WithEpochObserver(func(e trainer.Epoch) { epochs = append(epochs, e) }))
	s.Require().NoError(err)
	s.Len(epochs, 2)
	s.Equal(2, strings.Count(buf.String(), "msg=epoch"))
	s.Contains(buf.String(), "estimate done")
}

func (s *EstimateSuite) TestInvalidConfiguration() {
	for _, tc := range []struct {
		name string
		opt  ica.Option
	}{
		{"zero epochs", ica.WithMaxEpochs(0)},
		{"zero inner", ica.WithInnerIterations(0)},
		{"negative width", ica.WithBatchWidth(-1)},
		{"width above samples", ica.WithBatchWidth(20001)},
		{"negative tolerance", ica.WithTolerance(-1)},
		{"negative threshold", ica.WithGradientThreshold(-1)},
		{"unknown backend", ica.WithBackend("cublas")},
		{"unknown direction", ica.WithDirection("newton")},
		{"unknown line search", ica.WithLineSearch("armijo")},
	} {
		s.Run(tc.name, func() {
			_, err := ica.Estimate(s.data, tc.opt)
			s.ErrorIs(err, ica.ErrInvalidConfiguration)
		})
	}

	_, err := ica.Estimate[float64](nil)
	s.ErrorIs(err, ica.ErrInvalidConfiguration)
	one, err := matrix.NewDense[float64](2, 1)
	s.Require().NoError(err)
	_, err = ica.Estimate(one)
	s.ErrorIs(err, ica.ErrInvalidConfiguration)
}

func TestRankDeficientData(t *testing.T) {
	const nf = 500
	d := make([]float64, 2*nf)
	rng := rand.New(rand.NewPCG(1, 1))
	for f := 0; f < nf; f++ {
		d[f] = rng.NormFloat64()
		d[nf+f] = -2 * d[f]
	}
	m, err := matrix.NewDenseFrom(2, nf, d)
	require.NoError(t, err)
	_, err = ica.Estimate(m, ica.WithMaxEpochs(1))
	require.ErrorIs(t, err, ica.ErrDegenerate)
	require.ErrorIs(t, err, whiten.ErrRankDeficient)
}

type minimizerFunc func(o optim.Oracle, x0 []float64, s optim.Settings) (optim.Result, error)

func (f minimizerFunc) Minimize(o optim.Oracle, x0 []float64, s optim.Settings) (optim.Result, error) {
	return f(o, x0, s)
}

func TestFailureClassification(t *testing.T) {
	data := mixture(t, 1000)

	failing := minimizerFunc(func(optim.Oracle, []float64, optim.Settings) (optim.Result, error) {
		return optim.Result{}, optim.ErrOptimizer
	})
	_, err := ica.Estimate(data, ica.WithMaxEpochs(1), ica.WithMinimizer(failing))
	require.ErrorIs(t, err, ica.ErrBackend)
	require.ErrorIs(t, err, optim.ErrOptimizer)

	// A minimizer that collapses W onto a singular matrix.
	collapsing := minimizerFunc(func(o optim.Oracle, x0 []float64, _ optim.Settings) (optim.Result, error) {
		x := make([]float64, len(x0))
		_, err := o.Evaluate(x, make([]float64, len(x0)))
		return optim.Result{X: x}, err
	})
	_, err = ica.Estimate(data, ica.WithMaxEpochs(1), ica.WithMinimizer(collapsing))
	require.ErrorIs(t, err, ica.ErrDegenerate)

	nan := minimizerFunc(func(_ optim.Oracle, x0 []float64, _ optim.Settings) (optim.Result, error) {
		x := append([]float64(nil), x0...)
		x[0] = math.NaN()
		return optim.Result{X: x}, nil
	})
	_, err = ica.Estimate(data, ica.WithMaxEpochs(1), ica.WithMinimizer(nan))
	require.True(t, errors.Is(err, ica.ErrDegenerate), "%v", err)
}

func TestAmariIndex(t *testing.T) {
	perm, err := matrix.NewDenseFrom(3, 3, []float64{
		0, 2, 0,
		0, 0, -5,
		0.5, 0, 0,
	})
	require.NoError(t, err)
	require.Zero(t, ica.AmariIndex(perm))

	full, err := matrix.NewDenseFrom(2, 2, []float64{1, 1, 1, 1})
	require.NoError(t, err)
	require.InDelta(t, 1, ica.AmariIndex(full), 1e-15)

	require.True(t, math.IsNaN(ica.AmariIndex(nil)))
	rect, err := matrix.NewDense[float64](2, 3)
	require.NoError(t, err)
	require.True(t, math.IsNaN(ica.AmariIndex(rect)))
}

func TestConfigYAML(t *testing.T) {
	cfg, err := ica.ParseConfig([]byte("max_epochs: 12\nbatch_width: 256\nbackend: native\n"))
	require.NoError(t, err)
	want := ica.DefaultConfig()
	want.MaxEpochs = 12
	want.BatchWidth = 256
	want.Backend = linalg.NameNative
	require.Equal(t, want, cfg)

	// Round trip through the encoder.
	raw, err := cfg.YAML()
	require.NoError(t, err)
	again, err := ica.ParseConfig(raw)
	require.NoError(t, err)
	require.Equal(t, cfg, again)

	path := filepath.Join(t.TempDir(), "ica.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	loaded, err := ica.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	_, err = ica.ParseConfig([]byte("inner_iterations: 0\n"))
	require.ErrorIs(t, err, ica.ErrInvalidConfiguration)
	_, err = ica.ParseConfig([]byte("max_epochs: [1, 2]\n"))
	require.ErrorIs(t, err, ica.ErrInvalidConfiguration)
	_, err = ica.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithConfigThenOverride(t *testing.T) {
	cfg := ica.DefaultConfig()
	cfg.MaxEpochs = 0 // invalid on its own
	_, err := ica.Estimate(mixture(t, 500), ica.WithConfig(cfg), ica.WithMaxEpochs(1))
	require.NoError(t, err)
}
