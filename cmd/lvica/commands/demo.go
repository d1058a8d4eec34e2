package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvica/ica"
	"github.com/katalvlaran/lvica/matrix"
	"github.com/katalvlaran/lvica/model"
	"github.com/katalvlaran/lvica/synth"
)

var (
	demoSamples    int
	demoSpan       float64
	demoMixSeed    uint64
	demoOut        string
	demoModel      string
	demoSinglePrec bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Unmix four artificial sources",
	Long: `Generate four deterministic waveforms, mix them with a random matrix,
estimate the unmixing transform and report the Amari index of the result
(0 means perfect separation up to scale and order).`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	f := demoCmd.Flags()
	f.IntVarP(&demoSamples, "samples", "n", 200000, "samples per channel")
	f.Float64Var(&demoSpan, "span", synth.DefaultSpan, "time window width")
	f.Uint64Var(&demoMixSeed, "mix-seed", 1, "seed of the random mixing matrix")
	f.StringVarP(&demoOut, "out", "o", "", "write recovered sources as CSV")
	f.StringVarP(&demoModel, "model", "m", "", "save the fitted model")
	f.BoolVar(&demoSinglePrec, "float32", false, "estimate in single precision")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	src, err := synth.Artificial(demoSamples, demoSpan)
	if err != nil {
		return err
	}
	mixing, err := synth.RandomMixing(synth.Channels, demoMixSeed)
	if err != nil {
		return err
	}
	x, err := synth.Mix(mixing, src)
	if err != nil {
		return err
	}

	table := newEpochTable(cmd.OutOrStdout())
	opts := []ica.Option{
		ica.WithConfig(cfg),
		ica.WithLogger(newLogger(cfg.Verbosity)),
		ica.WithEpochObserver(table.Observe),
	}

	start := time.Now()
	var (
		unmixing *matrix.Dense[float64]
		sources  *matrix.Dense[float64]
		m        *model.Model
		stalls   int
	)
	if demoSinglePrec {
		x32, err := matrix.Convert[float32](x)
		if err != nil {
			return err
		}
		res, err := ica.Estimate(x32, opts...)
		if err != nil {
			return err
		}
		if unmixing, err = matrix.Convert[float64](res.Unmixing()); err != nil {
			return err
		}
		if sources, err = matrix.Convert[float64](res.Sources); err != nil {
			return err
		}
		m, stalls = model.FromResult(res), res.Stalls
	} else {
		res, err := ica.Estimate(x, opts...)
		if err != nil {
			return err
		}
		unmixing, sources = res.Unmixing(), res.Sources
		m, stalls = model.FromResult(res), res.Stalls
	}
	elapsed := time.Since(start)

	var p mat.Dense
	nc := synth.Channels
	p.Mul(mat.NewDense(nc, nc, unmixing.Data()), mat.NewDense(nc, nc, mixing.Data()))
	pm, err := matrix.NewDenseFrom(nc, nc, p.RawMatrix().Data)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary(
		[2]string{"run", m.RunID},
		[2]string{"samples", fmt.Sprint(demoSamples)},
		[2]string{"epochs", fmt.Sprint(cfg.MaxEpochs)},
		[2]string{"stalls", fmt.Sprint(stalls)},
		[2]string{"elapsed", elapsed.Round(time.Millisecond).String()},
		[2]string{"amari index", fmt.Sprintf("%.4f", ica.AmariIndex(pm))},
	))

	if demoOut != "" {
		if err := writeMatrix(demoOut, sources); err != nil {
			return err
		}
	}
	if demoModel != "" {
		if err := m.Save(demoModel); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "model saved to %s\n", demoModel)
	}
	return nil
}
