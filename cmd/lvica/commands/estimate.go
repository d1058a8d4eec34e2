package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvica/ica"
	"github.com/katalvlaran/lvica/model"
)

var (
	estimateOut   string
	estimateModel string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate <data.csv>",
	Short: "Estimate independent components of a CSV data file",
	Args:  cobra.ExactArgs(1),
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&estimateOut, "out", "o", "-", "sources CSV (- for stdout)")
	estimateCmd.Flags().StringVarP(&estimateModel, "model", "m", "", "save the fitted model")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := readMatrix(args[0])
	if err != nil {
		return err
	}

	opts := []ica.Option{ica.WithConfig(cfg), ica.WithLogger(newLogger(cfg.Verbosity))}
	if estimateOut != "-" {
		opts = append(opts, ica.WithEpochObserver(newEpochTable(cmd.ErrOrStderr()).Observe))
	}
	res, err := ica.Estimate(data, opts...)
	if err != nil {
		return err
	}

	if err := writeMatrix(estimateOut, res.Sources); err != nil {
		return err
	}
	if estimateModel != "" {
		if err := model.FromResult(res).Save(estimateModel); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "model %s saved to %s\n", res.RunID, estimateModel)
	}
	return nil
}
