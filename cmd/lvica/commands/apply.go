package commands

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvica/model"
)

var applyOut string

var applyCmd = &cobra.Command{
	Use:   "apply <model> <data.csv>",
	Short: "Apply a saved model to a CSV data file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := model.Load(args[0])
		if err != nil {
			return err
		}
		data, err := readMatrix(args[1])
		if err != nil {
			return err
		}
		out, err := model.Apply(m, data)
		if err != nil {
			return err
		}
		return writeMatrix(applyOut, out)
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyOut, "out", "o", "-", "sources CSV (- for stdout)")
}
