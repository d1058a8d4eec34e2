// Package main is the entry point for the lvica CLI.
//
// Usage:
//
//	lvica [flags] <command> [args]
//
// Commands:
//
//	demo      - Estimate four artificial sources from a random mixture
//	estimate  - Estimate independent components of a CSV data file
//	apply     - Apply a saved model to a CSV data file
//	config    - Print the effective estimation configuration as YAML
package main

import (
	"fmt"
	"os"

	"github.com/katalvlaran/lvica/cmd/lvica/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
