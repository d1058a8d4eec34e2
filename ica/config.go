// SPDX-License-Identifier: MIT

package ica

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/katalvlaran/lvica/fastmath"
	"github.com/katalvlaran/lvica/linalg"
	"github.com/katalvlaran/lvica/matrix"
	"github.com/katalvlaran/lvica/objective"
	"github.com/katalvlaran/lvica/optim"
	"github.com/katalvlaran/lvica/trainer"
)

// Defaults.
const (
	DefaultMaxEpochs         = 100
	DefaultBatchWidth        = 40000 // upper bound of the automatic width
	DefaultGradientThreshold = 1e-6
)

// Config is the estimation surface. The zero value of BatchWidth selects
// min(DefaultBatchWidth, NF). Every field has a matching With* option.
type Config struct {
	MaxEpochs         int     `yaml:"max_epochs"`
	InnerIterations   int     `yaml:"inner_iterations"`
	BatchWidth        int     `yaml:"batch_width"`
	Verbosity         int     `yaml:"verbosity"`
	Tolerance         float64 `yaml:"tolerance"`
	KurtosisBias      float64 `yaml:"kurtosis_bias"`
	Seed              int64   `yaml:"seed"`
	Direction         string  `yaml:"direction"`
	LineSearch        string  `yaml:"line_search"`
	GradientThreshold float64 `yaml:"gradient_threshold"`
	Backend           string  `yaml:"backend"`
}

// DefaultConfig returns the configuration Estimate uses without options.
func DefaultConfig() Config {
	return Config{
		MaxEpochs:         DefaultMaxEpochs,
		InnerIterations:   trainer.DefaultInnerIterations,
		Tolerance:         fastmath.MaxRelError,
		KurtosisBias:      objective.DefaultKurtosisBias,
		Seed:              matrix.DefaultSeed,
		Direction:         string(optim.BFGS),
		LineSearch:        string(optim.MoreThuente),
		GradientThreshold: DefaultGradientThreshold,
		Backend:           linalg.NameGonum,
	}
}

// Validate reports the first invalid field as ErrInvalidConfiguration.
// Data-dependent checks (width vs NF) happen in Estimate.
func (c Config) Validate() error {
	switch {
	case c.MaxEpochs < 1:
		return configErrorf("max_epochs=%d must be >= 1", c.MaxEpochs)
	case c.InnerIterations < 1:
		return configErrorf("inner_iterations=%d must be >= 1", c.InnerIterations)
	case c.BatchWidth < 0:
		return configErrorf("batch_width=%d must be >= 0", c.BatchWidth)
	case c.Tolerance < 0:
		return configErrorf("tolerance=%g must be >= 0", c.Tolerance)
	case c.GradientThreshold < 0:
		return configErrorf("gradient_threshold=%g must be >= 0", c.GradientThreshold)
	}
	if _, err := optim.ParseDirection(c.Direction); err != nil {
		return configErrorf("%v", err)
	}
	if _, err := optim.ParseLineSearch(c.LineSearch); err != nil {
		return configErrorf("%v", err)
	}
	if _, err := linalg.Lookup[float64](c.Backend); err != nil {
		return configErrorf("%v", err)
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig: absent keys keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%v: %w", err, ErrInvalidConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// YAML encodes the configuration in the format LoadConfig reads.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("ica: "+format+": %w", append(args, ErrInvalidConfiguration)...)
}
