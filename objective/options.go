// SPDX-License-Identifier: MIT

package objective

import "github.com/katalvlaran/lvica/fastmath"

// DefaultKurtosisBias is added to every excess-kurtosis estimate, so a
// component whose kurtosis is exactly zero selects the super-Gaussian branch.
const DefaultKurtosisBias = 0.02

// Option configures a Likelihood.
type Option func(*config)

type config struct {
	kurtosisBias  float64
	tolerance     float64
	backend       string
	degenerateTol float64 // <= 0: NC·ε of the working precision
}

func defaultConfig() config {
	return config{
		kurtosisBias: DefaultKurtosisBias,
		tolerance:    fastmath.MaxRelError,
	}
}

// WithKurtosisBias overrides DefaultKurtosisBias.
func WithKurtosisBias(eps float64) Option {
	return func(c *config) { c.kurtosisBias = eps }
}

// WithTolerance sets the requested relative accuracy of the transcendental
// kernels. Values below fastmath.MaxRelError select exact math.
func WithTolerance(tol float64) Option {
	return func(c *config) { c.tolerance = tol }
}

// WithBackend selects the linear-algebra backend by name (see linalg.Lookup).
func WithBackend(name string) Option {
	return func(c *config) { c.backend = name }
}

// WithDegenerateTolerance sets the smallest admissible min|U_ii|/max|U_ii|
// ratio of the LU factor of W.
func WithDegenerateTolerance(tol float64) Option {
	return func(c *config) { c.degenerateTol = tol }
}
