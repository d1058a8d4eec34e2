// SPDX-License-Identifier: MIT
// Package ica estimates independent components of a linear mixture.
//
// Given NC observed channels of NF samples each, Estimate finds an unmixing
// transform whose outputs are as statistically independent as possible under
// a maximum-likelihood model. The density of each component adapts to the
// sign of its kurtosis: heavy-tailed components use a logistic-type density,
// light-tailed ones a bimodal density.
//
// Pipeline:
//
//	data ──► whiten.Sphere ──► 2·Sphere·data ──► shuffle columns (seeded)
//	     ──► trainer (epochs × minibatches, gonum BFGS) ──► (W, b)
//	     ──► Sources = W·(2·Sphere·data) + b, in input sample order
//
// Quick start:
//
//	res, err := ica.Estimate(data,
//		ica.WithMaxEpochs(50),
//		ica.WithBatchWidth(5000),
//	)
//	if err != nil {
//		return err
//	}
//	sources := res.Sources
//
// Configuration can also come from YAML (LoadConfig) and be applied with
// WithConfig. The same generic code runs for float32 and float64 data.
//
// Errors are reported through ErrInvalidConfiguration, ErrDegenerate and
// ErrBackend; match them with errors.Is.
package ica
