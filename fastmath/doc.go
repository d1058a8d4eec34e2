// Package fastmath provides lane-based approximations of exp, log and tanh.
//
// Kernels work on fixed-width lanes (Vec, Lanes float32 values) so the hot
// loops of the likelihood objective run branch-light, allocation-free code
// over the batch dimension. Every approximation is a range reduction followed
// by a short minimax polynomial and stays within MaxRelError of the exact
// result over the finite float32 range.
//
// Float64 callers go through Evaluator[T]: in approximate mode values are
// narrowed to float32 lanes, as the batch statistics they feed are averaged
// over thousands of samples anyway; in exact mode the math package is used
// in float64.
//
// Kernel overview:
//
//	ExpVec         e^x           |x| reduction by ln2, degree-6 polynomial
//	LogVec         ln x          mantissa/exponent split, degree-9 polynomial
//	TanhVec        tanh x        odd polynomial below 0.625, exp identity above
//	LogCoshTanhVec log cosh x    fused with tanh x, sharing one exp(-2|x|)
package fastmath
