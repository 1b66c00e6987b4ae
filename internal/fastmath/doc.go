// Package fastmath provides the transcendental functions used when deriving
// filter and oscillator coefficients.
//
// By default the functions delegate to the standard library. Building with
// the "fastmath" tag swaps in polynomial approximations from algo-approx,
// trading a small amount of accuracy for lower CPU cost on targets where
// coefficient updates happen at control rate alongside audio processing.
package fastmath
