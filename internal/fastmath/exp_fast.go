//go:build fastmath

package fastmath

import "github.com/meko-christian/algo-approx"

// Exp computes e**x using a fast approximation.
func Exp(x float64) float64 {
	return approx.FastExp(x)
}
