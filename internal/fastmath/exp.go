//go:build !fastmath

package fastmath

import "math"

// Exp computes e**x with full precision.
func Exp(x float64) float64 {
	return math.Exp(x)
}
