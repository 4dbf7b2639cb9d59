// Package dsp contains the numeric primitives shared by the alignment and
// click-measurement pipelines: peak normalization, linear cross-correlation
// and lag estimation.
package dsp

import (
	"math"
)

// Normalize scales a signal so that its maximum absolute value is 1 and
// returns the result as a new slice. A signal whose peak is exactly 0 is
// returned as-is (there is nothing to scale, and dividing would produce
// NaNs).
func Normalize(signal []float64) []float64 {
	maxVal := 0.0
	for _, v := range signal {
		if a := math.Abs(v); a > maxVal {
			maxVal = a
		}
	}
	if maxVal == 0 {
		return signal
	}

	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = v / maxVal
	}
	return out
}
