package core

import (
	"math"

	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// FiniteValues returns the non-missing values in order.
func FiniteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !models.IsMissing(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// CalculateMeanStd computes mean and standard deviation.
func CalculateMeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	// Calculate mean
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) == 1 {
		return mean, 0
	}

	// Population std (N denominator)
	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)))
	return mean, std
}

// -----------------------------------------------------------------------------

// MinMax returns the extremes of data. ok is false for empty input.
func MinMax(data []float64) (low, high float64, ok bool) {
	if len(data) == 0 {
		return 0, 0, false
	}
	low, high = data[0], data[0]
	for _, v := range data[1:] {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	return low, high, true
}
