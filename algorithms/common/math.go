package common

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions used across algorithms using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}
	return math.Sqrt(sumSquares / float64(len(data)))
}

// Clamp restricts value to the range [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Dot calculates the dot product of two equal-length vectors.
// Returns 0 for mismatched lengths.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// CosineSimilarity calculates the cosine of the angle between two vectors.
// A zero-norm input yields 0 rather than NaN.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	dot := 0.0
	normA := 0.0
	normB := 0.0
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA <= 0 || normB <= 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
