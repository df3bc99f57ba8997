package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Median returns the middle value of data, averaging the two middle values
// when the length is even. The input is not modified.
func Median(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// NanSum sums the finite-or-infinite values of data, skipping NaN.
// An all-NaN or empty slice sums to 0.
func NanSum(data []float64) float64 {
	sum := 0.0
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		sum += v
	}
	return sum
}

// NanMean averages data skipping NaN. Returns NaN when nothing is left.
func NanMean(data []float64) float64 {
	sum := 0.0
	n := 0
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// MeanSquaredError returns mean((a[i] - b[i])^2). Slices must have equal length.
func MeanSquaredError(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	diff := make([]float64, len(a))
	floats.SubTo(diff, a, b)
	return floats.Dot(diff, diff) / float64(len(diff))
}
