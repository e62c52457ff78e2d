// Package stats implements descriptive statistics and distribution analysis
// over finite float64 samples. Functions never panic on degenerate input; each
// returns a documented fallback instead.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RangeReport holds the extremes of a sample
type RangeReport struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Range float64 `json:"range"`
}

// QuartileReport holds the quartiles of a sample and their spread
type QuartileReport struct {
	Q1  float64 `json:"q1"`
	Q2  float64 `json:"q2"`
	Q3  float64 `json:"q3"`
	IQR float64 `json:"iqr"`
}

// Mean returns the arithmetic mean, or 0 for an empty sample. The result is
// kept within [min, max], which rounding in the sum can otherwise break.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := stat.Mean(data, nil)
	return math.Min(math.Max(mean, floats.Min(data)), floats.Max(data))
}

// Median returns the middle value of the sorted sample, averaging the two
// central values for even lengths. Returns 0 for an empty sample.
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return medianSorted(sortedCopy(data))
}

// Mode returns every value tied at the highest frequency, in ascending order.
// A sample with all-distinct values therefore returns all of them.
func Mode(data []float64) []float64 {
	if len(data) == 0 {
		return []float64{}
	}

	counts := make(map[float64]int, len(data))
	maxCount := 0
	for _, v := range data {
		counts[v]++
		if counts[v] > maxCount {
			maxCount = counts[v]
		}
	}

	modes := make([]float64, 0)
	for v, c := range counts {
		if c == maxCount {
			modes = append(modes, v)
		}
	}
	sort.Float64s(modes)
	return modes
}

// Variance returns the population (divisor n) or sample (divisor n-1) variance.
// Empty input, and a single value with sample=true, yield 0.
func Variance(data []float64, sample bool) float64 {
	n := len(data)
	if n == 0 || (sample && n == 1) {
		return 0
	}

	var v float64
	if sample {
		v = stat.Variance(data, nil)
	} else {
		v = stat.PopVariance(data, nil)
	}

	// compensated summation can leave a tiny negative residue on constant input
	if v < 0 {
		return 0
	}
	return v
}

// StdDev returns the square root of Variance.
func StdDev(data []float64, sample bool) float64 {
	return math.Sqrt(Variance(data, sample))
}

// Range returns min, max and their difference; zeros for an empty sample.
func Range(data []float64) RangeReport {
	if len(data) == 0 {
		return RangeReport{}
	}
	lo, hi := floats.Min(data), floats.Max(data)
	return RangeReport{Min: lo, Max: hi, Range: hi - lo}
}

// Quartiles splits the sorted sample at n/2 and takes the median of each half.
// For odd lengths the middle element belongs to neither half; for even lengths
// the halves share nothing. A single value yields Q1 = Q2 = Q3 = value.
func Quartiles(data []float64) QuartileReport {
	n := len(data)
	if n == 0 {
		return QuartileReport{}
	}

	sorted := sortedCopy(data)
	q2 := medianSorted(sorted)
	if n == 1 {
		return QuartileReport{Q1: q2, Q2: q2, Q3: q2}
	}

	mid := n / 2
	lower := sorted[:mid]
	upper := sorted[mid:]
	if n%2 == 1 {
		upper = sorted[mid+1:]
	}

	q1 := medianSorted(lower)
	q3 := medianSorted(upper)
	return QuartileReport{Q1: q1, Q2: q2, Q3: q3, IQR: q3 - q1}
}

// sortedCopy returns an ascending copy; the caller's slice is never reordered.
func sortedCopy(data []float64) []float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return sorted
}

// medianSorted expects ascending input
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
