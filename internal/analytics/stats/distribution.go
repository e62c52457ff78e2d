package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Critical z values for the supported confidence levels. Any other level
// falls back to the 90% value; this is a fixed table, not a quantile function.
const (
	Z99 = 2.576
	Z95 = 1.96
	Z90 = 1.645
)

// ConfidenceInterval is a symmetric interval around a sample mean
type ConfidenceInterval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Margin float64 `json:"margin"`
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between order statistics at index (p/100)*(n-1).
// Empty data or p outside [0, 100] returns 0.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 || p < 0 || p > 100 {
		return 0
	}

	sorted := sortedCopy(data)
	index := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// ZScore returns how many standard deviations value lies from mean.
// A zero stdDev yields 0.
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// NormalDistribution returns the normal probability density at x.
// A non-positive stdDev yields 0.
func NormalDistribution(x, mean, stdDev float64) float64 {
	if stdDev <= 0 {
		return 0
	}
	return distuv.Normal{Mu: mean, Sigma: stdDev}.Prob(x)
}

// CriticalValue maps a confidence level to its tabulated z value.
func CriticalValue(confidence float64) float64 {
	switch confidence {
	case 0.99:
		return Z99
	case 0.95:
		return Z95
	default:
		return Z90
	}
}

// ConfidenceIntervalFor returns mean ± z*s/sqrt(n) using the sample standard
// deviation. An empty sample yields the zero interval.
func ConfidenceIntervalFor(data []float64, confidence float64) ConfidenceInterval {
	n := len(data)
	if n == 0 {
		return ConfidenceInterval{}
	}

	mean := Mean(data)
	margin := CriticalValue(confidence) * StdDev(data, true) / math.Sqrt(float64(n))
	return ConfidenceInterval{
		Lower:  mean - margin,
		Upper:  mean + margin,
		Margin: margin,
	}
}
