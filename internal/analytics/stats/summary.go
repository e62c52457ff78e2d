package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the descriptive statistics of one sample
type Summary struct {
	Count    int       `json:"count"`
	Mean     float64   `json:"mean"`
	Median   float64   `json:"median"`
	Mode     []float64 `json:"mode"`
	StdDev   float64   `json:"std_dev"`
	Variance float64   `json:"variance"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Range    float64   `json:"range"`
	Q1       float64   `json:"q1"`
	Q2       float64   `json:"q2"`
	Q3       float64   `json:"q3"`
	IQR      float64   `json:"iqr"`
}

// Summarize computes every descriptive statistic for data. Variance and
// standard deviation use the population divisor.
func Summarize(data []float64) Summary {
	r := Range(data)
	q := Quartiles(data)
	variance := Variance(data, false)

	return Summary{
		Count:    len(data),
		Mean:     Mean(data),
		Median:   Median(data),
		Mode:     Mode(data),
		StdDev:   math.Sqrt(variance),
		Variance: variance,
		Min:      r.Min,
		Max:      r.Max,
		Range:    r.Range,
		Q1:       q.Q1,
		Q2:       q.Q2,
		Q3:       q.Q3,
		IQR:      q.IQR,
	}
}

// Correlation returns Pearson's r for two equally long samples.
// Mismatched lengths, fewer than two pairs, or a constant sample yield 0.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	if Variance(x, false) == 0 || Variance(y, false) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}
