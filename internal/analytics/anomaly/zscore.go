package anomaly

import (
	"math"

	"github.com/fabzclean/analytics/internal/analytics"
	"github.com/fabzclean/analytics/internal/analytics/stats"
)

// DefaultThreshold is the z-score magnitude used when callers pass a
// non-positive threshold
const DefaultThreshold = 3.0

// minPoints is the shortest series DetectAnomalies will inspect
const minPoints = 3

// DetectAnomalies returns the ascending indices of points whose z-score
// magnitude exceeds threshold.
//
// Each point is scored against the mean and population standard deviation of
// the other points, so a single extreme value cannot hide itself by inflating
// the spread. When the other points are all equal, the point is flagged iff it
// differs from them. Fewer than three points yields no anomalies.
func DetectAnomalies(data []float64, threshold float64) []int {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	indices := []int{}
	for i, m := range leaveOneOut(data) {
		if m.exceeds(data[i], threshold) {
			indices = append(indices, i)
		}
	}
	return indices
}

// moments describes the points other than the one being scored
type moments struct {
	mean   float64
	stdDev float64
}

func (m moments) zScore(v float64) float64 {
	return stats.ZScore(v, m.mean, m.stdDev)
}

func (m moments) exceeds(v, threshold float64) bool {
	if m.stdDev == 0 {
		return v != m.mean
	}
	return math.Abs(m.zScore(v)) > threshold
}

// leaveOneOut returns, for each index, the moments of the remaining points.
// Deviations are taken from the overall mean to keep the running sums small.
func leaveOneOut(data []float64) []moments {
	n := len(data)
	if n < minPoints {
		return nil
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]moments, n)
	if lo == hi {
		for i := range out {
			out[i] = moments{mean: lo}
		}
		return out
	}

	var loCount, hiCount int
	for _, v := range data {
		switch v {
		case lo:
			loCount++
		case hi:
			hiCount++
		}
	}

	center := stats.Mean(data)
	var sum, sumSq float64
	for _, v := range data {
		d := v - center
		sum += d
		sumSq += d * d
	}

	rest := float64(n - 1)
	for i, v := range data {
		// the remaining points are all equal only when v is the sole
		// holder of one extreme and everything else sits at the other
		switch {
		case v == hi && hiCount == 1 && loCount == n-1:
			out[i] = moments{mean: lo}
			continue
		case v == lo && loCount == 1 && hiCount == n-1:
			out[i] = moments{mean: hi}
			continue
		}
		d := v - center
		mean := (sum - d) / rest
		variance := (sumSq-d*d)/rest - mean*mean
		out[i] = moments{
			mean:   center + mean,
			stdDev: math.Sqrt(math.Max(variance, 0)),
		}
	}
	return out
}

// ZScoreDetector flags points using leave-one-out z-scores and labels them
// as spikes or drops. It flags exactly the indices DetectAnomalies returns, so
// a constant series has no anomalies.
type ZScoreDetector struct{}

func init() {
	RegisterDetector("zscore", &ZScoreDetector{})
}

// Name returns the algorithm name
func (z *ZScoreDetector) Name() string {
	return "zscore"
}

// Detect finds anomalies using Z-Score method
func (z *ZScoreDetector) Detect(data []DataPoint, config DetectorConfig) []AnomalyResult {
	if len(data) < config.MinDataPoints {
		return nil
	}

	values := analytics.TimeSeriesData(data).Values()
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	all := leaveOneOut(values)
	var results []AnomalyResult
	for _, i := range DetectAnomalies(values, threshold) {
		m := all[i]
		score := math.Abs(values[i] - m.mean)
		if m.stdDev != 0 {
			score = math.Abs(m.zScore(values[i]))
		}

		anomalyType := AnomalyTypeDrop
		if values[i] > m.mean {
			anomalyType = AnomalyTypeSpike
		}

		results = append(results, AnomalyResult{
			Index: i,
			Score: score,
			Type:  anomalyType,
			Expected: &Range{
				Min: m.mean - threshold*m.stdDev,
				Max: m.mean + threshold*m.stdDev,
			},
		})
	}
	return results
}
