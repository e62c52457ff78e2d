package trend

import (
	"github.com/fabzclean/analytics/internal/analytics"
)

// DefaultAlpha is the smoothing factor used when a caller passes one outside (0, 1]
const DefaultAlpha = 0.5

// MovingAverage returns the trailing simple moving average of data.
// The result has the same length as data; positions before the window fills
// are undefined. A window that is non-positive or longer than data leaves
// every position undefined.
func MovingAverage(data []float64, window int) []analytics.OptionalFloat {
	out := make([]analytics.OptionalFloat, len(data))
	if window <= 0 || window > len(data) {
		return out
	}

	// each window is summed afresh so window=1 reproduces data exactly
	for i := window - 1; i < len(data); i++ {
		sum := 0.0
		for _, v := range data[i-window+1 : i+1] {
			sum += v
		}
		out[i] = analytics.Some(sum / float64(window))
	}
	return out
}

// ExponentialMovingAverage smooths data with factor alpha, seeding the
// first output with the first input.
func ExponentialMovingAverage(data []float64, alpha float64) []float64 {
	if !(alpha > 0 && alpha <= 1) {
		alpha = DefaultAlpha
	}

	out := make([]float64, len(data))
	for i, v := range data {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}
