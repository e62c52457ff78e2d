package forecast

import (
	"math"
	"testing"
	"time"
)

// Common test data and helpers for all forecast tests

var (
	testBaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	testInterval = 24 * time.Hour
)

// generateLinearData creates test data with linear pattern: y = slope * x + intercept
func generateLinearData(n int, slope, intercept float64) []DataPoint {
	data := make([]DataPoint, n)
	for i := 0; i < n; i++ {
		data[i] = DataPoint{
			Time:  testBaseTime.Add(testInterval * time.Duration(i)),
			Value: slope*float64(i) + intercept,
		}
	}
	return data
}

// generateSeasonalTestData creates test data with a repeating pattern on a flat base
func generateSeasonalTestData(n int, period int) []DataPoint {
	data := make([]DataPoint, n)
	for i := 0; i < n; i++ {
		seasonal := 10 * math.Sin(2*math.Pi*float64(i%period)/float64(period))
		data[i] = DataPoint{
			Time:  testBaseTime.Add(testInterval * time.Duration(i)),
			Value: 50 + seasonal,
		}
	}
	return data
}

func assertFloats(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d values, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
