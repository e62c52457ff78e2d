package anomaly

import (
	"math"
	"testing"
	"time"
)

func createTestDataPoints(values []float64) []DataPoint {
	points := make([]DataPoint, len(values))
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		points[i] = DataPoint{
			Time:  baseTime.Add(time.Duration(i) * time.Minute),
			Value: v,
		}
	}
	return points
}

func TestZScoreDetector_DetectSpike(t *testing.T) {
	detector := &ZScoreDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5
	config.Threshold = 2.0 // Lower threshold for easier detection

	// Create data where spike is clearly anomalous (5 std deviations away)
	values := []float64{10, 10, 10, 10, 10, 10, 100, 10, 10, 10}
	data := createTestDataPoints(values)

	results := detector.Detect(data, config)

	if len(results) == 0 {
		t.Fatal("Expected to detect at least one anomaly (the spike at index 6)")
	}

	foundSpike := false
	for _, r := range results {
		if r.Index == 6 {
			foundSpike = true
			if r.Type != AnomalyTypeSpike {
				t.Errorf("Expected anomaly type Spike, got %s", r.Type)
			}
			break
		}
	}

	if !foundSpike {
		t.Error("Expected to detect spike at index 6")
	}
}

func TestZScoreDetector_DetectDrop(t *testing.T) {
	detector := &ZScoreDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5
	config.Threshold = 2.0 // Lower threshold for easier detection

	// Create data where drop is clearly anomalous
	values := []float64{50, 50, 50, 50, 50, 50, 0, 50, 50, 50}
	data := createTestDataPoints(values)

	results := detector.Detect(data, config)

	if len(results) == 0 {
		t.Fatal("Expected to detect at least one anomaly (the drop at index 6)")
	}

	foundDrop := false
	for _, r := range results {
		if r.Index == 6 {
			foundDrop = true
			if r.Type != AnomalyTypeDrop {
				t.Errorf("Expected anomaly type Drop, got %s", r.Type)
			}
			break
		}
	}

	if !foundDrop {
		t.Error("Expected to detect drop at index 6")
	}
}

func TestZScoreDetector_NoAnomalies(t *testing.T) {
	detector := &ZScoreDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5

	values := []float64{10, 11, 10, 12, 11, 10, 11, 11, 10, 12}
	data := createTestDataPoints(values)

	results := detector.Detect(data, config)

	if len(results) != 0 {
		t.Errorf("Expected no anomalies in normal data, got %d", len(results))
	}
}

func TestZScoreDetector_ConstantSeries(t *testing.T) {
	detector := &ZScoreDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5

	values := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10}
	data := createTestDataPoints(values)

	if results := detector.Detect(data, config); len(results) != 0 {
		t.Errorf("Expected no anomalies in a constant series, got %d", len(results))
	}
	if indices := DetectAnomalies(values, config.Threshold); len(indices) != 0 {
		t.Errorf("Expected no anomaly indices, got %v", indices)
	}
}

func TestZScoreDetector_MatchesDetectAnomalies(t *testing.T) {
	series := [][]float64{
		{40, 40, 40, 40, 40, 40},
		{10, 12, 11, 50, 13},
		{5, 5, 5, 5, 1},
		{-10, -10, -10, -10, -10, -10, -100, -10, -10, -10},
	}

	for _, values := range series {
		results := (&ZScoreDetector{}).Detect(createTestDataPoints(values), DetectorConfig{Threshold: 2})
		indices := DetectAnomalies(values, 2)
		if len(results) != len(indices) {
			t.Fatalf("%v: detector found %d, DetectAnomalies %v", values, len(results), indices)
		}
		for i, r := range results {
			if r.Index != indices[i] {
				t.Errorf("%v: result %d index %d, want %d", values, i, r.Index, indices[i])
			}
		}
	}
}

func TestZScoreDetector_InsufficientData(t *testing.T) {
	detector := &ZScoreDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 10

	data := createTestDataPoints([]float64{1, 2, 100})
	if results := detector.Detect(data, config); results != nil {
		t.Errorf("Expected nil results below MinDataPoints, got %v", results)
	}
}

func TestZScoreDetector_ScoreAndRange(t *testing.T) {
	detector := &ZScoreDetector{}
	config := DefaultConfig()
	config.Threshold = 2

	data := createTestDataPoints([]float64{10, 12, 11, 50, 13})
	results := detector.Detect(data, config)

	if len(results) != 1 || results[0].Index != 3 {
		t.Fatalf("Expected a single anomaly at index 3, got %+v", results)
	}

	// remaining points [10 12 11 13]: mean 11.5, population stdDev sqrt(1.25)
	sd := math.Sqrt(1.25)
	if math.Abs(results[0].Score-38.5/sd) > 1e-9 {
		t.Errorf("Score = %v, want %v", results[0].Score, 38.5/sd)
	}
	if math.Abs(results[0].Expected.Min-(11.5-2*sd)) > 1e-9 || math.Abs(results[0].Expected.Max-(11.5+2*sd)) > 1e-9 {
		t.Errorf("Unexpected range %+v", results[0].Expected)
	}
}

func TestDetectAnomalies(t *testing.T) {
	tests := []struct {
		name      string
		data      []float64
		threshold float64
		expected  []int
	}{
		{"single spike", []float64{10, 12, 11, 50, 13}, 2, []int{3}},
		{"default threshold", []float64{10, 12, 11, 50, 13}, 0, []int{3}},
		{"negative threshold uses default", []float64{10, 12, 11, 50, 13}, -1, []int{3}},
		{"too few points", []float64{1, 100}, 1, []int{}},
		{"empty", nil, 3, []int{}},
		{"all equal", []float64{4, 4, 4, 4}, 3, []int{}},
		{"lone deviation among equals", []float64{4, 4, 9, 4}, 3, []int{2}},
		{"lone low value among equals", []float64{4, 4, 4, 1}, 3, []int{3}},
		{"no outliers", []float64{10, 11, 10, 12, 11, 10, 11, 11, 10, 12}, 3, []int{}},
		{"two spikes", []float64{10, 10, 11, 10, 90, 11, 10, 10, -70, 11, 10, 10}, 3, []int{4, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAnomalies(tt.data, tt.threshold)
			if got == nil {
				t.Fatal("Expected a non-nil slice")
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("DetectAnomalies = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("DetectAnomalies = %v, want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestDetectAnomalies_DoesNotMutate(t *testing.T) {
	data := []float64{3, 1, 2, 40, 5}
	DetectAnomalies(data, 2)
	want := []float64{3, 1, 2, 40, 5}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("input modified: %v", data)
		}
	}
}

func TestDetectAnomalies_MatchesDirectComputation(t *testing.T) {
	data := []float64{3.2, 4.1, 2.9, 3.7, 15.5, 3.3, 3.0, 4.4, -6.1, 3.8}

	var want []int
	for i := range data {
		rest := make([]float64, 0, len(data)-1)
		rest = append(rest, data[:i]...)
		rest = append(rest, data[i+1:]...)

		mean := 0.0
		for _, v := range rest {
			mean += v
		}
		mean /= float64(len(rest))
		variance := 0.0
		for _, v := range rest {
			variance += (v - mean) * (v - mean)
		}
		sd := math.Sqrt(variance / float64(len(rest)))
		if math.Abs((data[i]-mean)/sd) > 2.5 {
			want = append(want, i)
		}
	}

	got := DetectAnomalies(data, 2.5)
	if len(got) != len(want) {
		t.Fatalf("DetectAnomalies = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DetectAnomalies = %v, want %v", got, want)
		}
	}
}

func TestIQRDetector_DetectOutliers(t *testing.T) {
	detector := &IQRDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5
	config.Threshold = 1.5

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	data := createTestDataPoints(values)

	results := detector.Detect(data, config)

	if len(results) == 0 {
		t.Fatal("Expected to detect outlier at index 9 (value 100)")
	}

	foundOutlier := false
	for _, r := range results {
		if r.Index == 9 {
			foundOutlier = true
			if r.Type != AnomalyTypeSpike {
				t.Errorf("Expected anomaly type Spike, got %s", r.Type)
			}
			break
		}
	}

	if !foundOutlier {
		t.Error("Expected to detect outlier at index 9")
	}
}

func TestIQRDetector_FarOutFence(t *testing.T) {
	// Q1=3, Q3=8, IQR=5: 22 is outside k=1.5 (15.5) but inside k=3 (23)
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 22}
	data := createTestDataPoints(values)

	inner := (&IQRDetector{}).Detect(data, DetectorConfig{Threshold: 1.5})
	if len(inner) != 1 || inner[0].Index != 9 {
		t.Fatalf("k=1.5: expected index 9 flagged, got %+v", inner)
	}

	far := (&IQRDetector{}).Detect(data, DetectorConfig{Threshold: 3})
	if len(far) != 0 {
		t.Errorf("k=3: expected no anomalies, got %+v", far)
	}
}

func TestDefaultThresholdFor(t *testing.T) {
	if got := DefaultThresholdFor("iqr"); got != DefaultIQRMultiplier {
		t.Errorf("iqr default = %v, want %v", got, DefaultIQRMultiplier)
	}
	if got := DefaultThresholdFor("zscore"); got != DefaultThreshold {
		t.Errorf("zscore default = %v, want %v", got, DefaultThreshold)
	}
}

func TestIQRDetector_NoAnomalies(t *testing.T) {
	detector := &IQRDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5
	config.Threshold = 1.5

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	data := createTestDataPoints(values)

	results := detector.Detect(data, config)

	if len(results) != 0 {
		t.Errorf("Expected no anomalies, got %d", len(results))
	}
}


func TestRun_Annotates(t *testing.T) {
	data := createTestDataPoints([]float64{10, 12, 11, 50, 13})
	config := DefaultConfig()
	config.Threshold = 2

	anomalies, err := Run("zscore", data, config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(anomalies) != 1 {
		t.Fatalf("Expected 1 anomaly, got %d", len(anomalies))
	}

	a := anomalies[0]
	if a.Index != 3 || a.Value != 50 || a.Algorithm != "zscore" || a.Type != AnomalyTypeSpike {
		t.Errorf("Unexpected anomaly %+v", a)
	}
	if a.Time != "2024-01-01T00:03:00Z" {
		t.Errorf("Time = %s", a.Time)
	}

	if _, err := Run("nope", data, config); err == nil {
		t.Error("Expected error for unknown detector")
	}
}

func TestDetectorRegistry(t *testing.T) {
	detectors := ListDetectors()
	expected := []string{"iqr", "zscore"}

	if len(detectors) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, detectors)
	}
	for i, name := range expected {
		if detectors[i] != name {
			t.Errorf("ListDetectors()[%d] = %s, want %s", i, detectors[i], name)
		}
		if _, err := GetDetector(name); err != nil {
			t.Errorf("Expected detector %s to exist, got error: %v", name, err)
		}
	}
}

func TestGetDetector_Unknown(t *testing.T) {
	_, err := GetDetector("unknown_detector")

	if err == nil {
		t.Error("Expected error for unknown detector")
	}
}

func TestEmptyData(t *testing.T) {
	detectors := []AnomalyDetector{
		&ZScoreDetector{},
		&IQRDetector{},
	}

	config := DefaultConfig()
	data := []DataPoint{}

	for _, detector := range detectors {
		results := detector.Detect(data, config)
		if len(results) != 0 {
			t.Errorf("%s: Expected no results for empty data", detector.Name())
		}
	}
}

func TestNegativeValues(t *testing.T) {
	detector := &ZScoreDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5
	config.Threshold = 2.0 // Lower threshold

	// Negative values with a clear anomaly
	values := []float64{-10, -10, -10, -10, -10, -10, -100, -10, -10, -10}
	data := createTestDataPoints(values)

	results := detector.Detect(data, config)

	if len(results) == 0 {
		t.Error("Expected to detect anomaly in negative values")
	}
}

func TestVeryHighThreshold(t *testing.T) {
	detector := &ZScoreDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5
	config.Threshold = 100

	values := []float64{10, 11, 10, 12, 11, 10, 50, 11, 10, 12}
	data := createTestDataPoints(values)

	results := detector.Detect(data, config)

	if len(results) != 0 {
		t.Errorf("Expected no anomalies with high threshold, got %d", len(results))
	}
}
