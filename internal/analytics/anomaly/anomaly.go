// Package anomaly flags points that sit far from the rest of a series.
package anomaly

import (
	"fmt"
	"sort"

	"github.com/fabzclean/analytics/internal/analytics"
)

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeSpike   AnomalyType = "spike"   // Sudden increase
	AnomalyTypeDrop    AnomalyType = "drop"    // Sudden decrease
	AnomalyTypeOutlier AnomalyType = "outlier" // Value outside normal range
)

// Anomaly is a detected anomaly annotated with its source point
type Anomaly struct {
	Index     int         `json:"index"`
	Time      string      `json:"time,omitempty"`
	Value     float64     `json:"value"`
	Expected  *Range      `json:"expected,omitempty"`
	Score     float64     `json:"score"`     // How anomalous (higher = more abnormal)
	Type      AnomalyType `json:"type"`      // Type of anomaly
	Algorithm string      `json:"algorithm"` // Which algorithm detected it
}

// Range represents expected value range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type.
type DataPoint = analytics.TimeSeriesPoint

// DetectorConfig holds configuration for anomaly detection
type DetectorConfig struct {
	// Threshold for detection sensitivity (z-score limit for zscore, fence
	// multiplier for iqr)
	Threshold float64

	// MinDataPoints minimum number of points required for detection
	MinDataPoints int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:     DefaultThreshold,
		MinDataPoints: minPoints,
	}
}

// AnomalyDetector interface for all anomaly detection algorithms
type AnomalyDetector interface {
	// Name returns the algorithm name
	Name() string

	// Detect finds anomalies in the given data points, ordered by index
	Detect(data []DataPoint, config DetectorConfig) []AnomalyResult
}

// AnomalyResult contains detection result for a single point
type AnomalyResult struct {
	Index    int         // Index in original data
	Score    float64     // Anomaly score
	Type     AnomalyType // Type of anomaly
	Expected *Range      // Expected range
}

// DefaultThresholdFor returns the threshold a detector uses when the caller
// sets none: the fence multiplier for iqr, the z-score limit otherwise.
func DefaultThresholdFor(detector string) float64 {
	if detector == "iqr" {
		return DefaultIQRMultiplier
	}
	return DefaultThreshold
}

// Registry holds available anomaly detectors
var detectorRegistry = make(map[string]AnomalyDetector)

// RegisterDetector adds a detector to the registry
func RegisterDetector(name string, detector AnomalyDetector) {
	detectorRegistry[name] = detector
}

// GetDetector returns a detector by name
func GetDetector(name string) (AnomalyDetector, error) {
	if detector, ok := detectorRegistry[name]; ok {
		return detector, nil
	}
	return nil, fmt.Errorf("unknown anomaly detector: %s", name)
}

// ListDetectors returns the sorted names of available detectors
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run detects anomalies using the named algorithm and annotates each result
// with the point it refers to.
func Run(algorithm string, data []DataPoint, config DetectorConfig) ([]Anomaly, error) {
	detector, err := GetDetector(algorithm)
	if err != nil {
		return nil, err
	}

	results := detector.Detect(data, config)
	anomalies := make([]Anomaly, 0, len(results))
	for _, r := range results {
		a := Anomaly{
			Index:     r.Index,
			Value:     data[r.Index].Value,
			Expected:  r.Expected,
			Score:     r.Score,
			Type:      r.Type,
			Algorithm: detector.Name(),
		}
		if t := data[r.Index].Time; !t.IsZero() {
			a.Time = t.Format("2006-01-02T15:04:05Z07:00")
		}
		anomalies = append(anomalies, a)
	}
	return anomalies, nil
}
