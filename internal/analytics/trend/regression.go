package trend

import (
	"github.com/fabzclean/analytics/internal/analytics"
)

// RegressionModel is an ordinary least-squares line y = Slope*x + Intercept.
// R2 is the coefficient of determination and is not clamped to [0, 1].
type RegressionModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
}

// Predict evaluates the fitted line at x
func (m RegressionModel) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// LinearRegression fits a least-squares line through points.
// Fewer than two points yields the zero model; identical x values yield a
// zero slope; a constant y yields R2 = 0.
func LinearRegression(points []analytics.Point) RegressionModel {
	n := len(points)
	if n < 2 {
		return RegressionModel{}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxy, sxx float64
	for _, p := range points {
		dx := p.X - meanX
		sxy += dx * (p.Y - meanY)
		sxx += dx * dx
	}

	slope := 0.0
	if sxx != 0 {
		slope = sxy / sxx
	}
	model := RegressionModel{Slope: slope, Intercept: meanY - slope*meanX}

	var ssRes, ssTot float64
	for _, p := range points {
		residual := p.Y - model.Predict(p.X)
		ssRes += residual * residual
		dy := p.Y - meanY
		ssTot += dy * dy
	}
	if ssTot != 0 {
		model.R2 = 1 - ssRes/ssTot
	}

	return model
}
