package stats

import (
	"math"

	"github.com/okatens/addstat/internal/model"
)

// Correlation strength labels.
const (
	StrengthUnknown  = "Unknown"
	StrengthWeak     = "Weak"
	StrengthModerate = "Moderate"
	StrengthStrong   = "Strong"
)

// Correlation computes Pearson's r over the points. With a binary 0/1 axis
// this is the point-biserial correlation. Returns ok=false for fewer than
// two points or a degenerate (zero variance) distribution.
func Correlation(points []model.DataPoint) (float64, bool) {
	n := float64(len(points))
	if len(points) < 2 {
		return 0, false
	}
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
		sumY2 += p.Y * p.Y
	}
	den := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if den == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / den, true
}

// RSquared fits an ordinary-least-squares line and returns the coefficient
// of determination. Returns ok=false for fewer than two points, zero x
// variance, or zero total y variance.
func RSquared(points []model.DataPoint) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	n := float64(len(points))
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	meanX := sumX / n
	meanY := sumY / n

	var sxy, sxx, sst float64
	for _, p := range points {
		dx := p.X - meanX
		dy := p.Y - meanY
		sxy += dx * dy
		sxx += dx * dx
		sst += dy * dy
	}
	if sxx == 0 || sst == 0 {
		return 0, false
	}
	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var ssr float64
	for _, p := range points {
		residual := p.Y - (slope*p.X + intercept)
		ssr += residual * residual
	}
	return 1 - ssr/sst, true
}

// Strength classifies a correlation coefficient. ok=false inputs (missing
// or degenerate correlations) classify as Unknown.
func Strength(r float64, ok bool) string {
	if !ok {
		return StrengthUnknown
	}
	abs := math.Abs(r)
	switch {
	case abs < 0.3:
		return StrengthWeak
	case abs < 0.7:
		return StrengthModerate
	default:
		return StrengthStrong
	}
}
