// Package stats contains correlation analysis and reporting.
package stats

import (
	"sort"

	"github.com/okatens/addstat/internal/model"
)

// DefaultSensitivity is the standard IQR fence multiplier.
const DefaultSensitivity = 1.5

// minOutlierSamples is the smallest sample for which quartiles are computed.
const minOutlierSamples = 4

// DetectOutliersIQR flags values outside the IQR fences and returns their
// original indices. Quartiles use direct order-statistic indexing
// (sorted[floor(0.25(n-1))] and sorted[floor(0.75(n-1))]), not interpolated
// quartiles. Fewer than four values yields no outliers.
func DetectOutliersIQR(values []float64, sensitivity float64) map[int]struct{} {
	out := map[int]struct{}{}
	n := len(values)
	if n < minOutlierSamples {
		return out
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := sorted[(n-1)/4]
	q3 := sorted[(n-1)*3/4]
	iqr := q3 - q1
	lower := q1 - sensitivity*iqr
	upper := q3 + sensitivity*iqr

	for i, v := range values {
		if v < lower || v > upper {
			out[i] = struct{}{}
		}
	}
	return out
}

// ApplyOutlierDetection marks points whose x or y value is an IQR outlier.
// Detection runs independently per axis; a point flagged on either axis is
// an outlier. Disabled detection or fewer than four points clears all flags.
func ApplyOutlierDetection(points []model.DataPoint, sensitivity float64, enabled bool) []model.DataPoint {
	return markOutliers(points, sensitivity, enabled, true)
}

// ApplyOutlierDetectionX marks outliers on the x axis only. Used for
// binary-outcome metrics, where the y values {0,1} must not be tested.
func ApplyOutlierDetectionX(points []model.DataPoint, sensitivity float64, enabled bool) []model.DataPoint {
	return markOutliers(points, sensitivity, enabled, false)
}

func markOutliers(points []model.DataPoint, sensitivity float64, enabled bool, checkY bool) []model.DataPoint {
	out := make([]model.DataPoint, len(points))
	copy(out, points)
	if !enabled || len(points) < minOutlierSamples {
		for i := range out {
			out[i].IsOutlier = false
		}
		return out
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	flaggedX := DetectOutliersIQR(xs, sensitivity)
	flaggedY := map[int]struct{}{}
	if checkY {
		flaggedY = DetectOutliersIQR(ys, sensitivity)
	}

	for i := range out {
		_, fx := flaggedX[i]
		_, fy := flaggedY[i]
		out[i].IsOutlier = fx || fy
	}
	return out
}

// FilterOutliers returns only the points not marked as outliers.
func FilterOutliers(points []model.DataPoint) []model.DataPoint {
	kept := make([]model.DataPoint, 0, len(points))
	for _, p := range points {
		if !p.IsOutlier {
			kept = append(kept, p)
		}
	}
	return kept
}
