package stats

import (
	"fmt"
	"io"

	"github.com/okatens/addstat/internal/difficulty"
	"github.com/okatens/addstat/internal/model"
)

// Metric pair names as shown in reports.
const (
	MetricDifficultyTime        = "difficulty vs solve time"
	MetricDifficultyRating      = "difficulty vs rating"
	MetricDifficultyCorrectness = "difficulty vs correctness"
	MetricEfficiencyRating      = "efficiency vs rating"
	MetricTimeRating            = "solve time vs rating"
)

// MetricResult holds the correlation statistics for one metric pair.
type MetricResult struct {
	Name    string
	Samples int // points after data-quality gating
	Kept    int // points remaining after outlier filtering
	R       float64
	HasR    bool
	R2      float64
	HasR2   bool
}

// Options configures report construction.
type Options struct {
	Filter      model.Filter
	Weights     model.Weights
	Outliers    bool
	Sensitivity float64
}

// Report contains every computed statistic for one analysis run.
type Report struct {
	Weights           model.Weights
	Range             model.Range
	Metrics           []MetricResult
	DifficultyBuckets []Bucket
	RatingBuckets     []Bucket
}

// BuildReport runs the full analysis pipeline: gate and join the records
// into point sets, flag outliers, and compute correlation statistics for
// every metric pair.
func BuildReport(exercises []model.Exercise, evaluations []model.Evaluation, opts Options) Report {
	if opts.Sensitivity <= 0 {
		opts.Sensitivity = DefaultSensitivity
	}
	r := difficulty.ComputeRange(exercises, opts.Filter, opts.Weights)

	metrics := []MetricResult{
		metricResult(MetricDifficultyTime,
			ApplyOutlierDetection(DifficultyTimePoints(exercises, opts.Filter, opts.Weights, r), opts.Sensitivity, opts.Outliers)),
		metricResult(MetricDifficultyRating,
			ApplyOutlierDetection(DifficultyRatingPoints(exercises, evaluations, opts.Filter, opts.Weights, r), opts.Sensitivity, opts.Outliers)),
		metricResult(MetricDifficultyCorrectness,
			ApplyOutlierDetectionX(DifficultyCorrectnessPoints(exercises, opts.Filter, opts.Weights, r), opts.Sensitivity, opts.Outliers)),
		metricResult(MetricEfficiencyRating,
			ApplyOutlierDetection(EfficiencyRatingPoints(exercises, evaluations, opts.Filter), opts.Sensitivity, opts.Outliers)),
		metricResult(MetricTimeRating,
			ApplyOutlierDetection(TimeRatingPoints(exercises, evaluations, opts.Filter), opts.Sensitivity, opts.Outliers)),
	}

	return Report{
		Weights:           opts.Weights,
		Range:             r,
		Metrics:           metrics,
		DifficultyBuckets: DifficultySuccessBuckets(exercises, opts.Filter, opts.Weights, r),
		RatingBuckets:     RatingSuccessBuckets(exercises, evaluations, opts.Filter),
	}
}

func metricResult(name string, points []model.DataPoint) MetricResult {
	kept := FilterOutliers(points)
	res := MetricResult{Name: name, Samples: len(points), Kept: len(kept)}
	res.R, res.HasR = Correlation(kept)
	res.R2, res.HasR2 = RSquared(kept)
	return res
}

// RenderReport prints the correlation table and the success-rate bars.
func RenderReport(w io.Writer, report Report, totalWidth int) error {
	if _, err := fmt.Fprintf(w, "Weights: digits=%.1f carryovers=%.1f zeros=%.1f\n",
		report.Weights.Digits, report.Weights.Carryovers, report.Weights.Zeros); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Raw score range: %.2f .. %.2f\n\n", report.Range.Min, report.Range.Max); err != nil {
		return err
	}

	headers := []string{"Metric", "N", "Kept", "r", "Strength", "R²"}
	rows := make([][]string, 0, len(report.Metrics))
	for _, m := range report.Metrics {
		rows = append(rows, []string{
			m.Name,
			fmt.Sprintf("%d", m.Samples),
			fmt.Sprintf("%d", m.Kept),
			formatStat(m.R, m.HasR),
			Strength(m.R, m.HasR),
			formatStat(m.R2, m.HasR2),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if err := RenderSuccessBars(w, "Success rate by difficulty", report.DifficultyBuckets, totalWidth); err != nil {
		return err
	}
	return RenderSuccessBars(w, "Success rate by rating", report.RatingBuckets, totalWidth)
}

func formatStat(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}
