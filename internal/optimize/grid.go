// Package optimize searches the difficulty weight space by exhaustive grid
// search, ranking candidates by how well their scores agree with observed
// outcomes.
package optimize

import (
	"context"
	"math"

	"github.com/okatens/addstat/internal/difficulty"
	"github.com/okatens/addstat/internal/model"
	"github.com/okatens/addstat/internal/stats"
)

// Grid bounds and step sizes. The full Cartesian product is evaluated,
// no pruning.
const (
	digitsMax     = 5.0
	digitsStep    = 0.2
	carryoversMax = 10.0
	carryoverStep = 0.4
	zerosMax      = 5.0
	zerosStep     = 0.2
)

// progressCadence is the number of combinations between progress reports
// and context checks.
const progressCadence = 100

// Progress reports grid-search advancement to the caller.
type Progress struct {
	Current    int
	Total      int
	Percentage float64
}

// Options configures a grid search.
type Options struct {
	Filter      model.Filter
	Outliers    bool
	Sensitivity float64
	OnProgress  func(Progress)
}

// TotalCombinations returns the size of the search grid.
func TotalCombinations() int {
	return gridSize(digitsMax, digitsStep) * gridSize(carryoversMax, carryoverStep) * gridSize(zerosMax, zerosStep)
}

func gridSize(max, step float64) int {
	return int(math.Round(max/step)) + 1
}

// GridSearch evaluates every weight combination and returns the one with
// the highest composite correlation score. Ties keep the earlier candidate,
// so the result is deterministic. The context is checked every
// progressCadence combinations; cancellation returns ctx.Err() along with
// the best result found so far.
func GridSearch(ctx context.Context, exercises []model.Exercise, evaluations []model.Evaluation, opts Options) (model.OptimizationResult, error) {
	if opts.Sensitivity <= 0 {
		opts.Sensitivity = stats.DefaultSensitivity
	}
	total := TotalCombinations()

	var best model.OptimizationResult
	bestScore := math.Inf(-1)
	current := 0

	for di := 0; di < gridSize(digitsMax, digitsStep); di++ {
		for ci := 0; ci < gridSize(carryoversMax, carryoverStep); ci++ {
			for zi := 0; zi < gridSize(zerosMax, zerosStep); zi++ {
				w := model.Weights{
					Digits:     roundWeight(float64(di) * digitsStep),
					Carryovers: roundWeight(float64(ci) * carryoverStep),
					Zeros:      roundWeight(float64(zi) * zerosStep),
				}
				candidate := evaluate(exercises, evaluations, w, opts)
				if candidate.CompositeScore > bestScore {
					bestScore = candidate.CompositeScore
					best = candidate
				}

				current++
				if current%progressCadence == 0 {
					report(opts.OnProgress, current, total)
					if err := ctx.Err(); err != nil {
						return best, err
					}
				}
			}
		}
	}
	report(opts.OnProgress, total, total)
	return best, nil
}

// evaluate scores one weight candidate: recompute the difficulty range,
// rebuild the three outcome point sets, filter outliers, and average the
// available correlations.
func evaluate(exercises []model.Exercise, evaluations []model.Evaluation, w model.Weights, opts Options) model.OptimizationResult {
	r := difficulty.ComputeRange(exercises, opts.Filter, w)

	timePoints := stats.ApplyOutlierDetection(
		stats.DifficultyTimePoints(exercises, opts.Filter, w, r), opts.Sensitivity, opts.Outliers)
	ratingPoints := stats.ApplyOutlierDetection(
		stats.DifficultyRatingPoints(exercises, evaluations, opts.Filter, w, r), opts.Sensitivity, opts.Outliers)
	correctnessPoints := stats.ApplyOutlierDetectionX(
		stats.DifficultyCorrectnessPoints(exercises, opts.Filter, w, r), opts.Sensitivity, opts.Outliers)

	result := model.OptimizationResult{Weights: w}
	result.Correlations.Time = correlationPtr(stats.FilterOutliers(timePoints))
	result.Correlations.Rating = correlationPtr(stats.FilterOutliers(ratingPoints))
	result.Correlations.Correctness = correlationPtr(stats.FilterOutliers(correctnessPoints))
	result.CompositeScore = composite(result.Correlations)
	return result
}

// composite averages the available correlations. The correctness metric
// enters by magnitude; its sign carries no information. With no available
// correlation the composite is 0, never an error.
func composite(c model.Correlations) float64 {
	sum := 0.0
	count := 0
	if c.Time != nil {
		sum += *c.Time
		count++
	}
	if c.Rating != nil {
		sum += *c.Rating
		count++
	}
	if c.Correctness != nil {
		sum += math.Abs(*c.Correctness)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func correlationPtr(points []model.DataPoint) *float64 {
	r, ok := stats.Correlation(points)
	if !ok {
		return nil
	}
	return &r
}

// roundWeight rounds to one decimal to keep grid values free of
// floating-point drift.
func roundWeight(v float64) float64 {
	return math.Round(v*10) / 10
}

func report(fn func(Progress), current, total int) {
	if fn == nil {
		return
	}
	fn(Progress{
		Current:    current,
		Total:      total,
		Percentage: float64(current) / float64(total) * 100,
	})
}
