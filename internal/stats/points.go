package stats

import (
	"strconv"

	"github.com/okatens/addstat/internal/difficulty"
	"github.com/okatens/addstat/internal/model"
)

// Data-quality gates. Records outside these bands are instrumentation noise
// (tab left open, accidental instant submit, mashed keys) and are excluded
// before any statistical step.
const (
	minRating       = 1
	maxRating       = 9
	minSolveSeconds = 0.5
	maxSolveSeconds = 120
	minEfficiency   = 100.0
	maxEfficiency   = 500.0
)

// ValidRating reports whether a rating lies in the accepted 1..9 band.
func ValidRating(rating int) bool {
	return rating >= minRating && rating <= maxRating
}

// GatedSolveTime returns the solve time in seconds if the exercise was
// solved within the plausible band.
func GatedSolveTime(ex model.Exercise) (float64, bool) {
	secs, ok := ex.SolveSeconds()
	if !ok || secs < minSolveSeconds || secs > maxSolveSeconds {
		return 0, false
	}
	return secs, true
}

// GatedEfficiency returns the keystroke efficiency (keystrokes per answer
// digit, as a percentage) if it lies in the plausible band. Exactly 100
// means the answer was typed with no wasted keystrokes.
func GatedEfficiency(ex model.Exercise) (float64, bool) {
	if ex.Keystrokes == nil {
		return 0, false
	}
	digits := len(strconv.Itoa(ex.Answer()))
	eff := float64(*ex.Keystrokes) / float64(digits) * 100
	if eff < minEfficiency || eff > maxEfficiency {
		return 0, false
	}
	return eff, true
}

// correctness maps efficiency onto the binary correctness proxy: an ideal
// input (exactly 100) counts as correct, anything above as incorrect.
func correctness(efficiency float64) float64 {
	if efficiency == minEfficiency {
		return 1
	}
	return 0
}

// AverageRatings collapses evaluations into one mean rating per exercise id.
// An evaluation covering k exercises contributes its rating to each of them;
// an exercise referenced by several evaluations gets their mean. Evaluations
// outside the mode filter or the valid rating band are dropped.
func AverageRatings(evaluations []model.Evaluation, filter model.Filter) map[int64]float64 {
	sums := map[int64]float64{}
	counts := map[int64]int{}
	for _, ev := range evaluations {
		if !filter.MatchesMode(ev.Mode) || !ValidRating(ev.Rating) {
			continue
		}
		for _, id := range ev.ExerciseIDs {
			sums[id] += float64(ev.Rating)
			counts[id]++
		}
	}
	avgs := make(map[int64]float64, len(sums))
	for id, sum := range sums {
		avgs[id] = sum / float64(counts[id])
	}
	return avgs
}

// DifficultyTimePoints pairs normalized difficulty with solve time.
func DifficultyTimePoints(exercises []model.Exercise, filter model.Filter, w model.Weights, r model.Range) []model.DataPoint {
	var points []model.DataPoint
	for _, ex := range exercises {
		if !filter.MatchesMode(ex.Mode) {
			continue
		}
		secs, ok := GatedSolveTime(ex)
		if !ok {
			continue
		}
		raw := difficulty.Score(ex.OperandA, ex.OperandB, w)
		points = append(points, model.DataPoint{X: difficulty.Normalize(raw, r), Y: secs})
	}
	return points
}

// DifficultyRatingPoints pairs normalized difficulty with the mean effort
// rating. Each exercise contributes at most one point.
func DifficultyRatingPoints(exercises []model.Exercise, evaluations []model.Evaluation, filter model.Filter, w model.Weights, r model.Range) []model.DataPoint {
	avgs := AverageRatings(evaluations, filter)
	var points []model.DataPoint
	for _, ex := range exercises {
		if !filter.MatchesMode(ex.Mode) {
			continue
		}
		rating, ok := avgs[ex.ID]
		if !ok {
			continue
		}
		raw := difficulty.Score(ex.OperandA, ex.OperandB, w)
		points = append(points, model.DataPoint{X: difficulty.Normalize(raw, r), Y: rating})
	}
	return points
}

// DifficultyCorrectnessPoints pairs normalized difficulty with the binary
// correctness proxy. Callers must use x-axis-only outlier detection on the
// result.
func DifficultyCorrectnessPoints(exercises []model.Exercise, filter model.Filter, w model.Weights, r model.Range) []model.DataPoint {
	var points []model.DataPoint
	for _, ex := range exercises {
		if !filter.MatchesMode(ex.Mode) {
			continue
		}
		eff, ok := GatedEfficiency(ex)
		if !ok {
			continue
		}
		raw := difficulty.Score(ex.OperandA, ex.OperandB, w)
		points = append(points, model.DataPoint{X: difficulty.Normalize(raw, r), Y: correctness(eff)})
	}
	return points
}

// EfficiencyRatingPoints pairs keystroke efficiency with the mean effort rating.
func EfficiencyRatingPoints(exercises []model.Exercise, evaluations []model.Evaluation, filter model.Filter) []model.DataPoint {
	avgs := AverageRatings(evaluations, filter)
	var points []model.DataPoint
	for _, ex := range exercises {
		if !filter.MatchesMode(ex.Mode) {
			continue
		}
		eff, ok := GatedEfficiency(ex)
		if !ok {
			continue
		}
		rating, ok := avgs[ex.ID]
		if !ok {
			continue
		}
		points = append(points, model.DataPoint{X: eff, Y: rating})
	}
	return points
}

// TimeRatingPoints pairs solve time with the mean effort rating.
func TimeRatingPoints(exercises []model.Exercise, evaluations []model.Evaluation, filter model.Filter) []model.DataPoint {
	avgs := AverageRatings(evaluations, filter)
	var points []model.DataPoint
	for _, ex := range exercises {
		if !filter.MatchesMode(ex.Mode) {
			continue
		}
		secs, ok := GatedSolveTime(ex)
		if !ok {
			continue
		}
		rating, ok := avgs[ex.ID]
		if !ok {
			continue
		}
		points = append(points, model.DataPoint{X: secs, Y: rating})
	}
	return points
}
