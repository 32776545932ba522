package stats

import (
	"fmt"

	"github.com/okatens/addstat/internal/difficulty"
	"github.com/okatens/addstat/internal/model"
)

const difficultyBucketCount = 20

// Bucket aggregates the binary correctness proxy over one bin.
type Bucket struct {
	Label       string
	Total       int
	Correct     int
	SuccessRate float64
}

// DifficultySuccessBuckets groups exercises into 20 equal-width bins of
// normalized difficulty (0-100) and reports the success rate per bin.
// Bins with no samples are omitted.
func DifficultySuccessBuckets(exercises []model.Exercise, filter model.Filter, w model.Weights, r model.Range) []Bucket {
	totals := make([]int, difficultyBucketCount)
	corrects := make([]int, difficultyBucketCount)
	width := 100.0 / difficultyBucketCount

	for _, ex := range exercises {
		if !filter.MatchesMode(ex.Mode) {
			continue
		}
		eff, ok := GatedEfficiency(ex)
		if !ok {
			continue
		}
		raw := difficulty.Score(ex.OperandA, ex.OperandB, w)
		norm := difficulty.Normalize(raw, r)
		idx := int(norm / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= difficultyBucketCount {
			idx = difficultyBucketCount - 1
		}
		totals[idx]++
		if correctness(eff) == 1 {
			corrects[idx]++
		}
	}

	var buckets []Bucket
	for i := 0; i < difficultyBucketCount; i++ {
		if totals[i] == 0 {
			continue
		}
		low := float64(i) * width
		buckets = append(buckets, Bucket{
			Label:       fmt.Sprintf("%.0f-%.0f", low, low+width),
			Total:       totals[i],
			Correct:     corrects[i],
			SuccessRate: float64(corrects[i]) / float64(totals[i]),
		})
	}
	return buckets
}

// RatingSuccessBuckets groups (evaluation, exercise) pairs into the nine
// integer rating bins and reports the success rate per bin. An evaluation
// covering k exercises contributes up to k samples. Empty bins are omitted.
func RatingSuccessBuckets(exercises []model.Exercise, evaluations []model.Evaluation, filter model.Filter) []Bucket {
	byID := make(map[int64]model.Exercise, len(exercises))
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}

	totals := make([]int, maxRating+1)
	corrects := make([]int, maxRating+1)
	for _, ev := range evaluations {
		if !filter.MatchesMode(ev.Mode) || !ValidRating(ev.Rating) {
			continue
		}
		for _, id := range ev.ExerciseIDs {
			ex, ok := byID[id]
			if !ok || !filter.MatchesMode(ex.Mode) {
				continue
			}
			eff, ok := GatedEfficiency(ex)
			if !ok {
				continue
			}
			totals[ev.Rating]++
			if correctness(eff) == 1 {
				corrects[ev.Rating]++
			}
		}
	}

	var buckets []Bucket
	for rating := minRating; rating <= maxRating; rating++ {
		if totals[rating] == 0 {
			continue
		}
		buckets = append(buckets, Bucket{
			Label:       fmt.Sprintf("%d", rating),
			Total:       totals[rating],
			Correct:     corrects[rating],
			SuccessRate: float64(corrects[rating]) / float64(totals[rating]),
		})
	}
	return buckets
}
