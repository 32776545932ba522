package difficulty

import "github.com/okatens/addstat/internal/model"

// fallbackRange is used when the filtered population is empty.
var fallbackRange = model.Range{Min: 0, Max: 100}

// ComputeRange scans the filtered exercise population and returns the
// observed raw-score bounds for the given weights. A single-valued
// population is widened to avoid a zero-width range; an empty population
// yields the {0,100} fallback.
func ComputeRange(exercises []model.Exercise, filter model.Filter, w model.Weights) model.Range {
	found := false
	var r model.Range
	for _, ex := range exercises {
		if !filter.MatchesMode(ex.Mode) {
			continue
		}
		score := Score(ex.OperandA, ex.OperandB, w)
		if !found {
			r = model.Range{Min: score, Max: score}
			found = true
			continue
		}
		if score < r.Min {
			r.Min = score
		}
		if score > r.Max {
			r.Max = score
		}
	}
	if !found {
		return fallbackRange
	}
	if r.Min == r.Max {
		r.Min--
		r.Max++
	}
	return r
}

// Normalize maps a raw score onto the 0-100 scale defined by the range.
// The range must have been computed with the same weights and mode filter
// as the raw score.
func Normalize(raw float64, r model.Range) float64 {
	return (raw - r.Min) / (r.Max - r.Min) * 100
}
