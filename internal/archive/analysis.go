package archive

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okatens/addstat/internal/difficulty"
	"github.com/okatens/addstat/internal/model"
	"github.com/okatens/addstat/internal/stats"
)

// ExerciseAnalysis is one exercise enriched with computed metrics for
// external analysis tools.
type ExerciseAnalysis struct {
	ID            int64    `json:"id"`
	OperandA      int      `json:"operandA"`
	OperandB      int      `json:"operandB"`
	Answer        int      `json:"answer"`
	Mode          string   `json:"mode"`
	RawScore      float64  `json:"rawScore"`
	Difficulty    float64  `json:"difficulty"`
	SolveSeconds  *float64 `json:"solveSeconds,omitempty"`
	Efficiency    *float64 `json:"efficiency,omitempty"`
	AverageRating *float64 `json:"averageRating,omitempty"`
}

// Analyze computes per-exercise metrics over the filtered population.
// Ratings referencing the same exercise are averaged, so each exercise
// carries at most one rating value.
func Analyze(exercises []model.Exercise, evaluations []model.Evaluation, filter model.Filter, w model.Weights) []ExerciseAnalysis {
	r := difficulty.ComputeRange(exercises, filter, w)
	avgs := stats.AverageRatings(evaluations, filter)

	var out []ExerciseAnalysis
	for _, ex := range exercises {
		if !filter.MatchesMode(ex.Mode) {
			continue
		}
		raw := difficulty.Score(ex.OperandA, ex.OperandB, w)
		row := ExerciseAnalysis{
			ID:         ex.ID,
			OperandA:   ex.OperandA,
			OperandB:   ex.OperandB,
			Answer:     ex.Answer(),
			Mode:       ex.Mode,
			RawScore:   raw,
			Difficulty: difficulty.Normalize(raw, r),
		}
		if secs, ok := ex.SolveSeconds(); ok {
			row.SolveSeconds = &secs
		}
		if eff, ok := stats.GatedEfficiency(ex); ok {
			row.Efficiency = &eff
		}
		if rating, ok := avgs[ex.ID]; ok {
			row.AverageRating = &rating
		}
		out = append(out, row)
	}
	return out
}

// WriteAnalysis encodes analysis rows as indented JSON.
func WriteAnalysis(w io.Writer, rows []ExerciseAnalysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return nil
}
