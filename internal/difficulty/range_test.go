package difficulty

import (
	"math"
	"testing"
	"time"

	"github.com/okatens/addstat/internal/model"
)

func makeExercise(a, b int, mode string) model.Exercise {
	return model.Exercise{
		OperandA:    a,
		OperandB:    b,
		DisplayedAt: time.Unix(0, 0),
		Mode:        mode,
	}
}

func TestComputeRange(t *testing.T) {
	w := model.DefaultWeights()
	exercises := []model.Exercise{
		makeExercise(345, 78, "classic"),  // score 10.0
		makeExercise(1000, 1, "classic"),  // score 3.5
		makeExercise(999, 999, "endless"), // different mode
	}

	r := ComputeRange(exercises, model.Filter{Mode: "classic"}, w)
	if r.Min != 3.5 || r.Max != 10.0 {
		t.Fatalf("unexpected range: %+v", r)
	}
}

func TestComputeRangeDegenerate(t *testing.T) {
	w := model.DefaultWeights()
	exercises := []model.Exercise{makeExercise(345, 78, "classic")}
	r := ComputeRange(exercises, model.Filter{Mode: model.ModeAll}, w)
	if r.Min != 9.0 || r.Max != 11.0 {
		t.Fatalf("degenerate range not widened: %+v", r)
	}
	// A single-valued population normalizes near the middle of the scale.
	if got := Normalize(10.0, r); math.Abs(got-50) > 1e-9 {
		t.Fatalf("Normalize mid = %v, want 50", got)
	}
}

func TestComputeRangeEmpty(t *testing.T) {
	r := ComputeRange(nil, model.Filter{}, model.DefaultWeights())
	if r.Min != 0 || r.Max != 100 {
		t.Fatalf("empty population fallback: %+v", r)
	}
}

func TestNormalizeBounds(t *testing.T) {
	r := model.Range{Min: 3.5, Max: 10.0}
	if got := Normalize(r.Min, r); math.Abs(got) > 1e-9 {
		t.Fatalf("Normalize(min) = %v, want 0", got)
	}
	if got := Normalize(r.Max, r); math.Abs(got-100) > 1e-9 {
		t.Fatalf("Normalize(max) = %v, want 100", got)
	}
}
