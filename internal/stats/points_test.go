package stats

import (
	"math"
	"testing"
	"time"

	"github.com/okatens/addstat/internal/difficulty"
	"github.com/okatens/addstat/internal/model"
)

func solvedExercise(id int64, a, b int, solveSecs float64, keystrokes int, mode string) model.Exercise {
	displayed := time.Unix(1000, 0)
	solved := displayed.Add(time.Duration(solveSecs * float64(time.Second)))
	return model.Exercise{
		ID:          id,
		OperandA:    a,
		OperandB:    b,
		DisplayedAt: displayed,
		SolvedAt:    &solved,
		Keystrokes:  &keystrokes,
		Mode:        mode,
	}
}

func TestGatedSolveTime(t *testing.T) {
	if _, ok := GatedSolveTime(model.Exercise{DisplayedAt: time.Unix(0, 0)}); ok {
		t.Fatal("unsolved exercise passed the gate")
	}
	if _, ok := GatedSolveTime(solvedExercise(1, 1, 2, 0.2, 1, "classic")); ok {
		t.Fatal("instant submit passed the gate")
	}
	if _, ok := GatedSolveTime(solvedExercise(1, 1, 2, 500, 1, "classic")); ok {
		t.Fatal("stale tab passed the gate")
	}
	secs, ok := GatedSolveTime(solvedExercise(1, 1, 2, 4.5, 1, "classic"))
	if !ok || math.Abs(secs-4.5) > 1e-9 {
		t.Fatalf("got %v ok=%v, want 4.5", secs, ok)
	}
}

func TestGatedEfficiency(t *testing.T) {
	// 345+78=423, three answer digits.
	ex := solvedExercise(1, 345, 78, 5, 3, "classic")
	eff, ok := GatedEfficiency(ex)
	if !ok || eff != 100 {
		t.Fatalf("got %v ok=%v, want exactly 100", eff, ok)
	}
	if correctness(eff) != 1 {
		t.Fatal("ideal input must count as correct")
	}

	wasteful := solvedExercise(2, 345, 78, 5, 6, "classic")
	eff, ok = GatedEfficiency(wasteful)
	if !ok || eff != 200 {
		t.Fatalf("got %v ok=%v, want 200", eff, ok)
	}
	if correctness(eff) != 0 {
		t.Fatal("wasted keystrokes must count as incorrect")
	}

	// 16 keystrokes for 3 digits is beyond the plausible band.
	mashed := solvedExercise(3, 345, 78, 5, 16, "classic")
	if _, ok := GatedEfficiency(mashed); ok {
		t.Fatal("implausible efficiency passed the gate")
	}
	if _, ok := GatedEfficiency(model.Exercise{OperandA: 1, OperandB: 2}); ok {
		t.Fatal("missing keystroke count passed the gate")
	}
}

func TestAverageRatings(t *testing.T) {
	evaluations := []model.Evaluation{
		{ID: 1, Rating: 4, Mode: "classic", ExerciseIDs: []int64{7, 8}},
		{ID: 2, Rating: 8, Mode: "classic", ExerciseIDs: []int64{7}},
		{ID: 3, Rating: 99, Mode: "classic", ExerciseIDs: []int64{7}}, // invalid rating
		{ID: 4, Rating: 2, Mode: "endless", ExerciseIDs: []int64{8}},  // filtered mode
	}
	avgs := AverageRatings(evaluations, model.Filter{Mode: "classic"})
	if got := avgs[7]; math.Abs(got-6.0) > 1e-9 {
		t.Fatalf("exercise 7 average = %v, want 6.0", got)
	}
	if got := avgs[8]; math.Abs(got-4.0) > 1e-9 {
		t.Fatalf("exercise 8 average = %v, want 4.0", got)
	}
}

func TestDifficultyRatingPoints(t *testing.T) {
	exercises := []model.Exercise{
		solvedExercise(7, 345, 78, 5, 3, "classic"),
		solvedExercise(8, 1000, 1, 5, 4, "classic"),
		solvedExercise(9, 11, 11, 5, 2, "classic"), // no rating
	}
	evaluations := []model.Evaluation{
		{ID: 1, Rating: 4, Mode: "classic", ExerciseIDs: []int64{7}},
		{ID: 2, Rating: 8, Mode: "classic", ExerciseIDs: []int64{7}},
		{ID: 3, Rating: 2, Mode: "classic", ExerciseIDs: []int64{8}},
	}
	filter := model.Filter{Mode: "classic"}
	w := model.DefaultWeights()
	r := difficulty.ComputeRange(exercises, filter, w)

	points := DifficultyRatingPoints(exercises, evaluations, filter, w, r)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	// Exercise 7 scores 10.0, the population max, and averages 4 and 8.
	if math.Abs(points[0].X-100) > 1e-9 || math.Abs(points[0].Y-6.0) > 1e-9 {
		t.Fatalf("unexpected first point: %+v", points[0])
	}
}

func TestDifficultyTimePointsGating(t *testing.T) {
	unsolved := model.Exercise{ID: 1, OperandA: 12, OperandB: 34, DisplayedAt: time.Unix(0, 0), Mode: "classic"}
	exercises := []model.Exercise{
		unsolved,
		solvedExercise(2, 345, 78, 3, 3, "classic"),
		solvedExercise(3, 56, 78, 400, 3, "classic"), // outside time band
		solvedExercise(4, 12, 34, 3, 2, "endless"),   // other mode
	}
	filter := model.Filter{Mode: "classic"}
	w := model.DefaultWeights()
	r := difficulty.ComputeRange(exercises, filter, w)

	points := DifficultyTimePoints(exercises, filter, w, r)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if math.Abs(points[0].Y-3) > 1e-9 {
		t.Fatalf("unexpected solve time: %+v", points[0])
	}
}

func TestTimeAndEfficiencyRatingPoints(t *testing.T) {
	exercises := []model.Exercise{
		solvedExercise(1, 345, 78, 3, 3, "classic"),
		solvedExercise(2, 1000, 1, 7, 8, "classic"),
	}
	evaluations := []model.Evaluation{
		{ID: 1, Rating: 5, Mode: "classic", ExerciseIDs: []int64{1, 2}},
	}
	filter := model.Filter{Mode: model.ModeAll}

	timePoints := TimeRatingPoints(exercises, evaluations, filter)
	if len(timePoints) != 2 {
		t.Fatalf("expected 2 time points, got %d", len(timePoints))
	}
	effPoints := EfficiencyRatingPoints(exercises, evaluations, filter)
	if len(effPoints) != 2 {
		t.Fatalf("expected 2 efficiency points, got %d", len(effPoints))
	}
	if effPoints[0].X != 100 || effPoints[0].Y != 5 {
		t.Fatalf("unexpected efficiency point: %+v", effPoints[0])
	}
}
