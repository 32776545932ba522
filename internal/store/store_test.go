package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okatens/addstat/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "addstat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListExercises(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	displayed := time.Unix(1000, 0).UTC()
	solved := displayed.Add(4 * time.Second)
	keystrokes := 3
	ids := make([]int64, 0, 3)
	for i, ex := range []model.Exercise{
		{OperandA: 345, OperandB: 78, DisplayedAt: displayed, SolvedAt: &solved, Keystrokes: &keystrokes, Mode: "classic"},
		{OperandA: 12, OperandB: 34, DisplayedAt: displayed.Add(time.Minute), Mode: "classic"},
		{OperandA: 9, OperandB: 9, DisplayedAt: displayed.Add(2 * time.Minute), Mode: "endless"},
	} {
		id, err := st.InsertExercise(ctx, ex)
		if err != nil {
			t.Fatalf("insert exercise %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	all, err := st.ListExercises(ctx, model.Filter{Mode: model.ModeAll})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 exercises, got %d", len(all))
	}
	if all[0].ID != ids[0] || all[0].SolvedAt == nil || all[0].Keystrokes == nil {
		t.Fatalf("unexpected first exercise: %+v", all[0])
	}
	if !all[0].SolvedAt.Equal(solved) {
		t.Fatalf("solved_at round-trip: got %v, want %v", all[0].SolvedAt, solved)
	}
	if all[1].SolvedAt != nil || all[1].Keystrokes != nil {
		t.Fatalf("unsolved exercise has outcome fields: %+v", all[1])
	}

	classic, err := st.ListExercises(ctx, model.Filter{Mode: "classic"})
	if err != nil {
		t.Fatalf("list classic: %v", err)
	}
	if len(classic) != 2 {
		t.Fatalf("expected 2 classic exercises, got %d", len(classic))
	}

	since := displayed.Add(30 * time.Second)
	recent, err := st.ListExercises(ctx, model.Filter{Mode: model.ModeAll, Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent exercises, got %d", len(recent))
	}
}

func TestMarkSolvedOnce(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	displayed := time.Unix(1000, 0).UTC()
	id, err := st.InsertExercise(ctx, model.Exercise{OperandA: 1, OperandB: 2, DisplayedAt: displayed, Mode: "classic"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	first := displayed.Add(3 * time.Second)
	if err := st.MarkSolved(ctx, id, first, 1); err != nil {
		t.Fatalf("mark solved: %v", err)
	}
	// A second solve attempt must not overwrite the first.
	if err := st.MarkSolved(ctx, id, displayed.Add(time.Hour), 99); err != nil {
		t.Fatalf("mark solved again: %v", err)
	}

	exercises, err := st.ListExercises(ctx, model.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(exercises) != 1 || exercises[0].SolvedAt == nil {
		t.Fatalf("unexpected exercises: %+v", exercises)
	}
	if !exercises[0].SolvedAt.Equal(first) || *exercises[0].Keystrokes != 1 {
		t.Fatalf("solve outcome overwritten: %+v", exercises[0])
	}
}

func TestInsertAndListEvaluations(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	displayed := time.Unix(1000, 0).UTC()
	var exerciseIDs []int64
	for i := 0; i < 3; i++ {
		id, err := st.InsertExercise(ctx, model.Exercise{
			OperandA: i, OperandB: i, DisplayedAt: displayed.Add(time.Duration(i) * time.Second), Mode: "classic",
		})
		if err != nil {
			t.Fatalf("insert exercise: %v", err)
		}
		exerciseIDs = append(exerciseIDs, id)
	}

	evalID, err := st.InsertEvaluation(ctx, model.Evaluation{
		Rating: 6, Scope: 3, Mode: "classic", ExerciseIDs: exerciseIDs,
	})
	if err != nil {
		t.Fatalf("insert evaluation: %v", err)
	}

	evaluations, err := st.ListEvaluations(ctx, model.Filter{Mode: "classic"})
	if err != nil {
		t.Fatalf("list evaluations: %v", err)
	}
	if len(evaluations) != 1 {
		t.Fatalf("expected 1 evaluation, got %d", len(evaluations))
	}
	ev := evaluations[0]
	if ev.ID != evalID || ev.Rating != 6 || ev.Scope != 3 {
		t.Fatalf("unexpected evaluation: %+v", ev)
	}
	if len(ev.ExerciseIDs) != 3 || ev.ExerciseIDs[0] != exerciseIDs[0] {
		t.Fatalf("unexpected exercise links: %v", ev.ExerciseIDs)
	}

	// Covered exercises received the back-reference.
	exercises, err := st.ListExercises(ctx, model.Filter{})
	if err != nil {
		t.Fatalf("list exercises: %v", err)
	}
	for _, ex := range exercises {
		if ex.EvaluationID == nil || *ex.EvaluationID != evalID {
			t.Fatalf("missing evaluation back-reference: %+v", ex)
		}
	}

	other, err := st.ListEvaluations(ctx, model.Filter{Mode: "endless"})
	if err != nil {
		t.Fatalf("list other mode: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no evaluations, got %d", len(other))
	}
}

func TestWeightsUpsert(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, found, err := st.GetWeights(ctx); err != nil || found {
		t.Fatalf("expected no stored weights, found=%v err=%v", found, err)
	}

	if err := st.SaveWeights(ctx, model.DefaultWeights()); err != nil {
		t.Fatalf("save weights: %v", err)
	}
	rec, found, err := st.GetWeights(ctx)
	if err != nil || !found {
		t.Fatalf("get weights: found=%v err=%v", found, err)
	}
	if rec.Weights != model.DefaultWeights() {
		t.Fatalf("unexpected weights: %+v", rec.Weights)
	}
	firstUpdate := rec.UpdatedAt

	updated := model.Weights{Digits: 2.0, Carryovers: 4.4, Zeros: 0.2}
	if err := st.SaveWeights(ctx, updated); err != nil {
		t.Fatalf("update weights: %v", err)
	}
	rec, found, err = st.GetWeights(ctx)
	if err != nil || !found {
		t.Fatalf("get updated weights: found=%v err=%v", found, err)
	}
	if rec.Weights != updated {
		t.Fatalf("upsert did not replace weights: %+v", rec.Weights)
	}
	if rec.UpdatedAt.Before(firstUpdate) {
		t.Fatalf("updated_at went backwards: %v -> %v", firstUpdate, rec.UpdatedAt)
	}
}
