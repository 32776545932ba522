package optimize

import (
	"context"
	"testing"
	"time"

	"github.com/okatens/addstat/internal/model"
)

func TestGridSearchEmptyInput(t *testing.T) {
	result, err := GridSearch(context.Background(), nil, nil, Options{Filter: model.Filter{Mode: model.ModeAll}})
	if err != nil {
		t.Fatalf("grid search: %v", err)
	}
	if result.CompositeScore != 0 {
		t.Fatalf("composite = %v, want 0", result.CompositeScore)
	}
	if result.Weights != (model.Weights{}) {
		t.Fatalf("weights = %+v, want the first enumerated triple", result.Weights)
	}
	if result.Correlations.Time != nil || result.Correlations.Rating != nil || result.Correlations.Correctness != nil {
		t.Fatalf("expected no correlations: %+v", result.Correlations)
	}
}

func TestGridSearchProgress(t *testing.T) {
	var reports []Progress
	_, err := GridSearch(context.Background(), nil, nil, Options{
		OnProgress: func(p Progress) { reports = append(reports, p) },
	})
	if err != nil {
		t.Fatalf("grid search: %v", err)
	}
	total := TotalCombinations()
	wantReports := total/100 + 1
	if len(reports) != wantReports {
		t.Fatalf("got %d progress reports, want %d", len(reports), wantReports)
	}
	first := reports[0]
	if first.Current != 100 || first.Total != total {
		t.Fatalf("unexpected first report: %+v", first)
	}
	last := reports[len(reports)-1]
	if last.Current != total || last.Percentage != 100 {
		t.Fatalf("unexpected final report: %+v", last)
	}
}

func TestGridSearchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GridSearch(ctx, nil, nil, Options{})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestGridSearchFindsSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("full grid evaluation")
	}
	// Solve time tracks the carry count, so carry-heavy weightings must
	// yield a positive composite.
	specs := []struct {
		a, b    int
		seconds float64
	}{
		{11, 11, 2}, {23, 45, 2.5}, {19, 19, 5}, {58, 67, 6},
		{345, 78, 9}, {999, 999, 12}, {12, 34, 2}, {86, 97, 7},
	}
	var exercises []model.Exercise
	for i, s := range specs {
		displayed := time.Unix(int64(i)*100, 0)
		solved := displayed.Add(time.Duration(s.seconds * float64(time.Second)))
		keystrokes := 3
		exercises = append(exercises, model.Exercise{
			ID:          int64(i + 1),
			OperandA:    s.a,
			OperandB:    s.b,
			DisplayedAt: displayed,
			SolvedAt:    &solved,
			Keystrokes:  &keystrokes,
			Mode:        "classic",
		})
	}

	result, err := GridSearch(context.Background(), exercises, nil, Options{
		Filter: model.Filter{Mode: "classic"},
	})
	if err != nil {
		t.Fatalf("grid search: %v", err)
	}
	if result.CompositeScore <= 0 {
		t.Fatalf("composite = %v, want positive", result.CompositeScore)
	}
	if result.Correlations.Time == nil {
		t.Fatal("expected a solve-time correlation")
	}
}

func TestComposite(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		c    model.Correlations
		want float64
	}{
		{name: "all nil", c: model.Correlations{}, want: 0},
		{name: "time only", c: model.Correlations{Time: f(0.6)}, want: 0.6},
		{name: "correctness uses magnitude", c: model.Correlations{Correctness: f(-0.8)}, want: 0.8},
		{name: "mean of available", c: model.Correlations{Time: f(0.5), Rating: f(0.7), Correctness: f(-0.3)}, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := composite(tt.c)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("composite = %v, want %v", got, tt.want)
			}
		})
	}
}
