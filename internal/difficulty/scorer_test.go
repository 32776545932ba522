package difficulty

import (
	"math"
	"testing"

	"github.com/okatens/addstat/internal/model"
)

func TestFeatures(t *testing.T) {
	tests := []struct {
		name    string
		a, b    int
		digits  int
		carries int
		zeros   int
	}{
		{name: "carry chain", a: 345, b: 78, digits: 5, carries: 2, zeros: 0},
		{name: "zeros no carries", a: 1000, b: 1, digits: 5, carries: 0, zeros: -3},
		{name: "single digits", a: 7, b: 8, digits: 2, carries: 1, zeros: 0},
		{name: "both zero", a: 0, b: 0, digits: 2, carries: 0, zeros: -2},
		{name: "overflow carry uncounted", a: 9, b: 1, digits: 2, carries: 1, zeros: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalDigits(tt.a, tt.b); got != tt.digits {
				t.Fatalf("TotalDigits(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.digits)
			}
			if got := Carryovers(tt.a, tt.b); got != tt.carries {
				t.Fatalf("Carryovers(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.carries)
			}
			if got := ZeroCount(tt.a, tt.b); got != tt.zeros {
				t.Fatalf("ZeroCount(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.zeros)
			}
		})
	}
}

func TestFeaturesCommutative(t *testing.T) {
	pairs := [][2]int{{345, 78}, {1000, 1}, {999, 999}, {0, 42}, {12, 120}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		if Carryovers(a, b) != Carryovers(b, a) {
			t.Fatalf("Carryovers(%d,%d) != Carryovers(%d,%d)", a, b, b, a)
		}
		if TotalDigits(a, b) != TotalDigits(b, a) {
			t.Fatalf("TotalDigits(%d,%d) != TotalDigits(%d,%d)", a, b, b, a)
		}
	}
}

func TestScoreDefaultWeights(t *testing.T) {
	w := model.DefaultWeights()
	if got := Score(345, 78, w); math.Abs(got-10.0) > 1e-9 {
		t.Fatalf("Score(345,78) = %v, want 10.0", got)
	}
	if got := Score(1000, 1, w); math.Abs(got-3.5) > 1e-9 {
		t.Fatalf("Score(1000,1) = %v, want 3.5", got)
	}
}
