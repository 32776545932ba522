// Package model defines shared data structures.
package model

import "time"

// ModeAll disables mode filtering.
const ModeAll = "all"

// Exercise is a single displayed addition exercise and its outcome.
type Exercise struct {
	ID           int64
	OperandA     int
	OperandB     int
	DisplayedAt  time.Time
	SolvedAt     *time.Time
	Keystrokes   *int
	Mode         string
	EvaluationID *int64
}

// Answer returns the expected result of the exercise.
func (e Exercise) Answer() int {
	return e.OperandA + e.OperandB
}

// SolveSeconds returns the solve duration in seconds, or false if unsolved.
func (e Exercise) SolveSeconds() (float64, bool) {
	if e.SolvedAt == nil {
		return 0, false
	}
	return e.SolvedAt.Sub(e.DisplayedAt).Seconds(), true
}

// Evaluation is a self-reported effort rating covering recent exercises.
type Evaluation struct {
	ID          int64
	Rating      int
	Scope       int
	Mode        string
	ExerciseIDs []int64
}

// Weights configures the difficulty score's linear combination.
type Weights struct {
	Digits     float64
	Carryovers float64
	Zeros      float64
}

// DefaultWeights returns the stock difficulty weights.
func DefaultWeights() Weights {
	return Weights{Digits: 1.0, Carryovers: 2.5, Zeros: 0.5}
}

// DataPoint is one (x, y) observation for correlation analysis.
type DataPoint struct {
	X         float64
	Y         float64
	IsOutlier bool
}

// Range holds observed raw difficulty score bounds for normalization.
type Range struct {
	Min float64
	Max float64
}

// Filter restricts which records enter an analysis.
type Filter struct {
	Mode  string
	Since *time.Time
	Until *time.Time
}

// MatchesMode reports whether a record's mode passes the filter.
func (f Filter) MatchesMode(mode string) bool {
	return f.Mode == "" || f.Mode == ModeAll || f.Mode == mode
}

// Correlations holds the per-metric correlation results of one weight
// candidate. Nil means the metric had insufficient or degenerate data.
type Correlations struct {
	Rating      *float64
	Time        *float64
	Correctness *float64
}

// OptimizationResult is the outcome of a full grid search.
type OptimizationResult struct {
	Weights        Weights
	Correlations   Correlations
	CompositeScore float64
}

// SettingsRecord is the persisted weight configuration.
type SettingsRecord struct {
	Weights   Weights
	UpdatedAt time.Time
}
