// Package archive reads and writes JSON snapshots of practice records.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/okatens/addstat/internal/model"
)

// Exercise is the wire form of one exercise record. Timestamps are epoch
// milliseconds, matching the format practice clients log in.
type Exercise struct {
	ID           int64  `json:"id"`
	OperandA     int    `json:"operandA"`
	OperandB     int    `json:"operandB"`
	DisplayedAt  int64  `json:"displayedAt"`
	SolvedAt     *int64 `json:"solvedAt,omitempty"`
	Keystrokes   *int   `json:"keystrokeCount,omitempty"`
	Mode         string `json:"mode"`
	EvaluationID *int64 `json:"evaluationId,omitempty"`
}

// Evaluation is the wire form of one effort rating.
type Evaluation struct {
	ID          int64   `json:"id"`
	Rating      int     `json:"rating"`
	Scope       int     `json:"scope"`
	Mode        string  `json:"mode"`
	ExerciseIDs []int64 `json:"exerciseIds"`
}

// Archive is a full snapshot of practice records.
type Archive struct {
	Exercises   []Exercise   `json:"exercises"`
	Evaluations []Evaluation `json:"evaluations"`
}

// Read decodes an archive from JSON.
func Read(r io.Reader) (Archive, error) {
	var a Archive
	dec := json.NewDecoder(r)
	if err := dec.Decode(&a); err != nil {
		return Archive{}, fmt.Errorf("failed to decode archive: %w", err)
	}
	for i, ev := range a.Evaluations {
		if len(ev.ExerciseIDs) == 0 {
			return Archive{}, fmt.Errorf("evaluation %d covers no exercises", i)
		}
	}
	return a, nil
}

// Write encodes an archive as indented JSON.
func Write(w io.Writer, a Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	return nil
}

// Models converts the wire records into model types.
func (a Archive) Models() ([]model.Exercise, []model.Evaluation) {
	exercises := make([]model.Exercise, 0, len(a.Exercises))
	for _, ex := range a.Exercises {
		m := model.Exercise{
			ID:           ex.ID,
			OperandA:     ex.OperandA,
			OperandB:     ex.OperandB,
			DisplayedAt:  time.UnixMilli(ex.DisplayedAt),
			Keystrokes:   ex.Keystrokes,
			Mode:         ex.Mode,
			EvaluationID: ex.EvaluationID,
		}
		if ex.SolvedAt != nil {
			solved := time.UnixMilli(*ex.SolvedAt)
			m.SolvedAt = &solved
		}
		exercises = append(exercises, m)
	}
	evaluations := make([]model.Evaluation, 0, len(a.Evaluations))
	for _, ev := range a.Evaluations {
		evaluations = append(evaluations, model.Evaluation{
			ID:          ev.ID,
			Rating:      ev.Rating,
			Scope:       ev.Scope,
			Mode:        ev.Mode,
			ExerciseIDs: ev.ExerciseIDs,
		})
	}
	return exercises, evaluations
}

// FromModels converts model records into wire form.
func FromModels(exercises []model.Exercise, evaluations []model.Evaluation) Archive {
	a := Archive{
		Exercises:   make([]Exercise, 0, len(exercises)),
		Evaluations: make([]Evaluation, 0, len(evaluations)),
	}
	for _, ex := range exercises {
		w := Exercise{
			ID:           ex.ID,
			OperandA:     ex.OperandA,
			OperandB:     ex.OperandB,
			DisplayedAt:  ex.DisplayedAt.UnixMilli(),
			Keystrokes:   ex.Keystrokes,
			Mode:         ex.Mode,
			EvaluationID: ex.EvaluationID,
		}
		if ex.SolvedAt != nil {
			ms := ex.SolvedAt.UnixMilli()
			w.SolvedAt = &ms
		}
		a.Exercises = append(a.Exercises, w)
	}
	for _, ev := range evaluations {
		a.Evaluations = append(a.Evaluations, Evaluation{
			ID:          ev.ID,
			Rating:      ev.Rating,
			Scope:       ev.Scope,
			Mode:        ev.Mode,
			ExerciseIDs: ev.ExerciseIDs,
		})
	}
	return a
}
