// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okatens/addstat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for exercise and evaluation records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exercises (
			id INTEGER PRIMARY KEY,
			operand_a INTEGER NOT NULL,
			operand_b INTEGER NOT NULL,
			displayed_at TEXT NOT NULL,
			solved_at TEXT,
			keystrokes INTEGER,
			mode TEXT NOT NULL,
			evaluation_id INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS evaluations (
			id INTEGER PRIMARY KEY,
			rating INTEGER NOT NULL,
			scope INTEGER NOT NULL,
			mode TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS evaluation_exercises (
			evaluation_id INTEGER NOT NULL,
			exercise_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (evaluation_id, exercise_id)
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			weight_digits REAL NOT NULL,
			weight_carryovers REAL NOT NULL,
			weight_zeros REAL NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_exercises_mode ON exercises(mode);`,
		`CREATE INDEX IF NOT EXISTS idx_exercises_displayed_at ON exercises(displayed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_evaluation_exercises_exercise ON evaluation_exercises(exercise_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertExercise stores one exercise record and returns its id.
func (s *Store) InsertExercise(ctx context.Context, ex model.Exercise) (int64, error) {
	var solvedAt any
	if ex.SolvedAt != nil {
		solvedAt = ex.SolvedAt.Format(time.RFC3339Nano)
	}
	var keystrokes any
	if ex.Keystrokes != nil {
		keystrokes = *ex.Keystrokes
	}
	var evaluationID any
	if ex.EvaluationID != nil {
		evaluationID = *ex.EvaluationID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO exercises (operand_a, operand_b, displayed_at, solved_at, keystrokes, mode, evaluation_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ex.OperandA,
		ex.OperandB,
		ex.DisplayedAt.Format(time.RFC3339Nano),
		solvedAt,
		keystrokes,
		ex.Mode,
		evaluationID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MarkSolved records the solve timestamp and keystroke count for an
// exercise. Both are set at most once.
func (s *Store) MarkSolved(ctx context.Context, id int64, solvedAt time.Time, keystrokes int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE exercises SET solved_at = ?, keystrokes = ? WHERE id = ? AND solved_at IS NULL`,
		solvedAt.Format(time.RFC3339Nano), keystrokes, id)
	return err
}

// InsertEvaluation stores an evaluation and its exercise links, and stamps
// the covered exercises with the evaluation id.
func (s *Store) InsertEvaluation(ctx context.Context, ev model.Evaluation) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO evaluations (rating, scope, mode) VALUES (?, ?, ?)`,
		ev.Rating, ev.Scope, ev.Mode)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(ev.ExerciseIDs) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO evaluation_exercises (evaluation_id, exercise_id, position) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for pos, exerciseID := range ev.ExerciseIDs {
			if _, err = stmt.ExecContext(ctx, id, exerciseID, pos); err != nil {
				return 0, err
			}
		}
		placeholders := make([]string, len(ev.ExerciseIDs))
		args := []any{id}
		for i, exerciseID := range ev.ExerciseIDs {
			placeholders[i] = "?"
			args = append(args, exerciseID)
		}
		query := fmt.Sprintf(`UPDATE exercises SET evaluation_id = ? WHERE id IN (%s) AND evaluation_id IS NULL`,
			strings.Join(placeholders, ","))
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListExercises returns exercises matching the filter, ordered by display time.
func (s *Store) ListExercises(ctx context.Context, filter model.Filter) ([]model.Exercise, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != "" && filter.Mode != model.ModeAll {
		clauses = append(clauses, "mode = ?")
		args = append(args, filter.Mode)
	}
	if filter.Since != nil {
		clauses = append(clauses, "displayed_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	if filter.Until != nil {
		clauses = append(clauses, "displayed_at <= ?")
		args = append(args, filter.Until.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, operand_a, operand_b, displayed_at, solved_at, keystrokes, mode, evaluation_id
		FROM exercises
		WHERE %s
		ORDER BY displayed_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var exercises []model.Exercise
	for rows.Next() {
		var ex model.Exercise
		var displayedAt string
		var solvedAt sql.NullString
		var keystrokes sql.NullInt64
		var evaluationID sql.NullInt64
		if err := rows.Scan(&ex.ID, &ex.OperandA, &ex.OperandB, &displayedAt, &solvedAt, &keystrokes, &ex.Mode, &evaluationID); err != nil {
			return nil, err
		}
		ex.DisplayedAt, err = time.Parse(time.RFC3339Nano, displayedAt)
		if err != nil {
			return nil, err
		}
		if solvedAt.Valid {
			parsed, err := time.Parse(time.RFC3339Nano, solvedAt.String)
			if err != nil {
				return nil, err
			}
			ex.SolvedAt = &parsed
		}
		if keystrokes.Valid {
			k := int(keystrokes.Int64)
			ex.Keystrokes = &k
		}
		if evaluationID.Valid {
			id := evaluationID.Int64
			ex.EvaluationID = &id
		}
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

// ListEvaluations returns evaluations matching the mode filter, with their
// linked exercise ids in recorded order.
func (s *Store) ListEvaluations(ctx context.Context, filter model.Filter) ([]model.Evaluation, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != "" && filter.Mode != model.ModeAll {
		clauses = append(clauses, "mode = ?")
		args = append(args, filter.Mode)
	}
	query := fmt.Sprintf(`SELECT id, rating, scope, mode FROM evaluations WHERE %s ORDER BY id ASC`,
		strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var evaluations []model.Evaluation
	byID := map[int64]int{}
	for rows.Next() {
		var ev model.Evaluation
		if err := rows.Scan(&ev.ID, &ev.Rating, &ev.Scope, &ev.Mode); err != nil {
			return nil, err
		}
		byID[ev.ID] = len(evaluations)
		evaluations = append(evaluations, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(evaluations) == 0 {
		return nil, nil
	}

	linkRows, err := s.db.QueryContext(ctx,
		`SELECT evaluation_id, exercise_id FROM evaluation_exercises ORDER BY evaluation_id ASC, position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := linkRows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for linkRows.Next() {
		var evaluationID, exerciseID int64
		if err := linkRows.Scan(&evaluationID, &exerciseID); err != nil {
			return nil, err
		}
		if idx, ok := byID[evaluationID]; ok {
			evaluations[idx].ExerciseIDs = append(evaluations[idx].ExerciseIDs, exerciseID)
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, err
	}
	return evaluations, nil
}

// GetWeights returns the stored weight configuration, or found=false when
// none has been saved yet.
func (s *Store) GetWeights(ctx context.Context) (model.SettingsRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT weight_digits, weight_carryovers, weight_zeros, updated_at FROM settings WHERE id = 1`)
	var rec model.SettingsRecord
	var updatedAt string
	err := row.Scan(&rec.Weights.Digits, &rec.Weights.Carryovers, &rec.Weights.Zeros, &updatedAt)
	if err == sql.ErrNoRows {
		return model.SettingsRecord{}, false, nil
	}
	if err != nil {
		return model.SettingsRecord{}, false, err
	}
	rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return model.SettingsRecord{}, false, err
	}
	return rec, true, nil
}

// SaveWeights upserts the weight configuration and its update timestamp.
func (s *Store) SaveWeights(ctx context.Context, w model.Weights) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (id, weight_digits, weight_carryovers, weight_zeros, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			weight_digits = excluded.weight_digits,
			weight_carryovers = excluded.weight_carryovers,
			weight_zeros = excluded.weight_zeros,
			updated_at = excluded.updated_at`,
		w.Digits, w.Carryovers, w.Zeros, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}
