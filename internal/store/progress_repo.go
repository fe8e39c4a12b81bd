package store

import (
	"context"
	"database/sql"

	"github.com/notaprep/notaprep/internal/progress"
)

// ProgressRepo persists per-(user, lesson) progress records. Satisfies
// progress.ProgressRepo.
type ProgressRepo struct {
	db *sql.DB
}

// Get returns the record for (user, lesson), or (nil, nil) when none exists.
func (r *ProgressRepo) Get(ctx context.Context, userID, lessonID string) (*progress.Record, error) {
	var rec progress.Record
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, lesson_id, status, best_score, attempts, updated_at
		FROM progress_records WHERE user_id = ? AND lesson_id = ?`,
		userID, lessonID).
		Scan(&rec.UserID, &rec.LessonID, &rec.Status, &rec.BestScore, &rec.Attempts, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert writes the record, replacing any existing row for its key.
func (r *ProgressRepo) Upsert(ctx context.Context, rec *progress.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO progress_records (user_id, lesson_id, status, best_score, attempts, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, lesson_id) DO UPDATE SET
			status = excluded.status,
			best_score = excluded.best_score,
			attempts = excluded.attempts,
			updated_at = excluded.updated_at`,
		rec.UserID, rec.LessonID, string(rec.Status), rec.BestScore, rec.Attempts, rec.UpdatedAt)
	return err
}

// List returns all records for the user.
func (r *ProgressRepo) List(ctx context.Context, userID string) ([]*progress.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, lesson_id, status, best_score, attempts, updated_at
		FROM progress_records WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*progress.Record
	for rows.Next() {
		var rec progress.Record
		if err := rows.Scan(&rec.UserID, &rec.LessonID, &rec.Status,
			&rec.BestScore, &rec.Attempts, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// DeleteUser removes all progress records for the user. Administrative
// reset; returns how many records were removed.
func (r *ProgressRepo) DeleteUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM progress_records WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
