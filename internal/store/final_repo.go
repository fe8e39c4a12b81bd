package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/notaprep/notaprep/internal/progress"
)

// FinalRepo persists final assessment attempts. Satisfies
// progress.FinalRepo.
type FinalRepo struct {
	db *sql.DB
}

// InsertAttempt stores an attempt and assigns its attempt number. The
// number is read and written inside one transaction, so concurrent
// submissions cannot collide (the UNIQUE constraint backs this up).
func (r *FinalRepo) InsertAttempt(ctx context.Context, a *progress.FinalAttempt) (int, error) {
	items, err := json.Marshal(a.Items)
	if err != nil {
		return 0, fmt.Errorf("encode attempt items: %w", err)
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return 0, fmt.Errorf("encode attempt answers: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var attempt int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(attempt), 0) + 1 FROM final_attempts WHERE user_id = ?",
		a.UserID).Scan(&attempt); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO final_attempts (user_id, attempt, items, answers, score, passed, taken_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, attempt, string(items), string(answers), a.Score, a.Passed, a.TakenAt); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return attempt, nil
}

// ListAttempts returns the user's attempts in attempt order.
func (r *FinalRepo) ListAttempts(ctx context.Context, userID string) ([]*progress.FinalAttempt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, attempt, items, answers, score, passed, taken_at
		FROM final_attempts WHERE user_id = ? ORDER BY attempt`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*progress.FinalAttempt
	for rows.Next() {
		var a progress.FinalAttempt
		var items, answers string
		if err := rows.Scan(&a.UserID, &a.Attempt, &items, &answers,
			&a.Score, &a.Passed, &a.TakenAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(items), &a.Items); err != nil {
			return nil, fmt.Errorf("decode attempt %d items: %w", a.Attempt, err)
		}
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			return nil, fmt.Errorf("decode attempt %d answers: %w", a.Attempt, err)
		}
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}

// DeleteUser removes all attempts for the user. Administrative reset.
func (r *FinalRepo) DeleteUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM final_attempts WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
