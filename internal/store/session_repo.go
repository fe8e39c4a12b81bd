package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/notaprep/notaprep/internal/progress"
	"github.com/notaprep/notaprep/internal/quizgen"
)

// SessionRepo persists submitted quiz sessions. Sessions are immutable:
// insert-only, never updated. Satisfies progress.SessionRepo.
type SessionRepo struct {
	db *sql.DB
}

// Insert stores a submitted session.
func (r *SessionRepo) Insert(ctx context.Context, s *progress.QuizSession) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("encode session items: %w", err)
	}
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("encode session answers: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO quiz_sessions
			(session_id, user_id, lesson_id, items, answers, score, partial, started_at, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.UserID, s.LessonID, string(items), string(answers),
		s.Score, s.Partial, s.StartedAt, s.SubmittedAt)
	return err
}

// Get returns a stored session by id.
func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*progress.QuizSession, error) {
	var s progress.QuizSession
	var items, answers string
	err := r.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, lesson_id, items, answers, score, partial, started_at, submitted_at
		FROM quiz_sessions WHERE session_id = ?`, sessionID).
		Scan(&s.SessionID, &s.UserID, &s.LessonID, &items, &answers,
			&s.Score, &s.Partial, &s.StartedAt, &s.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeSession(&s, items, answers); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns the user's sessions, newest first.
func (r *SessionRepo) ListByUser(ctx context.Context, userID string) ([]*progress.QuizSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, user_id, lesson_id, items, answers, score, partial, started_at, submitted_at
		FROM quiz_sessions WHERE user_id = ? ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*progress.QuizSession
	for rows.Next() {
		var s progress.QuizSession
		var items, answers string
		if err := rows.Scan(&s.SessionID, &s.UserID, &s.LessonID, &items, &answers,
			&s.Score, &s.Partial, &s.StartedAt, &s.SubmittedAt); err != nil {
			return nil, err
		}
		if err := decodeSession(&s, items, answers); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

// DeleteUser removes all sessions for the user. Administrative reset.
func (r *SessionRepo) DeleteUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM quiz_sessions WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func decodeSession(s *progress.QuizSession, items, answers string) error {
	if err := json.Unmarshal([]byte(items), &s.Items); err != nil {
		return fmt.Errorf("decode session %s items: %w", s.SessionID, err)
	}
	if s.Items == nil {
		s.Items = []quizgen.Item{}
	}
	if err := json.Unmarshal([]byte(answers), &s.Answers); err != nil {
		return fmt.Errorf("decode session %s answers: %w", s.SessionID, err)
	}
	return nil
}
