package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/notaprep/notaprep/internal/content"
)

// LessonRepo persists the lesson corpus. Satisfies content.Store.
type LessonRepo struct {
	db *sql.DB
}

// GetLesson returns the lesson with the given id.
func (r *LessonRepo) GetLesson(ctx context.Context, id string) (*content.Lesson, error) {
	var l content.Lesson
	var explanations string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, body, explanations FROM lessons WHERE id = ?", id).
		Scan(&l.ID, &l.Title, &l.Body, &explanations)
	if err == sql.ErrNoRows {
		return nil, content.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(explanations), &l.Explanations); err != nil {
		return nil, fmt.Errorf("decode explanations for lesson %s: %w", id, err)
	}
	return &l, nil
}

// ListLessons returns all lessons ordered by id.
func (r *LessonRepo) ListLessons(ctx context.Context) ([]*content.Lesson, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, body, explanations FROM lessons ORDER BY CAST(id AS INTEGER), id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []*content.Lesson
	for rows.Next() {
		var l content.Lesson
		var explanations string
		if err := rows.Scan(&l.ID, &l.Title, &l.Body, &explanations); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(explanations), &l.Explanations); err != nil {
			return nil, fmt.Errorf("decode explanations for lesson %s: %w", l.ID, err)
		}
		lessons = append(lessons, &l)
	}
	return lessons, rows.Err()
}

// Import upserts lessons into the corpus, e.g. from the legacy CSV format.
// Existing rows with the same id are replaced.
func (r *LessonRepo) Import(ctx context.Context, lessons []*content.Lesson) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, l := range lessons {
		explanations := l.Explanations
		if explanations == nil {
			explanations = map[string]string{}
		}
		enc, err := json.Marshal(explanations)
		if err != nil {
			return fmt.Errorf("encode explanations for lesson %s: %w", l.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lessons (id, title, body, explanations)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				body = excluded.body,
				explanations = excluded.explanations`,
			l.ID, l.Title, l.Body, string(enc)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetExplanation stores a pre-authored explanation slot for a lesson.
func (r *LessonRepo) SetExplanation(ctx context.Context, lessonID, depth, text string) error {
	l, err := r.GetLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if l.Explanations == nil {
		l.Explanations = map[string]string{}
	}
	l.Explanations[depth] = text

	enc, err := json.Marshal(l.Explanations)
	if err != nil {
		return fmt.Errorf("encode explanations for lesson %s: %w", lessonID, err)
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE lessons SET explanations = ? WHERE id = ?", string(enc), lessonID)
	return err
}
