// Package content holds the lesson corpus: the study material quizzes and
// explanations are generated from.
package content

import (
	"context"
	"errors"
)

// ErrLessonNotFound is returned when a lesson id has no corpus entry.
var ErrLessonNotFound = errors.New("lesson not found")

// Lesson is one unit of study material.
type Lesson struct {
	// ID is the stable lesson identifier, e.g. "12". Taken from the "No"
	// column of the source material.
	ID string

	// Title is the lesson heading.
	Title string

	// Body is the full lesson text.
	Body string

	// Explanations holds pre-authored explanation text keyed by depth
	// ("brief", "standard", "detailed"). Authored slots take precedence
	// over generated explanations. May be empty.
	Explanations map[string]string
}

// Store is the read interface over the lesson corpus.
type Store interface {
	// GetLesson returns the lesson with the given id, or ErrLessonNotFound.
	GetLesson(ctx context.Context, id string) (*Lesson, error)

	// ListLessons returns all lessons in corpus order.
	ListLessons(ctx context.Context) ([]*Lesson, error)
}
