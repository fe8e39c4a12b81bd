// Package progress tracks each learner's path through the corpus and gates
// the final assessment on full completion.
package progress

import (
	"context"
	"time"

	"github.com/notaprep/notaprep/internal/quizgen"
)

// Status is the per-(user, lesson) learning state. Transitions only move
// forward: not_started to in_progress when the lesson is opened,
// in_progress to completed when a quiz meets the threshold.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// rank orders statuses for monotonicity checks.
func (s Status) rank() int {
	switch s {
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}

// atLeast returns the further-along of the two statuses.
func (s Status) atLeast(other Status) Status {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// Record is the progress state for one (user, lesson) pair.
type Record struct {
	UserID   string
	LessonID string
	Status   Status

	// BestScore is the highest quiz score achieved, 0..1. Only ever
	// increases.
	BestScore float64

	// Attempts counts submitted quizzes for this lesson.
	Attempts int

	UpdatedAt time.Time
}

// QuizSession is an immutable record of one submitted quiz. New attempts
// are new sessions; a session is never updated after insert.
type QuizSession struct {
	SessionID string
	UserID    string
	LessonID  string
	Items     []quizgen.Item
	Answers   []int
	Score     float64
	Partial   bool

	StartedAt   time.Time
	SubmittedAt time.Time
}

// FinalAttempt is one submitted final assessment.
type FinalAttempt struct {
	UserID string

	// Attempt is the 1-based attempt number, assigned at insert.
	Attempt int

	Items   []quizgen.Item
	Answers []int
	Score   float64
	Passed  bool

	TakenAt time.Time
}

// ProgressRepo persists per-lesson progress records. Get returns (nil, nil)
// when no record exists yet.
type ProgressRepo interface {
	Get(ctx context.Context, userID, lessonID string) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
	List(ctx context.Context, userID string) ([]*Record, error)
}

// SessionRepo persists submitted quiz sessions. Insert-only.
type SessionRepo interface {
	Insert(ctx context.Context, s *QuizSession) error
}

// FinalRepo persists final assessment attempts. InsertAttempt assigns the
// attempt number atomically and returns it.
type FinalRepo interface {
	InsertAttempt(ctx context.Context, a *FinalAttempt) (int, error)
	ListAttempts(ctx context.Context, userID string) ([]*FinalAttempt, error)
}
