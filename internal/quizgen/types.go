// Package quizgen builds lesson quizzes and the final assessment from the
// corpus, combining deterministic rule-based extraction with AI-generated
// scenario questions.
package quizgen

import (
	"errors"
	"time"
)

// ErrInsufficientContent is returned when a lesson yields no usable
// questions at all.
var ErrInsufficientContent = errors.New("insufficient content to build a quiz")

// FinalLessonID is the pseudo lesson id of the final assessment.
const FinalLessonID = "final"

// Source says where a quiz item came from.
type Source string

const (
	SourceRule Source = "rule"
	SourceAI   Source = "ai"
)

// Mode selects the generation strategy.
type Mode string

const (
	// ModeRuleOnly uses only the deterministic extraction pipeline.
	ModeRuleOnly Mode = "rule_only"

	// ModeHybrid tops up the rule items with AI scenario questions.
	ModeHybrid Mode = "hybrid"
)

// Item is a single multiple-choice question.
type Item struct {
	ID       string
	LessonID string

	// FactKey identifies the fact the item tests, unique within a lesson.
	// Two items with the same (LessonID, FactKey) test the same thing and
	// never appear in the same quiz.
	FactKey string

	Question     string
	Choices      []string
	CorrectIndex int
	Explanation  string
	Source       Source
}

// Quiz is a generated set of items handed to the learner.
type Quiz struct {
	SessionID string
	UserID    string

	// LessonID is the lesson the quiz covers, or FinalLessonID.
	LessonID string

	Items []Item

	// Partial is true when generation degraded: the provider could not
	// supply the requested items and the quiz holds fewer than asked for.
	Partial bool

	StartedAt time.Time
}
