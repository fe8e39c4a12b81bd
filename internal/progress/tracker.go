package progress

import (
	"context"
	"fmt"
	"sync"

	"github.com/notaprep/notaprep/internal/content"
	"github.com/notaprep/notaprep/internal/quizgen"
)

// Tracker advances learner progress. All writes to one (user, lesson)
// record are serialized through a keyed mutex, so concurrent submissions
// cannot lose a best score or regress a status.
type Tracker struct {
	progress ProgressRepo
	sessions SessionRepo
	finals   FinalRepo
	corpus   content.Store
	cfg      Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTracker creates a progress tracker.
func NewTracker(progress ProgressRepo, sessions SessionRepo, finals FinalRepo, corpus content.Store, cfg Config) *Tracker {
	if cfg.Clock == nil {
		cfg.Clock = DefaultConfig().Clock
	}
	return &Tracker{
		progress: progress,
		sessions: sessions,
		finals:   finals,
		corpus:   corpus,
		cfg:      cfg,
		locks:    map[string]*sync.Mutex{},
	}
}

// lock acquires the per-(user, lesson) mutex and returns its unlock func.
func (t *Tracker) lock(userID, lessonID string) func() {
	key := userID + "\x00" + lessonID
	t.mu.Lock()
	m, ok := t.locks[key]
	if !ok {
		m = &sync.Mutex{}
		t.locks[key] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// OpenLesson marks a lesson as in progress for the user. Opening an already
// completed lesson changes nothing.
func (t *Tracker) OpenLesson(ctx context.Context, userID, lessonID string) (*Record, error) {
	if _, err := t.corpus.GetLesson(ctx, lessonID); err != nil {
		return nil, fmt.Errorf("open lesson %s: %w", lessonID, err)
	}

	unlock := t.lock(userID, lessonID)
	defer unlock()

	rec, err := t.progress.Get(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &Record{UserID: userID, LessonID: lessonID, Status: StatusNotStarted}
	}

	rec.Status = rec.Status.atLeast(StatusInProgress)
	rec.UpdatedAt = t.cfg.Clock()

	if err := t.progress.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SubmitQuiz scores a completed lesson quiz, stores the immutable session
// and advances the progress record. Best score moves only when the new
// score is strictly greater; status never regresses.
func (t *Tracker) SubmitQuiz(ctx context.Context, quiz *quizgen.Quiz, answers []int) (*QuizSession, error) {
	if quiz.LessonID == quizgen.FinalLessonID {
		return nil, fmt.Errorf("final assessments go through SubmitFinal")
	}
	if len(answers) != len(quiz.Items) {
		return nil, fmt.Errorf("quiz has %d items but %d answers were given", len(quiz.Items), len(answers))
	}

	now := t.cfg.Clock()
	session := &QuizSession{
		SessionID:   quiz.SessionID,
		UserID:      quiz.UserID,
		LessonID:    quiz.LessonID,
		Items:       quiz.Items,
		Answers:     answers,
		Score:       score(quiz.Items, answers),
		Partial:     quiz.Partial,
		StartedAt:   quiz.StartedAt,
		SubmittedAt: now,
	}

	if err := t.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("store quiz session: %w", err)
	}

	unlock := t.lock(quiz.UserID, quiz.LessonID)
	defer unlock()

	rec, err := t.progress.Get(ctx, quiz.UserID, quiz.LessonID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &Record{UserID: quiz.UserID, LessonID: quiz.LessonID, Status: StatusNotStarted}
	}

	rec.Status = rec.Status.atLeast(StatusInProgress)
	if session.Score > rec.BestScore {
		rec.BestScore = session.Score
	}
	if session.Score >= t.cfg.LessonPassThreshold {
		rec.Status = rec.Status.atLeast(StatusCompleted)
	}
	rec.Attempts++
	rec.UpdatedAt = now

	if err := t.progress.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return session, nil
}

// AllowFinal reports whether the user may take the final assessment: every
// lesson in the corpus must be completed. The second return value lists the
// lessons still missing.
func (t *Tracker) AllowFinal(ctx context.Context, userID string) (bool, []string, error) {
	lessons, err := t.corpus.ListLessons(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("load lesson corpus: %w", err)
	}

	records, err := t.progress.List(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	completed := map[string]bool{}
	for _, rec := range records {
		if rec.Status == StatusCompleted {
			completed[rec.LessonID] = true
		}
	}

	var missing []string
	for _, l := range lessons {
		if !completed[l.ID] {
			missing = append(missing, l.ID)
		}
	}
	return len(missing) == 0, missing, nil
}

// SubmitFinal scores a final assessment. An ineligible submission is
// rejected with *ErrIneligibleForFinal before anything is written.
func (t *Tracker) SubmitFinal(ctx context.Context, userID string, quiz *quizgen.Quiz, answers []int) (*FinalAttempt, error) {
	if quiz.LessonID != quizgen.FinalLessonID {
		return nil, fmt.Errorf("quiz %s is not a final assessment", quiz.SessionID)
	}
	if len(answers) != len(quiz.Items) {
		return nil, fmt.Errorf("assessment has %d items but %d answers were given", len(quiz.Items), len(answers))
	}

	ok, missing, err := t.AllowFinal(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ErrIneligibleForFinal{Missing: missing}
	}

	s := score(quiz.Items, answers)
	attempt := &FinalAttempt{
		UserID:  userID,
		Items:   quiz.Items,
		Answers: answers,
		Score:   s,
		Passed:  s >= t.cfg.FinalPassThreshold,
		TakenAt: t.cfg.Clock(),
	}

	n, err := t.finals.InsertAttempt(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("store final attempt: %w", err)
	}
	attempt.Attempt = n
	return attempt, nil
}

// Overview returns the user's progress records keyed by lesson id, with
// not_started placeholders for lessons never opened.
func (t *Tracker) Overview(ctx context.Context, userID string) ([]*Record, error) {
	lessons, err := t.corpus.ListLessons(ctx)
	if err != nil {
		return nil, fmt.Errorf("load lesson corpus: %w", err)
	}

	records, err := t.progress.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	byLesson := map[string]*Record{}
	for _, rec := range records {
		byLesson[rec.LessonID] = rec
	}

	out := make([]*Record, 0, len(lessons))
	for _, l := range lessons {
		if rec, ok := byLesson[l.ID]; ok {
			out = append(out, rec)
			continue
		}
		out = append(out, &Record{UserID: userID, LessonID: l.ID, Status: StatusNotStarted})
	}
	return out, nil
}

// score is the fraction of correctly answered items. An answer index
// outside the choice range counts as wrong.
func score(items []quizgen.Item, answers []int) float64 {
	if len(items) == 0 {
		return 0
	}
	correct := 0
	for i, item := range items {
		if answers[i] == item.CorrectIndex {
			correct++
		}
	}
	return float64(correct) / float64(len(items))
}
