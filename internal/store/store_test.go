package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notaprep/notaprep/internal/content"
	"github.com/notaprep/notaprep/internal/llm"
	"github.com/notaprep/notaprep/internal/progress"
	"github.com/notaprep/notaprep/internal/quizgen"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestLessonRepo(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	repo := st.LessonRepo()

	require.NoError(t, repo.Import(ctx, []*content.Lesson{
		{ID: "2", Title: "Jurats", Body: "Oath required."},
		{ID: "10", Title: "Seals", Body: "Seal required."},
		{ID: "1", Title: "Acknowledgments", Body: "Appearance required."},
	}))

	l, err := repo.GetLesson(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, "Jurats", l.Title)
	require.Empty(t, l.Explanations)

	_, err = repo.GetLesson(ctx, "404")
	require.ErrorIs(t, err, content.ErrLessonNotFound)

	// Numeric ordering, not lexicographic: 10 sorts after 2.
	lessons, err := repo.ListLessons(ctx)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	require.Equal(t, "1", lessons[0].ID)
	require.Equal(t, "2", lessons[1].ID)
	require.Equal(t, "10", lessons[2].ID)

	// Re-import replaces the existing row.
	require.NoError(t, repo.Import(ctx, []*content.Lesson{
		{ID: "1", Title: "Acknowledgments v2", Body: "Updated."},
	}))
	l, err = repo.GetLesson(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "Acknowledgments v2", l.Title)

	require.NoError(t, repo.SetExplanation(ctx, "1", "brief", "Short take."))
	l, err = repo.GetLesson(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "Short take.", l.Explanations["brief"])
}

func TestProgressRepo(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	repo := st.ProgressRepo()

	rec, err := repo.Get(ctx, "alice", "1")
	require.NoError(t, err)
	require.Nil(t, rec, "absent record must be (nil, nil)")

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &progress.Record{
		UserID: "alice", LessonID: "1",
		Status: progress.StatusInProgress, BestScore: 0.6, Attempts: 1, UpdatedAt: now,
	}))
	require.NoError(t, repo.Upsert(ctx, &progress.Record{
		UserID: "alice", LessonID: "1",
		Status: progress.StatusCompleted, BestScore: 0.9, Attempts: 2, UpdatedAt: now,
	}))

	rec, err = repo.Get(ctx, "alice", "1")
	require.NoError(t, err)
	require.Equal(t, progress.StatusCompleted, rec.Status)
	require.Equal(t, 0.9, rec.BestScore)
	require.Equal(t, 2, rec.Attempts)

	require.NoError(t, repo.Upsert(ctx, &progress.Record{
		UserID: "alice", LessonID: "2",
		Status: progress.StatusInProgress, UpdatedAt: now,
	}))
	require.NoError(t, repo.Upsert(ctx, &progress.Record{
		UserID: "bob", LessonID: "1",
		Status: progress.StatusInProgress, UpdatedAt: now,
	}))

	records, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 2)

	n, err := repo.DeleteUser(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	records, err = repo.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestSessionRepo(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	repo := st.SessionRepo()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session := &progress.QuizSession{
		SessionID: "s1",
		UserID:    "alice",
		LessonID:  "1",
		Items: []quizgen.Item{{
			ID: "i1", LessonID: "1", FactKey: "commission",
			Question:     "Fill in the blank: keep the ____ safe.",
			Choices:      []string{"commission", "pen", "desk", "lamp"},
			CorrectIndex: 0,
			Source:       quizgen.SourceRule,
		}},
		Answers:     []int{0},
		Score:       1.0,
		StartedAt:   now,
		SubmittedAt: now.Add(time.Minute),
	}
	require.NoError(t, repo.Insert(ctx, session))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, session.Items, got.Items)
	require.Equal(t, session.Answers, got.Answers)
	require.Equal(t, 1.0, got.Score)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	sessions, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

func TestFinalRepo_AttemptNumbering(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	repo := st.FinalRepo()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &progress.FinalAttempt{
		UserID:  "alice",
		Items:   []quizgen.Item{{ID: "i1", Choices: []string{"a", "b", "c", "d"}}},
		Answers: []int{1},
		Score:   0.7,
		TakenAt: now,
	}

	n, err := repo.InsertAttempt(ctx, attempt)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = repo.InsertAttempt(ctx, attempt)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// Another user starts back at 1.
	other := *attempt
	other.UserID = "bob"
	n, err = repo.InsertAttempt(ctx, &other)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	attempts, err := repo.ListAttempts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.Equal(t, 1, attempts[0].Attempt)
	require.Equal(t, 2, attempts[1].Attempt)
}

func TestCacheRepo(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	repo := st.CacheRepo()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Put(ctx, "k", "v", time.Minute))

	got, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", got)

	_, ok, err = repo.Get(ctx, "absent")
	require.NoError(t, err)
	require.False(t, ok)

	// Past the TTL fresh reads miss but the stale row survives until Sweep.
	now = now.Add(2 * time.Minute)
	_, ok, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err = repo.GetStale(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", got)

	removed, err := repo.Sweep(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, ok, err = repo.GetStale(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLLMEventRepo(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	repo := st.EventRepo()

	require.NoError(t, repo.AppendLLMRequest(ctx, llm.LLMRequestEventData{
		Provider: "mock", Model: "mock", Purpose: "explain", User: "alice",
		InputTokens: 100, OutputTokens: 50, LatencyMs: 120, Success: true,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, llm.LLMRequestEventData{
		Provider: "mock", Model: "mock", Purpose: "quiz", User: "alice",
		Success: false, ErrorMessage: "provider unavailable",
	}))

	events, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	require.Equal(t, "quiz", events[0].Purpose)
	require.False(t, events[0].Success)
	require.Equal(t, "provider unavailable", events[0].ErrorMessage)
	require.Equal(t, "explain", events[1].Purpose)
	require.Equal(t, 100, events[1].InputTokens)
}
