package explain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/notaprep/notaprep/internal/content"
	"github.com/notaprep/notaprep/internal/llm"
)

type fakeCorpus struct {
	lessons []*content.Lesson
}

func (f *fakeCorpus) GetLesson(_ context.Context, id string) (*content.Lesson, error) {
	for _, l := range f.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, content.ErrLessonNotFound
}

func (f *fakeCorpus) ListLessons(_ context.Context) ([]*content.Lesson, error) {
	return f.lessons, nil
}

func TestExplain_AuthoredSlotWins(t *testing.T) {
	corpus := &fakeCorpus{lessons: []*content.Lesson{{
		ID:    "1",
		Title: "Acknowledgments",
		Body:  "The signer must personally appear.",
		Explanations: map[string]string{
			"brief": "Short authored take.",
		},
	}}}
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`generated`)})
	svc := NewService(mock, corpus, DefaultConfig())

	exp, err := svc.Explain(context.Background(), "1", DepthBrief)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exp.Authored || exp.Degraded {
		t.Fatalf("expected authored result, got %+v", exp)
	}
	if exp.Text != "Short authored take." {
		t.Fatalf("unexpected text: %q", exp.Text)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("authored slot must not call the provider, got %d calls", mock.CallCount())
	}
}

func TestExplain_GeneratesWhenNoSlot(t *testing.T) {
	corpus := &fakeCorpus{lessons: []*content.Lesson{{
		ID:    "1",
		Title: "Acknowledgments",
		Body:  "The signer must personally appear.",
	}}}
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`A fresh walkthrough.`)})
	svc := NewService(mock, corpus, DefaultConfig())

	exp, err := svc.Explain(context.Background(), "1", DepthDetailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.Authored || exp.Degraded {
		t.Fatalf("expected generated result, got %+v", exp)
	}
	if exp.Text != "A fresh walkthrough." {
		t.Fatalf("unexpected text: %q", exp.Text)
	}
	if exp.Depth != DepthDetailed {
		t.Fatalf("unexpected depth: %q", exp.Depth)
	}

	call := mock.Calls[0]
	if call.Request.MaxTokens != TargetFor(DepthDetailed).MaxTokens {
		t.Fatalf("detailed depth should request %d tokens, got %d",
			TargetFor(DepthDetailed).MaxTokens, call.Request.MaxTokens)
	}
	if call.Purpose != "explain" {
		t.Fatalf("expected purpose \"explain\", got %q", call.Purpose)
	}
}

func TestExplain_InvalidDepthFallsBackToDefault(t *testing.T) {
	corpus := &fakeCorpus{lessons: []*content.Lesson{{
		ID:   "1",
		Body: "Body.",
		Explanations: map[string]string{
			"standard": "Authored standard.",
		},
	}}}
	svc := NewService(llm.NewMockProvider(), corpus, DefaultConfig())

	exp, err := svc.Explain(context.Background(), "1", Depth("verbose"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.Depth != DepthStandard || !exp.Authored {
		t.Fatalf("expected the default standard slot, got %+v", exp)
	}
}

func TestExplain_DegradesToAuthoredSlot(t *testing.T) {
	corpus := &fakeCorpus{lessons: []*content.Lesson{{
		ID:   "1",
		Body: "Body.",
		Explanations: map[string]string{
			"detailed": "Authored deep dive.",
		},
	}}}
	// Empty queue: generation fails.
	svc := NewService(llm.NewMockProvider(), corpus, DefaultConfig())

	exp, err := svc.Explain(context.Background(), "1", DepthBrief)
	if err != nil {
		t.Fatalf("expected degraded explanation, got error: %v", err)
	}
	if !exp.Degraded || !exp.Authored {
		t.Fatalf("expected degraded authored result, got %+v", exp)
	}
	if exp.Depth != DepthDetailed {
		t.Fatalf("expected the detailed slot, got %q", exp.Depth)
	}
	if exp.Text != "Authored deep dive." {
		t.Fatalf("unexpected text: %q", exp.Text)
	}
}

func TestExplain_FailureWithNoSlots(t *testing.T) {
	corpus := &fakeCorpus{lessons: []*content.Lesson{{ID: "1", Body: "Body."}}}
	svc := NewService(llm.NewMockProvider(), corpus, DefaultConfig())

	if _, err := svc.Explain(context.Background(), "1", DepthBrief); err == nil {
		t.Fatal("expected error when generation fails with no authored slots")
	}
}

func TestExplain_UnknownLesson(t *testing.T) {
	svc := NewService(llm.NewMockProvider(), &fakeCorpus{}, DefaultConfig())

	if _, err := svc.Explain(context.Background(), "404", DepthBrief); err == nil {
		t.Fatal("expected error for unknown lesson")
	}
}
