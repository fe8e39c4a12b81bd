package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/notaprep/notaprep/internal/llm"
)

// corpusOf builds n lessons with termsPer candidate sentences each.
func corpusOf(n, termsPer int) *fakeCorpus {
	f := &fakeCorpus{}
	for i := 0; i < n; i++ {
		terms := make([]string, termsPer)
		for j := range terms {
			terms[j] = fmt.Sprintf("commission%c%c", 'a'+i%26, 'a'+j%26)
		}
		f.lessons = append(f.lessons, lessonWithTerms(fmt.Sprintf("%d", i+1), terms...))
	}
	return f
}

func TestGenerateFinal_EveryLessonRepresented(t *testing.T) {
	cfg := testConfig()
	cfg.FinalItemCount = 20
	gen := New(llm.NewMockProvider(), corpusOf(5, 12), cfg)

	quiz, err := gen.GenerateFinal(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quiz.LessonID != FinalLessonID {
		t.Fatalf("expected lesson id %q, got %q", FinalLessonID, quiz.LessonID)
	}
	if len(quiz.Items) != 20 {
		t.Fatalf("expected 20 items, got %d", len(quiz.Items))
	}
	if quiz.Partial {
		t.Fatal("full draw must not be partial")
	}

	perLesson := map[string]int{}
	seen := map[string]bool{}
	for _, item := range quiz.Items {
		perLesson[item.LessonID]++
		pair := item.LessonID + "/" + item.FactKey
		if seen[pair] {
			t.Fatalf("duplicate fact %q", pair)
		}
		seen[pair] = true
	}
	for i := 1; i <= 5; i++ {
		if perLesson[fmt.Sprintf("%d", i)] == 0 {
			t.Fatalf("lesson %d contributed no items", i)
		}
	}
}

func TestGenerateFinal_UniformAcrossManyLessons(t *testing.T) {
	cfg := testConfig()
	cfg.FinalItemCount = 20
	gen := New(llm.NewMockProvider(), corpusOf(30, 5), cfg)

	quiz, err := gen.GenerateFinal(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Items) != 20 {
		t.Fatalf("expected 20 items, got %d", len(quiz.Items))
	}
	if quiz.Partial {
		t.Fatal("full draw must not be partial")
	}

	seen := map[string]bool{}
	for _, item := range quiz.Items {
		pair := item.LessonID + "/" + item.FactKey
		if seen[pair] {
			t.Fatalf("duplicate fact %q", pair)
		}
		seen[pair] = true
	}
}

func TestGenerateFinal_TopUpFromProvider(t *testing.T) {
	batch := aiQuizBatch{Quizzes: []aiQuiz{
		{
			Question:    "The signer presents an expired passport. What should the notary do?",
			Options:     []string{"A. Accept it", "B. Decline and ask for current ID", "C. Photocopy it", "D. Ask a coworker"},
			Answer:      "B",
			Explanation: "Identification must be current.",
		},
		{
			Question:    "A credible witness does not know the signer. What now?",
			Options:     []string{"A. Proceed", "B. Swear the witness anyway", "C. Do not rely on that witness", "D. Skip the oath"},
			Answer:      "C",
			Explanation: "A credible witness must personally know the signer.",
		},
	}}
	payload, _ := json.Marshal(batch)

	cfg := testConfig()
	cfg.FinalItemCount = 7
	mock := llm.NewMockProvider(llm.MockResponse{Content: payload})
	gen := New(mock, corpusOf(1, 5), cfg)

	quiz, err := gen.GenerateFinal(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Items) != 7 {
		t.Fatalf("expected 7 items, got %d", len(quiz.Items))
	}
	if quiz.Partial {
		t.Fatal("topped-up final must not be partial")
	}

	aiCount := 0
	for _, item := range quiz.Items {
		if item.Source == SourceAI {
			aiCount++
		}
	}
	if aiCount != 2 {
		t.Fatalf("expected 2 AI items, got %d", aiCount)
	}
}

func TestGenerateFinal_ShortfallDegradesToPartial(t *testing.T) {
	cfg := testConfig()
	cfg.FinalItemCount = 20
	// Empty queue: the top-up calls fail.
	gen := New(llm.NewMockProvider(), corpusOf(2, 5), cfg)

	quiz, err := gen.GenerateFinal(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected degraded final, got error: %v", err)
	}
	if !quiz.Partial {
		t.Fatal("expected partial final after provider failure")
	}
	if len(quiz.Items) != 10 {
		t.Fatalf("expected the 10 rule items, got %d", len(quiz.Items))
	}
}

func TestGenerateFinal_NoLessons(t *testing.T) {
	gen := New(llm.NewMockProvider(), &fakeCorpus{}, testConfig())

	_, err := gen.GenerateFinal(context.Background(), "alice")
	if err != ErrInsufficientContent {
		t.Fatalf("expected ErrInsufficientContent, got: %v", err)
	}
}

func TestAllocateQuotas(t *testing.T) {
	cases := []struct {
		sizes []int
		total int
		want  []int
	}{
		{[]int{10, 5, 5}, 8, []int{4, 2, 2}},
		{[]int{1, 1}, 50, []int{25, 25}},
		{[]int{3, 3, 3}, 3, []int{1, 1, 1}},
		{[]int{0, 0}, 4, []int{1, 1}},
	}
	for _, tc := range cases {
		got := allocateQuotas(tc.sizes, tc.total)
		if len(got) != len(tc.want) {
			t.Fatalf("sizes %v: got %v, want %v", tc.sizes, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("sizes %v: got %v, want %v", tc.sizes, got, tc.want)
			}
		}
	}
}
