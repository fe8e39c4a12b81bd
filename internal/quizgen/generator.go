package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/notaprep/notaprep/internal/content"
	"github.com/notaprep/notaprep/internal/llm"
)

// Generator builds quizzes from the lesson corpus.
type Generator struct {
	provider llm.Provider
	store    content.Store
	cfg      Config
}

// New creates a quiz generator.
func New(provider llm.Provider, store content.Store, cfg Config) *Generator {
	if cfg.Clock == nil {
		cfg.Clock = DefaultConfig().Clock
	}
	return &Generator{provider: provider, store: store, cfg: cfg}
}

// GenerateQuiz builds a quiz of count items for one lesson. count <= 0 picks
// a count from the lesson length. The rule pool is drawn with a seed derived
// from (user, lesson, time bucket), so repeated calls within one bucket
// produce the same quiz. Any shortfall is requested from the provider; on
// provider failure the quiz degrades to the rule items. A quiz shorter than
// count for any reason is marked Partial.
func (g *Generator) GenerateQuiz(ctx context.Context, userID, lessonID string, count int, mode Mode) (*Quiz, error) {
	if mode == "" {
		mode = g.cfg.Mode
	}

	lesson, err := g.store.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson %s: %w", lessonID, err)
	}

	now := g.cfg.Clock()
	rng := newRNG(drawSeed(userID, lessonID, now, g.cfg.SeedBucket))

	if count <= 0 {
		count = ItemCountFor(len(lesson.Body), rng)
	}

	pool := extractCandidates(lesson)
	usedFacts := map[string]bool{}
	var items []Item
	for _, i := range rng.Perm(len(pool)) {
		if len(items) == count {
			break
		}
		it, ok := clozeItem(pool[i], pool, lessonID, rng)
		if !ok {
			continue
		}
		items = append(items, it)
		usedFacts[it.FactKey] = true
	}

	if shortfall := count - len(items); shortfall > 0 && mode != ModeRuleOnly {
		aiItems, aiErr := g.generateAI(ctx, userID, lesson, shortfall, usedFacts)
		items = append(items, aiItems...)
		if aiErr != nil && len(items) == 0 {
			return nil, ErrInsufficientContent
		}
	}

	if len(items) == 0 {
		return nil, ErrInsufficientContent
	}

	// Short of count for any reason, rule_only pools included.
	partial := len(items) < count

	return &Quiz{
		SessionID: uuid.NewString(),
		UserID:    userID,
		LessonID:  lessonID,
		Items:     items,
		Partial:   partial,
		StartedAt: now,
	}, nil
}

type aiQuiz struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

type aiQuizBatch struct {
	Quizzes []aiQuiz `json:"quizzes"`
}

// generateAI requests n scenario questions from the provider in batches.
// Items obtained before a failure are returned alongside the error so the
// caller can degrade instead of discarding them.
func (g *Generator) generateAI(ctx context.Context, userID string, lesson *content.Lesson, n int, usedFacts map[string]bool) ([]Item, error) {
	ctx = llm.WithPurpose(ctx, "quiz")
	ctx = llm.WithUser(ctx, userID)

	var items []Item
	for remaining := n; remaining > 0; {
		batch := min(remaining, g.cfg.BatchSize)

		req := llm.Request{
			System: buildQuizSystemPrompt(batch),
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: buildQuizUserMessage(lesson)},
			},
			Schema:      QuizSchema,
			MaxTokens:   g.cfg.MaxTokens,
			Temperature: g.cfg.Temperature,
		}

		resp, err := g.provider.Generate(ctx, req)
		if err != nil {
			return items, fmt.Errorf("scenario question generation: %w", err)
		}

		var out aiQuizBatch
		if err := json.Unmarshal(resp.Content, &out); err != nil {
			return items, fmt.Errorf("parse scenario questions: %w", err)
		}

		for _, q := range out.Quizzes {
			it, ok := aiItem(q, lesson.ID)
			if !ok || usedFacts[it.FactKey] {
				continue
			}
			usedFacts[it.FactKey] = true
			items = append(items, it)
			if len(items) == n {
				return items, nil
			}
		}

		remaining -= batch
	}
	return items, nil
}

var optionPrefixRe = regexp.MustCompile(`^[A-D][.)]\s*`)

// aiItem converts one provider question into an Item. Questions with a
// malformed option list or answer letter are dropped.
func aiItem(q aiQuiz, lessonID string) (Item, bool) {
	if len(q.Options) != choicesPerItem {
		return Item{}, false
	}
	answer := strings.TrimSpace(q.Answer)
	if len(answer) != 1 || answer[0] < 'A' || answer[0] > 'D' {
		return Item{}, false
	}

	choices := make([]string, len(q.Options))
	for i, opt := range q.Options {
		choices[i] = optionPrefixRe.ReplaceAllString(strings.TrimSpace(opt), "")
	}

	return Item{
		ID:           uuid.NewString(),
		LessonID:     lessonID,
		FactKey:      questionFactKey(q.Question),
		Question:     q.Question,
		Choices:      choices,
		CorrectIndex: int(answer[0] - 'A'),
		Explanation:  q.Explanation,
		Source:       SourceAI,
	}, true
}

// questionFactKey derives a stable fact key from the question text, so the
// same generated question never repeats within a quiz.
func questionFactKey(question string) string {
	h := fnv.New64a()
	io.WriteString(h, strings.Join(strings.Fields(strings.ToLower(question)), " "))
	return fmt.Sprintf("ai-%x", h.Sum64())
}
