package explain

import (
	"context"
	"fmt"

	"github.com/notaprep/notaprep/internal/content"
	"github.com/notaprep/notaprep/internal/llm"
)

// Explanation is the result of an explanation request.
type Explanation struct {
	LessonID string
	Depth    Depth
	Text     string

	// Authored is true when the text came from a pre-authored lesson slot
	// rather than generation.
	Authored bool

	// Degraded is true when the requested depth could not be produced and
	// an authored slot at another depth was substituted.
	Degraded bool
}

// Service produces lesson explanations. Pre-authored slots on the lesson
// always win over generation; generation is the fallback, and an authored
// slot at any depth is the fallback to that.
type Service struct {
	provider llm.Provider
	store    content.Store
	cfg      Config
}

// NewService creates an explanation service.
func NewService(provider llm.Provider, store content.Store, cfg Config) *Service {
	return &Service{provider: provider, store: store, cfg: cfg}
}

// Explain returns an explanation of the lesson at the given depth.
func (s *Service) Explain(ctx context.Context, lessonID string, depth Depth) (*Explanation, error) {
	if !depth.Valid() {
		depth = s.cfg.Depth
	}

	lesson, err := s.store.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson %s: %w", lessonID, err)
	}

	if text, ok := lesson.Explanations[string(depth)]; ok && text != "" {
		return &Explanation{
			LessonID: lessonID,
			Depth:    depth,
			Text:     text,
			Authored: true,
		}, nil
	}

	text, genErr := s.generate(ctx, lesson, depth)
	if genErr == nil {
		return &Explanation{
			LessonID: lessonID,
			Depth:    depth,
			Text:     text,
		}, nil
	}

	// Generation failed. Any authored slot beats no explanation at all.
	for _, d := range []Depth{DepthStandard, DepthDetailed, DepthBrief} {
		if alt, ok := lesson.Explanations[string(d)]; ok && alt != "" {
			return &Explanation{
				LessonID: lessonID,
				Depth:    d,
				Text:     alt,
				Authored: true,
				Degraded: true,
			}, nil
		}
	}

	return nil, fmt.Errorf("explain lesson %s: %w", lessonID, genErr)
}

func (s *Service) generate(ctx context.Context, lesson *content.Lesson, depth Depth) (string, error) {
	ctx = llm.WithPurpose(ctx, "explain")
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	target := TargetFor(depth)
	req := llm.Request{
		System: buildSystemPrompt(target),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(lesson)},
		},
		MaxTokens:   target.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return string(resp.Content), nil
}
