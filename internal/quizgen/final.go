package quizgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"

	"github.com/notaprep/notaprep/internal/content"
)

// GenerateFinal builds the final assessment: FinalItemCount items sampled
// across all lessons. With up to FinalItemCount lessons every lesson
// contributes at least one item and the remainder goes to lessons with more
// material; with more lessons the draw is uniform across the merged pool.
// No two items test the same (lesson, fact) pair. Shortfall is topped up
// from the provider; on provider failure the quiz degrades and is marked
// Partial.
func (g *Generator) GenerateFinal(ctx context.Context, userID string) (*Quiz, error) {
	lessons, err := g.store.ListLessons(ctx)
	if err != nil {
		return nil, fmt.Errorf("load lesson corpus: %w", err)
	}
	if len(lessons) == 0 {
		return nil, ErrInsufficientContent
	}

	now := g.cfg.Clock()
	rng := newRNG(drawSeed(userID, FinalLessonID, now, g.cfg.SeedBucket))
	total := g.cfg.FinalItemCount

	pools := make([][]candidate, len(lessons))
	for i, l := range lessons {
		pools[i] = extractCandidates(l)
	}

	var items []Item
	if len(lessons) > total {
		items = g.drawUniform(lessons, pools, total, rng)
	} else {
		quotas := allocateQuotas(poolSizes(pools), total)
		for i, l := range lessons {
			items = append(items, g.drawLesson(l, pools[i], quotas[i], rng)...)
		}
	}

	partial := false
	if shortfall := total - len(items); shortfall > 0 {
		topped, aiErr := g.finalTopUp(ctx, userID, lessons, pools, shortfall)
		items = append(items, topped...)
		if aiErr != nil || len(items) < total {
			partial = true
		}
	}

	if len(items) == 0 {
		return nil, ErrInsufficientContent
	}

	return &Quiz{
		SessionID: uuid.NewString(),
		UserID:    userID,
		LessonID:  FinalLessonID,
		Items:     items,
		Partial:   partial,
		StartedAt: now,
	}, nil
}

// drawLesson takes up to quota rule items from one lesson's pool.
func (g *Generator) drawLesson(lesson *content.Lesson, pool []candidate, quota int, rng *rand.Rand) []Item {
	var items []Item
	for _, i := range rng.Perm(len(pool)) {
		if len(items) == quota {
			break
		}
		it, ok := clozeItem(pool[i], pool, lesson.ID, rng)
		if !ok {
			continue
		}
		items = append(items, it)
	}
	return items
}

// drawUniform samples the merged pool without replacement.
func (g *Generator) drawUniform(lessons []*content.Lesson, pools [][]candidate, total int, rng *rand.Rand) []Item {
	type tagged struct {
		lessonIdx int
		poolIdx   int
	}
	var merged []tagged
	for li, pool := range pools {
		for pi := range pool {
			merged = append(merged, tagged{lessonIdx: li, poolIdx: pi})
		}
	}

	var items []Item
	for _, i := range rng.Perm(len(merged)) {
		if len(items) == total {
			break
		}
		t := merged[i]
		it, ok := clozeItem(pools[t.lessonIdx][t.poolIdx], pools[t.lessonIdx], lessons[t.lessonIdx].ID, rng)
		if !ok {
			continue
		}
		items = append(items, it)
	}
	return items
}

// finalTopUp requests the shortfall from the provider, lesson by lesson,
// largest pools first. Stops at the first provider failure, returning what
// it gathered.
func (g *Generator) finalTopUp(ctx context.Context, userID string, lessons []*content.Lesson, pools [][]candidate, shortfall int) ([]Item, error) {
	order := make([]int, len(lessons))
	for i := range order {
		order[i] = i
	}
	// Lessons with the biggest pools can carry the most extra questions.
	sort.SliceStable(order, func(a, b int) bool {
		return len(pools[order[a]]) > len(pools[order[b]])
	})

	var items []Item
	for _, li := range order {
		if shortfall <= 0 {
			break
		}
		usedFacts := map[string]bool{}
		for _, c := range pools[li] {
			usedFacts[c.factKey] = true
		}

		want := min(shortfall, g.cfg.BatchSize)
		aiItems, err := g.generateAI(ctx, userID, lessons[li], want, usedFacts)
		items = append(items, aiItems...)
		shortfall -= len(aiItems)
		if err != nil {
			return items, err
		}
	}
	return items, nil
}

func poolSizes(pools [][]candidate) []int {
	sizes := make([]int, len(pools))
	for i, p := range pools {
		sizes[i] = len(p)
	}
	return sizes
}

// allocateQuotas gives every lesson one slot, then splits the remainder in
// proportion to pool sizes. Leftover slots from rounding go to the largest
// pools.
func allocateQuotas(sizes []int, total int) []int {
	n := len(sizes)
	quotas := make([]int, n)
	if n == 0 {
		return quotas
	}

	remainder := total - n
	if remainder < 0 {
		remainder = 0
	}
	for i := range quotas {
		quotas[i] = 1
	}

	sum := 0
	for _, s := range sizes {
		sum += s
	}
	if sum == 0 {
		return quotas
	}

	assigned := 0
	for i, s := range sizes {
		extra := remainder * s / sum
		quotas[i] += extra
		assigned += extra
	}

	// Rounding leftovers go to the biggest pools.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sizes[order[a]] > sizes[order[b]]
	})
	for i := 0; i < remainder-assigned; i++ {
		quotas[order[i%n]]++
	}

	return quotas
}
