package quizgen

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math/rand/v2"
	"time"
)

// Config controls quiz generation.
type Config struct {
	// Mode is the default generation strategy.
	Mode Mode

	// FinalItemCount is the size of the final assessment.
	FinalItemCount int

	// BatchSize caps how many scenario questions one provider call asks
	// for. Larger quizzes are filled in multiple calls.
	BatchSize int

	// SeedBucket is the time granularity of the draw seed. Quizzes for the
	// same (user, lesson) within one bucket are identical; a new bucket
	// gives a fresh draw.
	SeedBucket time.Duration

	// Temperature and MaxTokens for scenario question generation.
	Temperature float64
	MaxTokens   int

	// Clock is the time source, injectable for tests.
	Clock func() time.Time
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeHybrid,
		FinalItemCount: 50,
		BatchSize:      10,
		SeedBucket:     10 * time.Minute,
		Temperature:    0.8,
		MaxTokens:      800,
		Clock:          time.Now,
	}
}

// ItemCountFor picks a question count from the lesson body length. Short
// lessons get one or two questions, long ones up to ten.
func ItemCountFor(contentLen int, rng *rand.Rand) int {
	switch {
	case contentLen < 300:
		return 1 + rng.IntN(2)
	case contentLen < 700:
		return 3 + rng.IntN(2)
	case contentLen < 1200:
		return 5 + rng.IntN(3)
	default:
		return 8 + rng.IntN(3)
	}
}

// drawSeed derives the deterministic draw seed for a (user, lesson) pair at
// time t. Stable within one SeedBucket, different across buckets.
func drawSeed(userID, lessonID string, t time.Time, bucket time.Duration) uint64 {
	h := fnv.New64a()
	io.WriteString(h, userID)
	h.Write([]byte{0})
	io.WriteString(h, lessonID)
	h.Write([]byte{0})

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(t.UnixNano()/int64(bucket)))
	h.Write(buf[:])

	return h.Sum64()
}

// newRNG creates a seeded source for reproducible draws.
func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
