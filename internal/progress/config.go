package progress

import "time"

// Config controls the progress thresholds.
type Config struct {
	// LessonPassThreshold is the quiz score (0..1) that completes a lesson.
	LessonPassThreshold float64

	// FinalPassThreshold is the score (0..1) that passes the final
	// assessment. The classic paper exam passed at 40 of 50.
	FinalPassThreshold float64

	// Clock is the time source, injectable for tests.
	Clock func() time.Time
}

// DefaultConfig returns the platform thresholds.
func DefaultConfig() Config {
	return Config{
		LessonPassThreshold: 0.7,
		FinalPassThreshold:  0.8,
		Clock:               time.Now,
	}
}
