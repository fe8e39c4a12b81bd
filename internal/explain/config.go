// Package explain produces lesson explanations at a chosen depth, preferring
// pre-authored text over generation.
package explain

import "time"

// Depth selects how thorough an explanation should be.
type Depth string

const (
	DepthBrief    Depth = "brief"
	DepthStandard Depth = "standard"
	DepthDetailed Depth = "detailed"
)

// Valid reports whether d is a known depth.
func (d Depth) Valid() bool {
	switch d {
	case DepthBrief, DepthStandard, DepthDetailed:
		return true
	}
	return false
}

// Target is the length guidance for one depth.
type Target struct {
	// Words is the approximate word count the prompt asks for.
	Words int

	// MaxTokens caps the provider response.
	MaxTokens int
}

// targets maps each depth to its length guidance.
var targets = map[Depth]Target{
	DepthBrief:    {Words: 220, MaxTokens: 600},
	DepthStandard: {Words: 600, MaxTokens: 1200},
	DepthDetailed: {Words: 1200, MaxTokens: 2000},
}

// TargetFor returns the length guidance for a depth, defaulting to standard
// for unknown values.
func TargetFor(d Depth) Target {
	if t, ok := targets[d]; ok {
		return t
	}
	return targets[DepthStandard]
}

// Config controls the explanation service.
type Config struct {
	// Depth is the default depth when a request does not specify one.
	Depth Depth

	// Temperature for generation. Explanations tolerate mild variation.
	Temperature float64

	// Timeout bounds a single explanation request end to end.
	Timeout time.Duration
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		Depth:       DepthStandard,
		Temperature: 0.3,
		Timeout:     60 * time.Second,
	}
}
