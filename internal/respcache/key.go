package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyInput holds the request fields that identify a reusable response.
// Two logically identical requests must produce identical keys.
type KeyInput struct {
	Model       string
	Purpose     string
	System      string
	Messages    []string
	SchemaName  string
	MaxTokens   int
	Temperature float64
}

// Fingerprint derives a deterministic cache key from the input. Prompt text
// is whitespace-normalized (runs of whitespace collapse to a single space)
// but case-preserving, so formatting differences don't defeat reuse.
func Fingerprint(in KeyInput) string {
	h := sha256.New()

	writeField(h, in.Model)
	writeField(h, in.Purpose)
	writeField(h, normalize(in.System))
	for _, m := range in.Messages {
		writeField(h, normalize(m))
	}
	writeField(h, in.SchemaName)
	writeField(h, fmt.Sprintf("%d", in.MaxTokens))
	writeField(h, fmt.Sprintf("%g", in.Temperature))

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h interface{ Write(p []byte) (int, error) }, s string) {
	h.Write([]byte(s))
	// Field separator prevents ambiguity between adjacent fields.
	h.Write([]byte{0})
}

// normalize collapses all whitespace runs to single spaces and trims the
// ends. Case is preserved.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
