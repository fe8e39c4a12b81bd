package quizgen

import (
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/notaprep/notaprep/internal/content"
)

// minSentenceLen filters out fragments too short to carry a testable fact.
const minSentenceLen = 20

// choicesPerItem is fixed: one correct term plus three distractors.
const choicesPerItem = 4

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]?`)
	wordRe     = regexp.MustCompile(`[A-Za-z]+`)
)

// stopwords are never chosen as key terms.
var stopwords = map[string]bool{
	"about": true, "after": true, "against": true, "also": true,
	"another": true, "because": true, "been": true, "before": true,
	"being": true, "between": true, "both": true, "cannot": true,
	"could": true, "does": true, "during": true, "each": true,
	"every": true, "from": true, "have": true, "into": true,
	"more": true, "most": true, "must": true, "only": true,
	"other": true, "shall": true, "should": true, "such": true,
	"than": true, "that": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "under": true, "upon": true,
	"when": true, "where": true, "which": true, "while": true,
	"will": true, "with": true, "within": true, "without": true,
	"would": true, "your": true,
}

// candidate is a sentence with an extractable key term. One candidate can
// become one cloze item; its term serves as a distractor for others.
type candidate struct {
	sentence string
	term     string
	factKey  string
}

// extractCandidates segments the lesson body into sentences and picks a key
// term per sentence. Sentences whose term repeats an earlier one are
// dropped, so fact keys are unique within a lesson. Fully deterministic.
func extractCandidates(lesson *content.Lesson) []candidate {
	seen := map[string]bool{}
	var out []candidate

	for _, raw := range sentenceRe.FindAllString(lesson.Body, -1) {
		sentence := strings.TrimSpace(raw)
		if len(sentence) < minSentenceLen {
			continue
		}

		term := keyTerm(sentence)
		if term == "" {
			continue
		}
		factKey := strings.ToLower(term)
		if seen[factKey] {
			continue
		}
		seen[factKey] = true

		out = append(out, candidate{
			sentence: sentence,
			term:     term,
			factKey:  factKey,
		})
	}
	return out
}

// keyTerm picks the longest non-stopword word of at least four letters.
// Ties go to the first occurrence, keeping extraction deterministic.
func keyTerm(sentence string) string {
	best := ""
	for _, w := range wordRe.FindAllString(sentence, -1) {
		if len(w) < 4 || stopwords[strings.ToLower(w)] {
			continue
		}
		if len(w) > len(best) {
			best = w
		}
	}
	return best
}

// clozeItem turns a candidate into a fill-in-the-blank question. Distractors
// are key terms of other candidates; choice order is shuffled with the
// seeded source so the draw stays reproducible.
func clozeItem(c candidate, pool []candidate, lessonID string, rng *rand.Rand) (Item, bool) {
	distractors := make([]string, 0, choicesPerItem-1)
	for _, other := range pool {
		if other.factKey == c.factKey {
			continue
		}
		distractors = append(distractors, other.term)
		if len(distractors) == choicesPerItem-1 {
			break
		}
	}
	if len(distractors) < choicesPerItem-1 {
		return Item{}, false
	}

	choices := append([]string{c.term}, distractors...)
	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	correct := 0
	for i, ch := range choices {
		if ch == c.term {
			correct = i
			break
		}
	}

	question := strings.Replace(c.sentence, c.term, "____", 1)

	return Item{
		ID:           uuid.NewString(),
		LessonID:     lessonID,
		FactKey:      c.factKey,
		Question:     "Fill in the blank: " + question,
		Choices:      choices,
		CorrectIndex: correct,
		Explanation:  c.sentence,
		Source:       SourceRule,
	}, true
}
