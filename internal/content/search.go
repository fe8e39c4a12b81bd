package content

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenRe = regexp.MustCompile(`\w+`)

// vector is a bag-of-words term frequency map.
type vector map[string]int

func tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

func textToVector(text string) vector {
	v := make(vector)
	for _, tok := range tokenize(text) {
		v[tok]++
	}
	return v
}

// cosine computes cosine similarity between two bag-of-words vectors.
func cosine(v1, v2 vector) float64 {
	if len(v1) == 0 || len(v2) == 0 {
		return 0
	}
	small, large := v1, v2
	if len(v2) < len(v1) {
		small, large = v2, v1
	}
	dot := 0
	for tok, n := range small {
		dot += n * large[tok]
	}
	var sum1, sum2 int
	for _, n := range v1 {
		sum1 += n * n
	}
	for _, n := range v2 {
		sum2 += n * n
	}
	denom := math.Sqrt(float64(sum1)) * math.Sqrt(float64(sum2))
	if denom == 0 {
		return 0
	}
	return float64(dot) / denom
}

// Index is a precomputed search index over the lesson corpus.
type Index struct {
	lessons []*Lesson
	vectors map[string]vector
}

// NewIndex builds a bag-of-words index over the given lessons.
func NewIndex(lessons []*Lesson) *Index {
	vectors := make(map[string]vector, len(lessons))
	for _, l := range lessons {
		vectors[l.ID] = textToVector(l.Body)
	}
	return &Index{lessons: lessons, vectors: vectors}
}

// Match is one search result with its similarity score.
type Match struct {
	Lesson *Lesson
	Score  float64
}

// Search returns the topK most similar lessons to the query. Lessons with
// zero similarity are excluded, so the result may be shorter than topK.
func (ix *Index) Search(query string, topK int) []Match {
	queryVec := textToVector(query)

	var matches []Match
	for _, l := range ix.lessons {
		score := cosine(queryVec, ix.vectors[l.ID])
		if score > 0 {
			matches = append(matches, Match{Lesson: l, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
