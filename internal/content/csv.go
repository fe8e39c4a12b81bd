package content

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads lessons from the legacy corpus format: a CSV with a header
// row containing No, Title and Content columns. Rows with a blank id or
// body are skipped.
func LoadCSV(path string) ([]*Lesson, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lesson corpus: %w", err)
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseCSV reads lessons from r in the legacy corpus format.
func ParseCSV(r io.Reader) ([]*Lesson, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read corpus header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	noCol, okNo := idx["no"]
	titleCol, okTitle := idx["title"]
	contentCol, okContent := idx["content"]
	if !okNo || !okTitle || !okContent {
		return nil, fmt.Errorf("corpus header must contain No, Title and Content columns, got %v", header)
	}
	// Columns may appear in any order; a row must reach the furthest one.
	maxCol := max(noCol, titleCol, contentCol)

	var lessons []*Lesson
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row: %w", err)
		}
		if len(rec) <= maxCol {
			continue
		}

		id := strings.TrimSpace(rec[noCol])
		body := strings.TrimSpace(rec[contentCol])
		if id == "" || body == "" {
			continue
		}

		lessons = append(lessons, &Lesson{
			ID:    id,
			Title: strings.TrimSpace(rec[titleCol]),
			Body:  body,
		})
	}

	return lessons, nil
}
