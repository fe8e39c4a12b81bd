package explain

import (
	"fmt"
	"strings"

	"github.com/notaprep/notaprep/internal/content"
)

// buildSystemPrompt sets the teaching persona and the length target.
func buildSystemPrompt(target Target) string {
	return fmt.Sprintf(
		"You are a professional notary-exam tutor. Use ONLY the provided lesson content. "+
			"Write clearly with headings and short paragraphs. Aim for ~%d words. "+
			"If some information is missing from the content, explicitly ask 1-3 clarifying questions "+
			"instead of inventing facts.",
		target.Words,
	)
}

// buildUserMessage carries the lesson material into the request.
func buildUserMessage(lesson *content.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lesson ID: %s\n", lesson.ID)
	fmt.Fprintf(&b, "Lesson Title: %s\n\n", lesson.Title)
	b.WriteString("Lesson Content:\n")
	b.WriteString(lesson.Body)
	return b.String()
}
