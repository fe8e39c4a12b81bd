package quizgen

import (
	"fmt"
	"strings"

	"github.com/notaprep/notaprep/internal/content"
)

// buildQuizSystemPrompt asks for n scenario questions in the schema format.
func buildQuizSystemPrompt(n int) string {
	return fmt.Sprintf(
		"You are a professional exam question generator for notary certification. "+
			"Based on the provided lesson content, generate %d realistic, scenario-based "+
			"multiple-choice questions (single answer each).\n\n"+
			"Each question must:\n"+
			"- Simulate a real-world scenario a notary could face\n"+
			"- Have exactly 4 answer choices, prefixed A. / B. / C. / D.\n"+
			"- Name the correct answer by its letter (A, B, C, or D)\n"+
			"- Include a short explanation of the correct answer\n\n"+
			"Use only facts from the lesson content. Do not invent rules.",
		n,
	)
}

// buildQuizUserMessage carries the lesson material into the request.
func buildQuizUserMessage(lesson *content.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lesson Title: %s\n\n", lesson.Title)
	b.WriteString("Lesson Content:\n")
	b.WriteString(lesson.Body)
	return b.String()
}
