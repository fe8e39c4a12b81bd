package quizgen

import "github.com/notaprep/notaprep/internal/llm"

// QuizSchema defines the JSON schema for scenario question generation.
var QuizSchema = &llm.Schema{
	Name:        "scenario-quiz",
	Description: "A batch of scenario-based multiple-choice exam questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quizzes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The scenario question shown to the learner",
						},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"minItems":    4,
							"maxItems":    4,
							"description": "Exactly 4 answer choices, each prefixed A. / B. / C. / D.",
						},
						"answer": map[string]any{
							"type":        "string",
							"enum":        []any{"A", "B", "C", "D"},
							"description": "The letter of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "A short explanation of why the answer is correct",
						},
					},
					"required":             []any{"question", "options", "answer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"quizzes"},
		"additionalProperties": false,
	},
}
