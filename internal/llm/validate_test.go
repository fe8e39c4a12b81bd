package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func gradeSchema() *Schema {
	return &Schema{
		Name:        "exam-grade",
		Description: "A graded answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"grade": map[string]any{
					"type": "string",
					"enum": []string{"pass", "fail"},
				},
			},
			"required":             []string{"grade"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse_NilSchemaPasses(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema must pass, got: %v", err)
	}
}

func TestValidateResponse_ValidDocument(t *testing.T) {
	if err := validateResponse(gradeSchema(), json.RawMessage(`{"grade":"pass"}`)); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	err := validateResponse(gradeSchema(), json.RawMessage(`{"grade":`))
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got: %v", err)
	}
	if string(invalid.Content) != `{"grade":` {
		t.Fatalf("error must carry the raw content, got: %s", invalid.Content)
	}
}

func TestValidateResponse_SchemaViolation(t *testing.T) {
	err := validateResponse(gradeSchema(), json.RawMessage(`{"grade":"maybe"}`))
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got: %v", err)
	}
}
