package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas caches compiled schemas by name. Schemas are package-level
// values (quiz generation's scenario-quiz), so one name always refers to the
// same definition.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// validateResponse checks raw against the requested Schema. A nil schema
// passes everything. Malformed JSON or a schema violation returns
// *ErrInvalidResponse carrying the raw content, which grants the retry
// layer its single re-attempt.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("compile schema %q: %w", schema.Name, err),
		}
	}

	if err := compiled.Validate(doc); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("schema %q violated: %w", schema.Name, err),
		}
	}
	return nil
}

// compiledSchema compiles schema.Definition once and caches it by name.
func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON document, not Go structs.
	enc, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	var doc any
	if err := json.Unmarshal(enc, &doc); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("notaprep://schema/%s.json", schema.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiledSchemas.Store(schema.Name, compiled)
	return compiled, nil
}
