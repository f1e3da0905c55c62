package llm

import (
	"fmt"

	"github.com/revrost/go-openrouter/jsonschema"
)

const schemaName = "result"

// Schema is a named JSON schema for structured output.
type Schema struct {
	Name       string
	Definition *jsonschema.Definition
}

// SchemaFor derives the JSON schema of v's type.
func SchemaFor(v any) (*Schema, error) {
	def, err := jsonschema.GenerateSchemaForType(v)
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}

	return &Schema{Name: schemaName, Definition: def}, nil
}
