package mandate

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Contents shapes are checked before any hash is computed, so a malformed
// cart never becomes a signed anchor.
const cartContentsSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"amount": {"type": "string"},
		"currency": {"type": "string"},
		"items": {"type": "array"}
	}
}`

const paymentContentsSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"minProperties": 1
}`

func validateContents(contents Contents, schema string) error {
	if contents == nil {
		return fmt.Errorf("contents are nil")
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(map[string]any(contents)),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return fmt.Errorf("invalid contents: %s", strings.Join(reasons, "; "))
	}
	return nil
}
