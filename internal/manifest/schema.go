package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The manifest root must be a list of package objects. Entries with a
// missing or blank Package name are legal at the schema level; the
// store skips them with a warning instead of failing the whole load.
const schemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "Package": {"type": "string"},
      "Includes": {"type": "array", "items": {"type": "string"}},
      "DEBDepends": {"type": "array", "items": {"type": "string"}},
      "RPMRequires": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var manifestSchema = jsonschema.MustCompileString("package-manifest.schema.json", schemaDoc)

func validateSchema(jsonData []byte) error {
	var doc interface{}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("decoding manifest: %w", err)
	}
	if err := manifestSchema.Validate(doc); err != nil {
		return fmt.Errorf("manifest does not match schema: %w", err)
	}
	return nil
}
