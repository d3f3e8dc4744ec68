package workflow

import (
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/lumenworks/reelgraph/internal/xjson"
	"github.com/lumenworks/reelgraph/pkg/schema"
)

// documentSchemaJSON is the JSON Schema for workflow document validation.
// Embedded as a constant to avoid filesystem dependencies.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://reelgraph.dev/schemas/document.json",
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "version": { "type": "string" },
    "name": { "type": "string" },
    "createdAt": { "type": "string" },
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/edge" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": {
          "type": "string",
          "minLength": 1
        },
        "type": {
          "type": "string",
          "enum": [
            "text", "image", "video", "masterPrompt", "modifier",
            "generator", "camera", "imageUpload", "arraySplitter",
            "comment", "enhancement", "cameraAngle"
          ]
        },
        "position": {
          "type": "object",
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" }
          },
          "additionalProperties": false
        },
        "data": { "type": "object" }
      },
      "additionalProperties": false
    },
    "edge": {
      "type": "object",
      "required": ["source", "target"],
      "properties": {
        "id": { "type": "string" },
        "source": {
          "type": "string",
          "minLength": 1
        },
        "target": {
          "type": "string",
          "minLength": 1
        },
        "sourceHandle": { "type": "string" },
        "targetHandle": { "type": "string" }
      },
      "additionalProperties": false
    }
  }
}`

var (
	documentSchemaOnce sync.Once
	documentSchema     *jsonschema.Schema
	documentSchemaErr  error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat()

		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
		if err != nil {
			documentSchemaErr = fmt.Errorf("unmarshal document schema: %w", err)
			return
		}
		if err := c.AddResource("https://reelgraph.dev/schemas/document.json", doc); err != nil {
			documentSchemaErr = fmt.Errorf("add document schema resource: %w", err)
			return
		}
		documentSchema, documentSchemaErr = c.Compile("https://reelgraph.dev/schemas/document.json")
	})
	return documentSchema, documentSchemaErr
}

// ValidateDocumentBytes validates raw document JSON against the document
// schema before any unmarshaling takes place, so malformed imports fail
// fast with a precise location instead of a half-populated struct.
func ValidateDocumentBytes(data []byte) error {
	compiled, err := compiledDocumentSchema()
	if err != nil {
		return schema.NewError(schema.ErrCodeImport, "document schema unavailable").WithCause(err)
	}

	// The jsonschema library requires json.Number for numeric values,
	// so decode with its own reader rather than xjson.
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return schema.NewError(schema.ErrCodeImport, "document is not valid JSON").WithCause(err)
	}

	if err := compiled.Validate(doc); err != nil {
		return toImportError(err)
	}
	return nil
}

// toImportError converts a jsonschema.ValidationError into a FlowError with
// leaf-level violation messages.
func toImportError(err error) *schema.FlowError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeImport, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeImport, verr.Error())
	}
	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeImport, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}
	return schema.NewErrorf(schema.ErrCodeImport, "document validation failed with %d errors", len(violations)).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}

// Parse validates and decodes raw document JSON.
func Parse(data []byte) (*schema.WorkflowDocument, error) {
	if err := ValidateDocumentBytes(data); err != nil {
		return nil, err
	}
	var doc schema.WorkflowDocument
	if err := xjson.Unmarshal(data, &doc); err != nil {
		return nil, schema.NewError(schema.ErrCodeImport, "failed to decode document").WithCause(err)
	}
	return &doc, nil
}
