package workflowconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaJSON is the JSON Schema Draft-07 document embedded from
// schemadata/flowspec_workflow.schema.json. It is embedded rather than read
// from disk at validation time so a missing or edited copy on a user's
// machine can never desync the validator from its own rules;
// WriteSchemaFile writes this copy to a caller-chosen path.
//
//go:embed schemadata/flowspec_workflow.schema.json
var schemaJSON []byte

const schemaURL = "https://flowspec.dev/schema/flowspec_workflow.schema.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(schemaJSON, &doc); err != nil {
			compileErr = fmt.Errorf("internal schema is not valid JSON: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("internal schema is malformed: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// ValidateSchema validates a raw (untyped, JSON-shaped) document tree
// against the embedded JSON Schema. A malformed internal schema is a
// programming error and panics rather than returning a Finding.
func ValidateSchema(raw map[string]any) Findings {
	schema, err := compiled()
	if err != nil {
		panic(fmt.Sprintf("workflowconfig: %v", err))
	}

	// Round-trip through encoding/json to normalize YAML-decoded types
	// (e.g. int vs float64) into the shapes jsonschema expects.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return Findings{errorf(RuleSchemaError, "/", "document is not JSON-representable: %v", err)}
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		return Findings{errorf(RuleSchemaError, "/", "document is not JSON-representable: %v", err)}
	}

	if err := schema.Validate(instance); err != nil {
		return Findings{errorf(RuleSchemaError, "/", "%s", formatSchemaError(err))}
	}
	return nil
}

// formatSchemaError renders a jsonschema validation error into a compact,
// single-line, human-readable message.
func formatSchemaError(err error) string {
	var buf bytes.Buffer
	if verr, ok := err.(*jsonschema.ValidationError); ok {
		writeValidationError(&buf, verr, 0)
	} else {
		buf.WriteString(err.Error())
	}
	return buf.String()
}

func writeValidationError(buf *bytes.Buffer, verr *jsonschema.ValidationError, depth int) {
	if depth > 0 {
		buf.WriteString("; ")
	}
	fmt.Fprintf(buf, "%s: %s", verr.InstanceLocation, verr.Error())
	for _, cause := range verr.Causes {
		writeValidationError(buf, cause, depth+1)
	}
}

// WriteSchemaFile writes the embedded schema to path through writeFn.
// `flowspec init` does not call it; no schema file is written into a new
// project.
func WriteSchemaFile(writeFn func(path string, data []byte) error, path string) error {
	return writeFn(path, schemaJSON)
}
