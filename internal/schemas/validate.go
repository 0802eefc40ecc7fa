// Package schemas provides JSON Schema validation for taxonomy datasets and analysis reports.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	schemafiles "github.com/jonathan/cv-analyzer/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Schema != "" {
		sb.WriteString(fmt.Sprintf("validation against %s failed:\n", ve.Schema))
	} else {
		sb.WriteString("validation failed:\n")
	}
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	cache   = make(map[string]*gojsonschema.Schema)
	cacheMu sync.RWMutex
)

// compiled returns the named embedded schema, compiling it on first use.
func compiled(name string) (*gojsonschema.Schema, error) {
	cacheMu.RLock()
	s, ok := cache[name]
	cacheMu.RUnlock()
	if ok {
		return s, nil
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[name]; ok {
		return s, nil
	}

	raw, err := schemafiles.Read(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema not found", Cause: err}
	}
	s, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema failed to compile", Cause: err}
	}
	cache[name] = s
	return s, nil
}

// ValidateDocument validates an already-decoded document (maps, slices, scalars or
// any JSON-marshalable value) against the named embedded schema.
func ValidateDocument(name string, doc interface{}) error {
	return validate(name, gojsonschema.NewGoLoader(doc))
}

// ValidateBytes validates raw JSON content against the named embedded schema.
func ValidateBytes(name string, data []byte) error {
	return validate(name, gojsonschema.NewBytesLoader(data))
}

func validate(name string, document gojsonschema.JSONLoader) error {
	schema, err := compiled(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(document)
	if err != nil {
		return &SchemaLoadError{
			Path:    name,
			Message: "document could not be loaded for validation",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
