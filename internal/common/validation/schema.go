package validation

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the field errors into one line for logs and BPMN error details.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

// loadSchemas compiles every embedded schema, keyed by task type.
func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		entries, err := schemaFiles.ReadDir("schemas")
		if err != nil {
			compileErr = err
			return
		}
		compiled = make(map[string]*gojsonschema.Schema, len(entries))
		for _, entry := range entries {
			raw, err := schemaFiles.ReadFile(path.Join("schemas", entry.Name()))
			if err != nil {
				compileErr = err
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", entry.Name(), err)
				return
			}
			compiled[strings.TrimSuffix(entry.Name(), ".json")] = schema
		}
	})
	return compiled, compileErr
}

// HasSchema reports whether an input schema is registered for taskType.
func HasSchema(taskType string) bool {
	schemas, err := loadSchemas()
	if err != nil {
		return false
	}
	_, ok := schemas[taskType]
	return ok
}

// ValidateJobVariables checks raw job variables against the input schema of
// taskType. An error means the schema itself could not be used.
func ValidateJobVariables(taskType string, variables []byte) (*ValidationResult, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := schemas[taskType]
	if !ok {
		return nil, fmt.Errorf("no input schema for task type %q", taskType)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(variables))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_JSON"}},
		}, nil
	}
	return toResult(result), nil
}

// ValidateInput validates an already-decoded document.
func ValidateInput(taskType string, input map[string]interface{}) (*ValidationResult, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := schemas[taskType]
	if !ok {
		return nil, fmt.Errorf("no input schema for task type %q", taskType)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, err
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}
