// Package schemas provides JSON Schema validation of resume documents.
package schemas

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/resume-render/internal/types"
)

//go:embed resume.schema.json
var resumeSchema []byte

// Validator checks resume documents against a compiled JSON Schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the bundled JSON Resume schema.
func NewValidator() (*Validator, error) {
	return newValidator("(embedded resume schema)", gojsonschema.NewBytesLoader(resumeSchema))
}

// NewValidatorFromFile compiles the schema stored at path.
func NewValidatorFromFile(path string) (*Validator, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, &SchemaLoadError{
			Path:    absPath,
			Message: "schema file not found",
			Cause:   err,
		}
	}

	return newValidator(absPath, gojsonschema.NewReferenceLoader("file://"+filepath.ToSlash(absPath)))
}

func newValidator(path string, loader gojsonschema.JSONLoader) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, &SchemaLoadError{
			Path:    path,
			Message: "failed to compile schema",
			Cause:   err,
		}
	}
	return &Validator{schema: schema}, nil
}

// Validate returns nil when the resume conforms to the schema and a
// *ValidationError carrying every reported issue otherwise.
func (v *Validator) Validate(resume types.Resume) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(resume))
	if err != nil {
		return &SchemaLoadError{
			Path:    "(document)",
			Message: "failed to load document for validation",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
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

// ValidateFile loads the resume at path and validates it.
func (v *Validator) ValidateFile(path string) error {
	resume, err := types.LoadResume(path)
	if err != nil {
		return err
	}
	return v.Validate(resume)
}

// FormatIssues renders the issue list one "- " line per issue.
func FormatIssues(issues []FieldError) string {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, "- "+issue.String())
	}
	return strings.Join(lines, "\n")
}
