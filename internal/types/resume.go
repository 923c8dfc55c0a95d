// Package types provides type definitions for structured data used throughout the resume renderer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// Resume is a JSON Resume document. It is kept as a generic map so that themes
// receive every field the author wrote, including ones outside the schema.
type Resume map[string]any

// Meta returns the "meta" object of the resume, or nil when it is missing or not an object.
func (r Resume) Meta() map[string]any {
	meta, _ := r["meta"].(map[string]any)
	return meta
}

// ThemeName returns meta.theme when it is a non-empty string.
func (r Resume) ThemeName() string {
	theme, _ := r.Meta()["theme"].(string)
	return strings.TrimSpace(theme)
}

// WithTheme returns a shallow copy of the resume with meta.theme set to name.
// The receiver is left untouched.
func (r Resume) WithTheme(name string) Resume {
	out := make(Resume, len(r)+1)
	for k, v := range r {
		out[k] = v
	}

	meta := make(map[string]any, len(r.Meta())+1)
	for k, v := range r.Meta() {
		meta[k] = v
	}
	meta["theme"] = name
	out["meta"] = meta

	return out
}

// LoadResume reads and parses a resume document from path.
// Read errors are returned unchanged so callers can match fs errors;
// malformed content is reported as a *ParseError.
func LoadResume(path string) (Resume, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseResume(content, filepath.Ext(path))
}

// ParseResume decodes resume content. YAML is selected by a ".yaml" or ".yml"
// extension and converted to JSON first, everything else is decoded as JSON.
func ParseResume(content []byte, ext string) (Resume, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		converted, err := yaml.YAMLToJSON(content)
		if err != nil {
			return nil, &ParseError{
				Message: "failed to convert YAML to JSON",
				Cause:   err,
			}
		}
		content = converted
	}

	var resume Resume
	if err := json.Unmarshal(content, &resume); err != nil {
		return nil, &ParseError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}
	if resume == nil {
		return nil, &ParseError{Message: "document is not a JSON object"}
	}

	return resume, nil
}

// MarshalIndent encodes the resume as indented JSON, the format written by `init`.
func (r Resume) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
