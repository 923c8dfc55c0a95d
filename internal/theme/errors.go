package theme

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Resolver that does not know the requested name.
var ErrNotFound = errors.New("theme not found")

// NoThemeError is returned when neither an explicit theme nor meta.theme is set.
type NoThemeError struct{}

func (e *NoThemeError) Error() string {
	return `No theme name specified. Use "--theme" option or set "meta.theme" in resume JSON file.`
}

// NotFoundError is returned when a named theme cannot be resolved or fails to load.
// The cause is available through Unwrap but is kept out of the message.
type NotFoundError struct {
	Name  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Could not load theme %q. Is it installed?", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// TemplateError represents an error parsing or executing a built-in theme template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a theme that loaded but could not produce HTML
type RenderError struct {
	Theme   string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: theme %q: %s: %v", e.Theme, e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: theme %q: %s", e.Theme, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
