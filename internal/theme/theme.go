// Package theme resolves resume themes by name and renders resumes to HTML.
//
// Three kinds of theme are supported, tried in order:
//   - built-in html/template themes compiled into the binary
//   - script themes, Go source interpreted at runtime from a themes directory
//   - executable themes named "jsonresume-theme-<name>" found on PATH
package theme

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jonathan/resume-render/internal/types"
)

// Prefix is the conventional package prefix for JSON Resume themes.
const Prefix = "jsonresume-theme-"

// Theme renders a resume document to an HTML string.
type Theme interface {
	Name() string
	Render(ctx context.Context, doc types.Resume) (string, error)
}

// Resolver produces a Theme for a name. It returns an error wrapping
// ErrNotFound when it does not know the name; any other error means the
// theme exists but failed to load.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Theme, error)
	Names() []string
}

// Registry tries each resolver in order.
type Registry struct {
	resolvers []Resolver
}

// NewRegistry creates a registry from the given resolvers.
func NewRegistry(resolvers ...Resolver) *Registry {
	return &Registry{resolvers: resolvers}
}

// DefaultRegistry returns the built-in themes, script themes under themesDir
// (skipped when empty) and executable themes on PATH.
func DefaultRegistry(themesDir string) *Registry {
	resolvers := []Resolver{NewBuiltinResolver()}
	if themesDir != "" {
		resolvers = append(resolvers, NewScriptResolver(themesDir))
	}
	resolvers = append(resolvers, NewExecResolver())
	return NewRegistry(resolvers...)
}

// Load resolves the theme to use for doc. An explicit name wins over meta.theme.
func (r *Registry) Load(ctx context.Context, explicit string, doc types.Resume) (Theme, error) {
	name := strings.TrimSpace(explicit)
	if name == "" {
		name = doc.ThemeName()
	}
	if name == "" {
		return nil, &NoThemeError{}
	}

	short := strings.TrimPrefix(name, Prefix)
	for _, resolver := range r.resolvers {
		t, err := resolver.Resolve(ctx, short)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Name: name, Cause: err}
		}
	}

	return nil, &NotFoundError{Name: name, Cause: ErrNotFound}
}

// Names returns the sorted, de-duplicated names every resolver knows about.
func (r *Registry) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, resolver := range r.resolvers {
		for _, name := range resolver.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// validName rejects names that could escape a themes directory.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
