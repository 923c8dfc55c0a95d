package theme

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/jonathan/resume-render/internal/types"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const templateExt = ".html.tmpl"

// BuiltinResolver serves the html/template themes compiled into the binary.
type BuiltinResolver struct {
	fsys fs.FS
}

// NewBuiltinResolver returns a resolver over the embedded templates.
func NewBuiltinResolver() *BuiltinResolver {
	sub, _ := fs.Sub(templateFS, "templates")
	return &BuiltinResolver{fsys: sub}
}

func (r *BuiltinResolver) Resolve(_ context.Context, name string) (Theme, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	content, err := fs.ReadFile(r.fsys, name+templateExt)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Message: fmt.Sprintf("failed to parse template %q", name), Cause: err}
	}

	return &builtinTheme{name: name, tmpl: tmpl}, nil
}

func (r *BuiltinResolver) Names() []string {
	matches, _ := fs.Glob(r.fsys, "*"+templateExt)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), templateExt))
	}
	sort.Strings(names)
	return names
}

type builtinTheme struct {
	name string
	tmpl *template.Template
}

func (t *builtinTheme) Name() string {
	return t.name
}

func (t *builtinTheme) Render(_ context.Context, doc types.Resume) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, map[string]any(doc)); err != nil {
		return "", &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown":  markdown,
		"join":      join,
		"date":      formatDate,
		"dateRange": dateRange,
	}
}

// markdown converts a summary field to HTML. Raw HTML in the input is not passed through.
func markdown(v any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(toString(v)), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func join(sep string, v any) string {
	items, ok := v.([]any)
	if !ok {
		return toString(v)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s := toString(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

var dateLayouts = []struct {
	parse  string
	format string
}{
	{"2006-01-02", "Jan 2006"},
	{"2006-01", "Jan 2006"},
	{"2006", "2006"},
}

// formatDate renders ISO 8601 dates as "Jan 2006"; anything else is returned as is.
func formatDate(v any) string {
	s := strings.TrimSpace(toString(v))
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout.parse, s); err == nil {
			return d.Format(layout.format)
		}
	}
	return s
}

// dateRange formats "start - end", with a missing end shown as "Present".
func dateRange(start, end any) string {
	from, to := formatDate(start), formatDate(end)
	switch {
	case from == "" && to == "":
		return ""
	case to == "":
		return from + " - Present"
	case from == "":
		return to
	default:
		return from + " - " + to
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
