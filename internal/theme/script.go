package theme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/jonathan/resume-render/internal/types"
)

// ScriptFile is the entry file of a script theme: <themesDir>/<name>/theme.go.
// It must be package main and define
//
//	func Render(resume map[string]interface{}) (string, error)
const ScriptFile = "theme.go"

// ScriptResolver loads Go source themes from a directory and interprets them.
type ScriptResolver struct {
	dir string
}

// NewScriptResolver returns a resolver for themes under dir.
func NewScriptResolver(dir string) *ScriptResolver {
	return &ScriptResolver{dir: dir}
}

func (r *ScriptResolver) Resolve(_ context.Context, name string) (Theme, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	path := filepath.Join(r.dir, name, ScriptFile)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read theme script %s: %w", path, err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, fmt.Errorf("theme script evaluation failed: %w", err)
	}

	return &scriptTheme{name: name, interp: i}, nil
}

func (r *ScriptResolver) Names() []string {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(r.dir, e.Name(), ScriptFile)); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

type scriptTheme struct {
	name string

	mu     sync.Mutex // the interpreter is not safe for concurrent use
	interp *interp.Interpreter
}

func (t *scriptTheme) Name() string {
	return t.name
}

func (t *scriptTheme) Render(ctx context.Context, doc types.Resume) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, err := t.interp.Eval("main.Render")
	if err != nil {
		return "", &RenderError{Theme: t.name, Message: "Render function not found", Cause: err}
	}

	render, ok := v.Interface().(func(map[string]interface{}) (string, error))
	if !ok {
		return "", &RenderError{
			Theme:   t.name,
			Message: "Render has incorrect signature (expected: func(map[string]interface{}) (string, error))",
		}
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: &RenderError{Theme: t.name, Message: fmt.Sprintf("panic: %v", r)}}
			}
		}()
		html, err := render(map[string]interface{}(doc))
		done <- result{html: html, err: err}
	}()

	select {
	case res := <-done:
		return res.html, res.err
	case <-ctx.Done():
		return "", &RenderError{Theme: t.name, Message: "render cancelled", Cause: ctx.Err()}
	}
}
