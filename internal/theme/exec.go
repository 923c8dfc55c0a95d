package theme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/resume-render/internal/types"
)

// ExecResolver finds themes installed as executables named Prefix+name.
// The resume is written to the executable's stdin as JSON and HTML is read from stdout.
type ExecResolver struct {
	lookPath func(string) (string, error)
	path     func() string
}

// NewExecResolver returns a resolver that searches PATH.
func NewExecResolver() *ExecResolver {
	return &ExecResolver{
		lookPath: exec.LookPath,
		path:     func() string { return os.Getenv("PATH") },
	}
}

func (r *ExecResolver) Resolve(_ context.Context, name string) (Theme, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	bin, err := r.lookPath(Prefix + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return &execTheme{name: name, bin: bin}, nil
}

func (r *ExecResolver) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, dir := range filepath.SplitList(r.path()) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name, ok := strings.CutPrefix(e.Name(), Prefix)
			if !ok || name == "" || e.IsDir() || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

type execTheme struct {
	name string
	bin  string
}

func (t *execTheme) Name() string {
	return t.name
}

func (t *execTheme) Render(ctx context.Context, doc types.Resume) (string, error) {
	input, err := json.Marshal(doc)
	if err != nil {
		return "", &RenderError{Theme: t.name, Message: "failed to encode resume", Cause: err}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.bin)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "theme executable failed"
		}
		return "", &RenderError{Theme: t.name, Message: msg, Cause: err}
	}

	return stdout.String(), nil
}
