package theme

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-render/internal/types"
)

func writeExecutable(t *testing.T, dir, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script themes are not supported on windows")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func fakeExecResolver(dir string) *ExecResolver {
	return &ExecResolver{
		lookPath: func(file string) (string, error) {
			path := filepath.Join(dir, file)
			if _, err := os.Stat(path); err != nil {
				return "", errors.New("executable file not found in $PATH")
			}
			return path, nil
		},
		path: func() string { return dir },
	}
}

func TestExec_Render(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, Prefix+"echo", "#!/bin/sh\nprintf '<pre>'\ncat\nprintf '</pre>'\n")

	th, err := fakeExecResolver(dir).Resolve(context.Background(), "echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", th.Name())

	html, err := th.Render(context.Background(), types.Resume{"basics": map[string]any{"name": "Richard"}})
	require.NoError(t, err)
	assert.Equal(t, `<pre>{"basics":{"name":"Richard"}}</pre>`, html)
}

func TestExec_RenderFailure(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, Prefix+"fail", "#!/bin/sh\necho 'missing work section' >&2\nexit 3\n")

	th, err := fakeExecResolver(dir).Resolve(context.Background(), "fail")
	require.NoError(t, err)

	_, err = th.Render(context.Background(), types.Resume{})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "missing work section", renderErr.Message)
}

func TestExec_NotFound(t *testing.T) {
	_, err := fakeExecResolver(t.TempDir()).Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExec_Names(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, Prefix+"even", "#!/bin/sh\n")
	writeExecutable(t, dir, Prefix+"actual", "#!/bin/sh\n")
	writeExecutable(t, dir, "unrelated", "#!/bin/sh\n")

	assert.Equal(t, []string{"actual", "even"}, fakeExecResolver(dir).Names())
}
