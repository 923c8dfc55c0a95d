package theme

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-render/internal/types"
)

type fakeTheme struct {
	name string
}

func (t *fakeTheme) Name() string { return t.name }

func (t *fakeTheme) Render(context.Context, types.Resume) (string, error) {
	return "<p>" + t.name + "</p>", nil
}

type fakeResolver struct {
	themes    map[string]Theme
	failures  map[string]error
	requested []string
}

func (r *fakeResolver) Resolve(_ context.Context, name string) (Theme, error) {
	r.requested = append(r.requested, name)
	if err, ok := r.failures[name]; ok {
		return nil, err
	}
	if t, ok := r.themes[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (r *fakeResolver) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	return names
}

func newFakeResolver(names ...string) *fakeResolver {
	r := &fakeResolver{themes: map[string]Theme{}, failures: map[string]error{}}
	for _, n := range names {
		r.themes[n] = &fakeTheme{name: n}
	}
	return r
}

func TestLoad_ExplicitWinsOverMeta(t *testing.T) {
	reg := NewRegistry(newFakeResolver("even", "flat"))
	doc := types.Resume{"meta": map[string]any{"theme": "flat"}}

	th, err := reg.Load(context.Background(), "even", doc)
	require.NoError(t, err)
	assert.Equal(t, "even", th.Name())
}

func TestLoad_FallsBackToMeta(t *testing.T) {
	reg := NewRegistry(newFakeResolver("even", "flat"))
	doc := types.Resume{"meta": map[string]any{"theme": "flat"}}

	th, err := reg.Load(context.Background(), "", doc)
	require.NoError(t, err)
	assert.Equal(t, "flat", th.Name())
}

func TestLoad_NoTheme(t *testing.T) {
	resolver := newFakeResolver("even")
	reg := NewRegistry(resolver)

	th, err := reg.Load(context.Background(), "", types.Resume{})
	assert.Nil(t, th)

	var noTheme *NoThemeError
	require.ErrorAs(t, err, &noTheme)
	assert.Equal(t, `No theme name specified. Use "--theme" option or set "meta.theme" in resume JSON file.`, err.Error())
	assert.Empty(t, resolver.requested, "no resolution should be attempted")
}

func TestLoad_NotFound(t *testing.T) {
	reg := NewRegistry(newFakeResolver("even"), newFakeResolver("flat"))

	th, err := reg.Load(context.Background(), "does-not-exist", types.Resume{})
	assert.Nil(t, th)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "does-not-exist", notFound.Name)
	assert.Equal(t, `Could not load theme "does-not-exist". Is it installed?`, err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_LoadFailureHidesCauseFromMessage(t *testing.T) {
	resolver := newFakeResolver()
	cause := errors.New("undefined: strings.Nope")
	resolver.failures["broken"] = cause
	next := newFakeResolver("broken")
	reg := NewRegistry(resolver, next)

	_, err := reg.Load(context.Background(), "broken", types.Resume{})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "strings.Nope")
	assert.Empty(t, next.requested, "a load failure should stop resolution")
}

func TestLoad_StripsPackagePrefix(t *testing.T) {
	resolver := newFakeResolver("even")
	reg := NewRegistry(resolver)

	th, err := reg.Load(context.Background(), "jsonresume-theme-even", types.Resume{})
	require.NoError(t, err)
	assert.Equal(t, "even", th.Name())
	assert.Equal(t, []string{"even"}, resolver.requested)
}

func TestLoad_ResolverOrder(t *testing.T) {
	first := newFakeResolver("even")
	second := newFakeResolver("even", "flat")
	reg := NewRegistry(first, second)

	_, err := reg.Load(context.Background(), "even", types.Resume{})
	require.NoError(t, err)
	assert.Empty(t, second.requested)

	th, err := reg.Load(context.Background(), "flat", types.Resume{})
	require.NoError(t, err)
	assert.Equal(t, "flat", th.Name())
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry(newFakeResolver("flat", "even"), newFakeResolver("even", "actual"))
	assert.Equal(t, []string{"actual", "even", "flat"}, reg.Names())
}

func TestDefaultRegistry_Builtins(t *testing.T) {
	reg := DefaultRegistry("")

	th, err := reg.Load(context.Background(), "basic", types.Resume{})
	require.NoError(t, err)
	assert.Equal(t, "basic", th.Name())
	assert.Contains(t, reg.Names(), "compact")
}

func TestValidName(t *testing.T) {
	assert.True(t, validName("even"))
	assert.False(t, validName(""))
	assert.False(t, validName(".."))
	assert.False(t, validName("../etc"))
	assert.False(t, validName(`a\b`))
}
