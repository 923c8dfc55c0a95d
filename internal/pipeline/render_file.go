package pipeline

import (
	"context"

	"github.com/jonathan/resume-render/internal/browser"
	"github.com/jonathan/resume-render/internal/preview"
	"github.com/jonathan/resume-render/internal/schemas"
	"github.com/jonathan/resume-render/internal/theme"
)

// FileOptions configures RenderFile.
type FileOptions struct {
	OutDir    string
	Theme     string
	ThemesDir string
	// Browser selects the driver; Headless is always forced on.
	Browser browser.Options
}

// RenderFile renders file once in a headless browser, without console output,
// and closes the browser afterwards.
func RenderFile(ctx context.Context, file string, opts FileOptions) (*Result, error) {
	launch := opts.Browser
	launch.Headless = true

	validator, err := schemas.NewValidator()
	if err != nil {
		return nil, err
	}

	b, err := browser.Launch(ctx, launch)
	if err != nil {
		return nil, err
	}
	session := preview.NewSession(b, preview.Config{})

	r, err := New(Options{File: file, OutDir: opts.OutDir, Theme: opts.Theme},
		session, theme.DefaultRegistry(opts.ThemesDir), validator, NopObserver{})
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	result, err := r.Render(ctx)
	if err != nil {
		// Render only closes the session on success
		_ = session.Close()
		return nil, err
	}
	return result, nil
}
