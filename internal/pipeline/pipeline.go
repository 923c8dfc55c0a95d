// Package pipeline runs a single resume render: load, validate, theme, render
// in the browser and export to HTML and PDF.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-render/internal/observability"
	"github.com/jonathan/resume-render/internal/preview"
	"github.com/jonathan/resume-render/internal/theme"
	"github.com/jonathan/resume-render/internal/types"
)

// Observer is notified before each step runs.
type Observer interface {
	OnStep(index, total int, description string)
}

// NopObserver ignores progress. Use it when rendering as a library.
type NopObserver struct{}

func (NopObserver) OnStep(int, int, string) {}

// Session is the browser side of a render.
type Session interface {
	Render(ctx context.Context, html string) error
	RenderError(ctx context.Context, err error) error
	WriteFiles(ctx context.Context, dir, name string) error
	Close() error
}

// ThemeLoader resolves the theme for a document.
type ThemeLoader interface {
	Load(ctx context.Context, explicit string, doc types.Resume) (theme.Theme, error)
}

// DocumentValidator checks a document against the resume schema.
type DocumentValidator interface {
	Validate(doc types.Resume) error
}

// Options holds configuration for a render
type Options struct {
	File   string // resume document path
	OutDir string // directory for <name>.html and <name>.pdf
	Theme  string // overrides meta.theme when set

	// KeepOpen leaves the session open after a successful render (watch mode).
	KeepOpen bool
	// Interactive prints errors, success and the written files through the printer.
	Interactive bool
}

// Result describes the files written by a successful render
type Result struct {
	RunID    uuid.UUID
	HTMLPath string
	PDFPath  string
}

// Renderer runs the render steps for one resume file. It may be run repeatedly.
type Renderer struct {
	opts      Options
	name      string
	session   Session
	themes    ThemeLoader
	validator DocumentValidator
	observer  Observer
	printer   *observability.Printer
	logger    *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPrinter sets the console printer used in interactive mode.
func WithPrinter(p *observability.Printer) Option {
	return func(r *Renderer) { r.printer = p }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New creates a Renderer. It fails when no output name can be derived from opts.File.
func New(opts Options, session Session, themes ThemeLoader, validator DocumentValidator, observer Observer, options ...Option) (*Renderer, error) {
	name, err := Filename(opts.File)
	if err != nil {
		return nil, err
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if observer == nil {
		observer = NopObserver{}
	}

	r := &Renderer{
		opts:      opts,
		name:      name,
		session:   session,
		themes:    themes,
		validator: validator,
		observer:  observer,
		printer:   observability.NewPrinter(io.Discard),
		logger:    zap.NewNop(),
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// Name is the base name of the output files.
func (r *Renderer) Name() string {
	return r.name
}

const totalSteps = 6

// Render runs every step once. On failure the error is shown in the browser
// (unless headless) and returned unchanged.
func (r *Renderer) Render(ctx context.Context) (*Result, error) {
	runID := uuid.New()
	log := r.logger.With(zap.String("run_id", runID.String()), zap.String("file", r.opts.File))
	start := time.Now()

	if err := r.run(ctx); err != nil {
		if rerr := r.session.RenderError(ctx, err); rerr != nil {
			log.Debug("failed to show error page", zap.Error(rerr))
		}
		if r.opts.Interactive {
			r.printer.Error(err)
		}
		log.Error("render failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	result := &Result{
		RunID:    runID,
		HTMLPath: filepath.Join(r.opts.OutDir, r.name+".html"),
		PDFPath:  filepath.Join(r.opts.OutDir, r.name+".pdf"),
	}
	log.Info("render finished",
		zap.String("html", result.HTMLPath),
		zap.String("pdf", result.PDFPath),
		zap.Duration("duration", time.Since(start)))

	if r.opts.Interactive {
		r.printer.Success("Resume rendered")
		r.printer.PrintFilesWritten([]observability.OutputFile{
			{Kind: "HTML", Path: absPath(result.HTMLPath)},
			{Kind: "PDF", Path: absPath(result.PDFPath)},
		})
	}

	if !r.opts.KeepOpen {
		if err := r.session.Close(); err != nil {
			log.Warn("failed to close browser", zap.Error(err))
		}
	}

	return result, nil
}

func (r *Renderer) run(ctx context.Context) error {
	r.observer.OnStep(1, totalSteps, "📁 Loading "+r.opts.File)
	doc, err := types.LoadResume(r.opts.File)
	if err != nil {
		return err
	}

	r.observer.OnStep(2, totalSteps, "🔎 Validating resume")
	if err := r.validator.Validate(doc); err != nil {
		return err
	}

	r.observer.OnStep(3, totalSteps, "✨ Loading theme")
	th, err := r.themes.Load(ctx, r.opts.Theme, doc)
	if err != nil {
		return err
	}

	r.observer.OnStep(4, totalSteps, "📎 Rendering resume")
	html, err := renderTheme(ctx, th, doc)
	if err != nil {
		return err
	}

	r.observer.OnStep(5, totalSteps, "🌐 Rendering browser page")
	if err := r.session.Render(ctx, html); err != nil {
		return err
	}

	r.observer.OnStep(6, totalSteps, "💾 Writing files")
	return r.session.WriteFiles(ctx, r.opts.OutDir, r.name)
}

// renderTheme calls the theme, turning a panic into an error.
func renderTheme(ctx context.Context, th theme.Theme, doc types.Resume) (html string, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = preview.ToError(v)
		}
	}()
	return th.Render(ctx, doc)
}

// Filename returns the base name of path without its extension.
func Filename(path string) (string, error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if path == "" || name == "" || name == "." || strings.ContainsRune(name, filepath.Separator) {
		return "", fmt.Errorf("could not get filename from path: %s", path)
	}
	return name, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
