package watch

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-render/internal/observability"
	"github.com/jonathan/resume-render/internal/pipeline"
)

// Renderer runs one render.
type Renderer interface {
	Render(ctx context.Context) (*pipeline.Result, error)
}

// Preview is refreshed after each successful render.
type Preview interface {
	ReloadPreview(ctx context.Context) error
	AddMenu(ctx context.Context, openURL string) error
}

// Loop re-renders on every change event. Events are handled one at a time,
// so a change that arrives mid-render waits for that render to finish.
type Loop struct {
	source   Source
	renderer Renderer
	preview  Preview
	openURL  string
	printer  *observability.Printer
	logger   *zap.Logger
	now      func() time.Time
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithPrinter sets the console printer.
func WithPrinter(p *observability.Printer) LoopOption {
	return func(l *Loop) { l.printer = p }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// NewLoop creates a loop. openURL is where the preview menu points.
func NewLoop(source Source, renderer Renderer, preview Preview, openURL string, opts ...LoopOption) *Loop {
	l := &Loop{
		source:   source,
		renderer: renderer,
		preview:  preview,
		openURL:  openURL,
		printer:  observability.NewPrinter(io.Discard),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Run processes events until ctx is cancelled or the source closes.
// Render failures are logged and never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	events := l.source.Events()
	errs := l.source.Errors()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			l.handle(ctx, ev)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.printer.Warn("watch error:", err)
			l.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (l *Loop) handle(ctx context.Context, ev Event) {
	if ev.Name == "" {
		return
	}

	l.printer.Log(fmt.Sprintf("[%s] %s changed", l.now().Format(time.RFC3339), ev.Name))
	l.logger.Debug("file changed", zap.String("name", ev.Name), zap.String("op", ev.Op))

	if _, err := l.renderer.Render(ctx); err != nil {
		l.logger.Warn("re-render failed", zap.Error(err))
		return
	}

	// Neither refresh step cancels the other
	var g errgroup.Group
	g.Go(func() error { return l.preview.ReloadPreview(ctx) })
	g.Go(func() error { return l.preview.AddMenu(ctx, l.openURL) })
	if err := g.Wait(); err != nil {
		l.printer.Warn("failed to refresh preview:", err)
		l.logger.Warn("preview refresh failed", zap.Error(err))
	}
}
