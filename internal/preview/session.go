// Package preview manages the browser tabs used to render a resume: the
// primary tab that holds the rendered document, and an optional preview tab
// showing the exported PDF.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-render/internal/browser"
	"github.com/jonathan/resume-render/internal/observability"
)

// DefaultPDFTimeout bounds a single PDF export.
const DefaultPDFTimeout = 30 * time.Second

// FileSystem is the subset of file operations WriteFiles needs.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	Mkdir(name string, perm fs.FileMode) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

type osFS struct{}

func (osFS) Stat(name string) (fs.FileInfo, error)     { return os.Stat(name) }
func (osFS) Mkdir(name string, perm fs.FileMode) error { return os.Mkdir(name, perm) }
func (osFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// Config is fixed for the lifetime of a Session. Zero values get defaults.
type Config struct {
	PDFTimeout time.Duration
	Printer    *observability.Printer
	Logger     *zap.Logger
	// ErrorPage renders the page shown when a render fails. Defaults to RenderErrorPage.
	ErrorPage func(ErrorView) (string, error)
	FS        FileSystem
}

func (c Config) withDefaults() Config {
	if c.PDFTimeout <= 0 {
		c.PDFTimeout = DefaultPDFTimeout
	}
	if c.Printer == nil {
		c.Printer = observability.NewPrinter(io.Discard)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.ErrorPage == nil {
		c.ErrorPage = RenderErrorPage
	}
	if c.FS == nil {
		c.FS = osFS{}
	}
	return c
}

// Session owns the browser for one CLI invocation.
type Session struct {
	browser  browser.Browser
	cfg      Config
	headless bool

	mu      sync.Mutex
	preview browser.Page
}

// NewSession wraps a launched browser. Headless mode is read once from the launch arguments.
func NewSession(b browser.Browser, cfg Config) *Session {
	return &Session{
		browser:  b,
		cfg:      cfg.withDefaults(),
		headless: browser.IsHeadless(b.Args()),
	}
}

// IsHeadless reports whether the browser has no visible window. All preview UI is disabled when true.
func (s *Session) IsHeadless() bool {
	return s.headless
}

// primaryPage returns the first tab, opening one when the browser has none.
func (s *Session) primaryPage(ctx context.Context) (browser.Page, error) {
	for {
		pages, err := s.browser.Pages(ctx)
		if err != nil {
			return nil, err
		}
		if len(pages) > 0 {
			return pages[0], nil
		}
		if _, err := s.browser.NewPage(ctx); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// Render replaces the primary tab's document with html and waits for it to settle.
func (s *Session) Render(ctx context.Context, html string) error {
	page, err := s.primaryPage(ctx)
	if err != nil {
		return err
	}
	return page.SetContent(ctx, html)
}

// RenderError shows err on the primary tab. It does nothing in headless mode.
func (s *Session) RenderError(ctx context.Context, err error) error {
	if s.headless || err == nil {
		return nil
	}

	html, perr := s.cfg.ErrorPage(NewErrorView(err))
	if perr != nil {
		return fmt.Errorf("failed to render error page: %w", perr)
	}
	return s.Render(ctx, html)
}

// OpenPreview shows url in the preview tab. An open preview tab is brought
// to the front as is; a missing or closed one is replaced by a new tab.
func (s *Session) OpenPreview(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.preview != nil && !s.preview.IsClosed(ctx) {
		return s.preview.BringToFront(ctx)
	}

	page, err := s.browser.NewPage(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(ctx, url); err != nil {
		if cerr := page.Close(ctx); cerr != nil {
			s.cfg.Logger.Debug("failed to close preview tab", zap.Error(cerr))
		}
		return err
	}
	s.preview = page
	return nil
}

// ReloadPreview reloads the preview tab if one is open. Reload failures are logged only.
func (s *Session) ReloadPreview(ctx context.Context) error {
	if s.headless {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.preview == nil || s.preview.IsClosed(ctx) {
		return nil
	}
	if err := s.preview.Reload(ctx); err != nil {
		s.cfg.Logger.Debug("preview reload failed", zap.Error(err))
	}
	return nil
}

// WriteFiles exports the primary tab to <dir>/<name>.html and <dir>/<name>.pdf.
// dir is created (non-recursively) when missing. Both exports run concurrently
// and are awaited; the first error is returned. A PDF timeout is logged and ignored.
func (s *Session) WriteFiles(ctx context.Context, dir, name string) error {
	if _, err := s.cfg.FS.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := s.cfg.FS.Mkdir(dir, 0o755); err != nil {
			return err
		}
	}

	page, err := s.primaryPage(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		html, err := page.Content(gctx)
		if err != nil {
			return err
		}
		return s.cfg.FS.WriteFile(filepath.Join(dir, name+".html"), []byte(html), 0o644)
	})

	g.Go(func() error {
		pdfCtx, cancel := context.WithTimeout(gctx, s.cfg.PDFTimeout)
		defer cancel()

		pdf, err := page.PDF(pdfCtx, browser.A4())
		if errors.Is(err, browser.ErrTimeout) {
			s.cfg.Printer.Warn(fmt.Sprintf("PDF export timed out after %s, %s.pdf was not updated", s.cfg.PDFTimeout, name))
			s.cfg.Logger.Warn("pdf export timed out", zap.String("name", name), zap.Error(err))
			return nil
		}
		if err != nil {
			return err
		}
		return s.cfg.FS.WriteFile(filepath.Join(dir, name+".pdf"), pdf, 0o644)
	})

	return g.Wait()
}

// Close shuts the browser down.
func (s *Session) Close() error {
	return s.browser.Close()
}
