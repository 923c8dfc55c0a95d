package browser

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	args     []string

	mu    sync.Mutex
	pages map[proto.TargetTargetID]*rodPage
	order []proto.TargetTargetID
}

func launchRod(ctx context.Context, opts Options) (*rodBrowser, error) {
	l := launcher.New().
		Context(context.WithoutCancel(ctx)).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	args := l.FormatArgs()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, wrap(ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, wrap(ErrBrowserConnect, err)
	}

	return &rodBrowser{
		browser:  b,
		launcher: l,
		args:     args,
		pages:    make(map[proto.TargetTargetID]*rodPage),
	}, nil
}

func (b *rodBrowser) wrapPage(p *rod.Page) *rodPage {
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.pages[p.TargetID]; ok {
		return existing
	}
	// Pages are stored detached from the lookup context; each call re-binds its own.
	rp := &rodPage{page: p.Context(context.Background())}
	b.pages[p.TargetID] = rp
	b.order = append(b.order, p.TargetID)
	return rp
}

func (b *rodBrowser) Pages(ctx context.Context) ([]Page, error) {
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return nil, wrap(ErrBrowserConnect, err)
	}

	open := make(map[proto.TargetTargetID]bool, len(pages))
	for _, p := range pages {
		open[p.TargetID] = true
		b.wrapPage(p)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]Page, 0, len(open))
	for _, id := range b.order {
		if open[id] {
			result = append(result, b.pages[id])
		}
	}
	return result, nil
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, wrap(ErrPageCreate, err)
	}
	return b.wrapPage(p), nil
}

func (b *rodBrowser) Args() []string {
	return append([]string(nil), b.args...)
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type rodPage struct {
	page *rod.Page

	mu      sync.Mutex
	exposed map[string]bool
}

func (p *rodPage) SetContent(ctx context.Context, html string) error {
	page := p.page.Context(ctx)
	if err := page.SetDocumentContent(html); err != nil {
		return wrap(ErrPageLoad, err)
	}
	return wrap(ErrPageLoad, page.Wait(rod.Eval(settledFunc)))
}

func (p *rodPage) Content(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(contentFunc)
	if err != nil {
		return "", wrap(ErrPageLoad, err)
	}
	return res.Value.Str(), nil
}

func (p *rodPage) PDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	r, err := p.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground: opts.PrintBackground,
		PaperWidth:      gson.Num(opts.PaperWidth),
		PaperHeight:     gson.Num(opts.PaperHeight),
	})
	if err != nil {
		return nil, wrap(ErrPDFGeneration, err)
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, wrap(ErrPDFGeneration, err)
	}
	return buf, nil
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	return wrap(ErrPageLoad, p.page.Context(ctx).Navigate(url))
}

func (p *rodPage) BringToFront(ctx context.Context) error {
	_, err := p.page.Context(ctx).Activate()
	return wrap(ErrPageLoad, err)
}

func (p *rodPage) Reload(ctx context.Context) error {
	return wrap(ErrPageLoad, p.page.Context(ctx).Reload())
}

func (p *rodPage) IsClosed(ctx context.Context) bool {
	_, err := p.page.Context(ctx).Info()
	return err != nil
}

func (p *rodPage) Close(ctx context.Context) error {
	return wrap(ErrPageLoad, p.page.Context(ctx).Close())
}

func (p *rodPage) Evaluate(ctx context.Context, fn string) error {
	_, err := p.page.Context(ctx).Evaluate(rod.Eval(fn))
	return wrap(ErrPageLoad, err)
}

func (p *rodPage) Expose(ctx context.Context, name string, fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exposed[name] {
		return fmt.Errorf("%w: %s", ErrAlreadyExposed, name)
	}

	// The binding listener lives as long as the page, not the call.
	_, err := p.page.Context(context.WithoutCancel(ctx)).Expose(name, func(gson.JSON) (interface{}, error) {
		go fn()
		return nil, nil
	})
	if err != nil {
		return wrap(ErrPageLoad, err)
	}

	if p.exposed == nil {
		p.exposed = make(map[string]bool)
	}
	p.exposed[name] = true
	return nil
}
