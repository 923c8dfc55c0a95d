package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// chromedpBrowser keeps one chromedp context per tab, keyed by target ID.
type chromedpBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	args        []string

	mu    sync.Mutex
	tabs  map[target.ID]*chromedpPage
	order []target.ID
}

func launchChromedp(ctx context.Context, opts Options) (*chromedpBrowser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	args := []string{"--disable-dev-shm-usage"}
	if opts.Headless {
		args = append(args, "--headless", "--disable-gpu")
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
		args = append(args, "--no-sandbox")
	}
	if opts.Bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.Bin))
	}

	// The browser outlives the launch context; Close tears it down.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// First Run starts the process and opens the initial tab
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, wrap(ErrBrowserConnect, err)
	}

	b := &chromedpBrowser{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		args:        args,
		tabs:        make(map[target.ID]*chromedpPage),
	}
	if c := chromedp.FromContext(browserCtx); c != nil && c.Target != nil {
		b.track(&chromedpPage{browser: b, id: c.Target.TargetID, ctx: browserCtx})
	}
	return b, nil
}

func (b *chromedpBrowser) track(p *chromedpPage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tabs[p.id]; !ok {
		b.order = append(b.order, p.id)
	}
	b.tabs[p.id] = p
}

// targets returns the IDs of open page targets.
func (b *chromedpBrowser) targets(ctx context.Context) (map[target.ID]bool, []target.ID, error) {
	runCtx, cancel := withCaller(b.ctx, ctx)
	defer cancel()
	infos, err := chromedp.Targets(runCtx)
	if err != nil {
		return nil, nil, err
	}
	open := make(map[target.ID]bool, len(infos))
	var ids []target.ID
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		open[info.TargetID] = true
		ids = append(ids, info.TargetID)
	}
	return open, ids, nil
}

func (b *chromedpBrowser) Pages(ctx context.Context) ([]Page, error) {
	open, ids, err := b.targets(ctx)
	if err != nil {
		return nil, wrap(ErrBrowserConnect, err)
	}

	// Attach to tabs we have not seen yet (opened by the user, for instance)
	for _, id := range ids {
		b.mu.Lock()
		_, known := b.tabs[id]
		b.mu.Unlock()
		if known {
			continue
		}
		tabCtx, cancel := chromedp.NewContext(b.ctx, chromedp.WithTargetID(id))
		// Attach with the tab context itself; a shorter-lived context would detach it again.
		if err := chromedp.Run(tabCtx); err != nil {
			cancel()
			continue
		}
		b.track(&chromedpPage{browser: b, id: id, ctx: tabCtx, cancel: cancel})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	pages := make([]Page, 0, len(b.order))
	for _, id := range b.order {
		if open[id] {
			pages = append(pages, b.tabs[id])
		}
	}
	return pages, nil
}

func (b *chromedpBrowser) NewPage(ctx context.Context) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	if err := ctx.Err(); err != nil {
		cancel()
		return nil, wrap(ErrPageCreate, err)
	}
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, wrap(ErrPageCreate, err)
	}
	c := chromedp.FromContext(tabCtx)
	if c == nil || c.Target == nil {
		cancel()
		return nil, fmt.Errorf("%w: no target attached", ErrPageCreate)
	}
	p := &chromedpPage{browser: b, id: c.Target.TargetID, ctx: tabCtx, cancel: cancel}
	b.track(p)
	return p, nil
}

func (b *chromedpBrowser) Args() []string {
	return append([]string(nil), b.args...)
}

func (b *chromedpBrowser) Close() error {
	if b.ctx.Err() != nil {
		return nil
	}
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type chromedpPage struct {
	browser *chromedpBrowser
	id      target.ID
	ctx     context.Context
	cancel  context.CancelFunc // nil for the initial tab, which shares the browser context

	mu      sync.Mutex
	exposed map[string]bool
}

// withCaller derives a context from the tab context that is also cancelled
// when the caller's context is done, and carries the caller's deadline.
func withCaller(tabCtx, callCtx context.Context) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := callCtx.Deadline(); ok {
		ctx, cancel = context.WithDeadline(tabCtx, deadline)
	} else {
		ctx, cancel = context.WithCancel(tabCtx)
	}
	stop := context.AfterFunc(callCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (p *chromedpPage) run(ctx context.Context, sentinel error, actions ...chromedp.Action) error {
	runCtx, cancel := withCaller(p.ctx, ctx)
	defer cancel()
	return wrap(sentinel, chromedp.Run(runCtx, actions...))
}

func (p *chromedpPage) SetContent(ctx context.Context, html string) error {
	var settled bool
	return p.run(ctx, ErrPageLoad,
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Poll(invoke(settledFunc), &settled, chromedp.WithPollingInterval(50*time.Millisecond)),
	)
}

func (p *chromedpPage) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, ErrPageLoad, chromedp.Evaluate(invoke(contentFunc), &html)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromedpPage) PDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, ErrPDFGeneration, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPrintBackground(opts.PrintBackground).
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, ErrPageLoad, chromedp.Navigate(url))
}

func (p *chromedpPage) BringToFront(ctx context.Context) error {
	return p.run(ctx, ErrPageLoad, page.BringToFront())
}

func (p *chromedpPage) Reload(ctx context.Context) error {
	return p.run(ctx, ErrPageLoad, chromedp.Reload())
}

func (p *chromedpPage) IsClosed(ctx context.Context) bool {
	if p.ctx.Err() != nil {
		return true
	}
	open, _, err := p.browser.targets(ctx)
	if err != nil {
		return true
	}
	return !open[p.id]
}

func (p *chromedpPage) Close(ctx context.Context) error {
	if p.ctx.Err() != nil {
		return nil
	}
	err := p.run(ctx, ErrPageLoad, page.Close())
	if p.cancel != nil {
		p.cancel()
	}
	return err
}

func (p *chromedpPage) Evaluate(ctx context.Context, fn string) error {
	return p.run(ctx, ErrPageLoad, chromedp.Evaluate(invoke(fn), nil))
}

func (p *chromedpPage) Expose(ctx context.Context, name string, fn func()) error {
	p.mu.Lock()
	if p.exposed[name] {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyExposed, name)
	}
	if p.exposed == nil {
		p.exposed = make(map[string]bool)
	}
	p.exposed[name] = true
	p.mu.Unlock()

	if err := p.run(ctx, ErrPageLoad, runtime.AddBinding(name)); err != nil {
		p.mu.Lock()
		delete(p.exposed, name)
		p.mu.Unlock()
		return err
	}

	// One listener per name, installed only once the binding exists
	chromedp.ListenTarget(p.ctx, func(ev interface{}) {
		if called, ok := ev.(*runtime.EventBindingCalled); ok && called.Name == name {
			// Listeners must not block the event loop
			go fn()
		}
	})
	return nil
}
