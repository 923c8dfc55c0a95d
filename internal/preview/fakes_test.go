package preview

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/jonathan/resume-render/internal/browser"
)

type fakeBrowser struct {
	mu       sync.Mutex
	args     []string
	pages    []*fakePage
	newPages int
	closed   int
	// emptyPages makes Pages report no tabs this many times before returning pages
	emptyPages int
	// navigateErrs is handed to the next page NewPage creates
	navigateErrs []error
}

func newFakeBrowser(headless bool) *fakeBrowser {
	b := &fakeBrowser{}
	if headless {
		b.args = []string{"--headless"}
	}
	return b
}

func (b *fakeBrowser) Pages(context.Context) ([]browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.emptyPages > 0 {
		b.emptyPages--
		return nil, nil
	}
	var pages []browser.Page
	for _, p := range b.pages {
		if !p.isClosed() {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

func (b *fakeBrowser) NewPage(context.Context) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.newPages++
	p := &fakePage{id: len(b.pages), navigateErrs: b.navigateErrs}
	b.navigateErrs = nil
	b.pages = append(b.pages, p)
	return p, nil
}

func (b *fakeBrowser) Args() []string { return b.args }

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	return nil
}

func (b *fakeBrowser) newPageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.newPages
}

type fakePage struct {
	id int

	mu          sync.Mutex
	content     string
	closed      bool
	navigated   []string
	fronted     int
	reloads     int
	evaluated   []string
	exposed     map[string]func()
	setContents int

	contentErr error
	pdfErr     error
	reloadErr  error
	pdfDelay   time.Duration
	// navigateErrs are returned by successive Navigate calls before navigation succeeds
	navigateErrs []error
}

func (p *fakePage) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePage) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePage) SetContent(_ context.Context, html string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setContents++
	p.content = html
	return nil
}

func (p *fakePage) Content(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.contentErr != nil {
		return "", p.contentErr
	}
	return p.content, nil
}

func (p *fakePage) PDF(ctx context.Context, opts browser.PDFOptions) ([]byte, error) {
	if p.pdfDelay > 0 {
		select {
		case <-time.After(p.pdfDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w: %v", browser.ErrPDFGeneration, browser.ErrTimeout, ctx.Err())
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pdfErr != nil {
		return nil, p.pdfErr
	}
	return []byte(fmt.Sprintf("%%PDF %.2fx%.2f %s", opts.PaperWidth, opts.PaperHeight, p.content)), nil
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.navigateErrs) > 0 {
		err := p.navigateErrs[0]
		p.navigateErrs = p.navigateErrs[1:]
		return err
	}
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) BringToFront(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fronted++
	return nil
}

func (p *fakePage) Reload(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloads++
	return p.reloadErr
}

func (p *fakePage) Close(context.Context) error {
	p.close()
	return nil
}

func (p *fakePage) IsClosed(context.Context) bool {
	return p.isClosed()
}

func (p *fakePage) Evaluate(_ context.Context, fn string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evaluated = append(p.evaluated, fn)
	return nil
}

func (p *fakePage) Expose(_ context.Context, name string, fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.exposed[name]; ok {
		return fmt.Errorf("%w: %s", browser.ErrAlreadyExposed, name)
	}
	if p.exposed == nil {
		p.exposed = make(map[string]func())
	}
	p.exposed[name] = fn
	return nil
}

func (p *fakePage) callback(name string) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exposed[name]
}

// memFS records file system calls.
type memFS struct {
	mu     sync.Mutex
	dirs   map[string]bool
	files  map[string][]byte
	stats  int
	mkdirs int
}

func newMemFS(dirs ...string) *memFS {
	m := &memFS{dirs: map[string]bool{}, files: map[string][]byte{}}
	for _, d := range dirs {
		m.dirs[d] = true
	}
	return m
}

type dirInfo struct{ fs.FileInfo }

func (m *memFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats++
	if m.dirs[name] {
		return dirInfo{}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m *memFS) Mkdir(name string, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirs++
	m.dirs[name] = true
	return nil
}

func (m *memFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
	return nil
}
