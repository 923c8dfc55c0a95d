// Package browser provides a small headless-browser abstraction over chromedp and rod.
// A Browser owns one Chromium process; a Page is one of its tabs.
package browser

import (
	"context"
	"fmt"
	"strings"
)

// Driver names accepted by Launch.
const (
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
)

// A4 paper size in inches.
const (
	A4Width  = 8.27
	A4Height = 11.69
)

// PDFOptions controls page export.
type PDFOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	PrintBackground bool
}

// A4 returns the export options used for resumes.
func A4() PDFOptions {
	return PDFOptions{PaperWidth: A4Width, PaperHeight: A4Height, PrintBackground: true}
}

// Browser is a running browser process.
type Browser interface {
	// Pages lists the open tabs in a stable order.
	Pages(ctx context.Context) ([]Page, error)
	// NewPage opens a blank tab.
	NewPage(ctx context.Context) (Page, error)
	// Args returns the command-line flags the browser was launched with.
	Args() []string
	Close() error
}

// Page is a single browser tab.
type Page interface {
	// SetContent replaces the document and waits for it to settle (images and fonts loaded).
	SetContent(ctx context.Context, html string) error
	// Content returns the serialized document, doctype included.
	Content(ctx context.Context) (string, error)
	PDF(ctx context.Context, opts PDFOptions) ([]byte, error)
	Navigate(ctx context.Context, url string) error
	BringToFront(ctx context.Context) error
	Reload(ctx context.Context) error
	IsClosed(ctx context.Context) bool
	// Close closes the tab.
	Close(ctx context.Context) error
	// Evaluate runs a JavaScript function expression such as "() => { ... }" in the page.
	Evaluate(ctx context.Context, fn string) error
	// Expose installs window[name] in the page. Calling it invokes fn on the host.
	// Exposing the same name twice returns ErrAlreadyExposed.
	Expose(ctx context.Context, name string, fn func()) error
}

// Options configures Launch.
type Options struct {
	Driver    string // chromedp (default) or rod
	Headless  bool
	Bin       string // browser binary, empty to auto-detect
	NoSandbox bool
}

// Launch starts a browser using the requested driver.
func Launch(ctx context.Context, opts Options) (Browser, error) {
	switch opts.Driver {
	case "", DriverChromedp:
		return launchChromedp(ctx, opts)
	case DriverRod:
		return launchRod(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrBrowserConnect, opts.Driver)
	}
}

// IsHeadless reports whether the launch arguments enable headless mode.
// "--headless", "--headless=new" and "--headless=true" count; "--headless=false" does not.
func IsHeadless(args []string) bool {
	for _, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "headless" {
			continue
		}
		if !hasValue || value != "false" {
			return true
		}
	}
	return false
}

// settledFunc is true once the document and its subresources have loaded.
const settledFunc = `() => document.readyState === 'complete' &&
	Array.from(document.images).every((img) => img.complete) &&
	(!document.fonts || document.fonts.status === 'loaded')`

// contentFunc serializes the current document including its doctype.
const contentFunc = `() => {
	const doctype = document.doctype ? new XMLSerializer().serializeToString(document.doctype) : '';
	return doctype + document.documentElement.outerHTML;
}`

// invoke turns a function expression into a call expression.
func invoke(fn string) string {
	return "(" + fn + ")()"
}
