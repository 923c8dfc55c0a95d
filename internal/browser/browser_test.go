package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHeadless(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "no args", args: nil, want: false},
		{name: "bare flag", args: []string{"--no-sandbox", "--headless"}, want: true},
		{name: "new mode", args: []string{"--headless=new"}, want: true},
		{name: "explicit true", args: []string{"--headless=true"}, want: true},
		{name: "explicit false", args: []string{"--headless=false"}, want: false},
		{name: "similar flag", args: []string{"--headless-mode"}, want: false},
		{name: "unrelated", args: []string{"--disable-gpu", "--window-size=800,600"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHeadless(tt.args))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap(ErrPageLoad, nil))

	err := wrap(ErrPageLoad, errors.New("net::ERR_ABORTED"))
	assert.ErrorIs(t, err, ErrPageLoad)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "net::ERR_ABORTED")

	err = wrap(ErrPDFGeneration, fmt.Errorf("print: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, ErrPDFGeneration)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestLaunch_UnknownDriver(t *testing.T) {
	b, err := Launch(context.Background(), Options{Driver: "selenium"})
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrBrowserConnect)
	assert.Contains(t, err.Error(), `"selenium"`)
}

func TestA4(t *testing.T) {
	opts := A4()
	assert.Equal(t, 8.27, opts.PaperWidth)
	assert.Equal(t, 11.69, opts.PaperHeight)
	assert.True(t, opts.PrintBackground)
}

func TestInvoke(t *testing.T) {
	assert.Equal(t, "(() => 1)()", invoke("() => 1"))
}

// Driver tests need a local Chromium and are skipped in short mode.
func TestDrivers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	bin, found := launcher.LookPath()
	if !found {
		t.Skip("no Chromium binary found")
	}

	for _, driver := range []string{DriverChromedp, DriverRod} {
		t.Run(driver, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			b, err := Launch(ctx, Options{Driver: driver, Headless: true, Bin: bin, NoSandbox: true})
			require.NoError(t, err)
			defer b.Close()

			assert.True(t, IsHeadless(b.Args()))

			p, err := b.NewPage(ctx)
			require.NoError(t, err)
			assert.False(t, p.IsClosed(ctx))

			pages, err := b.Pages(ctx)
			require.NoError(t, err)
			assert.NotEmpty(t, pages)

			require.NoError(t, p.SetContent(ctx, "<!DOCTYPE html><html><body><h1>Richard Hendriks</h1></body></html>"))

			html, err := p.Content(ctx)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"), html)
			assert.Contains(t, html, "<h1>Richard Hendriks</h1>")

			pdf, err := p.PDF(ctx, A4())
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

			require.NoError(t, p.Expose(ctx, "openPreview", func() {}))
			assert.ErrorIs(t, p.Expose(ctx, "openPreview", func() {}), ErrAlreadyExposed)
			require.NoError(t, p.Evaluate(ctx, "() => { document.title = 'done'; }"))

			// A binding retried after a failed attempt still fires once per call
			var calls atomic.Int32
			count := func() { calls.Add(1) }
			cancelled, cancelNow := context.WithCancel(ctx)
			cancelNow()
			if err := p.Expose(cancelled, "retried", count); err != nil {
				require.NoError(t, p.Expose(ctx, "retried", count))
			}
			require.NoError(t, p.Evaluate(ctx, "() => { window.retried(''); }"))
			assert.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 20*time.Millisecond)
			time.Sleep(200 * time.Millisecond)
			assert.Equal(t, int32(1), calls.Load())

			require.NoError(t, p.Close(ctx))
			assert.Eventually(t, func() bool { return p.IsClosed(ctx) }, 5*time.Second, 50*time.Millisecond)
		})
	}
}
