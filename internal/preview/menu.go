package preview

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jonathan/resume-render/internal/browser"
)

// openPreviewBinding is the page-side name of the host callback behind the menu button.
const openPreviewBinding = "openPreview"

// menuScript builds the floating preview menu. It replaces an existing menu so it can run after every render.
const menuScript = `() => {
	const id = 'resume-render-menu';
	const existing = document.getElementById(id);
	if (existing) existing.remove();

	const style = document.createElement('style');
	style.textContent = '@media print { #' + id + ' { display: none !important; } }';

	const menu = document.createElement('div');
	menu.id = id;
	Object.assign(menu.style, {
		position: 'fixed',
		right: '16px',
		bottom: '16px',
		zIndex: '2147483647',
		display: 'flex',
		gap: '8px',
	});
	menu.appendChild(style);

	const button = document.createElement('button');
	button.type = 'button';
	button.textContent = 'PDF';
	button.title = 'Open PDF preview in a new tab';
	Object.assign(button.style, {
		padding: '8px 14px',
		border: 'none',
		borderRadius: '4px',
		background: '#2b6cb0',
		color: '#fff',
		font: 'bold 12px sans-serif',
		cursor: 'pointer',
		boxShadow: '0 2px 6px rgba(0, 0, 0, 0.3)',
	});
	button.addEventListener('click', () => window.openPreview(''));

	menu.appendChild(button);
	document.body.appendChild(menu);
}`

// AddMenu injects the preview button into the primary tab. Clicking it opens
// openURL through OpenPreview. It does nothing in headless mode and may be
// called after every render.
func (s *Session) AddMenu(ctx context.Context, openURL string) error {
	if s.headless {
		return nil
	}

	page, err := s.primaryPage(ctx)
	if err != nil {
		return err
	}

	// The callback outlives this call.
	callbackCtx := context.WithoutCancel(ctx)
	err = page.Expose(ctx, openPreviewBinding, func() {
		if err := s.OpenPreview(callbackCtx, openURL); err != nil {
			s.cfg.Printer.Error("failed to open preview:", err)
			s.cfg.Logger.Error("open preview failed", zap.String("url", openURL), zap.Error(err))
		}
	})
	if err != nil && !errors.Is(err, browser.ErrAlreadyExposed) {
		return err
	}

	return page.Evaluate(ctx, menuScript)
}
