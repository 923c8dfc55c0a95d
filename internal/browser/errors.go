package browser

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors returned by both drivers. Use errors.Is to match.
var (
	ErrBrowserConnect = errors.New("failed to start browser")
	ErrPageCreate     = errors.New("failed to create page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("failed to generate PDF")
	ErrTimeout        = errors.New("browser operation timed out")
	ErrAlreadyExposed = errors.New("function already exposed")
)

// wrap attaches a sentinel to a driver error, adding ErrTimeout for deadline failures.
func wrap(sentinel, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %v", sentinel, ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
