// Package navigate loads and renders listing pages through a headless browser
// or a plain HTTP fetcher.
package navigate

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Browser creates pages. Implementations must be safe for concurrent NewPage calls.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is one navigation session. A Page is used by one goroutine at a time.
type Page interface {
	// Load navigates to url. It waits for DOMContentLoaded first and retries
	// once against the full load event. Failures carry model.KindLoadTimeout
	// or model.KindLoadError.
	Load(ctx context.Context, url string, timeout time.Duration) error
	// ForceLazyRender emits steps scroll signals, pausing between them.
	ForceLazyRender(ctx context.Context, steps int, pause time.Duration)
	// WaitIdle waits for the page to go idle, up to timeout.
	WaitIdle(ctx context.Context, timeout time.Duration) error
	// HTML returns the current rendered document.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// WaitCondition is the completion signal a navigation attempt waits for.
type WaitCondition int

const (
	WaitDOMContentLoaded WaitCondition = iota
	WaitLoad
)

func (w WaitCondition) String() string {
	switch w {
	case WaitDOMContentLoaded:
		return "domcontentloaded"
	case WaitLoad:
		return "load"
	default:
		return "unknown"
	}
}

// LoadConditions is the order Load tries completion signals in.
var LoadConditions = []WaitCondition{WaitDOMContentLoaded, WaitLoad}

// ScrollDelta is the wheel distance of one lazy-render step, in pixels.
const ScrollDelta = 2000

type navigateFunc func(ctx context.Context, url string, cond WaitCondition) error

// loadWithFallback runs nav once per LoadConditions entry, each attempt under
// its own timeout, and returns nil on the first success.
func loadWithFallback(ctx context.Context, url string, timeout time.Duration, nav navigateFunc) error {
	var lastErr error
	for _, cond := range LoadConditions {
		if ctx.Err() != nil {
			break
		}
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		err := nav(attemptCtx, url, cond)
		if err == nil && attemptCtx.Err() != nil {
			err = attemptCtx.Err()
		}
		cancel()
		if err == nil {
			return nil
		}
		zap.L().Debug("navigate: load attempt failed",
			zap.String("url", url),
			zap.Stringer("wait", cond),
			zap.Error(err),
		)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return categorize(lastErr, url)
}

// Pause waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func Pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
