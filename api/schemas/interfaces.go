package schemas

import (
	"context"
	"time"
)

// -- Browser Capability Interfaces --

// PageContext is the minimal browser surface the detection core depends on:
// an isolated cookie jar plus page navigation and bounded DOM queries. The
// chromedp implementation lives in internal/browser; tests substitute fakes.
//
// All probe-style methods swallow timeouts: a signal that cannot be observed
// within its bound is reported as absent, never as a fault.
type PageContext interface {
	// ID returns the unique identifier of this isolated context.
	ID() string

	// Navigate loads the URL and waits for the document to become ready.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the final URL after any redirects.
	CurrentURL(ctx context.Context) (string, error)

	// IsVisible reports whether any element matching the CSS selector is
	// visible within the bounded wait. Timeouts and missing nodes are false.
	IsVisible(ctx context.Context, selector string, timeout time.Duration) bool

	// Text returns the trimmed text content of the first element matching the
	// selector, waiting up to timeout for it to appear.
	Text(ctx context.Context, selector string, timeout time.Duration) (string, error)

	// InputValue returns the value property of the first matching input.
	InputValue(ctx context.Context, selector string, timeout time.Duration) (string, error)

	// Click waits for the first matching element to become visible and
	// clicks it.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// Cookies returns the cookie jar of this isolated context.
	Cookies(ctx context.Context) ([]Cookie, error)

	// SetCookies seeds the isolated cookie jar. Used by validation to
	// reconstruct a session from cookies alone.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// StorageKeys lists localStorage or sessionStorage keys ("local" or
	// "session") for the current origin.
	StorageKeys(ctx context.Context, kind string) ([]string, error)

	// Close disposes the underlying browser context. Safe to call twice.
	Close(ctx context.Context) error
}

// ContextFactory creates isolated page contexts backed by a shared browser
// process. Isolation is the load-bearing guarantee: cookie mutations in one
// context must never leak into another, otherwise re-validation is
// meaningless.
type ContextFactory interface {
	NewPageContext(ctx context.Context) (PageContext, error)
}

// WithPageContext acquires an isolated context, runs fn, and guarantees the
// context is torn down on every exit path.
func WithPageContext(ctx context.Context, factory ContextFactory, fn func(PageContext) error) error {
	page, err := factory.NewPageContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = page.Close(closeCtx)
	}()
	return fn(page)
}
