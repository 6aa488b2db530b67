// internal/browser/page.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/config"
)

// Page is one isolated browser context with a single tab. It implements
// schemas.PageContext on top of chromedp.
type Page struct {
	id               string
	ctx              context.Context
	cancel           context.CancelFunc
	browserContextID cdp.BrowserContextID
	cfg              *config.Config
	logger           *zap.Logger

	onClose   func()
	closeOnce sync.Once
}

var _ schemas.PageContext = (*Page)(nil)

func newPage(
	ctx context.Context,
	cancel context.CancelFunc,
	browserContextID cdp.BrowserContextID,
	cfg *config.Config,
	logger *zap.Logger,
) *Page {
	id := uuid.New().String()
	return &Page{
		id:               id,
		ctx:              ctx,
		cancel:           cancel,
		browserContextID: browserContextID,
		cfg:              cfg,
		logger:           logger.Named("page").With(zap.String("page_id", id)),
	}
}

// ID returns the unique identifier of this page context.
func (p *Page) ID() string {
	return p.id
}

// run executes chromedp actions bounded by both the page lifetime and the
// caller's context.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(p.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL, waits for the document body, then settles for the
// configured post-load period.
func (p *Page) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, p.cfg.Network.NavigationTimeout)
	defer cancel()

	p.logger.Debug("Navigating.", zap.String("url", url))
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if wait := p.cfg.Network.PostLoadWait; wait > 0 {
		tasks = append(tasks, chromedp.Sleep(wait))
	}
	if err := p.run(navCtx, tasks); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// CurrentURL returns the tab's URL after any redirects.
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := p.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return loc, nil
}

// IsVisible reports whether an element matching the CSS selector becomes
// visible within the bounded wait. Timeouts and missing nodes are "absent",
// never an error.
func (p *Page) IsVisible(ctx context.Context, selector string, timeout time.Duration) bool {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := p.run(probeCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		p.logger.Debug("Visibility probe negative.", zap.String("selector", selector))
		return false
	}
	return true
}

// Text returns the trimmed text content of the first matching element,
// waiting up to timeout for it.
func (p *Page) Text(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var text string
	err := p.run(readCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read text of %q: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

// InputValue returns the value property of the first matching input element.
func (p *Page) InputValue(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var value string
	err := p.run(readCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Value(selector, &value, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read value of %q: %w", selector, err)
	}
	return strings.TrimSpace(value), nil
}

// Click waits for the first matching element and clicks it.
func (p *Page) Click(ctx context.Context, selector string, timeout time.Duration) error {
	clickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := p.run(clickCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// Cookies returns the cookie jar of this isolated browser context.
func (p *Page) Cookies(ctx context.Context) ([]schemas.Cookie, error) {
	var cdpCookies []*network.Cookie
	err := p.run(ctx, chromedp.ActionFunc(func(c context.Context) (err error) {
		cdpCookies, err = storage.GetCookies().WithBrowserContextID(p.browserContextID).Do(c)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}

	cookies := make([]schemas.Cookie, 0, len(cdpCookies))
	for _, c := range cdpCookies {
		cookies = append(cookies, schemas.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: fromCDPSameSite(c.SameSite),
		})
	}
	return cookies, nil
}

// SetCookies seeds this isolated context's jar. Validation uses it to
// reconstruct a candidate session from its cookies alone.
func (p *Page) SetCookies(ctx context.Context, cookies []schemas.Cookie) error {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: toCDPSameSite(c.SameSite),
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			param.Expires = &expires
		}
		params = append(params, param)
	}

	err := p.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return storage.SetCookies(params).WithBrowserContextID(p.browserContextID).Do(c)
	}))
	if err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

// StorageKeys lists localStorage ("local") or sessionStorage ("session") keys
// for the current origin.
func (p *Page) StorageKeys(ctx context.Context, kind string) ([]string, error) {
	store := "localStorage"
	if kind == "session" {
		store = "sessionStorage"
	}
	script := fmt.Sprintf(`(function() {
		const keys = [];
		try {
			const s = window.%s;
			for (let i = 0; i < s.length; i++) {
				const k = s.key(i);
				if (k) { keys.push(k); }
			}
		} catch (e) { /* storage disabled */ }
		return keys;
	})()`, store)

	var keys []string
	if err := p.run(ctx, chromedp.Evaluate(script, &keys)); err != nil {
		return nil, fmt.Errorf("failed to enumerate %s keys: %w", store, err)
	}
	return keys, nil
}

// Close cancels the tab and disposes the isolated browser context through the
// manager callback. Safe to call more than once.
func (p *Page) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.logger.Debug("Closing page context.")
		p.cancel()
		if p.onClose != nil {
			p.onClose()
		}
	})
	return nil
}

func fromCDPSameSite(s network.CookieSameSite) schemas.SameSite {
	switch s {
	case network.CookieSameSiteStrict:
		return schemas.SameSiteStrict
	case network.CookieSameSiteLax:
		return schemas.SameSiteLax
	case network.CookieSameSiteNone:
		return schemas.SameSiteNone
	default:
		return ""
	}
}

func toCDPSameSite(s schemas.SameSite) network.CookieSameSite {
	switch s {
	case schemas.SameSiteStrict:
		return network.CookieSameSiteStrict
	case schemas.SameSiteLax:
		return network.CookieSameSiteLax
	case schemas.SameSiteNone:
		return network.CookieSameSiteNone
	default:
		return ""
	}
}

// CombineContext returns a context canceled when either input context is
// canceled. Page operations must respect both the page lifetime and the
// caller's deadline.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
