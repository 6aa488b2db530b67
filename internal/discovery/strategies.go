// internal/discovery/strategies.go
package discovery

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/store"
)

// loginPathMarkers identify a login redirect in a final URL. Both the classic
// /login route and the newer interstitial flow route are observed in the wild.
var loginPathMarkers = []string{"/login", "/i/flow/login"}

// cycleContext bounds one navigation/probe cycle against a single target with
// the configured per-cycle timeout.
func (d *Discoverer) cycleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, d.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// navigate retries transient navigation failures up to the configured retry
// count before giving up on a target.
func (d *Discoverer) navigate(ctx context.Context, page schemas.PageContext, url string) error {
	var err error
	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = page.Navigate(ctx, url); err == nil {
			return nil
		}
		d.logger.Debug("Navigation attempt failed.",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return err
}

// scanCookieFiles parses known on-disk credential files and yields every
// stored account with a usable auth/CSRF cookie pair. File-shape handling
// matches the persistence layer exactly, so both the multi-account envelope
// and the legacy bare cookie array are recognized.
func (d *Discoverer) scanCookieFiles(ctx context.Context) []schemas.Session {
	var found []schemas.Session
	for _, path := range d.cfg.CookieFiles {
		if ctx.Err() != nil {
			break
		}

		accounts, err := store.LoadFile(path, d.logger)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				d.logger.Debug("Cookie file absent.", zap.String("path", path))
			} else {
				d.logger.Warn("Cookie file unreadable; skipping.",
					zap.String("path", path), zap.Error(err))
			}
			continue
		}

		for _, account := range accounts.Accounts {
			if !account.HasUsableCookies() {
				d.logger.Debug("Stored account lacks usable cookies; skipping.",
					zap.String("path", path),
					zap.String("username", account.Username))
				continue
			}
			// Stored state is only a claim until re-validated.
			account.Validated = false
			found = append(found, account)
		}
		d.logger.Info("Cookie file scanned.",
			zap.String("path", path),
			zap.Int("accounts", len(accounts.Accounts)))
	}
	return found
}

// scanAmbientContext opens a fresh isolated context, navigates to the primary
// domain, and probes for an already-authenticated state. A hit here means the
// browser profile itself carries live credentials.
func (d *Discoverer) scanAmbientContext(ctx context.Context) []schemas.Session {
	var found []schemas.Session
	err := schemas.WithPageContext(ctx, d.factory, func(page schemas.PageContext) error {
		cycleCtx, cancel := d.cycleContext(ctx)
		defer cancel()

		target := d.cfg.Domains[0]
		if err := d.navigate(cycleCtx, page, target); err != nil {
			return err
		}
		if !d.probe.IsAuthenticated(cycleCtx, page) {
			d.logger.Debug("Ambient context is not authenticated.",
				zap.String("url", target))
			return nil
		}

		session, err := d.extractor.Extract(cycleCtx, page)
		if err != nil {
			return err
		}
		found = append(found, session)
		return nil
	})
	if err != nil {
		d.logger.Warn("Ambient context scan failed.", zap.Error(err))
	}
	return found
}

// scanRedirectPatterns visits each authenticated-only surface in its own
// context and watches where the navigation lands. Logged-out visitors get
// bounced to a login flow; a surface that keeps its URL and shows logged-in
// markers indicates a live session.
func (d *Discoverer) scanRedirectPatterns(ctx context.Context) []schemas.Session {
	var found []schemas.Session
	for _, surface := range d.cfg.AuthSurfaces {
		if ctx.Err() != nil {
			break
		}

		err := schemas.WithPageContext(ctx, d.factory, func(page schemas.PageContext) error {
			cycleCtx, cancel := d.cycleContext(ctx)
			defer cancel()

			if err := d.navigate(cycleCtx, page, surface); err != nil {
				return err
			}

			finalURL, err := page.CurrentURL(cycleCtx)
			if err != nil {
				return err
			}
			if isLoginURL(finalURL) {
				d.logger.Debug("Surface redirected to login.",
					zap.String("surface", surface),
					zap.String("final_url", finalURL))
				return nil
			}
			if !d.probe.IsAuthenticated(cycleCtx, page) {
				d.logger.Debug("Surface kept its URL but shows no logged-in markers.",
					zap.String("surface", surface))
				return nil
			}

			session, err := d.extractor.Extract(cycleCtx, page)
			if err != nil {
				return err
			}
			found = append(found, session)
			return nil
		})
		if err != nil {
			d.logger.Warn("Redirect scan failed for surface.",
				zap.String("surface", surface), zap.Error(err))
		}
	}
	return found
}

// scanDomainCookies navigates each domain alias in one isolated context and
// inspects the jar it accumulates. Two or more plausible auth-class cookies
// warrant a full probe; fewer are treated as tracking noise.
func (d *Discoverer) scanDomainCookies(ctx context.Context) []schemas.Session {
	var found []schemas.Session
	err := schemas.WithPageContext(ctx, d.factory, func(page schemas.PageContext) error {
		for _, domain := range d.cfg.Domains {
			if ctx.Err() != nil {
				return nil
			}
			if session, ok := d.scanDomain(ctx, page, domain); ok {
				found = append(found, session)
			}
		}
		return nil
	})
	if err != nil {
		d.logger.Warn("Domain cookie scan failed.", zap.Error(err))
	}
	return found
}

// scanDomain runs one bounded inspection cycle against a single domain alias.
func (d *Discoverer) scanDomain(ctx context.Context, page schemas.PageContext, domain string) (schemas.Session, bool) {
	cycleCtx, cancel := d.cycleContext(ctx)
	defer cancel()

	if err := d.navigate(cycleCtx, page, domain); err != nil {
		d.logger.Warn("Domain unreachable during cookie scan.",
			zap.String("domain", domain), zap.Error(err))
		return schemas.Session{}, false
	}

	cookies, err := page.Cookies(cycleCtx)
	if err != nil {
		d.logger.Warn("Cookie jar unreadable during domain scan.",
			zap.String("domain", domain), zap.Error(err))
		return schemas.Session{}, false
	}

	authCount := countAuthCookies(cookies)
	d.logger.Debug("Domain cookie jar inspected.",
		zap.String("domain", domain),
		zap.Int("total_cookies", len(cookies)),
		zap.Int("auth_cookies", authCount))
	if authCount < 2 {
		return schemas.Session{}, false
	}

	if !d.probe.IsAuthenticated(cycleCtx, page) {
		d.logger.Debug("Auth cookies present but page not authenticated.",
			zap.String("domain", domain))
		return schemas.Session{}, false
	}

	session, err := d.extractor.Extract(cycleCtx, page)
	if err != nil {
		d.logger.Warn("Identity extraction failed during domain scan.",
			zap.String("domain", domain), zap.Error(err))
		return schemas.Session{}, false
	}
	return session, true
}

// scanLocalStorage inspects local and session storage for auth-flavored keys.
// Storage tokens cannot reconstruct a session on their own, so this strategy
// only logs hints for the operator and never yields candidates.
func (d *Discoverer) scanLocalStorage(ctx context.Context) []schemas.Session {
	err := schemas.WithPageContext(ctx, d.factory, func(page schemas.PageContext) error {
		cycleCtx, cancel := d.cycleContext(ctx)
		defer cancel()

		target := d.cfg.Domains[0]
		if err := d.navigate(cycleCtx, page, target); err != nil {
			return err
		}

		for _, kind := range []string{"local", "session"} {
			keys, err := page.StorageKeys(cycleCtx, kind)
			if err != nil {
				d.logger.Debug("Storage not readable.",
					zap.String("kind", kind), zap.Error(err))
				continue
			}
			hints := filterAuthHints(keys)
			if len(hints) > 0 {
				d.logger.Info("Auth-flavored storage keys present.",
					zap.String("kind", kind),
					zap.Strings("keys", hints))
			}
		}
		return nil
	})
	if err != nil {
		d.logger.Warn("Storage inspection failed.", zap.Error(err))
	}
	return nil
}

// isLoginURL reports whether the URL points into a login flow.
func isLoginURL(url string) bool {
	for _, marker := range loginPathMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}

// countAuthCookies counts the plausible session-bearing cookies in a jar.
func countAuthCookies(cookies []schemas.Cookie) int {
	wanted := make(map[string]bool, len(schemas.SessionCookieNames))
	for _, name := range schemas.SessionCookieNames {
		wanted[name] = true
	}

	count := 0
	for _, c := range cookies {
		if wanted[c.Name] && c.Plausible() {
			count++
		}
	}
	return count
}

// filterAuthHints keeps storage keys that smell like credentials or identity.
func filterAuthHints(keys []string) []string {
	var hints []string
	for _, key := range keys {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "auth") ||
			strings.Contains(lower, "token") ||
			strings.Contains(lower, "session") ||
			strings.Contains(lower, "twid") ||
			strings.Contains(lower, "user") {
			hints = append(hints, key)
		}
	}
	return hints
}
