// internal/identity/extractor.go

// Package identity recovers human-readable account data from an
// authenticated page. Every step is best-effort: a failure leaves the
// corresponding field at its sentinel value and the next step still runs.
package identity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
)

// Selectors names the DOM surfaces the extractor reads. Injected so the
// lists can follow the target site's markup without touching the logic.
type Selectors struct {
	SettingsURL      string
	DisplayNameInput string
	UsernameInput    string
	// ProfileURLFormat receives the resolved username.
	ProfileURLFormat string
	FollowingCount   string
	FollowersCount   string
}

// DefaultSelectors returns the canonical extraction surfaces for the target
// platform.
func DefaultSelectors() Selectors {
	return Selectors{
		SettingsURL:      "https://twitter.com/settings/profile",
		DisplayNameInput: `[data-testid="displayNameInput"]`,
		UsernameInput:    `[data-testid="usernameInput"]`,
		ProfileURLFormat: "https://twitter.com/%s",
		FollowingCount:   `[href$="/following"] span`,
		FollowersCount:   `[href$="/followers"] span`,
	}
}

const fieldReadTimeout = 3 * time.Second

// Extractor reads identity fields from an authenticated page.
type Extractor struct {
	selectors Selectors
	logger    *zap.Logger
}

// New creates an extractor with the given selector configuration.
func New(selectors Selectors, logger *zap.Logger) *Extractor {
	return &Extractor{
		selectors: selectors,
		logger:    logger.Named("identity"),
	}
}

// Extract builds a candidate session from the page's current authenticated
// state: the context's cookie jar plus whatever identity fields can be read.
// Unresolvable fields keep their sentinel values; Extract never fails
// outright as long as the cookie jar is readable.
func (e *Extractor) Extract(ctx context.Context, page schemas.PageContext) (schemas.Session, error) {
	cookies, err := page.Cookies(ctx)
	if err != nil {
		return schemas.Session{}, fmt.Errorf("failed to read cookie jar: %w", err)
	}

	session := schemas.NewCandidateSession(filterSessionCookies(cookies))
	e.readProfileFields(ctx, page, &session)
	e.readPublicMetrics(ctx, page, &session)

	e.logger.Info("Identity extracted.",
		zap.String("name", session.Name),
		zap.String("username", session.Username),
		zap.Int("cookies", len(session.Cookies)),
	)
	return session, nil
}

// readProfileFields visits the settings surface and reads the display name
// and handle inputs. Either read may fail independently.
func (e *Extractor) readProfileFields(ctx context.Context, page schemas.PageContext, session *schemas.Session) {
	if err := page.Navigate(ctx, e.selectors.SettingsURL); err != nil {
		e.logger.Debug("Could not open profile settings surface.", zap.Error(err))
		return
	}

	if name, err := page.InputValue(ctx, e.selectors.DisplayNameInput, fieldReadTimeout); err == nil && name != "" {
		session.Name = name
	} else if err != nil {
		e.logger.Debug("Display name not readable.", zap.Error(err))
	}

	if username, err := page.InputValue(ctx, e.selectors.UsernameInput, fieldReadTimeout); err == nil && username != "" {
		session.Username = username
	} else if err != nil {
		e.logger.Debug("Username not readable.", zap.Error(err))
	}
}

// readPublicMetrics visits the public profile of the resolved handle and
// parses the compact follower/following counters. Skipped entirely when the
// handle is unknown.
func (e *Extractor) readPublicMetrics(ctx context.Context, page schemas.PageContext, session *schemas.Session) {
	if session.Username == schemas.UnknownUsername {
		return
	}

	profileURL := fmt.Sprintf(e.selectors.ProfileURLFormat, session.Username)
	if err := page.Navigate(ctx, profileURL); err != nil {
		e.logger.Debug("Could not open public profile.", zap.Error(err))
		return
	}

	if text, err := page.Text(ctx, e.selectors.FollowingCount, fieldReadTimeout); err == nil {
		session.Metrics.Following = ParseMetric(text)
	}
	if text, err := page.Text(ctx, e.selectors.FollowersCount, fieldReadTimeout); err == nil {
		session.Metrics.Followers = ParseMetric(text)
	}
}

// filterSessionCookies keeps only the auth-relevant cookie names worth
// persisting with an account.
func filterSessionCookies(cookies []schemas.Cookie) []schemas.Cookie {
	wanted := make(map[string]bool, len(schemas.SessionCookieNames))
	for _, name := range schemas.SessionCookieNames {
		wanted[name] = true
	}

	kept := make([]schemas.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if wanted[c.Name] {
			kept = append(kept, c)
		}
	}
	return kept
}
