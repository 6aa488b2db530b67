// internal/validation/validator.go

// Package validation re-checks discovered session candidates from their
// cookies alone. Each candidate gets a pristine browser context seeded with
// nothing but its own cookie set, so a pass proves the cookies are
// self-sufficient rather than riding on ambient browser state.
package validation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/probe"
)

// Validator confirms that a candidate's cookies reconstruct a live session.
type Validator struct {
	factory schemas.ContextFactory
	probe   *probe.Probe
	// checkURL is the authenticated surface the seeded context navigates to.
	checkURL string
	logger   *zap.Logger
}

// New creates a validator that checks candidates against checkURL.
func New(factory schemas.ContextFactory, p *probe.Probe, checkURL string, logger *zap.Logger) *Validator {
	return &Validator{
		factory:  factory,
		probe:    p,
		checkURL: checkURL,
		logger:   logger.Named("validation"),
	}
}

// Validate seeds a fresh isolated context with the candidate's cookies,
// opens the check surface, and probes the result. A single negative outcome
// is conclusive: there is no retry, because a login form rendered against
// freshly seeded cookies means those cookies are dead.
//
// The returned session is the candidate with Validated set on success. The
// error is non-nil only for infrastructure failures (context creation,
// navigation); a clean "cookies rejected" outcome is (session, false, nil).
func (v *Validator) Validate(ctx context.Context, candidate schemas.Session) (schemas.Session, bool, error) {
	if !candidate.HasUsableCookies() {
		v.logger.Debug("Candidate has no usable cookie pair; rejecting without browser work.",
			zap.String("username", candidate.Username))
		return candidate, false, nil
	}

	var alive bool
	err := schemas.WithPageContext(ctx, v.factory, func(page schemas.PageContext) error {
		if err := page.SetCookies(ctx, candidate.Cookies); err != nil {
			return fmt.Errorf("failed to seed cookies: %w", err)
		}
		if err := page.Navigate(ctx, v.checkURL); err != nil {
			return fmt.Errorf("failed to open check surface: %w", err)
		}
		alive = v.probe.IsAuthenticated(ctx, page)
		return nil
	})
	if err != nil {
		return candidate, false, err
	}

	candidate.Validated = alive
	v.logger.Info("Candidate validated.",
		zap.String("username", candidate.Username),
		zap.Bool("alive", alive),
	)
	return candidate, alive, nil
}

// ValidateAll runs Validate over every candidate sequentially and returns the
// survivors. Infrastructure failures reject the affected candidate and are
// logged; they never abort the batch.
func (v *Validator) ValidateAll(ctx context.Context, candidates []schemas.Session) []schemas.Session {
	valid := make([]schemas.Session, 0, len(candidates))
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			v.logger.Warn("Validation budget exhausted; remaining candidates rejected.",
				zap.Int("remaining", len(candidates)-len(valid)))
			break
		}

		session, alive, err := v.Validate(ctx, candidate)
		if err != nil {
			v.logger.Warn("Validation errored; candidate rejected.",
				zap.String("username", candidate.Username),
				zap.Error(err))
			continue
		}
		if alive {
			valid = append(valid, session)
		}
	}
	return valid
}

// Deduplicate collapses validated sessions by identity, keeping the first
// occurrence of each. Input order is preserved and the operation is
// idempotent.
func Deduplicate(sessions []schemas.Session) []schemas.Session {
	seen := make(map[string]bool, len(sessions))
	unique := make([]schemas.Session, 0, len(sessions))
	for _, s := range sessions {
		key := s.IdentityKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, s)
	}
	return unique
}
