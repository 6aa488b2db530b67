// internal/probe/probe.go

// Package probe classifies a browser page's authentication state using DOM
// signal heuristics. Negative signals (login-form markers) always win over
// positive ones, and anything the probe cannot decide within its time bounds
// is treated as logged out.
package probe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
)

// Outcome is the probe's classification of a page.
type Outcome int

const (
	// LoginRequired means a login-form marker was visible, or nothing could
	// be established within the time budget.
	LoginRequired Outcome = iota
	// Authenticated means a logged-in-only marker was visible and no
	// login-form marker fired first.
	Authenticated
	// Indeterminate means neither signal list matched. Callers must treat it
	// as LoginRequired; it is reported separately only for logging.
	Indeterminate
)

func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case LoginRequired:
		return "login_required"
	default:
		return "indeterminate"
	}
}

// SignalSet is the injected heuristic configuration: ordered selector lists
// and their per-probe timeouts. Keeping this data out of the probe logic
// lets the selectors be swapped when the target site's markup changes, and
// lets tests run against synthetic fixtures.
type SignalSet struct {
	// Negative selectors unambiguously indicate an unauthenticated login
	// form. They are checked first with a short timeout and short-circuit.
	Negative []string
	// Positive selectors are only present when authenticated.
	Positive []string

	NegativeTimeout time.Duration
	PositiveTimeout time.Duration
}

// Probe evaluates a SignalSet against a page.
type Probe struct {
	signals SignalSet
	logger  *zap.Logger
}

// New creates a probe. Zero timeouts in the signal set fall back to the
// canonical defaults.
func New(signals SignalSet, logger *zap.Logger) *Probe {
	if signals.NegativeTimeout <= 0 {
		signals.NegativeTimeout = DefaultNegativeTimeout
	}
	if signals.PositiveTimeout <= 0 {
		signals.PositiveTimeout = DefaultPositiveTimeout
	}
	return &Probe{
		signals: signals,
		logger:  logger.Named("probe"),
	}
}

// Classify inspects the page the caller already navigated and returns its
// authentication state. It never returns an error: timeouts and missing
// elements are treated as "signal absent."
//
// Negative signals take precedence over positive ones. A login form can
// coexist with stale cached authenticated-looking markup, so any visible
// login marker classifies the page as LoginRequired immediately.
func (p *Probe) Classify(ctx context.Context, page schemas.PageContext) Outcome {
	for _, selector := range p.signals.Negative {
		if ctx.Err() != nil {
			return Indeterminate
		}
		if page.IsVisible(ctx, selector, p.signals.NegativeTimeout) {
			p.logger.Debug("Negative signal visible; login required.",
				zap.String("selector", selector))
			return LoginRequired
		}
	}

	for _, selector := range p.signals.Positive {
		if ctx.Err() != nil {
			return Indeterminate
		}
		if page.IsVisible(ctx, selector, p.signals.PositiveTimeout) {
			p.logger.Debug("Positive signal visible; authenticated.",
				zap.String("selector", selector))
			return Authenticated
		}
	}

	p.logger.Debug("No signal matched within budget; page state indeterminate.")
	return Indeterminate
}

// IsAuthenticated collapses Classify into the fail-closed boolean the rest of
// the pipeline consumes: only a positive signal yields true.
func (p *Probe) IsAuthenticated(ctx context.Context, page schemas.PageContext) bool {
	return p.Classify(ctx, page) == Authenticated
}
