// internal/discovery/discoverer.go

// Package discovery runs the independent session-discovery strategies
// against a shared browser process. Each strategy works in its own isolated
// page context so one strategy's cookie mutations can never contaminate
// another's probe, and each tolerates per-target failures by logging and
// moving on.
package discovery

import (
	"context"

	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/config"
	"github.com/hcastellani/roost-cli/internal/identity"
	"github.com/hcastellani/roost-cli/internal/probe"
)

// Discoverer orchestrates the discovery strategies and collects raw session
// candidates. Candidates are unvalidated: downstream re-validation decides
// which survive.
type Discoverer struct {
	factory   schemas.ContextFactory
	probe     *probe.Probe
	extractor *identity.Extractor
	cfg       config.DetectionConfig
	logger    *zap.Logger
}

// New creates a discoverer.
func New(
	factory schemas.ContextFactory,
	p *probe.Probe,
	extractor *identity.Extractor,
	cfg config.DetectionConfig,
	logger *zap.Logger,
) *Discoverer {
	return &Discoverer{
		factory:   factory,
		probe:     p,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger.Named("discovery"),
	}
}

type strategy struct {
	name string
	run  func(context.Context) []schemas.Session
}

// Discover runs every strategy sequentially and returns the raw candidates.
// Strategies execute to completion one after another: wall-clock cost is
// dominated by browser latency, and sequential execution keeps the shared
// browser process's resource usage predictable.
//
// The overall budget, when configured, bounds the whole run; once it expires
// the remaining strategies are skipped and whatever was collected so far is
// returned. Discover itself never fails.
func (d *Discoverer) Discover(ctx context.Context) []schemas.Session {
	if d.cfg.OverallBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.OverallBudget)
		defer cancel()
	}

	strategies := []strategy{
		{"cookie_files", d.scanCookieFiles},
		{"ambient_context", d.scanAmbientContext},
		{"redirect_patterns", d.scanRedirectPatterns},
		{"domain_cookies", d.scanDomainCookies},
		{"local_storage", d.scanLocalStorage},
	}

	var candidates []schemas.Session
	for _, s := range strategies {
		if ctx.Err() != nil {
			d.logger.Warn("Discovery budget exhausted; skipping remaining strategies.",
				zap.String("next_strategy", s.name))
			break
		}

		d.logger.Info("Running discovery strategy.", zap.String("strategy", s.name))
		found := s.run(ctx)
		for _, candidate := range found {
			if containsIdentity(candidates, candidate) {
				d.logger.Debug("Skipping duplicate candidate within discovery.",
					zap.String("strategy", s.name),
					zap.String("username", candidate.Username))
				continue
			}
			candidates = append(candidates, candidate)
		}
		d.logger.Info("Strategy finished.",
			zap.String("strategy", s.name),
			zap.Int("candidates", len(found)),
		)
	}

	d.logger.Info("Discovery complete.", zap.Int("raw_candidates", len(candidates)))
	return candidates
}

// containsIdentity reports whether an equivalent candidate was already
// collected. Only a cheap pre-filter: authoritative deduplication happens
// after validation.
func containsIdentity(candidates []schemas.Session, s schemas.Session) bool {
	key := s.IdentityKey()
	for _, c := range candidates {
		if c.IdentityKey() == key {
			return true
		}
	}
	return false
}
