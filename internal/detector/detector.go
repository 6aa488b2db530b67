// internal/detector/detector.go

// Package detector wires discovery, validation, and persistence into the two
// operations the CLI exposes: a full detection run and a re-validation of the
// already-persisted configuration.
package detector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/browser"
	"github.com/hcastellani/roost-cli/internal/config"
	"github.com/hcastellani/roost-cli/internal/discovery"
	"github.com/hcastellani/roost-cli/internal/identity"
	"github.com/hcastellani/roost-cli/internal/probe"
	"github.com/hcastellani/roost-cli/internal/store"
	"github.com/hcastellani/roost-cli/internal/validation"
)

// Report summarizes a detection run. Sessions always carries the validated
// result set even when persistence failed; PersistErr tells the caller the
// on-disk state may be stale.
type Report struct {
	Sessions      []schemas.Session
	RawCandidates int
	Saved         bool
	PersistErr    error
}

// ValidationReport summarizes a re-validation of the persisted configuration.
type ValidationReport struct {
	Valid         []schemas.Session
	TotalOriginal int
}

// Detector is the top-level facade over the detection pipeline.
type Detector struct {
	cfg    *config.Config
	store  *store.Store
	logger *zap.Logger
}

// New creates a detector.
func New(cfg *config.Config, logger *zap.Logger) *Detector {
	return &Detector{
		cfg:    cfg,
		store:  store.New(cfg.Store.Path, cfg.Store.BackupPath, logger),
		logger: logger.Named("detector"),
	}
}

// DetectSessions runs the full pipeline: launch the shared browser, discover
// candidates, re-validate each from its cookies alone, deduplicate, and
// persist the survivors. The browser is torn down on every exit path.
//
// Persistence is skipped entirely when no session survives validation, so a
// transiently broken environment can never clobber a known-good
// configuration. A persistence failure is reported, not raised: the in-memory
// result is still returned.
func (d *Detector) DetectSessions(ctx context.Context) (*Report, error) {
	manager := browser.NewManager(d.cfg, d.logger)
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			d.logger.Warn("Browser shutdown reported an error.", zap.Error(err))
		}
	}()
	return d.detectWith(ctx, manager), nil
}

// detectWith runs the pipeline against any context factory. Split out so the
// pipeline can be exercised without a real browser process.
func (d *Detector) detectWith(ctx context.Context, factory schemas.ContextFactory) *Report {
	p := d.newProbe()
	extractor := identity.New(identity.DefaultSelectors(), d.logger)

	discoverer := discovery.New(factory, p, extractor, d.cfg.Detection, d.logger)
	candidates := discoverer.Discover(ctx)

	validator := validation.New(factory, p, d.checkURL(), d.logger)
	valid := validator.ValidateAll(ctx, candidates)
	unique := validation.Deduplicate(valid)

	report := &Report{
		Sessions:      unique,
		RawCandidates: len(candidates),
	}

	if len(unique) == 0 {
		d.logger.Info("No sessions survived validation; existing configuration left untouched.")
		return report
	}

	if err := d.store.Save(unique); err != nil {
		d.logger.Error("Failed to persist detected sessions.", zap.Error(err))
		report.PersistErr = err
		return report
	}
	report.Saved = true

	d.logger.Info("Detection complete.",
		zap.Int("raw_candidates", report.RawCandidates),
		zap.Int("sessions", len(unique)),
		zap.String("path", d.store.Path()),
	)
	return report
}

// ValidateExistingConfiguration re-checks every account in the persisted
// configuration file and reports which still authenticate. The file itself is
// not modified; rewriting is the detect operation's job.
func (d *Detector) ValidateExistingConfiguration(ctx context.Context) (*ValidationReport, error) {
	accounts, err := d.store.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}

	manager := browser.NewManager(d.cfg, d.logger)
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			d.logger.Warn("Browser shutdown reported an error.", zap.Error(err))
		}
	}()

	validator := validation.New(manager, d.newProbe(), d.checkURL(), d.logger)
	valid := validator.ValidateAll(ctx, accounts.Accounts)

	return &ValidationReport{
		Valid:         valid,
		TotalOriginal: len(accounts.Accounts),
	}, nil
}

// newProbe builds the probe with the configured signal timeouts.
func (d *Detector) newProbe() *probe.Probe {
	signals := probe.DefaultSignals()
	signals.NegativeTimeout = d.cfg.Detection.NegativeSignalTimeout
	signals.PositiveTimeout = d.cfg.Detection.PositiveSignalTimeout
	return probe.New(signals, d.logger)
}

// LoadAccounts exposes the persisted configuration without any browser work.
func (d *Detector) LoadAccounts() (*schemas.AccountsFile, error) {
	return d.store.Load()
}

// checkURL is the authenticated surface validation probes against.
func (d *Detector) checkURL() string {
	if len(d.cfg.Detection.AuthSurfaces) > 0 {
		return d.cfg.Detection.AuthSurfaces[0]
	}
	return d.cfg.Detection.Domains[0]
}
