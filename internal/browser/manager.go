// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/browser/stealth"
	"github.com/hcastellani/roost-cli/internal/config"
)

const shutdownGracePeriod = 15 * time.Second

// Manager owns the shared browser process and hands out isolated page
// contexts. Launch is deferred until the first context is requested; a launch
// failure is fatal and surfaced to the caller.
type Manager struct {
	logger *zap.Logger
	cfg    *config.Config

	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc

	pages map[string]*Page
	mu    sync.RWMutex
	wg    sync.WaitGroup

	// Browser context creation is serialized: CDP target juggling on a shared
	// process is not safe to interleave.
	contextCreationMu sync.Mutex

	initOnce sync.Once
	initErr  error
}

var _ schemas.ContextFactory = (*Manager)(nil)

// NewManager creates a browser manager. The browser process is not launched
// until the first page context is requested.
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
		pages:  make(map[string]*Page),
	}
}

// initialize launches the shared Chrome process exactly once.
func (m *Manager) initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		if err := ctx.Err(); err != nil {
			m.initErr = err
			return
		}
		m.logger.Info("Launching browser process.", zap.Bool("headless", m.cfg.Browser.Headless))

		opts := m.prepareAllocatorOptions()
		m.allocCtx, m.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		m.browserCtx, m.browserStop = chromedp.NewContext(m.allocCtx,
			chromedp.WithLogf(func(format string, args ...interface{}) {
				m.logger.Debug(fmt.Sprintf(format, args...))
			}),
		)

		// Connecting the first target actually starts the process.
		if err := chromedp.Run(m.browserCtx); err != nil {
			m.browserStop()
			m.allocCancel()
			m.initErr = fmt.Errorf("failed to launch browser process: %w", err)
			return
		}

		m.logger.Info("Browser process ready.")
	})
	return m.initErr
}

// prepareAllocatorOptions merges the baseline flag set for a stable headless
// scan profile with any user-provided arguments.
func (m *Manager) prepareAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", m.cfg.Browser.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.WindowSize(m.cfg.Browser.ViewportWidth, m.cfg.Browser.ViewportHeight),
		chromedp.UserAgent(m.cfg.Browser.UserAgent),
	)
	for _, arg := range m.cfg.Browser.Args {
		opts = append(opts, chromedp.Flag(arg, true))
	}
	return opts
}

// controller returns a context that executes CDP commands against the browser
// itself rather than any single tab.
func (m *Manager) controller() (context.Context, error) {
	c := chromedp.FromContext(m.browserCtx)
	if c == nil || c.Browser == nil {
		return nil, fmt.Errorf("browser process not initialized")
	}
	return cdp.WithExecutor(m.browserCtx, c.Browser), nil
}

// NewPageContext creates a fresh isolated browser context (its own cookie
// jar, no shared storage) with the stealth persona applied, and a single tab
// inside it.
func (m *Manager) NewPageContext(ctx context.Context) (schemas.PageContext, error) {
	if err := m.initialize(ctx); err != nil {
		return nil, err
	}

	m.contextCreationMu.Lock()
	defer m.contextCreationMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before creating browser context: %w", err)
	}

	controllerCtx, err := m.controller()
	if err != nil {
		return nil, err
	}

	browserContextID, err := target.CreateBrowserContext().Do(controllerCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to create isolated browser context: %w", err)
	}

	targetID, err := target.CreateTarget("about:blank").
		WithBrowserContextID(browserContextID).
		Do(controllerCtx)
	if err != nil {
		m.bestEffortDisposeContext(browserContextID)
		return nil, fmt.Errorf("failed to create target: %w", err)
	}

	pageCtx, pageCancel := chromedp.NewContext(m.browserCtx, chromedp.WithTargetID(targetID))

	persona := stealth.Persona{
		UserAgent: m.cfg.Browser.UserAgent,
		Locale:    m.cfg.Browser.Locale,
		Timezone:  m.cfg.Browser.Timezone,
	}
	if err := chromedp.Run(pageCtx, stealth.Apply(persona, m.logger)); err != nil {
		pageCancel()
		m.bestEffortDisposeContext(browserContextID)
		return nil, fmt.Errorf("failed to apply stealth persona: %w", err)
	}

	page := newPage(pageCtx, pageCancel, browserContextID, m.cfg, m.logger)

	m.wg.Add(1)
	page.onClose = func() {
		m.mu.Lock()
		delete(m.pages, page.ID())
		m.mu.Unlock()
		m.bestEffortDisposeContext(browserContextID)
		m.wg.Done()
	}

	m.mu.Lock()
	m.pages[page.ID()] = page
	m.mu.Unlock()

	m.logger.Debug("Isolated page context created.",
		zap.String("page_id", page.ID()),
		zap.String("browser_context_id", string(browserContextID)),
	)
	return page, nil
}

func (m *Manager) bestEffortDisposeContext(id cdp.BrowserContextID) {
	controllerCtx, err := m.controller()
	if err != nil || controllerCtx.Err() != nil {
		return
	}
	disposeCtx, cancel := context.WithTimeout(controllerCtx, 5*time.Second)
	defer cancel()
	if err := target.DisposeBrowserContext(id).Do(disposeCtx); err != nil {
		m.logger.Debug("Failed to dispose browser context; it may be orphaned.",
			zap.String("browser_context_id", string(id)), zap.Error(err))
	}
}

// Shutdown closes all outstanding page contexts and tears the browser process
// down. It runs on every exit path of a detection cycle, success or not.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.browserCtx == nil {
		return nil
	}
	m.logger.Info("Shutting down browser manager.")

	m.mu.RLock()
	open := make([]*Page, 0, len(m.pages))
	for _, p := range m.pages {
		open = append(open, p)
	}
	m.mu.RUnlock()

	for _, p := range open {
		go func(p *Page) {
			if err := p.Close(ctx); err != nil {
				m.logger.Warn("Error closing page during shutdown.",
					zap.String("page_id", p.ID()), zap.Error(err))
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("Timeout waiting for page contexts to close; forcing shutdown.", zap.Error(ctx.Err()))
	case <-time.After(shutdownGracePeriod):
		m.logger.Warn("Grace period elapsed waiting for page contexts to close.")
	}

	m.browserStop()
	m.allocCancel()
	m.logger.Info("Browser manager shutdown complete.")
	return nil
}
