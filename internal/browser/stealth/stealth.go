package stealth

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

//go:embed evasions.js
var evasionsScript string

// Persona defines the browser characteristics to emulate so the headless
// scan profile resembles the user's everyday browser.
type Persona struct {
	UserAgent string
	Locale    string
	Timezone  string
}

// Apply constructs the CDP actions that install the persona on a fresh
// isolated context: UA override, locale and timezone emulation, matching
// Accept-Language, and the evasions script injected on every new document.
func Apply(p Persona, logger *zap.Logger) chromedp.Tasks {
	logger.Debug("Applying browser stealth persona.",
		zap.String("user_agent", p.UserAgent),
		zap.String("locale", p.Locale),
	)

	acceptLanguage := p.Locale
	if acceptLanguage == "" {
		acceptLanguage = "en-US"
	}

	return chromedp.Tasks{
		emulation.SetUserAgentOverride(p.UserAgent),

		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(evasionsScript).Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to inject evasions script: %w", err)
			}
			return nil
		}),

		emulation.SetTimezoneOverride(p.Timezone),
		emulation.SetLocaleOverride().WithLocale(p.Locale),

		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": fmt.Sprintf("%s;q=0.9,en;q=0.8", acceptLanguage),
		}),
	}
}
