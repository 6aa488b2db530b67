// internal/probe/signals.go
package probe

import "time"

// Canonical probe timeouts. A login form renders quickly, while logged-in
// UI can take a moment to hydrate, so negative probes get the short wait.
const (
	DefaultNegativeTimeout = 1 * time.Second
	DefaultPositiveTimeout = 2500 * time.Millisecond
)

// DefaultSignals returns the canonical signal lists for the target platform.
//
// Ordering matters for latency only: the most commonly rendered markers come
// first so the usual case resolves on the first probe.
func DefaultSignals() SignalSet {
	return SignalSet{
		Negative: []string{
			`[data-testid="LoginForm_Login_Button"]`,
			`[data-testid="login-button"]`,
			`input[name="text"]`,
			`input[name="password"]`,
		},
		Positive: []string{
			`[data-testid="SideNav_AccountSwitcher_Button"]`,
			`[data-testid="AppTabBar_Profile_Link"]`,
			`[aria-label="Profile"]`,
			`[data-testid="primaryColumn"]`,
			`[data-testid="tweet"]`,
			`[data-testid="tweetButtonInline"]`,
		},
		NegativeTimeout: DefaultNegativeTimeout,
		PositiveTimeout: DefaultPositiveTimeout,
	}
}
