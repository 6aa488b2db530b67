package schemas

import (
	"time"
)

// -- Cookie Schemas --

// SameSite mirrors the browser's SameSite cookie attribute.
type SameSite string

const (
	SameSiteStrict SameSite = "Strict"
	SameSiteLax    SameSite = "Lax"
	SameSiteNone   SameSite = "None"
)

// Cookie is a single authentication credential fragment captured from a
// browser context. Expires is epoch seconds; zero means a session cookie.
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path"`
	Expires  float64  `json:"expires,omitempty"`
	HTTPOnly bool     `json:"httpOnly,omitempty"`
	Secure   bool     `json:"secure,omitempty"`
	SameSite SameSite `json:"sameSite,omitempty"`
}

// MinCookieValueLength is the shortest cookie value considered plausible for
// session reconstruction. Anything shorter is a placeholder or garbage.
const MinCookieValueLength = 10

// Cookie classes recognized on the target platform. AuthTokenCookie and
// CSRFTokenCookie are the minimum pair a usable session needs.
const (
	AuthTokenCookie = "auth_token"
	CSRFTokenCookie = "ct0"
	UserIDCookie    = "twid"
)

// SessionCookieNames lists every cookie worth carrying into a persisted
// session, in addition to the required auth pair.
var SessionCookieNames = []string{
	AuthTokenCookie, CSRFTokenCookie, UserIDCookie,
	"kdt", "auth_multi", "personalization_id", "guest_id",
}

// Plausible reports whether the cookie value is long enough to possibly
// reconstruct a session.
func (c Cookie) Plausible() bool {
	return len(c.Value) >= MinCookieValueLength
}

// -- Session Schemas --

// Sentinel identity values used when extraction fails. Never nil, never empty.
const (
	UnknownDisplayName = "Unknown Account"
	UnknownUsername    = "unknown"
)

// Metrics holds best-effort, non-authoritative profile counters.
type Metrics struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Verified  bool  `json:"verified"`
}

// Session is one authenticated identity: a cookie set plus whatever identity
// data could be recovered around it. A Session starts life as a candidate
// (Validated=false) and is only persisted after independent re-validation.
type Session struct {
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Cookies     []Cookie  `json:"cookies"`
	ExtractedAt time.Time `json:"extractedAt"`
	Metrics     Metrics   `json:"metrics"`
	Validated   bool      `json:"validated,omitempty"`
}

// NewCandidateSession returns an unvalidated session with sentinel identity
// fields, stamped now.
func NewCandidateSession(cookies []Cookie) Session {
	return Session{
		Name:        UnknownDisplayName,
		Username:    UnknownUsername,
		Cookies:     cookies,
		ExtractedAt: time.Now().UTC(),
	}
}

// CookieValue returns the value of the named cookie, or "" if absent.
func (s Session) CookieValue(name string) string {
	for _, c := range s.Cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// HasUsableCookies reports whether the session carries the minimum cookie
// pair (auth token + CSRF token) with plausible values.
func (s Session) HasUsableCookies() bool {
	auth := false
	csrf := false
	for _, c := range s.Cookies {
		if !c.Plausible() {
			continue
		}
		switch c.Name {
		case AuthTokenCookie:
			auth = true
		case CSRFTokenCookie:
			csrf = true
		}
	}
	return auth && csrf
}

// IdentityKey is the deduplication key: the resolved username, falling back
// to the primary auth-token value when identity extraction failed for both
// sides of a comparison.
func (s Session) IdentityKey() string {
	if s.Username != "" && s.Username != UnknownUsername {
		return "user:" + s.Username
	}
	return "token:" + s.CookieValue(AuthTokenCookie)
}

// -- Persisted Configuration --

// AccountsFile is the on-disk multi-account configuration envelope.
// TotalAccounts is recomputed on every write; a stale stored count is never
// trusted on read.
type AccountsFile struct {
	Accounts              []Session `json:"accounts"`
	DetectedAutomatically bool      `json:"detectedAutomatically"`
	LastDetection         time.Time `json:"lastDetection"`
	TotalAccounts         int       `json:"totalAccounts"`
}
