package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookiePlausible(t *testing.T) {
	assert.True(t, Cookie{Name: "auth_token", Value: "aaaaaaaaaa"}.Plausible())
	assert.False(t, Cookie{Name: "auth_token", Value: "short"}.Plausible())
	assert.False(t, Cookie{Name: "auth_token"}.Plausible())
}

func TestHasUsableCookies(t *testing.T) {
	testCases := []struct {
		name    string
		cookies []Cookie
		want    bool
	}{
		{
			name: "auth and csrf pair",
			cookies: []Cookie{
				{Name: AuthTokenCookie, Value: "aaaaaaaaaaaaaaaaaaaa"},
				{Name: CSRFTokenCookie, Value: "bbbbbbbbbbbbbbbbbbbb"},
			},
			want: true,
		},
		{
			name: "auth token alone",
			cookies: []Cookie{
				{Name: AuthTokenCookie, Value: "aaaaaaaaaaaaaaaaaaaa"},
			},
			want: false,
		},
		{
			name: "csrf value too short",
			cookies: []Cookie{
				{Name: AuthTokenCookie, Value: "aaaaaaaaaaaaaaaaaaaa"},
				{Name: CSRFTokenCookie, Value: "short"},
			},
			want: false,
		},
		{
			name: "empty jar",
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := Session{Cookies: tc.cookies}
			assert.Equal(t, tc.want, s.HasUsableCookies())
		})
	}
}

func TestNewCandidateSession(t *testing.T) {
	cookies := []Cookie{{Name: AuthTokenCookie, Value: "aaaaaaaaaaaaaaaaaaaa"}}
	s := NewCandidateSession(cookies)

	assert.Equal(t, UnknownDisplayName, s.Name)
	assert.Equal(t, UnknownUsername, s.Username)
	assert.False(t, s.Validated)
	assert.False(t, s.ExtractedAt.IsZero())
	require.Len(t, s.Cookies, 1)
}

func TestCookieValue(t *testing.T) {
	s := Session{Cookies: []Cookie{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}}

	assert.Equal(t, "2", s.CookieValue("b"))
	assert.Empty(t, s.CookieValue("missing"))
}

func TestIdentityKey(t *testing.T) {
	named := Session{Username: "alice"}
	assert.Equal(t, "user:alice", named.IdentityKey())

	anonymous := Session{
		Username: UnknownUsername,
		Cookies:  []Cookie{{Name: AuthTokenCookie, Value: "tok-aaaaaaaaaaaaaaaa"}},
	}
	assert.Equal(t, "token:tok-aaaaaaaaaaaaaaaa", anonymous.IdentityKey())

	// Two anonymous sessions with the same token must collide; with different
	// tokens they must not.
	other := Session{
		Username: UnknownUsername,
		Cookies:  []Cookie{{Name: AuthTokenCookie, Value: "tok-bbbbbbbbbbbbbbbb"}},
	}
	assert.NotEqual(t, anonymous.IdentityKey(), other.IdentityKey())
}
