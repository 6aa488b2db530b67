package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/mocks"
)

func testSelectors() Selectors {
	return Selectors{
		SettingsURL:      "https://example.com/settings",
		DisplayNameInput: "#display-name",
		UsernameInput:    "#username",
		ProfileURLFormat: "https://example.com/%s",
		FollowingCount:   "#following",
		FollowersCount:   "#followers",
	}
}

func authCookies() []schemas.Cookie {
	return []schemas.Cookie{
		{Name: schemas.AuthTokenCookie, Value: "aaaaaaaaaaaaaaaaaaaa", Domain: ".example.com"},
		{Name: schemas.CSRFTokenCookie, Value: "bbbbbbbbbbbbbbbbbbbb", Domain: ".example.com"},
		{Name: "unrelated_tracker", Value: "cccccccccccccccccccc", Domain: ".example.com"},
	}
}

func TestExtract_FullIdentity(t *testing.T) {
	page := new(mocks.MockPageContext)
	page.On("Cookies", mock.Anything).Return(authCookies(), nil)
	page.On("Navigate", mock.Anything, "https://example.com/settings").Return(nil)
	page.On("InputValue", mock.Anything, "#display-name", mock.Anything).Return("Alice Example", nil)
	page.On("InputValue", mock.Anything, "#username", mock.Anything).Return("alice", nil)
	page.On("Navigate", mock.Anything, "https://example.com/alice").Return(nil)
	page.On("Text", mock.Anything, "#following", mock.Anything).Return("1.2K", nil)
	page.On("Text", mock.Anything, "#followers", mock.Anything).Return("345", nil)

	e := New(testSelectors(), zap.NewNop())
	session, err := e.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, "Alice Example", session.Name)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, int64(1200), session.Metrics.Following)
	assert.Equal(t, int64(345), session.Metrics.Followers)
	assert.False(t, session.Validated)
}

func TestExtract_KeepsOnlySessionCookies(t *testing.T) {
	page := new(mocks.MockPageContext)
	page.On("Cookies", mock.Anything).Return(authCookies(), nil)
	page.On("Navigate", mock.Anything, mock.Anything).Return(errors.New("nav blocked"))

	e := New(testSelectors(), zap.NewNop())
	session, err := e.Extract(context.Background(), page)
	require.NoError(t, err)

	require.Len(t, session.Cookies, 2)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaa", session.CookieValue(schemas.AuthTokenCookie))
	assert.Empty(t, session.CookieValue("unrelated_tracker"))
}

func TestExtract_SentinelsWhenSettingsUnreachable(t *testing.T) {
	page := new(mocks.MockPageContext)
	page.On("Cookies", mock.Anything).Return(authCookies(), nil)
	page.On("Navigate", mock.Anything, "https://example.com/settings").Return(errors.New("timeout"))

	e := New(testSelectors(), zap.NewNop())
	session, err := e.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, schemas.UnknownDisplayName, session.Name)
	assert.Equal(t, schemas.UnknownUsername, session.Username)
	// With no resolved handle there is no public profile to visit.
	page.AssertNumberOfCalls(t, "Navigate", 1)
	assert.Zero(t, session.Metrics.Followers)
}

func TestExtract_PartialFieldFailureIsNotFatal(t *testing.T) {
	page := new(mocks.MockPageContext)
	page.On("Cookies", mock.Anything).Return(authCookies(), nil)
	page.On("Navigate", mock.Anything, "https://example.com/settings").Return(nil)
	page.On("InputValue", mock.Anything, "#display-name", mock.Anything).Return("", errors.New("not visible"))
	page.On("InputValue", mock.Anything, "#username", mock.Anything).Return("alice", nil)
	page.On("Navigate", mock.Anything, "https://example.com/alice").Return(nil)
	page.On("Text", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("not visible"))

	e := New(testSelectors(), zap.NewNop())
	session, err := e.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, schemas.UnknownDisplayName, session.Name)
	assert.Equal(t, "alice", session.Username)
	assert.Zero(t, session.Metrics.Following)
}

func TestExtract_UnreadableCookieJarFails(t *testing.T) {
	page := new(mocks.MockPageContext)
	page.On("Cookies", mock.Anything).Return(nil, errors.New("jar gone"))

	e := New(testSelectors(), zap.NewNop())
	_, err := e.Extract(context.Background(), page)
	assert.Error(t, err)
}
