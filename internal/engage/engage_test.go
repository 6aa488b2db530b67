package engage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/config"
	"github.com/hcastellani/roost-cli/internal/mocks"
)

func account(username string) schemas.Session {
	return schemas.Session{
		Username: username,
		Cookies: []schemas.Cookie{
			{Name: schemas.AuthTokenCookie, Value: "token-" + username + "-padding"},
			{Name: schemas.CSRFTokenCookie, Value: "csrf-" + username + "-padding"},
		},
		Validated: true,
	}
}

func testEngageConfig() config.EngageConfig {
	return config.EngageConfig{
		// High ceiling so rate limiting never slows the tests down.
		ActionsPerMinute: 60_000,
		ActionTimeout:    5 * time.Second,
		Concurrency:      1,
	}
}

func TestRotator_RoundRobin(t *testing.T) {
	r := NewRotator([]schemas.Session{account("a"), account("b"), account("c")})

	var order []string
	for i := 0; i < 5; i++ {
		next, ok := r.Next()
		require.True(t, ok)
		order = append(order, next.Username)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b"}, order)
}

func TestRotator_Empty(t *testing.T) {
	r := NewRotator(nil)
	_, ok := r.Next()
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestRotator_ConcurrentAccess(t *testing.T) {
	r := NewRotator([]schemas.Session{account("a"), account("b")})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, ok := r.Next()
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
}

func engagePage(clickErr error) *mocks.MockPageContext {
	page := new(mocks.MockPageContext)
	page.On("SetCookies", mock.Anything, mock.Anything).Return(nil)
	page.On("Navigate", mock.Anything, mock.Anything).Return(nil)
	page.On("Click", mock.Anything, mock.Anything, mock.Anything).Return(clickErr)
	page.On("Close", mock.Anything).Return(nil)
	return page
}

func TestRunBatch_RotatesAccounts(t *testing.T) {
	factory := mocks.ContextFactoryFunc(func(ctx context.Context) (schemas.PageContext, error) {
		return engagePage(nil), nil
	})

	e := New(factory, testEngageConfig(), zap.NewNop())
	accounts := []schemas.Session{account("a"), account("b")}
	urls := []string{
		"https://example.com/p/1",
		"https://example.com/p/2",
		"https://example.com/p/3",
	}

	results, err := e.RunBatch(context.Background(), accounts, urls, ActionLike)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].Username)
	assert.Equal(t, "b", results[1].Username)
	assert.Equal(t, "a", results[2].Username)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, ActionLike, r.Action)
	}
}

func TestRunBatch_RetweetConfirmsMenu(t *testing.T) {
	var page *mocks.MockPageContext
	factory := mocks.ContextFactoryFunc(func(ctx context.Context) (schemas.PageContext, error) {
		page = engagePage(nil)
		return page, nil
	})

	e := New(factory, testEngageConfig(), zap.NewNop())
	results, err := e.RunBatch(context.Background(),
		[]schemas.Session{account("a")},
		[]string{"https://example.com/p/1"},
		ActionRetweet,
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)

	page.AssertCalled(t, "Click", mock.Anything, retweetButton, mock.Anything)
	page.AssertCalled(t, "Click", mock.Anything, retweetConfirmButton, mock.Anything)
}

func TestRunBatch_FailureDoesNotAbortBatch(t *testing.T) {
	calls := 0
	factory := mocks.ContextFactoryFunc(func(ctx context.Context) (schemas.PageContext, error) {
		calls++
		if calls == 1 {
			return engagePage(errors.New("button never appeared")), nil
		}
		return engagePage(nil), nil
	})

	e := New(factory, testEngageConfig(), zap.NewNop())
	results, err := e.RunBatch(context.Background(),
		[]schemas.Session{account("a")},
		[]string{"https://example.com/p/1", "https://example.com/p/2"},
		ActionLike,
	)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestRunBatch_NoAccounts(t *testing.T) {
	e := New(new(mocks.MockContextFactory), testEngageConfig(), zap.NewNop())
	_, err := e.RunBatch(context.Background(), nil, []string{"https://example.com/p/1"}, ActionLike)
	assert.Error(t, err)
}

func TestRunBatch_UnsupportedAction(t *testing.T) {
	e := New(new(mocks.MockContextFactory), testEngageConfig(), zap.NewNop())
	_, err := e.RunBatch(context.Background(),
		[]schemas.Session{account("a")},
		[]string{"https://example.com/p/1"},
		Action("quote"),
	)
	assert.Error(t, err)
}
