// internal/engage/engager.go

// Package engage drives batch interactions (likes, retweets) across the pool
// of validated accounts. Every action runs in an isolated context seeded with
// one account's cookies, rate limited globally so the pool never exceeds the
// configured actions-per-minute ceiling.
package engage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hcastellani/roost-cli/api/schemas"
	"github.com/hcastellani/roost-cli/internal/config"
)

// Action is a supported engagement kind.
type Action string

const (
	ActionLike    Action = "like"
	ActionRetweet Action = "retweet"
)

// Engagement selectors for the target platform's post page.
const (
	likeButton           = `[data-testid="like"]`
	retweetButton        = `[data-testid="retweet"]`
	retweetConfirmButton = `[data-testid="retweetConfirm"]`
)

// Result records the outcome of one action against one post.
type Result struct {
	URL      string
	Username string
	Action   Action
	Err      error
}

// Engager executes engagement batches.
type Engager struct {
	factory schemas.ContextFactory
	cfg     config.EngageConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates an engager. The rate limiter spans the whole account pool;
// rotating accounts does not buy extra throughput.
func New(factory schemas.ContextFactory, cfg config.EngageConfig, logger *zap.Logger) *Engager {
	interval := time.Minute / time.Duration(cfg.ActionsPerMinute)
	return &Engager{
		factory: factory,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger.Named("engage"),
	}
}

// RunBatch performs the action on every URL, rotating through the accounts.
// Individual failures are recorded in the returned results and never abort
// the batch; the error is non-nil only when the batch cannot run at all.
func (e *Engager) RunBatch(ctx context.Context, accounts []schemas.Session, urls []string, action Action) ([]Result, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts available for engagement")
	}
	if action != ActionLike && action != ActionRetweet {
		return nil, fmt.Errorf("unsupported action %q", action)
	}

	rotator := NewRotator(accounts)
	results := make([]Result, len(urls))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.cfg.Concurrency)

	for i, url := range urls {
		i, url := i, url
		account, _ := rotator.Next()

		group.Go(func() error {
			if err := e.limiter.Wait(groupCtx); err != nil {
				results[i] = Result{URL: url, Username: account.Username, Action: action, Err: err}
				return nil
			}

			err := e.engageOnce(groupCtx, account, url, action)
			if err != nil {
				e.logger.Warn("Engagement failed.",
					zap.String("url", url),
					zap.String("username", account.Username),
					zap.Error(err))
			} else {
				e.logger.Info("Engagement succeeded.",
					zap.String("url", url),
					zap.String("username", account.Username),
					zap.String("action", string(action)))
			}
			results[i] = Result{URL: url, Username: account.Username, Action: action, Err: err}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// engageOnce runs one action in a fresh context seeded with the account's
// cookies.
func (e *Engager) engageOnce(ctx context.Context, account schemas.Session, url string, action Action) error {
	actionCtx, cancel := context.WithTimeout(ctx, e.cfg.ActionTimeout)
	defer cancel()

	return schemas.WithPageContext(actionCtx, e.factory, func(page schemas.PageContext) error {
		if err := page.SetCookies(actionCtx, account.Cookies); err != nil {
			return fmt.Errorf("failed to seed account cookies: %w", err)
		}
		if err := page.Navigate(actionCtx, url); err != nil {
			return err
		}

		switch action {
		case ActionLike:
			return page.Click(actionCtx, likeButton, e.clickTimeout())
		case ActionRetweet:
			if err := page.Click(actionCtx, retweetButton, e.clickTimeout()); err != nil {
				return err
			}
			// The retweet button opens a menu that needs confirming.
			return page.Click(actionCtx, retweetConfirmButton, e.clickTimeout())
		default:
			return fmt.Errorf("unsupported action %q", action)
		}
	})
}

func (e *Engager) clickTimeout() time.Duration {
	if e.cfg.ActionTimeout > 0 && e.cfg.ActionTimeout < 10*time.Second {
		return e.cfg.ActionTimeout
	}
	return 10 * time.Second
}
