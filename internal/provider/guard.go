package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// GuardOptions configures the limits applied around a provider.
type GuardOptions struct {
	RequestsPerMinute int
	Timeout           time.Duration // per attempt, 0 means no timeout
	MaxRetries        uint64
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
}

// Guarded wraps a Provider with rate limiting, a per-attempt timeout and
// retries for transient failures. It is itself a Provider.
type Guarded struct {
	inner   Provider
	limiter *Limiter
	opts    GuardOptions
}

// Guard wraps p according to opts.
func Guard(p Provider, opts GuardOptions) *Guarded {
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 10 * time.Second
	}
	return &Guarded{
		inner:   p,
		limiter: NewLimiter(opts.RequestsPerMinute),
		opts:    opts,
	}
}

// Name returns the wrapped provider's name.
func (g *Guarded) Name() string {
	return g.inner.Name()
}

// Unwrap returns the wrapped provider.
func (g *Guarded) Unwrap() Provider {
	return g.inner
}

// SearchByTitle searches through the wrapped provider.
func (g *Guarded) SearchByTitle(ctx context.Context, q Query) ([]Candidate, error) {
	var result []Candidate
	err := g.do(ctx, "search", func(ctx context.Context) error {
		got, err := g.inner.SearchByTitle(ctx, q)
		if err == nil {
			result = got
		}
		return err
	})
	return result, err
}

// EpisodeTitle looks up an episode title through the wrapped provider.
func (g *Guarded) EpisodeTitle(ctx context.Context, showID string, season, episode int) (string, error) {
	var result string
	err := g.do(ctx, "episode", func(ctx context.Context) error {
		got, err := g.inner.EpisodeTitle(ctx, showID, season, episode)
		if err == nil {
			result = got
		}
		return err
	})
	return result, err
}

func (g *Guarded) do(ctx context.Context, op string, call func(context.Context) error) error {
	attempt := func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return backoff.Permanent(ctxErr)
			}
			// The wait would outlast the caller's deadline.
			return backoff.Permanent(&ProviderError{
				Provider: g.Name(),
				Code:     CodeTimeout,
				Message:  fmt.Sprintf("%s rate limit wait exceeds deadline: %v", g.Name(), err),
				Retry:    true,
			})
		}

		err := g.callWithTimeout(ctx, call)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = g.opts.InitialBackoff
	eb.MaxInterval = g.opts.MaxBackoff
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, g.opts.MaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"provider": g.Name(),
			"op":       op,
			"wait":     wait,
		}).Debugf("retrying after transient error: %v", err)
	}
	return backoff.RetryNotify(attempt, b, notify)
}

// callWithTimeout runs call under the per-attempt timeout. The client
// libraries do not all honour contexts, so the call runs on its own
// goroutine and is abandoned when the deadline passes.
func (g *Guarded) callWithTimeout(ctx context.Context, call func(context.Context) error) error {
	if g.opts.Timeout <= 0 {
		return call(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- call(attemptCtx)
	}()

	select {
	case err := <-done:
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return g.timeoutError()
		}
		return err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return g.timeoutError()
	}
}

func (g *Guarded) timeoutError() error {
	return &ProviderError{
		Provider: g.Name(),
		Code:     CodeTimeout,
		Message:  fmt.Sprintf("%s lookup timed out after %s", g.Name(), g.opts.Timeout),
		Retry:    true,
	}
}
