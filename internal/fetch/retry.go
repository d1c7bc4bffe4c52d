package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"carrierscope/internal/metrics"
)

// ErrFetchExhausted marks a URL whose attempts were all spent. The wrapped
// chain carries the last underlying error.
var ErrFetchExhausted = errors.New("fetch attempts exhausted")

// Retrier wraps a Fetcher with bounded retries and exponential backoff.
// Attempt i (zero-based) that fails is followed by a base*2^i wait before
// attempt i+1. A client-side rate limiter paces outbound attempts.
type Retrier struct {
	inner       Fetcher
	maxAttempts int
	backoffBase time.Duration
	limiter     *rate.Limiter
	pauser      Pauser
	logger      *zap.Logger
}

// NewRetrier builds a Retrier. limiter may be nil to disable pacing.
func NewRetrier(
	inner Fetcher,
	maxAttempts int,
	backoffBase time.Duration,
	limiter *rate.Limiter,
	logger *zap.Logger,
) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrier{
		inner:       inner,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		limiter:     limiter,
		pauser:      TimerPauser{},
		logger:      logger,
	}
}

// WithPauser swaps the backoff pauser. Tests use this to observe delays
// without sleeping.
func (r *Retrier) WithPauser(p Pauser) *Retrier {
	r.pauser = p
	return r
}

// Fetch implements Fetcher. The first successful body is returned without
// further attempts.
func (r *Retrier) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			r.pauser.Pause(ctx, r.backoffBase*(1<<(attempt-1)))
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limit wait: %w", err)
			}
		}
		body, err := r.inner.Fetch(ctx, url)
		if err == nil {
			metrics.ObserveFetchAttempt(true)
			return body, nil
		}
		lastErr = err
		metrics.ObserveFetchAttempt(false)
		r.logger.Warn("fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Error(err),
		)
	}
	return "", fmt.Errorf("%w: %d attempts for %s: %w", ErrFetchExhausted, r.maxAttempts, url, lastErr)
}
