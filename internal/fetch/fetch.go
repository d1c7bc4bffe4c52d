// Package fetch retrieves pages from the registration service with
// timeouts, pacing, and exponential-backoff retries.
package fetch

import (
	"context"
	"time"
)

// Fetcher retrieves the body of one URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Pauser blocks for a delay unless the context finishes first.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// TimerPauser is the timer-backed Pauser used outside tests.
type TimerPauser struct{}

// Pause implements Pauser.
func (TimerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
