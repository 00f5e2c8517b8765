package pricescraper

import (
	"context"
	"sync"
	"time"

	"pricescout/internal/domain"
)

// sourceLimiter enforces a minimum interval between calls to the same source,
// derived from the source's requests-per-minute hint. It is consulted before
// every adapter call so rate-limit compliance does not depend on the batching
// loop structure.
type sourceLimiter struct {
	mu   sync.Mutex
	next map[string]time.Time
}

func newSourceLimiter() *sourceLimiter {
	return &sourceLimiter{next: make(map[string]time.Time)}
}

// wait blocks until the source's minimum interval has elapsed since the
// previous call, or the context is cancelled. A zero rate limit never waits.
func (l *sourceLimiter) wait(ctx context.Context, cfg domain.SourceConfig) error {
	if cfg.RateLimit <= 0 {
		return nil
	}
	interval := time.Minute / time.Duration(cfg.RateLimit)

	l.mu.Lock()
	now := time.Now()
	at := l.next[cfg.ID]
	if at.Before(now) {
		at = now
	}
	l.next[cfg.ID] = at.Add(interval)
	l.mu.Unlock()

	d := time.Until(at)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
