package pricescraper

import (
	"context"
	"testing"
	"time"

	"pricescout/internal/domain"
)

func TestSourceLimiterEnforcesInterval(t *testing.T) {
	// 3000 requests per minute = one call every 20ms.
	cfg := domain.SourceConfig{ID: "s1", RateLimit: 3000}
	l := newSourceLimiter()
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.wait(ctx, cfg); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("three calls took %v, want at least 40ms", elapsed)
	}
}

func TestSourceLimiterZeroRateNeverWaits(t *testing.T) {
	l := newSourceLimiter()
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.wait(context.Background(), domain.SourceConfig{ID: "s1"}); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("unlimited source waited %v", elapsed)
	}
}

func TestSourceLimiterIndependentPerSource(t *testing.T) {
	l := newSourceLimiter()
	ctx := context.Background()
	slow := domain.SourceConfig{ID: "slow", RateLimit: 60} // one per second
	fast := domain.SourceConfig{ID: "fast"}

	if err := l.wait(ctx, slow); err != nil {
		t.Fatalf("wait slow: %v", err)
	}
	start := time.Now()
	if err := l.wait(ctx, fast); err != nil {
		t.Fatalf("wait fast: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("fast source blocked %v behind slow source", elapsed)
	}
}

func TestSourceLimiterHonorsCancellation(t *testing.T) {
	cfg := domain.SourceConfig{ID: "s1", RateLimit: 1} // one per minute
	l := newSourceLimiter()
	ctx, cancel := context.WithCancel(context.Background())

	if err := l.wait(ctx, cfg); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- l.wait(ctx, cfg) }()
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("cancelled wait returned nil")
		}
	case <-time.After(time.Second):
		t.Error("cancelled wait did not return")
	}
}
