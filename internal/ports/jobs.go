package ports

import (
	"context"

	"pricescout/internal/domain"
)

// JobService is the in-process control and query surface of the scraping
// engine. Only one job runs at a time; Start and Launch fail when a job is
// already active.
type JobService interface {
	// Start runs the job to completion on the calling goroutine.
	Start(ctx context.Context, job domain.ScrapeJob, products []domain.Product) error
	// Launch acquires the running slot, then runs the job on its own goroutine.
	Launch(ctx context.Context, job domain.ScrapeJob, products []domain.Product) error
	// Stop transitions the running job to stopped and releases the slot.
	Stop() error

	IsJobRunning() bool
	CurrentJob() (domain.ScrapeJob, bool)
	AvailableScrapers() []string
	ScraperHealth(ctx context.Context) map[string]bool
}
