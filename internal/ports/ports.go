package ports

import (
	"context"

	"pricescout/internal/domain"
)

// SourceAdapter is the capability contract one external retail source
// implements. Adapters are stateless with respect to job data; any internal
// state (sessions, collectors) is adapter-private and must be safe to reuse
// across sequential calls within one job.
type SourceAdapter interface {
	// ScrapeProduct returns the single best candidate listing for the search
	// term, or (nil, nil) when the source has no result. An error is an
	// adapter-level fault (network, parse) and is skippable by the caller.
	ScrapeProduct(ctx context.Context, term string) (*domain.Candidate, error)

	// HealthCheck is a lightweight liveness probe, independent of job runs.
	HealthCheck(ctx context.Context) bool

	// SourceConfig returns the configuration the adapter was built from.
	SourceConfig() domain.SourceConfig
}

// AdapterRegistry is an id-keyed lookup of configured adapters. All iterates
// in configuration insertion order.
type AdapterRegistry interface {
	Get(id string) (SourceAdapter, bool)
	IDs() []string
	All() []SourceAdapter
}

// ProgressSink receives job progress snapshots. Reports are fire-and-forget:
// a sink failure is logged by the caller, never propagated as a job failure.
type ProgressSink interface {
	ReportProgress(ctx context.Context, p domain.JobProgress) error
}

// ResultSink persists the ranked price results for one product.
type ResultSink interface {
	SaveResults(ctx context.Context, jobID, productID string, results []domain.PriceResult) error
}
