package ports

import (
	"context"
	"errors"

	"pricescout/internal/domain"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// SourceRepository supplies the configured retail sources.
type SourceRepository interface {
	ListActiveSources(ctx context.Context) ([]domain.SourceConfig, error)
}

// ProductRepository supplies the normalized product catalog.
type ProductRepository interface {
	ListProductsBySupplier(ctx context.Context, supplierID string) ([]domain.Product, error)
}

// JobRepository stores and fetches job records. DeleteJob removes a record
// that never left pending, e.g. when its launch lost a start race.
type JobRepository interface {
	CreateJob(ctx context.Context, job domain.ScrapeJob) error
	GetJob(ctx context.Context, id string) (domain.ScrapeJob, error)
	DeleteJob(ctx context.Context, id string) error
}

// ResultRepository reads back persisted price observations.
type ResultRepository interface {
	ListResultsByProduct(ctx context.Context, productID string) ([]domain.PriceResult, error)
}
