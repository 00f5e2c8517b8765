package domain

import "time"

// Core domain models for the price-scraping engine. Wire/API shapes live in
// the adapters; keep these decoupled where helpful.

// JobStatus is the lifecycle state of a scraping job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobStopped   JobStatus = "stopped"
)

// Terminal reports whether no further transition may leave the state.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobStopped
}

// SourceConfig describes one external retail source. Immutable for the
// duration of a job. Settings is an opaque per-source blob (selectors, paths,
// delays) consumed only by that source's adapter; the "adapter" key selects
// the connector kind.
type SourceConfig struct {
	ID           string
	Name         string
	BaseURL      string
	Country      string
	IsActive     bool
	Priority     int // higher-priority sources are queried first
	RateLimit    int // max requests per minute, 0 = no limit
	Settings     map[string]string
	AllowDomains []string
	DenyDomains  []string
}

// Product is a normalized wholesale catalog item being priced against the
// market. Immutable for the duration of a job.
type Product struct {
	ID             string
	Brand          string
	Name           string
	Variant        string // size/variant descriptor, e.g. "500ml"
	EAN            string // optional
	WholesalePrice float64
	Currency       string
	SupplierID     string
}

// JobConfig is the originating configuration of a scraping job.
type JobConfig struct {
	Sources             []string
	BatchSize           int
	DelayBetweenBatches time.Duration
	MaxRetries          int
	ConfidenceThreshold float64
}

// ScrapeJob is the unit of work. Mutated only through Apply; the orchestrator
// owns the record exclusively for its lifetime.
type ScrapeJob struct {
	ID         string
	Name       string
	SupplierID string
	Status     JobStatus
	Config     JobConfig

	TotalProducts      int
	ProcessedProducts  int
	SuccessfulProducts int
	FailedProducts     int

	StartedAt    *time.Time
	CompletedAt  *time.Time
	ErrorMessage string
}

// Progress returns the snapshot reported through the progress boundary.
func (j ScrapeJob) Progress() JobProgress {
	return JobProgress{
		JobID:              j.ID,
		Status:             j.Status,
		TotalProducts:      j.TotalProducts,
		ProcessedProducts:  j.ProcessedProducts,
		SuccessfulProducts: j.SuccessfulProducts,
		FailedProducts:     j.FailedProducts,
		StartedAt:          j.StartedAt,
		CompletedAt:        j.CompletedAt,
		ErrorMessage:       j.ErrorMessage,
	}
}

// JobProgress is the outbound progress payload.
type JobProgress struct {
	JobID              string     `json:"jobId"`
	Status             JobStatus  `json:"status"`
	TotalProducts      int        `json:"totalProducts"`
	ProcessedProducts  int        `json:"processedProducts"`
	SuccessfulProducts int        `json:"successfulProducts"`
	FailedProducts     int        `json:"failedProducts"`
	StartedAt          *time.Time `json:"startedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	ErrorMessage       string     `json:"errorMessage,omitempty"`
}

// Candidate is a single unconfirmed listing returned by one adapter for one
// product search.
type Candidate struct {
	SourceID         string
	Title            string
	Merchant         string
	URL              string
	Price            float64
	Currency         string
	PriceIncludesTax bool
	ShippingCost     float64
	Available        bool
}

// PriceResult is one retained price observation. Results are created by the
// orchestrator after matching and never mutated afterward.
type PriceResult struct {
	ID               string    `json:"id"`
	JobID            string    `json:"jobId"`
	ProductID        string    `json:"productId"`
	SourceID         string    `json:"sourceId"`
	Title            string    `json:"title"`
	Merchant         string    `json:"merchant"`
	URL              string    `json:"url"`
	Price            float64   `json:"price"`
	Currency         string    `json:"currency"`
	PriceIncludesTax bool      `json:"priceIncludesTax"`
	ShippingCost     float64   `json:"shippingCost"`
	Available        bool      `json:"available"`
	Confidence       float64   `json:"confidence"`
	IsLowestPrice    bool      `json:"isLowestPrice"`
	ScrapedAt        time.Time `json:"scrapedAt"`
}
