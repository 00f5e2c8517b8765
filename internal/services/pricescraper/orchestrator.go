package pricescraper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pricescout/internal/domain"
	"pricescout/internal/ports"
	"pricescout/internal/services/matcher"
)

var (
	ErrJobAlreadyRunning = errors.New("a scraping job is already running")
	ErrNoJobRunning      = errors.New("no scraping job is running")
	ErrNoProducts        = errors.New("job has no products to process")
)

const (
	defaultBatchSize       = 5
	defaultAdapterTimeout  = 30 * time.Second
	defaultPolitenessDelay = 500 * time.Millisecond

	// At most this many ranked results are retained per product.
	maxRetainedResults = 3
)

// Options tune the orchestrator's fixed delays and timeouts.
type Options struct {
	AdapterTimeout  time.Duration
	PolitenessDelay time.Duration
}

// Orchestrator coordinates one scraping job at a time: batching, adapter
// fan-out, matching, result ranking and the progress/result boundaries. It
// owns the job record exclusively for the job's lifetime.
type Orchestrator struct {
	registry ports.AdapterRegistry
	matcher  *matcher.Matcher
	progress ports.ProgressSink
	results  ports.ResultSink
	limiter  *sourceLimiter
	log      *logrus.Entry

	adapterTimeout  time.Duration
	politenessDelay time.Duration

	mu      sync.Mutex
	running bool
	current *domain.ScrapeJob
	cancel  context.CancelFunc
}

func New(registry ports.AdapterRegistry, m *matcher.Matcher, progress ports.ProgressSink, results ports.ResultSink, log *logrus.Logger, opts Options) *Orchestrator {
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = defaultAdapterTimeout
	}
	if opts.PolitenessDelay <= 0 {
		opts.PolitenessDelay = defaultPolitenessDelay
	}
	return &Orchestrator{
		registry:        registry,
		matcher:         m,
		progress:        progress,
		results:         results,
		limiter:         newSourceLimiter(),
		log:             log.WithField("component", "pricescraper"),
		adapterTimeout:  opts.AdapterTimeout,
		politenessDelay: opts.PolitenessDelay,
	}
}

// Start runs the job to completion on the calling goroutine. Preconditions:
// no other job is running and products is non-empty.
func (o *Orchestrator) Start(ctx context.Context, job domain.ScrapeJob, products []domain.Product) error {
	run, err := o.begin(ctx, job, products)
	if err != nil {
		return err
	}
	return run()
}

// Launch is the asynchronous form of Start: the running slot is acquired and
// the initial progress reported before Launch returns, then the job proceeds
// on its own goroutine. A failed run is logged; its state is observable
// through CurrentJob and the persisted job record.
func (o *Orchestrator) Launch(ctx context.Context, job domain.ScrapeJob, products []domain.Product) error {
	run, err := o.begin(ctx, job, products)
	if err != nil {
		return err
	}
	go func() {
		if err := run(); err != nil {
			o.log.WithError(err).WithField("job_id", job.ID).Error("scraping job failed")
		}
	}()
	return nil
}

// begin validates preconditions, acquires the running slot and transitions
// the job to running. The returned closure executes the batches and drives
// the job to a terminal state.
func (o *Orchestrator) begin(ctx context.Context, job domain.ScrapeJob, products []domain.Product) (func() error, error) {
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.Status = domain.JobPending
	job.TotalProducts = len(products)
	job.ProcessedProducts = 0
	job.SuccessfulProducts = 0
	job.FailedProducts = 0

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrJobAlreadyRunning
	}
	started, err := domain.Apply(job, domain.Started{At: time.Now().UTC()})
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	o.running = true
	o.current = &started
	o.cancel = cancel
	o.mu.Unlock()

	o.report(ctx, started.Progress())
	o.log.WithFields(logrus.Fields{
		"job_id":   started.ID,
		"job_name": started.Name,
		"products": len(products),
		"sources":  started.Config.Sources,
	}).Info("scraping job started")

	return func() error { return o.finish(ctx, started.ID, o.run(ctx, started, products)) }, nil
}

// run processes the product list batch by batch. It returns nil both on full
// completion and when the job was stopped underway; any error it returns is
// an orchestration-level fault.
func (o *Orchestrator) run(ctx context.Context, job domain.ScrapeJob, products []domain.Product) error {
	adapters := o.selectAdapters(job.Config.Sources)

	batchSize := job.Config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	for start := 0; start < len(products); start += batchSize {
		if o.stopped(job.ID) {
			return nil
		}
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}

		var successful, failed int
		for _, p := range products[start:end] {
			// Checked between products as well, a stricter superset of the
			// batch-boundary stop contract.
			if o.stopped(job.ID) {
				return nil
			}
			if o.processProduct(ctx, job, adapters, p) {
				successful++
			} else {
				failed++
			}
		}

		next, discarded, err := o.applyEvent(job.ID, domain.BatchCompleted{
			Processed:  end - start,
			Successful: successful,
			Failed:     failed,
		})
		if discarded {
			return nil
		}
		if err != nil {
			return err
		}
		o.report(ctx, next.Progress())

		if end < len(products) {
			if err := o.sleep(ctx, job.Config.DelayBetweenBatches); err != nil {
				if o.stopped(job.ID) {
					return nil
				}
				return err
			}
		}
	}
	if err := ctx.Err(); err != nil && !o.stopped(job.ID) {
		return err
	}
	return nil
}

// finish drives the job to its terminal state after run returns. A stopped or
// superseded job was already finalized elsewhere; its slot is left alone.
func (o *Orchestrator) finish(ctx context.Context, jobID string, runErr error) error {
	if runErr == nil {
		final, discarded, err := o.applyEvent(jobID, domain.Finished{At: time.Now().UTC()})
		if discarded {
			return nil
		}
		if err == nil {
			o.report(ctx, final.Progress())
			o.release()
			o.log.WithFields(logrus.Fields{
				"job_id":     final.ID,
				"successful": final.SuccessfulProducts,
				"failed":     final.FailedProducts,
			}).Info("scraping job completed")
			return nil
		}
		runErr = err
	}

	final, discarded, err := o.applyEvent(jobID, domain.Failed{At: time.Now().UTC(), Message: runErr.Error()})
	if discarded {
		return nil
	}
	if err == nil {
		// The job context may already be cancelled; the failure report must
		// still go out.
		o.report(context.WithoutCancel(ctx), final.Progress())
	}
	o.release()
	return fmt.Errorf("scraping job %s failed: %w", jobID, runErr)
}

// Stop transitions the running job to stopped with a completion timestamp,
// releases the running slot and cancels the job context. An in-flight batch
// is not guaranteed to abandon immediately; its late counter updates are
// discarded.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	if !o.running || o.current == nil {
		o.mu.Unlock()
		return ErrNoJobRunning
	}
	next, err := domain.Apply(*o.current, domain.Stopped{At: time.Now().UTC()})
	if err != nil {
		o.mu.Unlock()
		return err
	}
	o.current = &next
	o.running = false
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.report(context.Background(), next.Progress())
	o.log.WithField("job_id", next.ID).Info("scraping job stopped")
	return nil
}

// IsJobRunning reports whether a job currently holds the running slot.
func (o *Orchestrator) IsJobRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// CurrentJob returns a snapshot of the running job, or of the most recently
// finished one when none is running.
func (o *Orchestrator) CurrentJob() (domain.ScrapeJob, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return domain.ScrapeJob{}, false
	}
	return *o.current, true
}

// AvailableScrapers returns the configured adapter ids.
func (o *Orchestrator) AvailableScrapers() []string {
	return o.registry.IDs()
}

// ScraperHealth probes every configured adapter.
func (o *Orchestrator) ScraperHealth(ctx context.Context) map[string]bool {
	health := make(map[string]bool)
	for _, ad := range o.registry.All() {
		cfg := ad.SourceConfig()
		health[cfg.ID] = ad.HealthCheck(ctx)
	}
	return health
}

// processProduct queries every selected adapter for the product, filters and
// ranks the candidates and persists the retained results. It returns whether
// the product counts as successful.
func (o *Orchestrator) processProduct(ctx context.Context, job domain.ScrapeJob, adapters []ports.SourceAdapter, p domain.Product) bool {
	term := SearchTerm(p)
	plog := o.log.WithFields(logrus.Fields{"job_id": job.ID, "product_id": p.ID})

	var pool []domain.Candidate
	for i, ad := range adapters {
		cfg := ad.SourceConfig()
		if i > 0 {
			if err := o.sleep(ctx, o.politenessDelay); err != nil {
				break
			}
		}
		if err := o.limiter.wait(ctx, cfg); err != nil {
			break
		}

		cctx, cancel := context.WithTimeout(ctx, o.adapterTimeout)
		cand, err := ad.ScrapeProduct(cctx, term)
		cancel()
		if err != nil {
			plog.WithError(err).WithField("source_id", cfg.ID).Warn("adapter call failed, skipping source")
			continue
		}
		if cand == nil {
			continue
		}
		if !AllowURL(cfg, cand.URL) {
			plog.WithFields(logrus.Fields{"source_id": cfg.ID, "url": cand.URL}).
				Debug("candidate rejected by domain filter")
			continue
		}
		cand.SourceID = cfg.ID
		pool = append(pool, *cand)
	}

	if len(pool) == 0 {
		plog.Debug("no candidates for product")
		return false
	}

	ranked := o.matcher.Rank(p, pool)
	retained := ranked[:0:len(ranked)]
	for _, m := range ranked {
		if m.Score >= job.Config.ConfidenceThreshold {
			retained = append(retained, m)
		}
	}
	if len(retained) == 0 {
		plog.Debug("no candidates above confidence threshold")
		return false
	}
	if len(retained) > maxRetainedResults {
		retained = retained[:maxRetainedResults]
	}

	results := buildResults(job, p, retained)
	if err := o.results.SaveResults(ctx, job.ID, p.ID, results); err != nil {
		plog.WithError(err).Error("persisting product results failed")
		return false
	}
	plog.WithField("results", len(results)).Debug("product matched")
	return true
}

// buildResults converts the retained matches into immutable price results,
// ordered by ascending price with the cheapest flagged as the lowest observed
// price.
func buildResults(job domain.ScrapeJob, p domain.Product, retained []matcher.Match) []domain.PriceResult {
	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].Candidate.Price < retained[j].Candidate.Price
	})
	now := time.Now().UTC()
	results := make([]domain.PriceResult, 0, len(retained))
	for i, m := range retained {
		c := m.Candidate
		currency := c.Currency
		if currency == "" {
			currency = p.Currency
		}
		results = append(results, domain.PriceResult{
			ID:               uuid.New().String(),
			JobID:            job.ID,
			ProductID:        p.ID,
			SourceID:         c.SourceID,
			Title:            c.Title,
			Merchant:         c.Merchant,
			URL:              c.URL,
			Price:            c.Price,
			Currency:         currency,
			PriceIncludesTax: c.PriceIncludesTax,
			ShippingCost:     c.ShippingCost,
			Available:        c.Available,
			Confidence:       m.Score,
			IsLowestPrice:    i == 0,
			ScrapedAt:        now,
		})
	}
	return results
}

// SearchTerm builds the adapter query from brand, product name and variant
// descriptor, skipping absent fields.
func SearchTerm(p domain.Product) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Brand, p.Name, p.Variant} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// selectAdapters picks the adapters for the job's configured source ids,
// ordered by descending source priority. Ties keep the registry's insertion
// order so runs are reproducible. Configured ids with no adapter are skipped
// with a warning.
func (o *Orchestrator) selectAdapters(sourceIDs []string) []ports.SourceAdapter {
	want := make(map[string]bool, len(sourceIDs))
	for _, id := range sourceIDs {
		want[id] = true
	}
	var selected []ports.SourceAdapter
	for _, ad := range o.registry.All() {
		id := ad.SourceConfig().ID
		if want[id] {
			selected = append(selected, ad)
			delete(want, id)
		}
	}
	for id := range want {
		o.log.WithField("source_id", id).Warn("configured source has no adapter, skipping")
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].SourceConfig().Priority > selected[j].SourceConfig().Priority
	})
	return selected
}

// applyEvent advances the snapshot of the identified job. Events are
// discarded when the job was stopped or is no longer the current one, so a
// loop draining after Stop can never touch a successor job's state.
func (o *Orchestrator) applyEvent(jobID string, ev domain.Event) (domain.ScrapeJob, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil || o.current.ID != jobID {
		return domain.ScrapeJob{}, true, nil
	}
	if o.current.Status == domain.JobStopped {
		return *o.current, true, nil
	}
	next, err := domain.Apply(*o.current, ev)
	if err != nil {
		return *o.current, false, err
	}
	o.current = &next
	return next, false, nil
}

// stopped reports whether the identified job should abandon its run loop:
// stopped explicitly, or superseded as the current job.
func (o *Orchestrator) stopped(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil || o.current.ID != jobID {
		return true
	}
	return o.current.Status == domain.JobStopped
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *Orchestrator) report(ctx context.Context, p domain.JobProgress) {
	if o.progress == nil {
		return
	}
	if err := o.progress.ReportProgress(ctx, p); err != nil {
		o.log.WithError(err).WithField("job_id", p.JobID).Warn("progress report failed")
	}
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
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
