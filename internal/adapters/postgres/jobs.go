package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"pricescout/internal/domain"
	"pricescout/internal/ports"
)

// CreateJob inserts the full job record, pending.
func (db *DB) CreateJob(ctx context.Context, job domain.ScrapeJob) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO scrape_jobs (
            id, name, supplier_id, status,
            sources, batch_size, delay_between_batches_ms, max_retries, confidence_threshold,
            total_products, processed_products, successful_products, failed_products
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, job.ID, job.Name, job.SupplierID, string(job.Status),
		job.Config.Sources, job.Config.BatchSize, job.Config.DelayBetweenBatches.Milliseconds(),
		job.Config.MaxRetries, job.Config.ConfidenceThreshold,
		job.TotalProducts, job.ProcessedProducts, job.SuccessfulProducts, job.FailedProducts)
	return err
}

// DeleteJob removes a job record by id. Used for rows whose launch never
// happened; results reference jobs only by id, nothing cascades.
func (db *DB) DeleteJob(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM scrape_jobs WHERE id = $1`, id)
	return err
}

// ReportProgress writes a progress snapshot onto the job row. Implements the
// durable side of the progress boundary; the orchestrator treats failures as
// log-and-continue.
func (db *DB) ReportProgress(ctx context.Context, p domain.JobProgress) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
        UPDATE scrape_jobs SET
            status = $2,
            total_products = $3,
            processed_products = $4,
            successful_products = $5,
            failed_products = $6,
            started_at = COALESCE($7, started_at),
            completed_at = COALESCE($8, completed_at),
            error_message = NULLIF($9, '')
        WHERE id = $1
    `, p.JobID, string(p.Status),
		p.TotalProducts, p.ProcessedProducts, p.SuccessfulProducts, p.FailedProducts,
		p.StartedAt, p.CompletedAt, p.ErrorMessage)
	return err
}

// GetJob fetches a job record by id.
func (db *DB) GetJob(ctx context.Context, id string) (domain.ScrapeJob, error) {
	var (
		job     domain.ScrapeJob
		status  string
		delayMs int64
		errMsg  *string
	)
	err := db.Pool.QueryRow(ctx, `
        SELECT id, name, supplier_id, status,
               sources, batch_size, delay_between_batches_ms, max_retries, confidence_threshold,
               total_products, processed_products, successful_products, failed_products,
               started_at, completed_at, error_message
        FROM scrape_jobs WHERE id = $1
    `, id).Scan(&job.ID, &job.Name, &job.SupplierID, &status,
		&job.Config.Sources, &job.Config.BatchSize, &delayMs,
		&job.Config.MaxRetries, &job.Config.ConfidenceThreshold,
		&job.TotalProducts, &job.ProcessedProducts, &job.SuccessfulProducts, &job.FailedProducts,
		&job.StartedAt, &job.CompletedAt, &errMsg)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScrapeJob{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.ScrapeJob{}, err
	}
	job.Status = domain.JobStatus(status)
	job.Config.DelayBetweenBatches = time.Duration(delayMs) * time.Millisecond
	if errMsg != nil {
		job.ErrorMessage = *errMsg
	}
	return job, nil
}
