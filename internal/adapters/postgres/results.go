package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"pricescout/internal/domain"
)

// SaveResults appends the ranked observations for one product in a single
// transaction. Results are an append-only log; rows are never updated.
func (db *DB) SaveResults(ctx context.Context, jobID, productID string, results []domain.PriceResult) error {
	if len(results) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, r := range results {
		if _, err = tx.Exec(ctx, `
            INSERT INTO price_results (
                id, job_id, product_id, source_id,
                title, merchant, url,
                price, currency, price_includes_tax, shipping_cost, available,
                confidence, is_lowest_price, scraped_at
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        `, r.ID, jobID, productID, r.SourceID,
			r.Title, r.Merchant, r.URL,
			r.Price, r.Currency, r.PriceIncludesTax, r.ShippingCost, r.Available,
			r.Confidence, r.IsLowestPrice, r.ScrapedAt); err != nil {
			return err
		}
	}
	// A failed commit must surface as a sink error so the caller counts the
	// product failed instead of trusting rows that never landed.
	return tx.Commit(ctx)
}

// ListResultsByProduct returns a product's observations, newest job first,
// cheapest first within a job.
func (db *DB) ListResultsByProduct(ctx context.Context, productID string) ([]domain.PriceResult, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, job_id, product_id, source_id,
               title, merchant, url,
               price, currency, price_includes_tax, shipping_cost, available,
               confidence, is_lowest_price, scraped_at
        FROM price_results
        WHERE product_id = $1
        ORDER BY scraped_at DESC, price ASC
    `, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.PriceResult
	for rows.Next() {
		var r domain.PriceResult
		if err := rows.Scan(&r.ID, &r.JobID, &r.ProductID, &r.SourceID,
			&r.Title, &r.Merchant, &r.URL,
			&r.Price, &r.Currency, &r.PriceIncludesTax, &r.ShippingCost, &r.Available,
			&r.Confidence, &r.IsLowestPrice, &r.ScrapedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
