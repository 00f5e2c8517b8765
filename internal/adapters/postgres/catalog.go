package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"pricescout/internal/domain"
)

// ListActiveSources loads the configured retail sources, configuration order
// preserved via the priority column and insertion id.
func (db *DB) ListActiveSources(ctx context.Context) ([]domain.SourceConfig, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, name, base_url, country, is_active, priority, rate_limit,
               COALESCE(settings, '{}'::jsonb),
               COALESCE(allow_domains, '{}'),
               COALESCE(deny_domains, '{}')
        FROM sources
        WHERE is_active
        ORDER BY priority DESC, created_at
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []domain.SourceConfig
	for rows.Next() {
		var (
			cfg domain.SourceConfig
			raw []byte
		)
		if err := rows.Scan(&cfg.ID, &cfg.Name, &cfg.BaseURL, &cfg.Country, &cfg.IsActive,
			&cfg.Priority, &cfg.RateLimit, &raw, &cfg.AllowDomains, &cfg.DenyDomains); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &cfg.Settings); err != nil {
			return nil, fmt.Errorf("source %s settings: %w", cfg.ID, err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// ListProductsBySupplier loads the supplier's normalized catalog in a stable
// order so batch composition is reproducible.
func (db *DB) ListProductsBySupplier(ctx context.Context, supplierID string) ([]domain.Product, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, brand, name, variant, COALESCE(ean, ''), wholesale_price, currency, supplier_id
        FROM products
        WHERE supplier_id = $1
        ORDER BY brand, name, variant
    `, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Brand, &p.Name, &p.Variant, &p.EAN,
			&p.WholesalePrice, &p.Currency, &p.SupplierID); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
