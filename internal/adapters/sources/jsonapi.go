package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"pricescout/internal/domain"
)

// JSONAPIAdapter queries a retailer's JSON search endpoint. The gjson paths
// locating the result fields come from the source settings blob:
//
//	search_path    – request path with a %s placeholder for the escaped query
//	items_path     – gjson path of the result array in the response
//	title_path, price_path, url_path, merchant_path,
//	shipping_path, available_path – item-relative field paths
//	currency       – currency code the source quotes in
//	price_includes_tax – "true" or "false"
//
// Unset keys fall back to common defaults, so a well-behaved endpoint needs
// no settings beyond the adapter kind.
type JSONAPIAdapter struct {
	cfg    domain.SourceConfig
	client *http.Client
}

func NewJSONAPIAdapter(cfg domain.SourceConfig) (*JSONAPIAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("jsonapi adapter requires a base URL")
	}
	return &JSONAPIAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
	}, nil
}

func (a *JSONAPIAdapter) ScrapeProduct(ctx context.Context, term string) (*domain.Candidate, error) {
	path := a.setting("search_path", "/api/search?q=%s")
	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") + fmt.Sprintf(path, url.QueryEscape(term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	items := gjson.GetBytes(body, a.setting("items_path", "results")).Array()
	if len(items) == 0 {
		return nil, nil
	}
	item := items[0]

	title := item.Get(a.setting("title_path", "title")).String()
	price := item.Get(a.setting("price_path", "price")).Float()
	if title == "" || price <= 0 {
		return nil, nil
	}

	link := item.Get(a.setting("url_path", "url")).String()
	switch {
	case link == "":
		link = a.cfg.BaseURL
	case strings.HasPrefix(link, "/"):
		link = strings.TrimRight(a.cfg.BaseURL, "/") + link
	}

	merchant := item.Get(a.setting("merchant_path", "merchant")).String()
	if merchant == "" {
		merchant = a.cfg.Name
	}

	available := true
	if av := item.Get(a.setting("available_path", "available")); av.Exists() {
		available = av.Bool()
	}

	return &domain.Candidate{
		SourceID:         a.cfg.ID,
		Title:            title,
		Merchant:         merchant,
		URL:              link,
		Price:            price,
		Currency:         a.setting("currency", "EUR"),
		PriceIncludesTax: a.setting("price_includes_tax", "true") == "true",
		ShippingCost:     item.Get(a.setting("shipping_path", "shipping")).Float(),
		Available:        available,
	}, nil
}

func (a *JSONAPIAdapter) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	target := a.cfg.BaseURL
	if p := a.cfg.Settings["health_path"]; p != "" {
		target = strings.TrimRight(a.cfg.BaseURL, "/") + p
	}
	return probeURL(ctx, a.client, target)
}

func (a *JSONAPIAdapter) SourceConfig() domain.SourceConfig {
	return a.cfg
}

func (a *JSONAPIAdapter) setting(key, def string) string {
	if v := a.cfg.Settings[key]; v != "" {
		return v
	}
	return def
}
