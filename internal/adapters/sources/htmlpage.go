package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"pricescout/internal/domain"
)

// HTMLPageAdapter scrapes a retailer's HTML search results page. The CSS
// selectors come from the source settings blob:
//
//	search_url        – full URL with a %s placeholder for the escaped query
//	result_selector   – selector matching one result row; the first row wins
//	title_selector, price_selector, merchant_selector – child selectors
//	link_selector     – child selector whose href is the listing URL
//	currency, price_includes_tax – as for the jsonapi adapter
type HTMLPageAdapter struct {
	cfg       domain.SourceConfig
	collector *colly.Collector
	client    *http.Client
}

func NewHTMLPageAdapter(cfg domain.SourceConfig) (*HTMLPageAdapter, error) {
	if cfg.Settings["search_url"] == "" {
		return nil, errors.New("htmlpage adapter requires a search_url setting")
	}
	if cfg.Settings["result_selector"] == "" {
		return nil, errors.New("htmlpage adapter requires a result_selector setting")
	}
	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(requestTimeout)
	return &HTMLPageAdapter{
		cfg:       cfg,
		collector: c,
		client:    &http.Client{Timeout: requestTimeout},
	}, nil
}

func (a *HTMLPageAdapter) ScrapeProduct(ctx context.Context, term string) (*domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Collectors accumulate callbacks, so every call scrapes on a clone; the
	// base collector only carries the shared settings.
	c := a.collector.Clone()
	var cand *domain.Candidate
	c.OnHTML(a.cfg.Settings["result_selector"], func(e *colly.HTMLElement) {
		if cand != nil {
			return
		}
		title := strings.TrimSpace(e.ChildText(a.setting("title_selector", ".title")))
		price, ok := ParsePrice(e.ChildText(a.setting("price_selector", ".price")))
		if title == "" || !ok {
			return
		}
		link := e.Request.AbsoluteURL(e.ChildAttr(a.setting("link_selector", "a"), "href"))
		if link == "" {
			link = e.Request.URL.String()
		}
		merchant := strings.TrimSpace(e.ChildText(a.setting("merchant_selector", ".merchant")))
		if merchant == "" {
			merchant = a.cfg.Name
		}
		cand = &domain.Candidate{
			SourceID:         a.cfg.ID,
			Title:            title,
			Merchant:         merchant,
			URL:              link,
			Price:            price,
			Currency:         a.setting("currency", "EUR"),
			PriceIncludesTax: a.setting("price_includes_tax", "true") == "true",
			Available:        true,
		}
	})

	target := fmt.Sprintf(a.cfg.Settings["search_url"], url.QueryEscape(term))
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("visit %s: %w", target, err)
	}
	return cand, nil
}

func (a *HTMLPageAdapter) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return probeURL(ctx, a.client, a.cfg.BaseURL)
}

func (a *HTMLPageAdapter) SourceConfig() domain.SourceConfig {
	return a.cfg
}

func (a *HTMLPageAdapter) setting(key, def string) string {
	if v := a.cfg.Settings[key]; v != "" {
		return v
	}
	return def
}
