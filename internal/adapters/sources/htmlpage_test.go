package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"pricescout/internal/domain"
)

const searchResultsPage = `<!DOCTYPE html>
<html><body>
<div class="hit">
  <span class="title">Glanzol Cleaner 500ml</span>
  <span class="price">€ 14,95</span>
  <span class="merchant">Cleanshop</span>
  <a href="/product/1">details</a>
</div>
<div class="hit">
  <span class="title">Glanzol Cleaner 1l</span>
  <span class="price">€ 24,95</span>
  <a href="/product/2">details</a>
</div>
</body></html>`

func htmlConfig(srvURL string) domain.SourceConfig {
	return domain.SourceConfig{
		ID:       "html-src",
		Name:     "HTML Source",
		BaseURL:  srvURL,
		IsActive: true,
		Settings: map[string]string{
			"adapter":         "htmlpage",
			"search_url":      srvURL + "/search?q=%s",
			"result_selector": "div.hit",
		},
	}
}

func TestHTMLPageAdapterFirstRowWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	a, err := NewHTMLPageAdapter(htmlConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewHTMLPageAdapter: %v", err)
	}
	cand, err := a.ScrapeProduct(context.Background(), "Glanzol Cleaner")
	if err != nil {
		t.Fatalf("ScrapeProduct: %v", err)
	}
	if cand == nil {
		t.Fatal("no candidate returned")
	}
	if cand.Title != "Glanzol Cleaner 500ml" || cand.Price != 14.95 {
		t.Errorf("candidate = %+v, want the first row", cand)
	}
	if cand.URL != srv.URL+"/product/1" {
		t.Errorf("link not absolutized: %q", cand.URL)
	}
	if cand.Merchant != "Cleanshop" || cand.SourceID != "html-src" {
		t.Errorf("candidate fields = %+v", cand)
	}
}

func TestHTMLPageAdapterNoMatchingRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>no results</p></body></html>`))
	}))
	defer srv.Close()

	a, _ := NewHTMLPageAdapter(htmlConfig(srv.URL))
	cand, err := a.ScrapeProduct(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("ScrapeProduct: %v", err)
	}
	if cand != nil {
		t.Errorf("candidate = %+v, want nil", cand)
	}
}

func TestHTMLPageAdapterSequentialCallsIndependent(t *testing.T) {
	// The base collector must stay callback-free; a leaked callback would
	// double-fire on the second call.
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	a, _ := NewHTMLPageAdapter(htmlConfig(srv.URL))
	for i := 0; i < 2; i++ {
		cand, err := a.ScrapeProduct(context.Background(), "cleaner")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if cand == nil || cand.Title != "Glanzol Cleaner 500ml" {
			t.Fatalf("call %d candidate = %+v", i, cand)
		}
	}
	if calls != 2 {
		t.Errorf("server hits = %d, want 2", calls)
	}
}

func TestHTMLPageAdapterRejectsIncompleteSettings(t *testing.T) {
	cfg := htmlConfig("http://example.com")
	delete(cfg.Settings, "search_url")
	if _, err := NewHTMLPageAdapter(cfg); err == nil {
		t.Error("missing search_url accepted")
	}

	cfg = htmlConfig("http://example.com")
	delete(cfg.Settings, "result_selector")
	if _, err := NewHTMLPageAdapter(cfg); err == nil {
		t.Error("missing result_selector accepted")
	}
}

func TestHTMLPageAdapterCancelledContext(t *testing.T) {
	a, _ := NewHTMLPageAdapter(htmlConfig("http://127.0.0.1:1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.ScrapeProduct(ctx, "anything"); err == nil {
		t.Error("cancelled context not honored")
	}
}
