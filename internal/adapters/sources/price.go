package sources

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	userAgent      = "pricescout/1.0"
	requestTimeout = 20 * time.Second
	maxBodySize    = 4 << 20
)

// ParsePrice extracts a positive amount from a merchant-formatted price
// string such as "€ 1.234,56", "$1,299.99" or "19,95". The decimal separator
// is taken to be whichever of '.' and ',' appears last.
func ParsePrice(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	raw := b.String()
	if raw == "" {
		return 0, false
	}
	if strings.LastIndexByte(raw, ',') > strings.LastIndexByte(raw, '.') {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	} else {
		raw = strings.ReplaceAll(raw, ",", "")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// probeURL is the shared liveness check: any response below 500 counts as
// alive, the source is merely expected to answer.
func probeURL(ctx context.Context, client *http.Client, rawURL string) bool {
	if rawURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
