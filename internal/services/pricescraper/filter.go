package pricescraper

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"pricescout/internal/domain"
)

// AllowURL reports whether a candidate listing URL passes the source's
// allow/deny domain lists. Deny wins over allow; an empty allow list admits
// everything not denied. The decision is a pure function of its inputs.
func AllowURL(cfg domain.SourceConfig, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		registrable = host
	}
	for _, d := range cfg.DenyDomains {
		if hostMatches(host, registrable, d) {
			return false
		}
	}
	if len(cfg.AllowDomains) == 0 {
		return true
	}
	for _, d := range cfg.AllowDomains {
		if hostMatches(host, registrable, d) {
			return true
		}
	}
	return false
}

func hostMatches(host, registrable, domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	return host == domain || registrable == domain || strings.HasSuffix(host, "."+domain)
}
