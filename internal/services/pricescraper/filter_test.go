package pricescraper

import (
	"testing"

	"pricescout/internal/domain"
)

func TestAllowURL(t *testing.T) {
	tests := []struct {
		name  string
		allow []string
		deny  []string
		url   string
		want  bool
	}{
		{
			name: "no lists admits everything",
			url:  "https://shop.example.com/p/1",
			want: true,
		},
		{
			name: "deny exact host",
			deny: []string{"shop.example.com"},
			url:  "https://shop.example.com/p/1",
			want: false,
		},
		{
			name: "deny registrable domain blocks subdomain",
			deny: []string{"example.com"},
			url:  "https://www.shop.example.com/p/1",
			want: false,
		},
		{
			name: "deny is case-insensitive",
			deny: []string{"Example.COM"},
			url:  "https://EXAMPLE.com/p/1",
			want: false,
		},
		{
			name:  "allow list excludes other hosts",
			allow: []string{"trusted.example.com"},
			url:   "https://other.example.org/p/1",
			want:  false,
		},
		{
			name:  "allow list admits listed host",
			allow: []string{"trusted.example.com"},
			url:   "https://trusted.example.com/p/1",
			want:  true,
		},
		{
			name:  "deny wins over allow",
			allow: []string{"example.com"},
			deny:  []string{"outlet.example.com"},
			url:   "https://outlet.example.com/p/1",
			want:  false,
		},
		{
			name: "unparseable url rejected",
			url:  "::not a url::",
			want: false,
		},
		{
			name: "url without host rejected",
			url:  "/relative/path",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.SourceConfig{ID: "s1", AllowDomains: tt.allow, DenyDomains: tt.deny}
			// Same inputs must give the same answer on every invocation.
			for i := 0; i < 3; i++ {
				if got := AllowURL(cfg, tt.url); got != tt.want {
					t.Fatalf("AllowURL(%q) call %d = %v, want %v", tt.url, i+1, got, tt.want)
				}
			}
		})
	}
}
