package sources

import (
	"context"
	"strings"

	"pricescout/internal/domain"
)

// MockAdapter serves canned candidates and runs fully offline. It backs
// demos and tests; entries are matched in registration order so behavior is
// deterministic.
type MockAdapter struct {
	cfg     domain.SourceConfig
	entries []mockEntry
	healthy bool
}

type mockEntry struct {
	substr    string
	candidate domain.Candidate
}

func NewMockAdapter(cfg domain.SourceConfig) *MockAdapter {
	return &MockAdapter{cfg: cfg, healthy: true}
}

// WithCandidate registers a canned candidate returned for any search term
// containing substr (case-insensitive).
func (m *MockAdapter) WithCandidate(substr string, c domain.Candidate) *MockAdapter {
	c.SourceID = m.cfg.ID
	m.entries = append(m.entries, mockEntry{substr: strings.ToLower(substr), candidate: c})
	return m
}

// WithHealth overrides the liveness probe result.
func (m *MockAdapter) WithHealth(healthy bool) *MockAdapter {
	m.healthy = healthy
	return m
}

func (m *MockAdapter) ScrapeProduct(ctx context.Context, term string) (*domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lower := strings.ToLower(term)
	for _, e := range m.entries {
		if strings.Contains(lower, e.substr) {
			c := e.candidate
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockAdapter) HealthCheck(context.Context) bool {
	return m.healthy
}

func (m *MockAdapter) SourceConfig() domain.SourceConfig {
	return m.cfg
}
