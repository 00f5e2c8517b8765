// Package sources contains the pluggable retail-source connectors and the
// id-keyed registry the orchestrator selects them from. Connectors are
// generic and settings-driven; no retailer-specific parsing rules live here.
package sources

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"pricescout/internal/domain"
	"pricescout/internal/ports"
)

// Registry holds the adapters built from the supplied source configurations,
// keyed by source id. Insertion order follows the configuration list.
type Registry struct {
	byID  map[string]ports.SourceAdapter
	order []ports.SourceAdapter
}

// NewRegistry instantiates one adapter per active source configuration.
// Inactive sources, duplicate ids and configurations whose adapter kind is
// not recognized are skipped with a warning, never a fatal error.
func NewRegistry(configs []domain.SourceConfig, log *logrus.Logger) *Registry {
	r := &Registry{byID: make(map[string]ports.SourceAdapter, len(configs))}
	for _, cfg := range configs {
		slog := log.WithFields(logrus.Fields{"source_id": cfg.ID, "source": cfg.Name})
		if !cfg.IsActive {
			slog.Debug("source inactive, skipping")
			continue
		}
		if _, dup := r.byID[cfg.ID]; dup {
			slog.Warn("duplicate source id, skipping")
			continue
		}
		ad, err := newAdapter(cfg)
		if err != nil {
			slog.WithError(err).Warn("source not recognized, skipping")
			continue
		}
		r.byID[cfg.ID] = ad
		r.order = append(r.order, ad)
	}
	return r
}

func newAdapter(cfg domain.SourceConfig) (ports.SourceAdapter, error) {
	switch kind := cfg.Settings["adapter"]; kind {
	case "jsonapi":
		return NewJSONAPIAdapter(cfg)
	case "htmlpage":
		return NewHTMLPageAdapter(cfg)
	case "mock":
		return NewMockAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unrecognized adapter kind %q", kind)
	}
}

func (r *Registry) Get(id string) (ports.SourceAdapter, bool) {
	ad, ok := r.byID[id]
	return ad, ok
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.order))
	for _, ad := range r.order {
		ids = append(ids, ad.SourceConfig().ID)
	}
	return ids
}

func (r *Registry) All() []ports.SourceAdapter {
	out := make([]ports.SourceAdapter, len(r.order))
	copy(out, r.order)
	return out
}
