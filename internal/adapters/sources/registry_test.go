package sources

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"pricescout/internal/domain"
)

func registryLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func mockConfig(id string) domain.SourceConfig {
	return domain.SourceConfig{
		ID:       id,
		Name:     "Mock " + id,
		IsActive: true,
		Settings: map[string]string{"adapter": "mock"},
	}
}

func TestNewRegistrySkipsUnusableConfigs(t *testing.T) {
	inactive := mockConfig("sleepy")
	inactive.IsActive = false

	unknown := mockConfig("weird")
	unknown.Settings = map[string]string{"adapter": "carrier-pigeon"}

	// Second occurrence of an id loses.
	configs := []domain.SourceConfig{
		mockConfig("alpha"),
		inactive,
		unknown,
		mockConfig("beta"),
		mockConfig("alpha"),
	}
	r := NewRegistry(configs, registryLogger())

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "beta" {
		t.Fatalf("IDs() = %v, want [alpha beta] in configuration order", ids)
	}

	if _, ok := r.Get("alpha"); !ok {
		t.Error("Get(alpha) not found")
	}
	if _, ok := r.Get("sleepy"); ok {
		t.Error("inactive source registered")
	}
	if _, ok := r.Get("weird"); ok {
		t.Error("unrecognized adapter kind registered")
	}
	if got := len(r.All()); got != 2 {
		t.Errorf("All() = %d adapters, want 2", got)
	}
}

func TestNewRegistryMisconfiguredAdapterSkipped(t *testing.T) {
	// jsonapi without a base URL fails construction but must not abort the
	// rest of the registry.
	broken := domain.SourceConfig{
		ID:       "broken",
		IsActive: true,
		Settings: map[string]string{"adapter": "jsonapi"},
	}
	r := NewRegistry([]domain.SourceConfig{broken, mockConfig("ok")}, registryLogger())

	if _, ok := r.Get("broken"); ok {
		t.Error("adapter without base URL registered")
	}
	if _, ok := r.Get("ok"); !ok {
		t.Error("valid source lost after a construction failure")
	}
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r := NewRegistry([]domain.SourceConfig{mockConfig("a"), mockConfig("b")}, registryLogger())
	all := r.All()
	all[0] = nil
	if fresh := r.All(); fresh[0] == nil {
		t.Error("All() exposes internal slice")
	}
}
