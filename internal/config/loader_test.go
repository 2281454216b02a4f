package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsWhenNoFileOrEnv(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Admission.MaxConcurrentItems != 10 {
		t.Fatalf("expected default max_concurrent_items 10, got %d", cfg.Admission.MaxConcurrentItems)
	}
	if cfg.Strategy.DirectMax != 3 || cfg.Strategy.ParallelMax != 6 || cfg.Strategy.StrategicMax != 10 {
		t.Fatalf("unexpected default strategy thresholds: %+v", cfg.Strategy)
	}
	if cfg.Planner.MaxBatchSize != 6 {
		t.Fatalf("expected default max_batch_size 6, got %d", cfg.Planner.MaxBatchSize)
	}
	if cfg.Analytics.CacheTTL != 5*time.Minute {
		t.Fatalf("expected default analytics cache TTL 5m, got %v", cfg.Analytics.CacheTTL)
	}
	if cfg.Insights.TTL != 24*time.Hour {
		t.Fatalf("expected default insight TTL 24h, got %v", cfg.Insights.TTL)
	}
	if cfg.Storage.Backend != "jsonfile" {
		t.Fatalf("expected default backend jsonfile, got %q", cfg.Storage.Backend)
	}
}

func TestYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarmgate.yaml")
	data := []byte(`
planner:
  max_batch_size: 4
strategy:
  domain_breadth: 5
storage:
  backend: memory
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Planner.MaxBatchSize != 4 {
		t.Fatalf("expected yaml max_batch_size 4, got %d", cfg.Planner.MaxBatchSize)
	}
	if cfg.Strategy.DomainBreadth != 5 {
		t.Fatalf("expected yaml domain_breadth 5, got %d", cfg.Strategy.DomainBreadth)
	}
	// Untouched keys keep their defaults.
	if cfg.Strategy.DirectMax != 3 {
		t.Fatalf("expected default direct_max 3, got %d", cfg.Strategy.DirectMax)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarmgate.yaml")
	if err := os.WriteFile(path, []byte("planner:\n  max_batch_size: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SWARMGATE_PLANNER_MAX_BATCH", "5")
	t.Setenv("SWARMGATE_STORAGE_BACKEND", "memory")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Planner.MaxBatchSize != 5 {
		t.Fatalf("expected env max_batch_size 5, got %d", cfg.Planner.MaxBatchSize)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("expected env backend memory, got %q", cfg.Storage.Backend)
	}
}

func TestValidateRejectsIncoherentThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarmgate.yaml")
	if err := os.WriteFile(path, []byte("strategy:\n  parallel_max: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for parallel_max < direct_max")
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarmgate.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: redis\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}
