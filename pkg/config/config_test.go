package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	def := DefaultConfig()
	if cfg.Tour.Centroids != def.Tour.Centroids || cfg.Tour.Metric != def.Tour.Metric {
		t.Errorf("missing file should yield defaults, got %+v", cfg.Tour)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Tour.Centroids = 7
	cfg.Tour.Bandwidth = 2.5
	cfg.Tour.Metric = "maxnorm"
	cfg.RememberDataset("/data/cars.csv")

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Tour.Centroids != 7 || got.Tour.Bandwidth != 2.5 || got.Tour.Metric != "maxnorm" {
		t.Errorf("round trip lost tour settings: %+v", got.Tour)
	}
	if len(got.Recent) != 1 || got.Recent[0] != "/data/cars.csv" {
		t.Errorf("round trip lost recent list: %v", got.Recent)
	}
}

func TestLoadFrom_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\nnot yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("malformed yaml should error")
	}
}

func TestRememberDataset_DedupAndCap(t *testing.T) {
	var cfg Config
	for i := 0; i < 12; i++ {
		cfg.RememberDataset(filepath.Join("/d", string(rune('a'+i))))
	}
	cfg.RememberDataset("/d/a")
	if len(cfg.Recent) > 10 {
		t.Errorf("recent list grew to %d entries", len(cfg.Recent))
	}
	if cfg.Recent[0] != "/d/a" {
		t.Errorf("most recent dataset should be first, got %v", cfg.Recent[0])
	}
	seen := map[string]bool{}
	for _, p := range cfg.Recent {
		if seen[p] {
			t.Errorf("duplicate entry %q", p)
		}
		seen[p] = true
	}
}
