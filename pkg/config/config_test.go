package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "generator:\n  max_nodes: 500\nview_analysis:\n  ray_count: 2000\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.MaxNodes != 500 {
		t.Fatalf("Generator.MaxNodes = %v, want 500 (explicit)", cfg.Generator.MaxNodes)
	}
	if cfg.Generator.SpacingX != 1 {
		t.Fatalf("Generator.SpacingX = %v, want default 1", cfg.Generator.SpacingX)
	}
	if cfg.ViewAnalysis.RayCount != 2000 {
		t.Fatalf("ViewAnalysis.RayCount = %v, want 2000 (explicit)", cfg.ViewAnalysis.RayCount)
	}
	if cfg.ViewAnalysis.MaxDistance != 100 {
		t.Fatalf("ViewAnalysis.MaxDistance = %v, want default 100", cfg.ViewAnalysis.MaxDistance)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("MetricsAddr = %v, want default :9090", cfg.MetricsAddr)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatalf("Load of missing file should error")
	}
}
