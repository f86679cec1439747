package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFillsDefaultsForZeroFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `
strategy: search_min
explain:
  enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Strategy != "search_min" {
		t.Errorf("expected strategy search_min, got %q", p.Strategy)
	}
	if !p.Explain.Enabled {
		t.Errorf("expected explanations enabled")
	}
	if p.MaxInterpretables != Default().MaxInterpretables {
		t.Errorf("expected default MaxInterpretables to fill in, got %d", p.MaxInterpretables)
	}
	if p.CSV.InfinitySentinel != "inf" {
		t.Errorf("expected default infinity sentinel, got %q", p.CSV.InfinitySentinel)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected an error loading a missing file")
	}
}
