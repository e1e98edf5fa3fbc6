package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	if cfg.MaxPages != 10 {
		t.Errorf("expected default max_pages 10, got %d", cfg.MaxPages)
	}
	if cfg.ChunkSize != 500 {
		t.Errorf("expected default chunk_size 500, got %d", cfg.ChunkSize)
	}
	if cfg.MaxConcurrent != 5 {
		t.Errorf("expected default max_concurrent 5, got %d", cfg.MaxConcurrent)
	}
	if cfg.SearchThreshold != 0.4 {
		t.Errorf("expected default search_threshold 0.4, got %v", cfg.SearchThreshold)
	}
	if cfg.NavTimeout() != 60*time.Second {
		t.Errorf("expected 60s navigation timeout, got %v", cfg.NavTimeout())
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive should be disabled without a minio endpoint")
	}
}

func TestLoadConfigYamlOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "max_pages: 25\nchunk_size: 800\nrender_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadConfigFrom(path)

	if cfg.MaxPages != 25 {
		t.Errorf("expected max_pages 25 from yaml, got %d", cfg.MaxPages)
	}
	if cfg.ChunkSize != 800 {
		t.Errorf("expected chunk_size 800 from yaml, got %d", cfg.ChunkSize)
	}
	if cfg.RenderWait() != 5*time.Second {
		t.Errorf("expected 5s render timeout, got %v", cfg.RenderWait())
	}
	// untouched keys keep their defaults
	if cfg.MaxConcurrent != 5 {
		t.Errorf("expected default max_concurrent 5, got %d", cfg.MaxConcurrent)
	}
}

func TestParseDurationFallback(t *testing.T) {
	if got := parseDuration("not-a-duration", 7*time.Second); got != 7*time.Second {
		t.Errorf("expected fallback 7s, got %v", got)
	}
	if got := parseDuration("-3s", time.Second); got != time.Second {
		t.Errorf("expected fallback for negative duration, got %v", got)
	}
}
