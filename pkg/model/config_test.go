package model

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	// 1. Empty path returns working defaults
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Defaults should load cleanly: %v", err)
	}
	if cfg.BaseURL == "" || cfg.EmbeddingWidth <= 0 {
		t.Errorf("Default config is not usable: %+v", cfg)
	}

	// 2. Values from the file override the defaults
	path := writeConfig(t, "base_url: http://example:9000\nembedding_width: 128\n")
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "http://example:9000" || cfg.EmbeddingWidth != 128 {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	// Unset fields keep their defaults
	if cfg.Timeout != DefaultConfig().Timeout {
		t.Errorf("Timeout default was lost: %v", cfg.Timeout)
	}

	// 3. Environment references are expanded before decoding
	t.Setenv("MODEL_HOST", "model-host:7777")
	path = writeConfig(t, "base_url: http://${MODEL_HOST}\n")
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "http://model-host:7777" {
		t.Errorf("Environment expansion failed: %q", cfg.BaseURL)
	}

	// 4. Unknown keys are rejected (strict mode)
	path = writeConfig(t, "base_url: http://x\nembeding_width: 12\n")
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected an error for a misspelled key")
	}

	// 5. A zero embedding width is rejected
	path = writeConfig(t, "embedding_width: 0\n")
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected an error for embedding_width 0")
	}

	// 6. A missing file is an error, not a silent fallback
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}
