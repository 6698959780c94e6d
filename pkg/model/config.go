package model

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines how to reach the neural proposal service.
type Config struct {
	// BaseURL is the root of the service, e.g. "http://localhost:9141".
	BaseURL string `yaml:"base_url"`

	// EmbeddingWidth is the dimensionality of the encodings the service
	// produces. Scope matrices are shaped against this.
	EmbeddingWidth int `yaml:"embedding_width"`

	// Timeout bounds each HTTP call.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a working configuration for a local service.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:9141",
		EmbeddingWidth: 64,
		Timeout:        60 * time.Second,
	}
}

// LoadConfig reads the YAML configuration file using strict parsing.
// Environment references like ${MODEL_URL} are expanded before decoding.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read model config '%s': %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))

	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	if cfg.EmbeddingWidth <= 0 {
		return cfg, fmt.Errorf("embedding_width must be positive, got %d", cfg.EmbeddingWidth)
	}
	return cfg, nil
}
