package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig holds the persistent settings managed by "config set".
type fileConfig struct {
	FeedURL      string `yaml:"feed_url" json:"feed_url"`
	DownloadDir  string `yaml:"download_dir" json:"download_dir"`
	RateLimitKiB int    `yaml:"rate_limit_kib" json:"rate_limit_kib"`
}

// loadFileConfig reads the config file at path. A missing file is not
// an error; every setting has a flag or environment fallback.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func saveFileConfig(path string, cfg fileConfig) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
