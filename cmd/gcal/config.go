package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cyp0633/libgcal/gcal"
	"gopkg.in/yaml.v3"
)

// TokenEnv overrides the token from the config file
const TokenEnv = "GCAL_TOKEN"

// fileConfig is the on-disk YAML configuration
type fileConfig struct {
	Token        string        `yaml:"token"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRedirects int           `yaml:"max_redirects"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gcal", "config.yaml")
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file is not an error; a missing explicit one is.
func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config YAML: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if token := os.Getenv(TokenEnv); token != "" {
		cfg.Token = token
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", cfg.Timeout)
	}
	return cfg, nil
}

// sessionConfig converts the file configuration into library configuration
func (c *fileConfig) sessionConfig(logger *slog.Logger) *gcal.Config {
	cfg := gcal.DefaultConfig()
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	cfg.Timeout = c.Timeout
	if c.MaxRedirects > 0 {
		cfg.MaxRedirects = c.MaxRedirects
	}
	cfg.Logger = logger
	return cfg
}
