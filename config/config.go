// Package config loads server settings from a TOML file with environment
// variable overrides, and manages the server-side fallback credential file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds server settings.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `toml:"listen_addr"`

	// DataDir holds the SQLite database and the credential file.
	DataDir string `toml:"data_dir"`

	// SiteURL identifies this deployment to OpenRouter (HTTP-Referer).
	SiteURL string `toml:"site_url"`

	// AppTitle identifies this deployment to OpenRouter (X-Title).
	AppTitle string `toml:"app_title"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		DataDir:    DefaultDataDir(),
		SiteURL:    "",
		AppTitle:   "",
		LogLevel:   "info",
	}
}

// DefaultDataDir returns ~/.local/share/scrapingai.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".local", "share", "scrapingai")
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist, then applies environment overrides. A missing file
// is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets deployment environments override file settings.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SCRAPINGAI_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SCRAPINGAI_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		cfg.SiteURL = v
	}
	if v := os.Getenv("SCRAPINGAI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
