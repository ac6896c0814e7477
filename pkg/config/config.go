// Package config holds runtime configuration for the publisher server.
// Precedence, lowest to highest: built-in defaults, YAML config file,
// environment variables, command-line flags (applied by the CLI).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devto-publisher/devto-publisher/pkg/defaults"
)

// Env variable names understood by ApplyEnv.
const (
	EnvHTTPAddr    = "DEVTO_PUBLISHER_HTTP_ADDR"
	EnvMetricsAddr = "DEVTO_PUBLISHER_METRICS_ADDR"
	EnvBaseURL     = "DEVTO_PUBLISHER_BASE_URL"
	EnvKeyName     = "DEVTO_PUBLISHER_KEY_ENV"
)

// Config holds all server configuration options.
type Config struct {
	// KeyEnvName is the environment variable the dev.to API key is read
	// from at invocation time. The key itself is never stored here.
	KeyEnvName string `yaml:"key_env"`

	// BaseURL is the dev.to API base URL. Overridden in tests and for
	// self-hosted Forem instances.
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-publish HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`

	// HTTPAddr, when non-empty, serves the MCP streamable HTTP
	// transport on this address instead of stdio.
	HTTPAddr string `yaml:"http_addr"`

	// MetricsAddr, when non-empty, serves Prometheus metrics on this
	// address (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		KeyEnvName: defaults.APIKeyEnv,
		BaseURL:    defaults.DevtoBaseURL,
		Timeout:    defaults.HTTPTimeout,
	}
}

// Load reads a YAML config file over the defaults. A missing path is
// not an error; it returns Default() unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variable overrides onto c.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvKeyName); v != "" {
		c.KeyEnvName = v
	}
}

// Validate checks for configuration that cannot work at all.
func (c Config) Validate() error {
	if c.KeyEnvName == "" {
		return fmt.Errorf("key_env must not be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative (got %s)", c.Timeout)
	}
	return nil
}

// ResolveAPIKey reads the credential from the process environment.
// Called once per publish invocation; the result is never cached, so a
// key exported after startup is picked up by the next call.
func (c Config) ResolveAPIKey() string {
	return os.Getenv(c.KeyEnvName)
}
