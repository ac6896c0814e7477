package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.KeyEnvName != "DEVTO_API_KEY" {
		t.Errorf("KeyEnvName = %q, want DEVTO_API_KEY", cfg.KeyEnvName)
	}
	if cfg.BaseURL != "https://dev.to/api" {
		t.Errorf("BaseURL = %q, want https://dev.to/api", cfg.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") should succeed: %v", err)
	}
	if cfg != Default() {
		t.Error("Load(\"\") should return defaults unchanged")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail for an explicitly named missing file")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := "key_env: FOREM_TOKEN\nhttp_addr: \":8080\"\ntimeout: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.KeyEnvName != "FOREM_TOKEN" {
		t.Errorf("KeyEnvName = %q, want FOREM_TOKEN", cfg.KeyEnvName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	// Fields the file doesn't mention keep their defaults.
	if cfg.BaseURL != Default().BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvHTTPAddr, ":9999")
	t.Setenv(EnvKeyName, "MY_TOKEN")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
	if cfg.KeyEnvName != "MY_TOKEN" {
		t.Errorf("KeyEnvName = %q, want MY_TOKEN", cfg.KeyEnvName)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.KeyEnvName = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty key_env should not validate")
	}

	cfg = Default()
	cfg.Timeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("negative timeout should not validate")
	}
}

func TestResolveAPIKeyReadsAtCallTime(t *testing.T) {
	cfg := Default()
	cfg.KeyEnvName = "TEST_DEVTO_KEY_RESOLVE"

	t.Setenv("TEST_DEVTO_KEY_RESOLVE", "")
	if got := cfg.ResolveAPIKey(); got != "" {
		t.Errorf("ResolveAPIKey = %q, want empty", got)
	}

	t.Setenv("TEST_DEVTO_KEY_RESOLVE", "later-key")
	if got := cfg.ResolveAPIKey(); got != "later-key" {
		t.Errorf("ResolveAPIKey = %q, want later-key (no caching)", got)
	}
}
