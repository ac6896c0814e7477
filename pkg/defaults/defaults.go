// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for runtime configuration defaults.
//
// Usage:
//
//	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
//	cfg.Timeout = defaults.HTTPTimeout
//
// DO NOT hardcode values like `"https://dev.to/api/articles"` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

import (
	"fmt"
	"time"
)

// Version is the current devto-publisher version.
const Version = "1.2.0"

// ToolName is the canonical binary/server name.
const ToolName = "devto-publisher"

// ToolNameDisplay is the human-readable server title.
const ToolNameDisplay = "Dev.to Blog Publisher"

// ============================================================================
// DEV.TO API
// ============================================================================

const (
	// DevtoBaseURL is the base URL of the Forem/dev.to REST API.
	DevtoBaseURL = "https://dev.to/api"

	// DevtoArticlesPath is the article creation endpoint, relative to the base URL.
	DevtoArticlesPath = "/articles"

	// APIKeyHeader is the header dev.to reads the credential from.
	// The key travels in this header only, never in the body or URL.
	APIKeyHeader = "api-key"

	// APIKeyEnv is the default environment variable holding the credential.
	// Overridable via configuration for non-standard deployments.
	APIKeyEnv = "DEVTO_API_KEY"
)

// ============================================================================
// HTTP
// ============================================================================

const (
	// ContentTypeJSON is the standard JSON content type.
	ContentTypeJSON = "application/json"

	// HTTPTimeout is the total timeout for one publish request (60s).
	// dev.to occasionally queues article creation behind moderation
	// checks, so this is deliberately generous.
	HTTPTimeout = 60 * time.Second

	// DialTimeout is the timeout for establishing connections (10s).
	DialTimeout = 10 * time.Second

	// TLSHandshakeTimeout is the timeout for the TLS handshake (10s).
	TLSHandshakeTimeout = 10 * time.Second

	// IdleConnTimeout is how long idle connections stay pooled (90s).
	IdleConnTimeout = 90 * time.Second
)

// ============================================================================
// MCP SERVER
// ============================================================================

const (
	// HTTPShutdownGrace is how long graceful shutdown drains in-flight
	// requests before giving up (15s).
	HTTPShutdownGrace = 15 * time.Second

	// MetricsPort is the default Prometheus metrics port (9090).
	MetricsPort = 9090

	// MetricsPath is the default Prometheus metrics endpoint path.
	MetricsPath = "/metrics"
)

// UserAgent returns the User-Agent string sent on outbound API calls.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", ToolName, Version)
}
