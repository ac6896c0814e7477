// Package devto is a minimal client for the Forem/dev.to article API.
// It covers exactly one operation — creating an article — and maps the
// full response/failure space into a single tagged Outcome so callers
// never see an error escape a publish call.
package devto

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/devto-publisher/devto-publisher/pkg/defaults"
	"github.com/devto-publisher/devto-publisher/pkg/httpclient"
)

// Config holds client configuration. The credential is injected here
// rather than read from ambient process state so tests can substitute
// configuration without touching the environment.
type Config struct {
	// APIKey is the dev.to API key. Empty means unconfigured: Publish
	// short-circuits to a ConfigError without any network call.
	APIKey string

	// KeyEnvName is the environment variable the key was (or should
	// have been) resolved from. Used only in the ConfigError message.
	// Default: defaults.APIKeyEnv.
	KeyEnvName string

	// BaseURL overrides the API base URL. Default: defaults.DevtoBaseURL.
	BaseURL string

	// UserAgent overrides the outbound User-Agent header.
	UserAgent string

	// HTTPClient overrides the underlying HTTP client. Default: the
	// shared httpclient.Default() pool.
	HTTPClient *http.Client
}

// Client publishes articles to dev.to. Safe for concurrent use.
type Client struct {
	cfg Config
}

// New creates a Client, filling zero-value config fields with defaults.
func New(cfg Config) *Client {
	if cfg.KeyEnvName == "" {
		cfg.KeyEnvName = defaults.APIKeyEnv
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.DevtoBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpclient.Default()
	}
	return &Client{cfg: cfg}
}

// articleResponse is the slice of the API response we care about:
// url on 201, error on failure statuses.
type articleResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Publish creates one article. One synchronous POST, no retries, no
// idempotency key. Every path — success, API rejection, network
// failure, anything unexpected — resolves to an Outcome; Publish never
// returns an error.
func (c *Client) Publish(ctx context.Context, req ArticleRequest) Outcome {
	if c.cfg.APIKey == "" {
		log.Printf("[devto] %s not set, refusing to publish %q", c.cfg.KeyEnvName, req.Title)
		return configErrorOutcome(c.cfg.KeyEnvName)
	}

	body, err := json.Marshal(buildPayload(req))
	if err != nil {
		return unexpectedErrorOutcome(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+defaults.DevtoArticlesPath, bytes.NewReader(body))
	if err != nil {
		return unexpectedErrorOutcome(err)
	}
	httpReq.Header.Set("Content-Type", defaults.ContentTypeJSON)
	httpReq.Header.Set(defaults.APIKeyHeader, c.cfg.APIKey)
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)

	log.Printf("[devto] publishing %q (published=%t)", req.Title, req.Published)

	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		log.Printf("[devto] request failed: %v", err)
		return transportErrorOutcome(err)
	}
	defer resp.Body.Close()

	return c.classify(resp, req.Title)
}

// classify maps an HTTP response to an Outcome.
// 201 → Success (url extracted when present), anything else → APIError
// with the response's error field or "Unknown error". An unreadable or
// undecodable 201 body counts as a transport failure: the article may
// exist but the response never arrived intact.
func (c *Client) classify(resp *http.Response, title string) Outcome {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportErrorOutcome(err)
	}

	if resp.StatusCode == http.StatusCreated {
		var parsed articleResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return transportErrorOutcome(err)
		}
		log.Printf("[devto] published %q: %s", title, parsed.URL)
		return successOutcome(parsed.URL)
	}

	// Failure body is best-effort: an undecodable body degrades to the
	// generic message, it never raises.
	message := "Unknown error"
	var parsed articleResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != "" {
		message = parsed.Error
	}
	log.Printf("[devto] publish %q rejected: status=%d error=%s", title, resp.StatusCode, message)
	return apiErrorOutcome(resp.StatusCode, message)
}
