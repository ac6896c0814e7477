package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devto-publisher/devto-publisher/pkg/defaults"
	"github.com/devto-publisher/devto-publisher/pkg/devto"
	"github.com/devto-publisher/devto-publisher/pkg/httpclient"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Typed logging level constants — the MCP SDK defines LoggingLevel as a raw
// string type without exported constants. We define them here for type safety.
const (
	logInfo  mcp.LoggingLevel = "info"
	logError mcp.LoggingLevel = "error"
)

// Config holds MCP server configuration.
type Config struct {
	// KeyEnvName is the environment variable the dev.to API key is read
	// from. Named in the error message when the key is missing.
	// Default: defaults.APIKeyEnv.
	KeyEnvName string

	// BaseURL is the dev.to API base URL. Default: defaults.DevtoBaseURL.
	BaseURL string

	// Timeout is the per-publish HTTP timeout. Default: defaults.HTTPTimeout.
	Timeout time.Duration

	// APIKeyLookup resolves the credential. Called once per publish
	// invocation, never cached. Default: read KeyEnvName from the
	// process environment. Tests substitute this to avoid mutating
	// the environment.
	APIKeyLookup func() string

	// HTTPClient overrides the outbound HTTP client (testing).
	HTTPClient *http.Client

	// Metrics, when non-nil, receives tool invocation and publish
	// outcome counts.
	Metrics *Metrics
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server wraps the MCP server with the dev.to publishing tools.
type Server struct {
	mcp    *mcp.Server
	config *Config
	devto  func(apiKey string) *devto.Client // per-invocation client factory
	ready  atomic.Bool                       // tracks whether startup validation passed
}

// MCPServer returns the underlying MCP server for direct access (e.g., testing).
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// MarkReady signals that startup validation passed.
// Until MarkReady is called, the /health endpoint returns 503 Service Unavailable.
func (s *Server) MarkReady() { s.ready.Store(true) }

// IsReady returns true if the server has completed startup validation.
func (s *Server) IsReady() bool { return s.ready.Load() }

// New creates a new MCP server with all tools, resources, and prompts registered.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.KeyEnvName == "" {
		cfg.KeyEnvName = defaults.APIKeyEnv
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.DevtoBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.HTTPTimeout
	}
	if cfg.APIKeyLookup == nil {
		envName := cfg.KeyEnvName
		cfg.APIKeyLookup = func() string { return os.Getenv(envName) }
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpclient.New(httpclient.WithTimeout(cfg.Timeout))
	}

	s := &Server{config: cfg}
	s.devto = func(apiKey string) *devto.Client {
		return devto.New(devto.Config{
			APIKey:     apiKey,
			KeyEnvName: cfg.KeyEnvName,
			BaseURL:    cfg.BaseURL,
			HTTPClient: cfg.HTTPClient,
		})
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    defaults.ToolName,
			Title:   defaults.ToolNameDisplay + " MCP Server",
			Version: defaults.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// RunStdio runs the MCP server over stdio transport.
// This is the primary mode for IDE integrations (VS Code, Claude Desktop,
// Cursor). Stdout carries protocol frames; all logging goes to stderr.
func (s *Server) RunStdio(ctx context.Context) error {
	log.Println("[mcp] stdio transport: protocol on stdout, logs on stderr")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns an http.Handler for the streamable HTTP transport with
// CORS support and a /health endpoint. This is the primary handler for remote
// and Docker deployments.
//
// The handler mounts:
//   - /health  → readiness/liveness probe (GET only)
//   - /sse     → legacy SSE transport for older MCP clients
//   - /mcp     → streamable HTTP transport (2025-03-26 spec)
//   - /        → streamable HTTP transport (default mount)
//
// All endpoints include CORS headers for browser and cross-origin MCP clients.
func (s *Server) HTTPHandler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return s.mcp },
		&mcp.StreamableHTTPOptions{Stateless: false},
	)

	sse := mcp.NewSSEHandler(
		func(_ *http.Request) *mcp.Server { return s.mcp },
		nil, // default SSE options
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/sse", sseKeepAlive(sse))
	mux.Handle("/mcp", streamable)
	mux.Handle("/", streamable)

	return corsMiddleware(recoveryMiddleware(securityHeaders(mux)))
}

// handleHealth serves a readiness/liveness probe.
// Returns 200 once MarkReady() has been called, 503 before that.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", defaults.ContentTypeJSON)
	if !s.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"starting","service":"devto-publisher-mcp"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"devto-publisher-mcp"}`))
}

// corsMiddleware wraps an http.Handler with permissive CORS headers required
// by browser-based MCP clients and cross-origin integrations.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Always set Vary: Origin so caches don't serve a CORS-enabled response
		// to a non-browser client or vice versa.
		w.Header().Add("Vary", "Origin")

		if origin == "" {
			// No Origin header = non-browser client; skip CORS headers entirely.
			// Setting "*" with Allow-Credentials violates the Fetch specification.
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			strings.Join([]string{
				"Content-Type",
				"Authorization",
				"Mcp-Session-Id",
				"MCP-Protocol-Version",
				"Last-Event-ID",
				"Accept",
			}, ", "))
		w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id, MCP-Protocol-Version")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sseKeepAlive wraps an SSE handler to send periodic keep-alive comments.
// This prevents reverse proxies (nginx, AWS ALB, Cloudflare, Docker) from
// closing idle SSE connections. The keep-alive interval (15s) is well within
// the typical 60s idle timeout of most proxies.
const sseKeepAliveInterval = 15 * time.Second

// recoveryMiddleware catches panics in HTTP handlers and returns a 500 error
// instead of killing the connection.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic in HTTP handler: %v\n%s", err, debug.Stack())

				// Best-effort error response: if headers were already sent
				// (e.g., during SSE streaming), WriteHeader is a no-op.
				w.Header().Set("Content-Type", defaults.ContentTypeJSON)
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeaders adds standard defense-in-depth headers preventing
// MIME-sniffing and clickjacking.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

func sseKeepAlive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply keep-alive to SSE streams (text/event-stream).
		accept := r.Header.Get("Accept")
		if !strings.Contains(accept, "text/event-stream") {
			next.ServeHTTP(w, r)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		kw := &keepAliveWriter{
			ResponseWriter: w,
			flusher:        flusher,
			done:           make(chan struct{}),
		}

		go kw.keepAliveLoop()
		defer close(kw.done)

		next.ServeHTTP(kw, r)
	})
}

// keepAliveWriter wraps http.ResponseWriter to send SSE keep-alive comments.
// All writes are serialized through a mutex to prevent data races between
// the keep-alive goroutine and the SSE handler's event writes.
type keepAliveWriter struct {
	mu sync.Mutex
	http.ResponseWriter
	flusher http.Flusher
	done    chan struct{}
}

// Write serializes access to the underlying ResponseWriter.
func (kw *keepAliveWriter) Write(p []byte) (int, error) {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	return kw.ResponseWriter.Write(p)
}

// Flush implements http.Flusher. Without this, the SSE SDK handler's
// w.(http.Flusher) type assertion fails on the wrapper, causing SSE events
// to buffer indefinitely and never reach the client.
func (kw *keepAliveWriter) Flush() {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	kw.flusher.Flush()
}

// Unwrap returns the underlying ResponseWriter so http.ResponseController
// can discover capabilities (Flusher, Hijacker) through the wrapper.
func (kw *keepAliveWriter) Unwrap() http.ResponseWriter {
	return kw.ResponseWriter
}

func (kw *keepAliveWriter) keepAliveLoop() {
	ticker := time.NewTicker(sseKeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-kw.done:
			return
		case <-ticker.C:
			// SSE comment line — ignored by clients, keeps connection alive.
			kw.mu.Lock()
			_, err := kw.ResponseWriter.Write([]byte(": keepalive\n\n"))
			if err != nil {
				kw.mu.Unlock()
				return // Connection closed.
			}
			kw.flusher.Flush()
			kw.mu.Unlock()
		}
	}
}

// ---------------------------------------------------------------------------
// Helpers — result builders
// ---------------------------------------------------------------------------

// logToSession sends a structured log message to the MCP client.
func logToSession(ctx context.Context, req *mcp.CallToolRequest, level mcp.LoggingLevel, data any) {
	if req.Session == nil {
		return
	}
	// Best-effort: log delivery is advisory; failure does not affect
	// tool execution and there is no meaningful recovery action.
	_ = req.Session.Log(ctx, &mcp.LoggingMessageParams{
		Level:  level,
		Logger: defaults.ToolName,
		Data:   data,
	})
}

// textResult creates a CallToolResult with a single text content block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorResult creates an IsError CallToolResult so the LLM can see the error
// and self-correct rather than raising a protocol-level exception.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// boolPtr returns a pointer to b. Used for optional bool fields in the SDK.
func boolPtr(b bool) *bool { return &b }

// parseArgs unmarshals the raw JSON arguments from a tool call into dst.
func parseArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("parsing tool arguments: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Server Instructions — the connecting agent's operating manual
// ---------------------------------------------------------------------------

const serverInstructions = `You are operating the Dev.to Blog Publisher — an MCP server that drafts and publishes articles to dev.to.

## TOOL SELECTION GUIDE

| User Intent | Capability | Why |
|---|---|---|
| "Write a blog post about X" | blog_post_generator_prompt | Prompt template that structures a full article draft |
| "Publish this article to dev.to" | publish_blog_to_devto | One POST to the dev.to articles API |
| "Add these numbers" | add_numbers | Demonstration tool, pure arithmetic |

## PUBLISHING WORKFLOW

1. Draft the article with blog_post_generator_prompt (or use content the user supplies).
2. Confirm with the user whether to publish live (published=true) or save a draft (published=false, the default).
3. Call publish_blog_to_devto with title and body_markdown; add tags (max 4), series, canonical_url, or cover_image only when the user asked for them.
4. Report the returned message verbatim — on success it contains the article URL.

## INTERPRETING RESULTS

The publish tool always returns a single descriptive string:
- "Article published successfully! URL: ..." — done; share the URL
- "Error: DEVTO_API_KEY environment variable is not set..." — ask the user to export their dev.to API key and restart the server; no request was sent
- "Failed to publish article. Status code: 422, Error: ..." — the API rejected the article; fix the named field and retry
- "An error occurred during the API request: ..." — network failure; the article may not exist, check dev.to drafts before retrying
- "An unexpected error occurred: ..." — report it to the user as-is

## RULES

- NEVER invent an API key or put one in tool arguments; the server reads it from the environment.
- Default to published=false (draft) unless the user explicitly asks to go live.
- Do not retry a failed publish automatically — a transport failure can still have created the article.`
