package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devto-publisher/devto-publisher/pkg/config"
	"github.com/devto-publisher/devto-publisher/pkg/defaults"
	"github.com/devto-publisher/devto-publisher/pkg/mcpserver"
)

// runMCP starts the MCP (Model Context Protocol) server.
// Supports two transport modes:
//   - stdio (default):   For IDE integrations (VS Code, Claude Desktop, Cursor)
//   - --http <addr>:     For remote/Docker deployments with session management
func runMCP() {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)

	stdio := fs.Bool("stdio", true, "Use stdio transport (default, for IDE integration)")
	httpAddr := fs.String("http", "", "HTTP address to listen on (e.g. :8080). Disables stdio.")
	configFile := fs.String("config", envOrDefault("DEVTO_PUBLISHER_CONFIG", ""), "YAML config file")
	keyEnv := fs.String("key-env", "", "Environment variable holding the dev.to API key (default: "+defaults.APIKeyEnv+")")
	baseURL := fs.String("base-url", "", "Dev.to API base URL override (self-hosted Forem)")
	metricsAddr := fs.String("metrics", "", "Prometheus metrics address (e.g. :9090). Disabled when empty.")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s mcp [flags]\n\n", defaults.ToolName)
		fmt.Fprintf(os.Stderr, "Start an MCP server for publishing blog posts to dev.to.\n\n")
		fmt.Fprintf(os.Stderr, "Transports:\n")
		fmt.Fprintf(os.Stderr, "  --stdio          Stdio transport for IDE integration (default)\n")
		fmt.Fprintf(os.Stderr, "  --http <addr>    Streamable HTTP transport for remote/Docker\n\n")
		fmt.Fprintf(os.Stderr, "Environment variables:\n")
		fmt.Fprintf(os.Stderr, "  %s                 Dev.to API key (required to actually publish)\n", defaults.APIKeyEnv)
		fmt.Fprintf(os.Stderr, "  %s      HTTP listen address (same as --http)\n", config.EnvHTTPAddr)
		fmt.Fprintf(os.Stderr, "  %s   Metrics listen address (same as --metrics)\n", config.EnvMetricsAddr)
		fmt.Fprintf(os.Stderr, "  %s        Credential variable name (same as --key-env)\n\n", config.EnvKeyName)
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s mcp --stdio\n", defaults.ToolName)
		fmt.Fprintf(os.Stderr, "  %s mcp --http :8080 --metrics :9090\n", defaults.ToolName)
		fmt.Fprintf(os.Stderr, "  %s=xxxx %s mcp --stdio\n\n", defaults.APIKeyEnv, defaults.ToolName)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()

	// Flags win over file and environment.
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *keyEnv != "" {
		cfg.KeyEnvName = *keyEnv
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Startup validation: a missing key is a warning, not a failure —
	// absence surfaces as a per-call config error and the key may be
	// exported later without a restart.
	if cfg.ResolveAPIKey() == "" {
		fmt.Fprintf(os.Stderr, "warning: %s is not set — publish calls will fail until it is exported\n", cfg.KeyEnvName)
	}

	var metrics *mcpserver.Metrics
	if cfg.MetricsAddr != "" {
		metrics = mcpserver.NewMetrics()
		if err := metrics.Serve(cfg.MetricsAddr); err != nil {
			fmt.Fprintf(os.Stderr, "error: metrics server: %v\n", err)
			os.Exit(1)
		}
		defer metrics.Close()
	}

	srv := mcpserver.New(&mcpserver.Config{
		KeyEnvName: cfg.KeyEnvName,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		Metrics:    metrics,
	})
	srv.MarkReady()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.HTTPAddr != "" {
		// HTTP transport mode
		*stdio = false
		handler := srv.HTTPHandler()

		httpSrv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// WriteTimeout intentionally 0: SSE streams are long-lived and
			// any non-zero value sets an absolute deadline that kills SSE
			// connections. ReadHeaderTimeout + ReadTimeout protect against
			// slowloris.
			IdleTimeout:    30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		}

		go func() {
			<-ctx.Done()
			// Graceful shutdown: drain in-flight requests before exiting.
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaults.HTTPShutdownGrace)
			defer shutdownCancel()
			fmt.Fprintf(os.Stderr, "%s shutting down gracefully…\n", defaults.UserAgent())
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
			}
		}()

		fmt.Fprintf(os.Stderr, "%s MCP server listening on %s (HTTP transport)\n",
			defaults.UserAgent(), cfg.HTTPAddr)

		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Stdio transport mode (default)
	if *stdio {
		if err := srv.RunStdio(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "error: no transport selected — use --stdio or --http <addr>\n")
	os.Exit(1)
}
