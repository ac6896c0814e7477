package mcpserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devto-publisher/devto-publisher/pkg/defaults"
)

// Metrics exposes tool invocation counts for Prometheus scraping.
// Optional: a nil *Metrics is valid and records nothing, so the tool
// handlers never need to branch on whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry
	server   *http.Server

	toolCallsTotal       *prometheus.CounterVec
	publishOutcomesTotal *prometheus.CounterVec

	mu     sync.Mutex
	closed bool
}

// NewMetrics creates a Metrics with its own registry. Call Serve to
// expose it over HTTP, or use Handler for mounting elsewhere.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devto_publisher",
				Name:      "tool_calls_total",
				Help:      "Total MCP tool invocations by tool name.",
			},
			[]string{"tool"},
		),
		publishOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devto_publisher",
				Name:      "publish_outcomes_total",
				Help:      "Publish invocations by outcome variant (success, config_error, api_error, transport_error, unexpected_error).",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.toolCallsTotal, m.publishOutcomesTotal)
	return m
}

// RecordToolCall counts one invocation of the named tool.
func (m *Metrics) RecordToolCall(tool string) {
	if m == nil {
		return
	}
	m.toolCallsTotal.WithLabelValues(tool).Inc()
}

// RecordPublishOutcome counts one publish invocation by outcome variant.
func (m *Metrics) RecordPublishOutcome(outcome string) {
	if m == nil {
		return
	}
	m.publishOutcomesTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a metrics HTTP server on addr (e.g. ":9090") in a
// background goroutine. The server runs until Close is called.
func (m *Metrics) Serve(addr string) error {
	if addr == "" {
		addr = fmt.Sprintf(":%d", defaults.MetricsPort)
	}

	mux := http.NewServeMux()
	mux.Handle(defaults.MetricsPath, m.Handler())

	m.mu.Lock()
	m.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	srv := m.server
	m.mu.Unlock()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()

	log.Printf("[metrics] serving Prometheus metrics on %s%s", addr, defaults.MetricsPath)
	return nil
}

// Close shuts the metrics server down, draining in-flight scrapes.
func (m *Metrics) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.server == nil {
		return nil
	}
	m.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.server.Shutdown(ctx)
}
