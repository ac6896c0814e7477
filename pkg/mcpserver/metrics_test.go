package mcpserver

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	// Nil receiver records nothing and must not panic.
	m.RecordToolCall("add_numbers")
	m.RecordPublishOutcome("success")
	if err := m.Close(); err != nil {
		t.Errorf("Close on nil Metrics: %v", err)
	}
}

func TestMetricsExposeCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordToolCall("publish_blog_to_devto")
	m.RecordToolCall("publish_blog_to_devto")
	m.RecordPublishOutcome("config_error")

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	if !strings.Contains(text, `devto_publisher_tool_calls_total{tool="publish_blog_to_devto"} 2`) {
		t.Errorf("missing tool call counter in scrape:\n%s", text)
	}
	if !strings.Contains(text, `devto_publisher_publish_outcomes_total{outcome="config_error"} 1`) {
		t.Errorf("missing outcome counter in scrape:\n%s", text)
	}
}
