package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devto-publisher/devto-publisher/pkg/defaults"
)

func TestDefaultReturnsSameClient(t *testing.T) {
	a := Default()
	b := Default()
	if a == nil {
		t.Fatal("Default() returned nil")
	}
	if a != b {
		t.Error("Default() should return the shared client on every call")
	}
}

func TestNewAppliesZeroValueDefaults(t *testing.T) {
	client := New(Config{})
	if client.Timeout != defaults.HTTPTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, defaults.HTTPTimeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatal("expected *http.Transport")
	}
	if transport.MaxIdleConns != 10 {
		t.Errorf("MaxIdleConns = %d, want 10", transport.MaxIdleConns)
	}
	if !transport.ForceAttemptHTTP2 {
		t.Error("ForceAttemptHTTP2 should be enabled")
	}
}

func TestWithTimeout(t *testing.T) {
	cfg := WithTimeout(5 * time.Second)
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.MaxIdleConns != 10 {
		t.Error("WithTimeout should keep other defaults")
	}
}

func TestNewIgnoresMalformedProxy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(Config{Proxy: "://not-a-url"})
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request with malformed proxy config should go direct: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
