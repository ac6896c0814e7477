package devto

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// newTestClient points a Client at a local test server with a fixed key.
func newTestClient(serverURL string) *Client {
	return New(Config{
		APIKey:  "test-key-123",
		BaseURL: serverURL,
	})
}

func TestPublishSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"url": "https://dev.to/alice/my-first-post-abc"}`))
	}))
	defer server.Close()

	outcome := newTestClient(server.URL).Publish(context.Background(), ArticleRequest{
		Title:        "My First Post",
		BodyMarkdown: "# Hello",
	})

	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, OutcomeSuccess)
	}
	got := outcome.String()
	if !strings.Contains(got, "https://dev.to/alice/my-first-post-abc") {
		t.Errorf("result %q should contain the article URL", got)
	}
	if !strings.Contains(got, "published successfully") {
		t.Errorf("result %q should contain the success marker", got)
	}
}

func TestPublishSuccessWithoutURL(t *testing.T) {
	// A 201 body without a url field is still a success; the URL passes
	// through empty with no separate error raised.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer server.Close()

	outcome := newTestClient(server.URL).Publish(context.Background(), ArticleRequest{
		Title:        "No URL",
		BodyMarkdown: "body",
	})

	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, OutcomeSuccess)
	}
	if outcome.URL != "" {
		t.Errorf("URL = %q, want empty", outcome.URL)
	}
}

func TestPublishMissingCredential(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}) // no APIKey
	outcome := client.Publish(context.Background(), ArticleRequest{
		Title:        "Draft",
		BodyMarkdown: "body",
	})

	if outcome.Kind != OutcomeConfigError {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, OutcomeConfigError)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("missing credential must short-circuit; server saw %d calls", got)
	}
	got := outcome.String()
	if !strings.Contains(got, "DEVTO_API_KEY environment variable is not set") {
		t.Errorf("result %q should name the credential variable", got)
	}
}

func TestPublishMissingCredentialCustomEnvName(t *testing.T) {
	client := New(Config{KeyEnvName: "FOREM_TOKEN"})
	outcome := client.Publish(context.Background(), ArticleRequest{Title: "x", BodyMarkdown: "y"})
	if !strings.Contains(outcome.String(), "FOREM_TOKEN environment variable is not set") {
		t.Errorf("result %q should name the configured variable", outcome.String())
	}
}

func TestPublishAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "Title can't be blank"}`))
	}))
	defer server.Close()

	outcome := newTestClient(server.URL).Publish(context.Background(), ArticleRequest{
		Title:        "",
		BodyMarkdown: "body",
	})

	if outcome.Kind != OutcomeAPIError {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, OutcomeAPIError)
	}
	got := outcome.String()
	if !strings.Contains(got, "422") {
		t.Errorf("result %q should contain the status code", got)
	}
	if !strings.Contains(got, "Title can't be blank") {
		t.Errorf("result %q should contain the API error message", got)
	}
}

func TestPublishAPIErrorUnparsableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer server.Close()

	outcome := newTestClient(server.URL).Publish(context.Background(), ArticleRequest{
		Title:        "t",
		BodyMarkdown: "b",
	})

	if outcome.Kind != OutcomeAPIError {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, OutcomeAPIError)
	}
	if !strings.Contains(outcome.String(), "Unknown error") {
		t.Errorf("result %q should fall back to the generic message", outcome.String())
	}
}

func TestPublishTransportError(t *testing.T) {
	// Point at a closed port: connection refused must surface as a
	// TransportError string, never as a panic or returned error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	outcome := newTestClient(addr).Publish(context.Background(), ArticleRequest{
		Title:        "t",
		BodyMarkdown: "b",
	})

	if outcome.Kind != OutcomeTransportError {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, OutcomeTransportError)
	}
	got := outcome.String()
	if !strings.Contains(got, "An error occurred during the API request:") {
		t.Errorf("result %q should carry the transport error marker", got)
	}
	if !strings.Contains(got, "refused") {
		t.Errorf("result %q should embed the underlying failure message", got)
	}
}

func TestPublishHeaders(t *testing.T) {
	var gotKey, gotContentType, gotURL string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		gotContentType = r.Header.Get("Content-Type")
		gotURL = r.URL.String()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"url": "https://dev.to/x"}`))
	}))
	defer server.Close()

	newTestClient(server.URL).Publish(context.Background(), ArticleRequest{
		Title:        "t",
		BodyMarkdown: "b",
	})

	if gotKey != "test-key-123" {
		t.Errorf("api-key header = %q, want test-key-123", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	// The credential travels in the header only.
	if strings.Contains(gotURL, "test-key-123") || strings.Contains(string(gotBody), "test-key-123") {
		t.Error("credential leaked into URL or body")
	}
	if gotURL != "/articles" {
		t.Errorf("path = %q, want /articles", gotURL)
	}
}

func TestPublishPayloadOmitsEmptyOptionals(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &payload)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	newTestClient(server.URL).Publish(context.Background(), ArticleRequest{
		Title:        "Bare Minimum",
		BodyMarkdown: "body",
		Tags:         []string{}, // empty counts as absent
	})

	article, ok := payload["article"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing article object: %v", payload)
	}
	for _, key := range []string{"tags", "series", "canonical_url", "cover_image"} {
		if _, present := article[key]; present {
			t.Errorf("empty optional %q should be omitted from the payload", key)
		}
	}
	// The mandatory trio is always present, published included even as false.
	for _, key := range []string{"title", "body_markdown", "published"} {
		if _, present := article[key]; !present {
			t.Errorf("required field %q missing from payload", key)
		}
	}
	if published, _ := article["published"].(bool); published {
		t.Error("published should default to false (draft)")
	}
}

func TestPublishPayloadIncludesSuppliedOptionals(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &payload)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	newTestClient(server.URL).Publish(context.Background(), ArticleRequest{
		Title:        "Full House",
		BodyMarkdown: "body",
		Tags:         []string{"go", "webdev"},
		Published:    true,
		Series:       "Learning Go",
		CanonicalURL: "https://blog.example.com/full-house",
		CoverImage:   "https://cdn.example.com/cover.png",
	})

	article := payload["article"].(map[string]any)
	tags, _ := article["tags"].([]any)
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "webdev" {
		t.Errorf("tags = %v, want [go webdev] in order", tags)
	}
	if article["series"] != "Learning Go" {
		t.Errorf("series = %v", article["series"])
	}
	if article["canonical_url"] != "https://blog.example.com/full-house" {
		t.Errorf("canonical_url = %v", article["canonical_url"])
	}
	if article["cover_image"] != "https://cdn.example.com/cover.png" {
		t.Errorf("cover_image = %v", article["cover_image"])
	}
	if published, _ := article["published"].(bool); !published {
		t.Error("published = false, want true")
	}
}

func TestPublishCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := newTestClient(server.URL).Publish(ctx, ArticleRequest{Title: "t", BodyMarkdown: "b"})
	if outcome.Kind != OutcomeTransportError {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, OutcomeTransportError)
	}
}
