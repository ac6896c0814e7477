// Command mcp-smoke is an end-to-end smoke test for the MCP server.
// It starts the server over HTTP, connects a real MCP client, and runs
// named scenarios against the live session. Publish scenarios run
// without a credential by default, exercising the config-error path; a
// real publish against dev.to never happens unless -live is set AND the
// key is exported.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// scenarioResult tracks the outcome of a single scenario.
type scenarioResult struct {
	name   string
	passed bool
	err    error
}

// scenario is a named test function that runs against a live MCP session.
type scenario struct {
	name string
	live bool // requires an exported credential (skipped without -live)
	fn   func(ctx context.Context, s *mcp.ClientSession) error
}

func main() {
	var (
		port    = flag.Int("port", 18080, "MCP HTTP port")
		timeout = flag.Duration("timeout", 60*time.Second, "Overall timeout")
		live    = flag.Bool("live", false, "Enable scenarios that publish a real draft to dev.to")
		runOnly = flag.String("scenario", "", "Run only this named scenario")
	)
	flag.Parse()
	log.SetFlags(0)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	serverCmd, err := startServer(ctx, *port)
	if err != nil {
		log.Fatalf("FATAL start_server: %v", err)
	}
	defer stopServer(serverCmd)

	if err := waitForHealth(ctx, *port); err != nil {
		log.Fatalf("FATAL health_check: %v", err)
	}
	fmt.Println("server: healthy")

	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-smoke", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.SSEClientTransport{
		Endpoint: fmt.Sprintf("http://127.0.0.1:%d/sse", *port),
	}, nil)
	if err != nil {
		log.Fatalf("FATAL connect: %v", err)
	}
	defer session.Close()

	var results []scenarioResult
	for _, sc := range allScenarios() {
		if *runOnly != "" && sc.name != *runOnly {
			continue
		}
		if sc.live && !*live {
			results = append(results, scenarioResult{name: sc.name, passed: true, err: fmt.Errorf("SKIP (needs -live)")})
			fmt.Printf("SKIP  %s\n", sc.name)
			continue
		}

		err := sc.fn(ctx, session)
		passed := err == nil
		results = append(results, scenarioResult{name: sc.name, passed: passed, err: err})

		if passed {
			fmt.Printf("PASS  %s\n", sc.name)
		} else {
			fmt.Printf("FAIL  %s: %v\n", sc.name, err)
		}
	}

	// Summary.
	passed, failed, skipped := 0, 0, 0
	for _, r := range results {
		if r.err != nil && strings.HasPrefix(r.err.Error(), "SKIP") {
			skipped++
		} else if r.passed {
			passed++
		} else {
			failed++
		}
	}

	fmt.Printf("\n--- %d passed, %d failed, %d skipped ---\n", passed, failed, skipped)
	if failed > 0 {
		os.Exit(1)
	}
}

// allScenarios returns every smoke scenario in execution order.
func allScenarios() []scenario {
	return []scenario{
		// Surface area verification.
		{"tool_discovery", false, scenarioToolDiscovery},
		{"resource_exploration", false, scenarioResourceExploration},
		{"prompt_catalog", false, scenarioPromptCatalog},

		// Tool validation (positive + negative).
		{"add_numbers", false, scenarioAddNumbers},
		{"publish_without_credential", false, scenarioPublishWithoutCredential},
		{"publish_validation", false, scenarioPublishValidation},

		// Live (publishes a real draft; needs the API key exported).
		{"publish_draft", true, scenarioPublishDraft},
	}
}

// ---------------------------------------------------------------------------
// tool_discovery — verifies every tool exists and has metadata.
// ---------------------------------------------------------------------------

func scenarioToolDiscovery(ctx context.Context, s *mcp.ClientSession) error {
	tools, err := s.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("ListTools: %w", err)
	}

	expected := []string{"publish_blog_to_devto", "add_numbers"}

	have := make(map[string]bool, len(tools.Tools))
	for _, t := range tools.Tools {
		have[t.Name] = true
		if t.Description == "" {
			return fmt.Errorf("tool %q has empty description", t.Name)
		}
		if t.InputSchema == nil {
			return fmt.Errorf("tool %q has nil input schema", t.Name)
		}
	}
	for _, name := range expected {
		if !have[name] {
			return fmt.Errorf("missing tool %q (have %d tools)", name, len(tools.Tools))
		}
	}
	if len(tools.Tools) != len(expected) {
		return fmt.Errorf("tool count mismatch: want %d, got %d", len(expected), len(tools.Tools))
	}

	// NEGATIVE: calling a nonexistent tool must fail — either protocol error
	// or IsError=true, both are acceptable. Must not silently succeed.
	fakeResult, err := callToolRaw(ctx, s, "nonexistent_tool_that_does_not_exist", map[string]any{})
	if err == nil && !fakeResult.IsError {
		return fmt.Errorf("NEG nonexistent tool: expected error, got success")
	}

	return nil
}

// ---------------------------------------------------------------------------
// resource_exploration — reads and validates every resource.
// ---------------------------------------------------------------------------

func scenarioResourceExploration(ctx context.Context, s *mcp.ClientSession) error {
	versionRes, err := s.ReadResource(ctx, &mcp.ReadResourceParams{URI: "devto://version"})
	if err != nil {
		return fmt.Errorf("ReadResource(version): %w", err)
	}
	versionData, err := resourceJSON(versionRes)
	if err != nil {
		return fmt.Errorf("parse version: %w", err)
	}
	for _, field := range []string{"name", "version", "capabilities"} {
		if _, ok := versionData[field]; !ok {
			return fmt.Errorf("version resource missing %q field", field)
		}
	}

	guideRes, err := s.ReadResource(ctx, &mcp.ReadResourceParams{URI: "devto://guide"})
	if err != nil {
		return fmt.Errorf("ReadResource(guide): %w", err)
	}
	guideText := strings.ToLower(resourceText(guideRes))
	for _, topic := range []string{"draft", "tags", "canonical"} {
		if !strings.Contains(guideText, topic) {
			return fmt.Errorf("guide resource missing %q section", topic)
		}
	}

	cfgRes, err := s.ReadResource(ctx, &mcp.ReadResourceParams{URI: "devto://config"})
	if err != nil {
		return fmt.Errorf("ReadResource(config): %w", err)
	}
	cfgData, err := resourceJSON(cfgRes)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if _, ok := cfgData["key_env"]; !ok {
		return fmt.Errorf("config resource missing key_env")
	}

	// NEGATIVE: nonexistent resources must not resolve.
	if _, err := s.ReadResource(ctx, &mcp.ReadResourceParams{URI: "devto://no-such-resource"}); err == nil {
		return fmt.Errorf("NEG nonexistent resource: expected error")
	}

	return nil
}

// ---------------------------------------------------------------------------
// prompt_catalog — verifies the drafting prompt renders.
// ---------------------------------------------------------------------------

func scenarioPromptCatalog(ctx context.Context, s *mcp.ClientSession) error {
	prompts, err := s.ListPrompts(ctx, &mcp.ListPromptsParams{})
	if err != nil {
		return fmt.Errorf("ListPrompts: %w", err)
	}
	if len(prompts.Prompts) != 1 || prompts.Prompts[0].Name != "blog_post_generator_prompt" {
		return fmt.Errorf("unexpected prompt catalog: %+v", prompts.Prompts)
	}

	result, err := s.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "blog_post_generator_prompt",
		Arguments: map[string]string{"topic": "smoke testing MCP servers"},
	})
	if err != nil {
		return fmt.Errorf("GetPrompt: %w", err)
	}
	if len(result.Messages) == 0 {
		return fmt.Errorf("prompt returned no messages")
	}
	tc, ok := result.Messages[0].Content.(*mcp.TextContent)
	if !ok || !strings.Contains(tc.Text, "smoke testing MCP servers") {
		return fmt.Errorf("prompt text missing topic substitution")
	}

	// NEGATIVE: topic is required.
	if _, err := s.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "blog_post_generator_prompt",
		Arguments: map[string]string{},
	}); err == nil {
		return fmt.Errorf("NEG prompt without topic: expected error")
	}

	return nil
}

// ---------------------------------------------------------------------------
// add_numbers — arithmetic sanity plus argument validation.
// ---------------------------------------------------------------------------

func scenarioAddNumbers(ctx context.Context, s *mcp.ClientSession) error {
	result, err := callToolRaw(ctx, s, "add_numbers", map[string]any{"a": 2, "b": 3})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if got := extractText(result); got != "5" {
		return fmt.Errorf("add_numbers(2, 3) = %q, want 5", got)
	}

	result, err = callToolRaw(ctx, s, "add_numbers", map[string]any{"a": -1, "b": 1})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if got := extractText(result); got != "0" {
		return fmt.Errorf("add_numbers(-1, 1) = %q, want 0", got)
	}

	return nil
}

// ---------------------------------------------------------------------------
// publish_without_credential — the config-error path must produce the
// marker string without crashing the server (the smoke server is
// started with the credential variable pointed at an unset name).
// ---------------------------------------------------------------------------

func scenarioPublishWithoutCredential(ctx context.Context, s *mcp.ClientSession) error {
	result, err := callToolRaw(ctx, s, "publish_blog_to_devto", map[string]any{
		"title":         "Smoke Test Draft",
		"body_markdown": "# Never published\nThe smoke credential is unset.",
	})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	text := extractText(result)
	if !strings.Contains(text, "environment variable is not set") {
		return fmt.Errorf("expected config error marker, got %q", text)
	}
	if result.IsError {
		return fmt.Errorf("publish failures must travel as plain text, got IsError")
	}
	return nil
}

// ---------------------------------------------------------------------------
// publish_validation — required-argument rejection.
// ---------------------------------------------------------------------------

func scenarioPublishValidation(ctx context.Context, s *mcp.ClientSession) error {
	result, err := callToolRaw(ctx, s, "publish_blog_to_devto", map[string]any{
		"body_markdown": "body without a title",
	})
	if err != nil {
		// A protocol-level schema rejection is also acceptable.
		return nil
	}
	if !result.IsError {
		return fmt.Errorf("publish without title: expected IsError, got %q", extractText(result))
	}
	return nil
}

// ---------------------------------------------------------------------------
// publish_draft — LIVE: creates a real draft on dev.to. Needs the
// credential exported into the smoke environment (SMOKE_DEVTO_API_KEY).
// ---------------------------------------------------------------------------

func scenarioPublishDraft(ctx context.Context, s *mcp.ClientSession) error {
	result, err := callToolRaw(ctx, s, "publish_blog_to_devto", map[string]any{
		"title":         fmt.Sprintf("mcp-smoke draft %d", time.Now().Unix()),
		"body_markdown": "# Smoke test\nDraft created by mcp-smoke. Safe to delete.",
		"published":     false,
	})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	text := extractText(result)
	if !strings.Contains(text, "Article published successfully!") {
		return fmt.Errorf("expected success, got %q", text)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func callToolRaw(ctx context.Context, s *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal %s args: %w", name, err)
	}
	return s.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: json.RawMessage(payload)})
}

func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(*mcp.TextContent); ok {
		return tc.Text
	}
	return fmt.Sprintf("%T", result.Content[0])
}

func resourceText(res *mcp.ReadResourceResult) string {
	if len(res.Contents) == 0 {
		return ""
	}
	return res.Contents[0].Text
}

func resourceJSON(res *mcp.ReadResourceResult) (map[string]any, error) {
	text := resourceText(res)
	if text == "" {
		return nil, fmt.Errorf("empty resource content")
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// Server lifecycle
// ---------------------------------------------------------------------------

func startServer(ctx context.Context, port int) (*exec.Cmd, error) {
	root, err := findRepoRoot()
	if err != nil {
		return nil, fmt.Errorf("find repo root: %w", err)
	}

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/cli", "mcp", "--http", fmt.Sprintf(":%d", port))
	cmd.Dir = root
	// Point the credential lookup at a variable the smoke run leaves
	// unset, so non-live scenarios exercise the config-error path even
	// when the developer has DEVTO_API_KEY exported. The live scenario
	// uses SMOKE_DEVTO_API_KEY instead.
	cmd.Env = append(os.Environ(), "DEVTO_PUBLISHER_KEY_ENV=SMOKE_DEVTO_API_KEY")
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func stopServer(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
	_, _ = cmd.Process.Wait()
}

func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		modPath := dir + string(os.PathSeparator) + "go.mod"
		if data, err := os.ReadFile(modPath); err == nil {
			if strings.Contains(string(data), "module github.com/devto-publisher/devto-publisher\n") ||
				strings.Contains(string(data), "module github.com/devto-publisher/devto-publisher\r\n") {
				return dir, nil
			}
		}

		parent := dir[:max(strings.LastIndex(dir, string(os.PathSeparator)), 0)]
		if parent == dir || parent == "" {
			return "", fmt.Errorf("repo root not found walking up from %s", dir)
		}
		dir = parent
	}
}

func waitForHealth(ctx context.Context, port int) error {
	client := &http.Client{Timeout: 2 * time.Second}
	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)

	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
