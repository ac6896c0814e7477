package mcpserver

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devto-publisher/devto-publisher/pkg/devto"
)

// registerTools adds all publishing tools to the MCP server.
func (s *Server) registerTools() {
	s.addPublishTool()
	s.addAddNumbersTool()
}

// ═══════════════════════════════════════════════════════════════════════════
// publish_blog_to_devto — Publish an article to dev.to
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addPublishTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "publish_blog_to_devto",
			Title: "Publish Blog Post to Dev.to",
			Description: `Publish a blog post to dev.to via its articles API.

USE THIS TOOL WHEN:
• The user has article content ready and asks to publish or save it to dev.to
• The user wants to cross-post an existing article (set canonical_url)

DO NOT USE THIS TOOL WHEN:
• The article hasn't been written yet — draft it first (see the blog_post_generator_prompt prompt)
• The user wants to edit or delete an existing article — this tool only creates

BEHAVIOR:
• One synchronous POST per call. No retries, no batching, no deduplication —
  calling twice creates two articles.
• published=false (the default) saves a draft the user can review on dev.to;
  published=true goes live immediately. Ask before going live.
• Optional fields left empty are omitted from the request entirely.
• The dev.to API key is read from the server's environment; it is never
  accepted as an argument.

EXAMPLE INPUTS:
• Draft: {"title": "Intro to Go", "body_markdown": "# Intro\n..."}
• Live with tags: {"title": "Intro to Go", "body_markdown": "...", "tags": ["go", "beginners"], "published": true}
• Cross-post: {"title": "...", "body_markdown": "...", "canonical_url": "https://myblog.example/intro-to-go"}

Returns: a single status message. On success it contains the article URL;
on failure it describes exactly what went wrong (missing API key, API
rejection with status code, or network error).`,
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"title", "body_markdown"},
				"properties": map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "The title of the blog post.",
					},
					"body_markdown": map[string]any{
						"type":        "string",
						"description": "The content of the blog post in Markdown format.",
					},
					"tags": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Tags for the blog post (dev.to accepts up to four, e.g. [\"go\", \"webdev\"]).",
					},
					"published": map[string]any{
						"type":        "boolean",
						"default":     false,
						"description": "true publishes immediately, false saves a draft.",
					},
					"series": map[string]any{
						"type":        "string",
						"description": "Name of the series this article belongs to.",
					},
					"canonical_url": map[string]any{
						"type":        "string",
						"description": "Canonical URL of the article if it is cross-posted.",
					},
					"cover_image": map[string]any{
						"type":        "string",
						"description": "URL of the cover image for the article.",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:    false,
				DestructiveHint: boolPtr(false),
				IdempotentHint:  false,
				OpenWorldHint:   boolPtr(true),
				Title:           "Publish Blog Post to Dev.to",
			},
		},
		s.handlePublish,
	)
}

type publishArgs struct {
	Title        string   `json:"title"`
	BodyMarkdown string   `json:"body_markdown"`
	Tags         []string `json:"tags"`
	Published    bool     `json:"published"`
	Series       string   `json:"series"`
	CanonicalURL string   `json:"canonical_url"`
	CoverImage   string   `json:"cover_image"`
}

// handlePublish is the outer result-mapping layer of the publish
// contract: every possible failure — bad arguments aside — is converted
// into the single string result channel. Nothing escapes as a protocol
// fault.
func (s *Server) handlePublish(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.config.Metrics.RecordToolCall("publish_blog_to_devto")

	var args publishArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'title' and 'body_markdown' strings plus optional 'tags', 'published', 'series', 'canonical_url', 'cover_image'.", err)), nil
	}
	if strings.TrimSpace(args.Title) == "" {
		return errorResult("'title' is required and must not be empty."), nil
	}
	if strings.TrimSpace(args.BodyMarkdown) == "" {
		return errorResult("'body_markdown' is required and must not be empty."), nil
	}

	invocation := uuid.NewString()
	log.Printf("[mcp] publish %s: attempting %q (published=%t)", invocation, args.Title, args.Published)
	logToSession(ctx, req, logInfo, map[string]any{
		"event":         "publish_start",
		"invocation_id": invocation,
		"title":         args.Title,
		"published":     args.Published,
	})

	outcome := s.publish(ctx, args)
	s.config.Metrics.RecordPublishOutcome(string(outcome.Kind))

	if outcome.Kind != devto.OutcomeSuccess {
		log.Printf("[mcp] publish %s: %s", invocation, outcome.Kind)
		logToSession(ctx, req, logError, map[string]any{
			"event":         "publish_failed",
			"invocation_id": invocation,
			"outcome":       string(outcome.Kind),
		})
	} else {
		logToSession(ctx, req, logInfo, map[string]any{
			"event":         "publish_done",
			"invocation_id": invocation,
			"url":           outcome.URL,
		})
	}

	// The string IS the contract: success and failure both travel as a
	// plain text result the caller parses, matching the existing tool
	// surface. IsError stays unset even on failure.
	return textResult(outcome.String()), nil
}

// publish resolves the credential, runs the API call, and absorbs
// panics into the UnexpectedError variant so the handler above always
// has an Outcome to render.
func (s *Server) publish(ctx context.Context, args publishArgs) (outcome devto.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[mcp] panic during publish: %v", r)
			outcome = devto.Outcome{
				Kind:    devto.OutcomeUnexpectedError,
				Message: fmt.Sprint(r),
			}
		}
	}()

	// Resolved per invocation so a key exported after startup works
	// on the next call without a restart.
	client := s.devto(s.config.APIKeyLookup())

	return client.Publish(ctx, devto.ArticleRequest{
		Title:        args.Title,
		BodyMarkdown: args.BodyMarkdown,
		Tags:         args.Tags,
		Published:    args.Published,
		Series:       args.Series,
		CanonicalURL: args.CanonicalURL,
		CoverImage:   args.CoverImage,
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// add_numbers — Demonstration arithmetic tool
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addAddNumbersTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:        "add_numbers",
			Title:       "Add Numbers",
			Description: "Add two integers and return their sum. Demonstration tool — pure arithmetic, no side effects, no network access.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"a", "b"},
				"properties": map[string]any{
					"a": map[string]any{
						"type":        "integer",
						"description": "First addend.",
					},
					"b": map[string]any{
						"type":        "integer",
						"description": "Second addend.",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
				Title:          "Add Numbers",
			},
		},
		s.handleAddNumbers,
	)
}

type addNumbersArgs struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

func (s *Server) handleAddNumbers(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.config.Metrics.RecordToolCall("add_numbers")

	var args addNumbersArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected integers 'a' and 'b'.", err)), nil
	}
	return textResult(strconv.FormatInt(args.A+args.B, 10)), nil
}
