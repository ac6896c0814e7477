package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devto-publisher/devto-publisher/pkg/defaults"
)

// registerResources adds all domain-knowledge resources to the MCP server.
func (s *Server) registerResources() {
	s.addVersionResource()
	s.addGuideResource()
	s.addConfigResource()
}

// ═══════════════════════════════════════════════════════════════════════════
// devto://version — Server capabilities and version
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addVersionResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         "devto://version",
			Name:        "Dev.to Publisher Version",
			Description: "Server version, capabilities, and tool inventory.",
			MIMEType:    defaults.ContentTypeJSON,
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			info := map[string]any{
				"name":    defaults.ToolNameDisplay,
				"version": defaults.Version,
				"capabilities": map[string]any{
					"tools":     2,
					"resources": 3,
					"prompts":   1,
				},
				"tools":   []string{"publish_blog_to_devto", "add_numbers"},
				"prompts": []string{"blog_post_generator_prompt"},
			}
			data, _ := json.MarshalIndent(info, "", "  ")
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: "devto://version", MIMEType: defaults.ContentTypeJSON, Text: string(data)},
				},
			}, nil
		},
	)
}

// ═══════════════════════════════════════════════════════════════════════════
// devto://guide — Publishing methodology guide
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addGuideResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         "devto://guide",
			Name:        "Dev.to Publishing Guide",
			Description: "How dev.to articles work: drafts vs. live, tags, series, canonical URLs, and common API rejections.",
			MIMEType:    "text/markdown",
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: "devto://guide", MIMEType: "text/markdown", Text: publishingGuide},
				},
			}, nil
		},
	)
}

// ═══════════════════════════════════════════════════════════════════════════
// devto://config — Effective server configuration (non-secret)
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addConfigResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         "devto://config",
			Name:        "Server Configuration",
			Description: "Effective configuration: API base URL, timeout, and the environment variable the API key is read from. The key itself is never exposed.",
			MIMEType:    defaults.ContentTypeJSON,
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			info := map[string]any{
				"base_url":        s.config.BaseURL,
				"timeout":         s.config.Timeout.String(),
				"key_env":         s.config.KeyEnvName,
				"key_configured":  s.config.APIKeyLookup() != "",
				"metrics_enabled": s.config.Metrics != nil,
			}
			data, _ := json.MarshalIndent(info, "", "  ")
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: "devto://config", MIMEType: defaults.ContentTypeJSON, Text: string(data)},
				},
			}, nil
		},
	)
}

const publishingGuide = `# Dev.to Publishing Guide

## Drafts vs. live articles

Every publish call carries an explicit ` + "`published`" + ` flag. With
` + "`published: false`" + ` (the default) the article lands in the user's
dev.to drafts, visible only to them. With ` + "`published: true`" + ` it goes
live immediately. Prefer drafts unless the user explicitly asked to go live —
a draft can be reviewed and published from the dashboard; a live post is
public the instant the API call returns.

## Tags

- Up to four tags per article; the API rejects more.
- Lowercase alphanumerics only ("go", "webdev", "beginners", "tutorial").
- Order is preserved; the first tag carries the most weight in feeds.

## Series

Passing a ` + "`series`" + ` name groups the article with earlier posts of the
same series name under the same account. The series is created on first use —
no separate setup call exists.

## Canonical URLs

When cross-posting content that lives elsewhere first, set
` + "`canonical_url`" + ` to the original. Search engines then credit the
original and dev.to shows a "originally published at" banner.

## Cover images

` + "`cover_image`" + ` must be a publicly reachable image URL. dev.to crops
to roughly 1000x420; wider images lose their edges.

## Common API rejections (HTTP 422)

- "Title can't be blank" — empty or whitespace title
- "Body markdown can't be blank" — empty body
- "Tag list exceed the maximum of 4 tags" — too many tags
- "Canonical url has already been taken" — same canonical URL used twice

A 401 means the API key is wrong or revoked; generate a new one under
dev.to Settings → Extensions → API Keys.`
