// Package mcpserver exposes the dev.to publisher as a Model Context
// Protocol (MCP) server, enabling AI assistants (Claude, VS Code
// Copilot, Cursor, etc.) to draft and publish blog articles through
// natural conversation.
//
// # Architecture
//
// The server is built on the official MCP Go SDK and exposes three
// categories of capabilities:
//
//   - Tools:     publish_blog_to_devto, add_numbers
//   - Resources: version info, publishing guide, effective configuration
//   - Prompts:   blog_post_generator_prompt for drafting article content
//
// # Tool Design
//
// The publish tool is a single synchronous request/response adapter: it
// maps typed arguments to the dev.to article payload, performs one
// outbound POST, and normalizes every outcome — success, API rejection,
// network failure, missing credential, anything unexpected — into one
// descriptive string. No failure crosses the tool boundary as a
// protocol fault.
//
// # Transports
//
// Two transport modes are supported:
//
//   - stdio:  Communicates over stdin/stdout (default). Used by IDE
//     integrations. Logs go to stderr only; stdout carries protocol frames.
//   - HTTP:   Streamable HTTP with SSE. Used for remote/Docker deployments.
//
// # Usage
//
//	srv := mcpserver.New(&mcpserver.Config{})
//	err := srv.RunStdio(ctx)
package mcpserver
