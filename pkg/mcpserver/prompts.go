package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts adds all drafting prompts to the MCP server.
func (s *Server) registerPrompts() {
	s.addBlogPostGeneratorPrompt()
}

// ═══════════════════════════════════════════════════════════════════════════
// blog_post_generator_prompt — Structured article drafting template
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addBlogPostGeneratorPrompt() {
	s.mcp.AddPrompt(
		&mcp.Prompt{
			Name:        "blog_post_generator_prompt",
			Description: "Prompt template that guides the LLM in drafting a complete dev.to blog post about a given topic. Pair with publish_blog_to_devto once the draft is approved.",
			Arguments: []*mcp.PromptArgument{
				{Name: "topic", Description: "The main topic of the blog post", Required: true},
			},
		},
		func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			topic := req.Params.Arguments["topic"]
			if topic == "" {
				return nil, fmt.Errorf("'topic' argument is required")
			}

			return &mcp.GetPromptResult{
				Description: fmt.Sprintf("Blog post draft: %s", topic),
				Messages: []*mcp.PromptMessage{
					{
						Role: "user",
						Content: &mcp.TextContent{
							Text: blogPostTemplate(topic),
						},
					},
				},
			}, nil
		},
	)
}

// blogPostTemplate substitutes topic verbatim into the drafting
// instructions. Pure templating; topic content is not validated.
func blogPostTemplate(topic string) string {
	return fmt.Sprintf(`# Generate a Dev.to Blog Post

Please generate a comprehensive and engaging blog post about the following topic: **%s**.

The blog post should include:
- A catchy and informative title.
- An introduction that hooks the reader.
- Several paragraphs discussing key aspects of the topic.
- Code examples or technical details if applicable.
- A conclusion that summarizes the main points and offers a call to action or further thoughts.
- Use Markdown formatting extensively (headings, bold, italics, code blocks, lists).

Consider the target audience to be developers and tech enthusiasts on Dev.to.`, topic)
}
