// Command devto-publisher runs the dev.to blog publisher MCP server.
package main

import (
	"fmt"
	"os"

	"github.com/devto-publisher/devto-publisher/pkg/defaults"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "mcp", "serve", "server":
		runMCP()
	case "version", "-version", "--version":
		fmt.Printf("%s %s\n", defaults.ToolName, defaults.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "%s %s — publish blog posts to dev.to over MCP\n\n", defaults.ToolName, defaults.Version)
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags]\n\n", defaults.ToolName)
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  mcp        Start the MCP server (stdio by default, --http for remote)\n")
	fmt.Fprintf(os.Stderr, "  version    Print the version\n")
	fmt.Fprintf(os.Stderr, "  help       Show this help\n\n")
	fmt.Fprintf(os.Stderr, "Run '%s mcp -h' for server flags.\n", defaults.ToolName)
}

// envOrDefault returns the environment variable value if set, otherwise the default.
func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
