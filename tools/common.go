package tools

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// errorResult wraps a message as an IsError tool result.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func textResult(texts ...string) *mcp.CallToolResult {
	content := make([]mcp.Content, len(texts))
	for i, text := range texts {
		content[i] = &mcp.TextContent{Text: text}
	}
	return &mcp.CallToolResult{Content: content}
}

// rootsOrDefault returns the request roots, or the server defaults when none were given.
func rootsOrDefault(requested []string, defaults []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return defaults
}
