package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/tools"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Handlers groups the tool handlers registered by Setup.
type Handlers struct {
	Rewrite      *tools.RewriteHandler
	Resolve      *tools.ResolveHandler
	Files        *tools.FilesHandler
	Adapter      *tools.AdapterHandler
	RecordAccess *tools.RecordAccessHandler
	Status       *tools.StatusHandler
	Reset        *tools.ResetHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(h Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mentionindex-mcp",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server turns dictated text into text with file mentions in the format of the application it will be pasted into.

Typical flow:
- Call mention_rewrite with the transcript, the frontmost application's bundle id, the workspace roots and the active document
- Paste the first content item of the result as is; it is the original text whenever nothing could be resolved confidently
- Call mention_record_access when the user opens a file so that recently used files win close calls
- Use mention_resolve to see why a mention was or was not rewritten`,
		},
	)

	// Register mention_rewrite tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "mention_rewrite",
		Description: `Rewrite spoken or typed file references in text into the target application's mention syntax.

Recognized forms:
  - Spoken: "app coordinator dot swift", "services slash app coordinator dot swift"
  - Literal: "AppCoordinator.swift", "src/main.go"
  - Known names: "app coordinator" when AppCoordinator.swift exists

Only confident, unambiguous matches are rewritten (e.g. "@Sources/AppCoordinator.swift" for Cursor,
"#file:Sources/AppCoordinator.swift" for VS Code). Anything else is left exactly as dictated.`,
	}, h.Rewrite.Handle)

	// Register mention_resolve tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "mention_resolve",
		Description: "Resolve a single mention against the workspace and show the winning file, the tied candidates, or similar names when nothing matched.",
	}, h.Resolve.Handle)

	// Register mention_files tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "mention_files",
		Description: `List workspace files that can be mentioned, filtered by glob pattern.

Pattern examples:
  - "**/*.swift" - all Swift files
  - "Sources/**" - everything under Sources/
  - "*.md" - Markdown files in the root only`,
	}, h.Files.Handle)

	// Register mention_adapter tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "mention_adapter",
		Description: "Show the mention capabilities of an application by bundle id, or list all known applications.",
	}, h.Adapter.Handle)

	// Register mention_record_access tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "mention_record_access",
		Description: "Record that a file was just opened. Recently accessed files win ties between equally good matches.",
	}, h.RecordAccess.Handle)

	// Register mention_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "mention_status",
		Description: "Show cached workspace roots, file and language counts, recency size, memory usage, and uptime.",
	}, h.Status.Handle)

	// Register mention_reset tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "mention_reset",
		Description: "Drop the cached workspace index and reload ignore rules. Optionally forget recently accessed files.",
	}, h.Reset.Handle)

	return mcpServer
}
