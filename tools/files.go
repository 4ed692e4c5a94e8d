package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/rewrite"
)

// FilesArgs defines the input parameters for the mention_files tool.
type FilesArgs struct {
	Pattern        string   `json:"pattern" jsonschema:"Glob pattern to match files (e.g. **/*.swift or Sources/**)"`
	WorkspaceRoots []string `json:"workspaceRoots,omitempty" jsonschema:"Workspace root hints (default: server roots)"`
	NameOnly       bool     `json:"nameOnly,omitempty" jsonschema:"If true return only file paths without metadata"`
	MaxResults     int      `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	Service      *rewrite.Service
	DefaultRoots []string
	Logger       *slog.Logger
}

// Handle processes a mention_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" {
		h.Logger.Warn("mention_files called with empty pattern")
		return errorResult("Error: pattern parameter is required"), nil, nil
	}

	idx, err := h.Service.Index(ctx, rootsOrDefault(args.WorkspaceRoots, h.DefaultRoots))
	if err != nil {
		h.Logger.Error("mention_files index unavailable", "error", err)
		return errorResult("Index error: %v", err), nil, nil
	}

	results, err := idx.SearchByGlob(args.Pattern, args.MaxResults)
	if err != nil {
		h.Logger.Error("mention_files failed", "pattern", args.Pattern, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("mention_files",
		"pattern", args.Pattern,
		"results", len(results),
		"elapsed", time.Since(start),
	)

	return textResult(FormatFileResults(results, args.NameOnly)), nil, nil
}
