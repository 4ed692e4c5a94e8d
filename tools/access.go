package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/rewrite"
)

// RecordAccessArgs defines the input parameters for the mention_record_access tool.
type RecordAccessArgs struct {
	Path string `json:"path" jsonschema:"Absolute path or file:// URL of the file that was opened"`
}

// RecordAccessHandler holds the dependencies for the record access tool.
type RecordAccessHandler struct {
	Service *rewrite.Service
	Logger  *slog.Logger
}

// Handle processes a mention_record_access request.
func (h *RecordAccessHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RecordAccessArgs) (*mcp.CallToolResult, any, error) {
	if !h.Service.RecordAccess(args.Path) {
		h.Logger.Warn("mention_record_access rejected path", "path", args.Path)
		return errorResult("Error: path must be absolute, got %q", args.Path), nil, nil
	}

	h.Logger.Debug("mention_record_access", "path", args.Path)
	return textResult(fmt.Sprintf("recorded access: %s", args.Path)), nil, nil
}
