package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/adapters"
	"github.com/lexandro/mentionindex-mcp/rewrite"
)

// RewriteArgs defines the input parameters for the mention_rewrite tool.
type RewriteArgs struct {
	Text               string   `json:"text" jsonschema:"Dictated text to rewrite"`
	AppID              string   `json:"appId,omitempty" jsonschema:"Bundle identifier of the frontmost application (e.g. com.microsoft.VSCode)"`
	WorkspaceRoots     []string `json:"workspaceRoots,omitempty" jsonschema:"Workspace root hints: paths, file:// URLs or paths of open files"`
	ActiveDocumentPath string   `json:"activeDocumentPath,omitempty" jsonschema:"Path of the document being edited, used to break ties"`
	Verbose            bool     `json:"verbose,omitempty" jsonschema:"If true add a per-span report after the text"`
}

// RewriteHandler holds the dependencies for the rewrite tool.
type RewriteHandler struct {
	Service      *rewrite.Service
	Adapters     *adapters.Registry
	DefaultRoots []string
	Logger       *slog.Logger
}

// Handle processes a mention_rewrite request. The first content item is always
// the final text; rewriting failures never surface as tool errors.
func (h *RewriteHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RewriteArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	caps := h.Adapters.Adapter(args.AppID)
	roots := rootsOrDefault(args.WorkspaceRoots, h.DefaultRoots)
	result := h.Service.Rewrite(ctx, args.Text, caps, roots, args.ActiveDocumentPath)

	h.Logger.Info("mention_rewrite",
		"app", caps.DisplayName,
		"rewritten", result.RewrittenCount,
		"preserved", result.PreservedCount,
		"elapsed", time.Since(start),
	)

	if !args.Verbose {
		return textResult(result.Text), nil, nil
	}
	return textResult(result.Text, FormatRewriteReport(result, caps)), nil, nil
}
