package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/index"
	"github.com/lexandro/mentionindex-mcp/resolver"
	"github.com/lexandro/mentionindex-mcp/rewrite"
)

const defaultSuggestions = 5

// ResolveArgs defines the input parameters for the mention_resolve tool.
type ResolveArgs struct {
	Mention            string   `json:"mention" jsonschema:"Spoken or typed file reference (e.g. app coordinator dot swift)"`
	WorkspaceRoots     []string `json:"workspaceRoots,omitempty" jsonschema:"Workspace root hints (default: server roots)"`
	ActiveDocumentPath string   `json:"activeDocumentPath,omitempty" jsonschema:"Path of the document being edited, used to break ties"`
	Suggestions        int      `json:"suggestions,omitempty" jsonschema:"Fuzzy name suggestions to list when unresolved (default 5)"`
}

// ResolveHandler holds the dependencies for the resolve tool.
type ResolveHandler struct {
	Service      *rewrite.Service
	DefaultRoots []string
	Logger       *slog.Logger
}

// Handle processes a mention_resolve request.
func (h *ResolveHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ResolveArgs) (*mcp.CallToolResult, any, error) {
	if args.Mention == "" {
		h.Logger.Warn("mention_resolve called with empty mention")
		return errorResult("Error: mention parameter is required"), nil, nil
	}

	roots := rootsOrDefault(args.WorkspaceRoots, h.DefaultRoots)
	resolution, idx, err := h.Service.Resolve(ctx, args.Mention, roots, args.ActiveDocumentPath)
	if err != nil {
		if errors.Is(err, index.ErrInvalidRoot) {
			return errorResult("Error: no usable workspace root in %v", roots), nil, nil
		}
		h.Logger.Error("mention_resolve failed", "mention", args.Mention, "error", err)
		return errorResult("Resolve error: %v", err), nil, nil
	}

	var suggestions []*index.IndexedFile
	if _, unresolved := resolution.(resolver.Unresolved); unresolved {
		limit := args.Suggestions
		if limit <= 0 {
			limit = defaultSuggestions
		}
		suggestions, err = idx.Suggest(resolver.NormalizeMention(args.Mention), limit)
		if err != nil {
			h.Logger.Debug("name suggestions unavailable", "error", err)
		}
	}

	h.Logger.Info("mention_resolve", "mention", args.Mention, "kind", resolutionKind(resolution))
	return textResult(FormatResolution(resolution, suggestions)), nil, nil
}
