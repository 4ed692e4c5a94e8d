package tools

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/adapters"
)

// AdapterArgs defines the input parameters for the mention_adapter tool.
type AdapterArgs struct {
	AppID string `json:"appId,omitempty" jsonschema:"Bundle identifier to look up; empty lists every known identifier"`
}

// AdapterHandler holds the dependencies for the adapter tool.
type AdapterHandler struct {
	Adapters *adapters.Registry
	Logger   *slog.Logger
}

// Handle processes a mention_adapter request.
func (h *AdapterHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args AdapterArgs) (*mcp.CallToolResult, any, error) {
	if args.AppID == "" {
		return textResult(FormatAdapterList(h.Adapters)), nil, nil
	}

	caps := h.Adapters.Adapter(args.AppID)
	known := h.Adapters.HasAdapter(args.AppID)
	h.Logger.Debug("mention_adapter", "appId", args.AppID, "known", known)
	return textResult(FormatCapabilities(args.AppID, caps, known)), nil, nil
}
