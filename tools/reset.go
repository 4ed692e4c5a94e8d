package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ResetArgs defines the input parameters for the mention_reset tool.
type ResetArgs struct {
	ClearRecency bool `json:"clearRecency,omitempty" jsonschema:"If true also forget recently accessed files"`
}

// ResetFunc is the function signature for the reset operation.
// It is provided by main.go, which owns the ignore rules and the service.
type ResetFunc func(clearRecency bool) (droppedRoots []string, err error)

// ResetHandler holds the dependencies for the reset tool.
type ResetHandler struct {
	DoReset ResetFunc
	Logger  *slog.Logger
}

// Handle processes a mention_reset request.
func (h *ResetHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ResetArgs) (*mcp.CallToolResult, any, error) {
	dropped, err := h.DoReset(args.ClearRecency)
	if err != nil {
		h.Logger.Error("mention_reset failed", "error", err)
		return errorResult("Reset error: %v", err), nil, nil
	}

	h.Logger.Info("mention_reset", "roots", dropped, "clearRecency", args.ClearRecency)

	var builder strings.Builder
	if len(dropped) == 0 {
		builder.WriteString("Reset complete: no cached index.")
	} else {
		builder.WriteString(fmt.Sprintf("Reset complete: dropped index of %s.", strings.Join(dropped, ", ")))
	}
	if args.ClearRecency {
		builder.WriteString(" Recency cleared.")
	}
	return textResult(builder.String()), nil, nil
}
