package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/adapters"
	"github.com/lexandro/mentionindex-mcp/rewrite"
)

// StatusArgs defines the input parameters for the mention_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Service      *rewrite.Service
	Adapters     *adapters.Registry
	DefaultRoots []string
	StartTime    time.Time
	Logger       *slog.Logger
}

// Handle processes a mention_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	snapshot := statusSnapshot{
		Status:       h.Service.Status(),
		DefaultRoots: h.DefaultRoots,
		Uptime:       time.Since(h.StartTime),
		AdapterCount: len(h.Adapters.IDs()),
	}
	runtime.ReadMemStats(&snapshot.Memory)

	h.Logger.Info("mention_status",
		"files", snapshot.Status.FileCount,
		"roots", len(snapshot.Status.Roots),
		"building", snapshot.Status.Building,
		"heap", snapshot.Memory.HeapAlloc,
	)

	return textResult(FormatStatus(snapshot)), nil, nil
}

// statusSnapshot is everything the status report shows, gathered once per call.
type statusSnapshot struct {
	Status       rewrite.Status
	DefaultRoots []string
	Uptime       time.Duration
	AdapterCount int
	Memory       runtime.MemStats
}

// formatDuration renders d at second precision, dropping seconds once it reaches an hour.
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
