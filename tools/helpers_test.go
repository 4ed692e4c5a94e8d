package tools

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/adapters"
	"github.com/lexandro/mentionindex-mcp/rewrite"
	"github.com/lexandro/mentionindex-mcp/workspace"
)

const cursorID = "com.todesktop.230313mzl4w4u92"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestWorkspace creates a small project and a service over it.
func newTestWorkspace(t *testing.T) (string, *rewrite.Service) {
	t.Helper()
	home := t.TempDir()
	root := filepath.Join(home, "project")
	for _, rel := range []string{
		".git/HEAD",
		"Sources/AppCoordinator.swift",
		"Sources/AudioRecorder.swift",
		"Tests/A/Helpers.swift",
		"Tests/B/Helpers.swift",
		"main.go",
		"README.md",
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	svc := rewrite.NewService(rewrite.Options{
		Provider: workspace.NewDiskProvider(nil, testLogger()),
		Logger:   testLogger(),
		HomeDir:  home,
	})
	return root, svc
}

func testRegistry() *adapters.Registry {
	return adapters.NewRegistry(adapters.DefaultTable())
}

func resultText(t *testing.T, result *mcp.CallToolResult, i int) string {
	t.Helper()
	if len(result.Content) <= i {
		t.Fatalf("expected at least %d content items, got %d", i+1, len(result.Content))
	}
	return result.Content[i].(*mcp.TextContent).Text
}
