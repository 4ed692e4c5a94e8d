package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexandro/mentionindex-mcp/ignore"
	"github.com/lexandro/mentionindex-mcp/rewrite"
	"github.com/lexandro/mentionindex-mcp/workspace"
)

func Test_stringList_Repeatable(t *testing.T) {
	var list stringList
	require.NoError(t, list.Set("/a"))
	require.NoError(t, list.Set("/b"))

	assert.Equal(t, stringList{"/a", "/b"}, list)
	assert.Equal(t, "/a, /b", list.String())
}

func Test_parseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func Test_loadRegistry(t *testing.T) {
	builtIn, err := loadRegistry("")
	require.NoError(t, err)
	assert.True(t, builtIn.HasAdapter("com.microsoft.VSCode"))

	path := filepath.Join(t.TempDir(), "adapters.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[adapter]]
id = "com.example.editor"
display_name = "Example"
mention_prefix = "@"
file_mentions = true
`), 0o644))

	custom, err := loadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "Example", custom.Adapter("com.example.editor").DisplayName)
	assert.True(t, custom.HasAdapter("com.microsoft.VSCode"))

	_, err = loadRegistry(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func Test_newResetFunc(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("x"), 0o644))
	ignores := ignore.NewSet(nil)
	service := rewrite.NewService(rewrite.Options{Provider: workspace.NewDiskProvider(ignores, nil)})
	_, err := service.Index(context.Background(), []string{root})
	require.NoError(t, err)
	require.True(t, service.RecordAccess(filepath.Join(root, "main.go")))

	dropped, err := newResetFunc(service, ignores)(true)

	require.NoError(t, err)
	assert.Equal(t, []string{root}, dropped)
	assert.Empty(t, service.Status().Roots)
	assert.Zero(t, service.Status().RecencyCount)
}

type recordingSetter struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingSetter) SetRoots(roots []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, roots)
}

func (r *recordingSetter) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func Test_rootUpdates_LatestWins(t *testing.T) {
	updates := newRootUpdates()
	updates.publish([]string{"/old"})
	updates.publish([]string{"/new"})

	setter := &recordingSetter{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go updates.follow(ctx, setter)

	assert.Eventually(t, func() bool {
		return len(setter.last()) == 1 && setter.last()[0] == "/new"
	}, time.Second, 10*time.Millisecond)

	setter.mu.Lock()
	defer setter.mu.Unlock()
	assert.Len(t, setter.calls, 1)
}
