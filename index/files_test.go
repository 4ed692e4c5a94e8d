package index

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexandro/mentionindex-mcp/ignore"
	"github.com/lexandro/mentionindex-mcp/workspace"
)

func newTestFile(t *testing.T, relPath string) *IndexedFile {
	t.Helper()
	file, err := NewIndexedFile("/project", filepath.Join("/project", filepath.FromSlash(relPath)))
	require.NoError(t, err)
	return file
}

func newTestIndex(t *testing.T, relPaths ...string) *WorkspaceFileIndex {
	t.Helper()
	files := make([]*IndexedFile, 0, len(relPaths))
	for _, rel := range relPaths {
		files = append(files, newTestFile(t, rel))
	}
	return NewWorkspaceFileIndex(files)
}

func writeTree(t *testing.T, root string, relPaths ...string) {
	t.Helper()
	for _, rel := range relPaths {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
}

func testProvider() *workspace.DiskProvider {
	return workspace.NewDiskProvider(ignore.NewSet(nil), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_NewIndexedFile_DerivesFields(t *testing.T) {
	file := newTestFile(t, "Pindrop/Services/AppCoordinator.swift")

	assert.Equal(t, "Pindrop/Services/AppCoordinator.swift", file.RelativePath)
	assert.Equal(t, "AppCoordinator.swift", file.Filename)
	assert.Equal(t, "AppCoordinator", file.Stem)
	assert.Equal(t, "swift", file.Extension)
	assert.Equal(t, []string{"Pindrop", "Services", "AppCoordinator.swift"}, file.PathSegments)
	assert.Equal(t, "appcoordinator.swift", file.FilenameLower)
	assert.Equal(t, "appcoordinator", file.StemLower)
	assert.Equal(t, "Swift", file.Language)
	assert.Equal(t, "Pindrop/Services", file.Dir())
	assert.Subset(t, file.Tokens, []string{"app", "coordinator", "appcoordinator", "swift", "pindrop", "services"})
}

func Test_NewIndexedFile_OutsideRoot(t *testing.T) {
	_, err := NewIndexedFile("/project", "/elsewhere/main.go")
	assert.Error(t, err)
}

func Test_SplitFilename(t *testing.T) {
	tests := []struct {
		name, stem, ext string
	}{
		{"main.go", "main", "go"},
		{"Button.test.tsx", "Button.test", "tsx"},
		{".gitignore", ".gitignore", ""},
		{"Makefile", "Makefile", ""},
		{"trailing.", "trailing.", ""},
	}
	for _, tt := range tests {
		stem, ext := SplitFilename(tt.name)
		assert.Equal(t, tt.stem, stem, tt.name)
		assert.Equal(t, tt.ext, ext, tt.name)
	}
}

func Test_SplitIdentifier(t *testing.T) {
	assert.Equal(t, []string{"audio", "recorder"}, SplitIdentifier("AudioRecorder"))
	assert.Equal(t, []string{"http", "server", "v", "2", "test"}, SplitIdentifier("HTTPServerV2_test"))
	assert.Equal(t, []string{"fixtures"}, SplitIdentifier("fixtures"))
	assert.Empty(t, SplitIdentifier("__"))
}

func Test_Compact(t *testing.T) {
	assert.Equal(t, "appcoordinator", Compact("App Coordinator"))
	assert.Equal(t, "appcoordinator", Compact("app_coordinator"))
	assert.Equal(t, "appcoordinator.swift", Compact("app-coordinator.swift"))
}

func Test_WorkspaceFileIndex_Lookups(t *testing.T) {
	idx := newTestIndex(t,
		"src/main.go",
		"src/utils/helper.go",
		"src/app.ts",
		"README.md",
	)

	assert.Equal(t, 4, idx.FileCount())
	require.NotNil(t, idx.File("src/main.go"))
	assert.Nil(t, idx.File("missing.go"))
	assert.NotNil(t, idx.FileByAbsolutePath(filepath.Join("/project", "src", "app.ts")))
	assert.True(t, idx.HasExtension("GO"))
	assert.True(t, idx.HasExtension(".md"))
	assert.False(t, idx.HasExtension("swift"))
	assert.Len(t, idx.FilesWithCompactStem("helper"), 1)

	files := idx.Files()
	assert.Equal(t, "README.md", files[0].RelativePath, "files are sorted by relative path")
}

func Test_WorkspaceFileIndex_DuplicateRelativePathsDropped(t *testing.T) {
	idx := NewWorkspaceFileIndex([]*IndexedFile{
		newTestFile(t, "a.go"),
		newTestFile(t, "a.go"),
	})
	assert.Equal(t, 1, idx.FileCount())
}

func Test_WorkspaceFileIndex_GenerationIncreases(t *testing.T) {
	first := newTestIndex(t, "a.go")
	second := newTestIndex(t, "a.go")
	assert.Greater(t, second.Generation, first.Generation)
}

func Test_WorkspaceFileIndex_LanguageCounts(t *testing.T) {
	idx := newTestIndex(t, "a.go", "b.go", "c.ts")

	counts := idx.LanguageCounts()
	assert.Equal(t, 2, counts["Go"])
	assert.Equal(t, 1, counts["TypeScript"])
}

func Test_WorkspaceFileIndex_SearchByGlob(t *testing.T) {
	idx := newTestIndex(t, "src/main.go", "src/utils/helper.go", "test/main_test.go", "README.md")

	results, err := idx.SearchByGlob("**/*.go", 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = idx.SearchByGlob("src/**/*.go", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = idx.SearchByGlob("[invalid", 50)
	assert.Error(t, err)
}

func Test_WorkspaceFileIndex_Suggest(t *testing.T) {
	idx := newTestIndex(t,
		"Pindrop/Services/AppCoordinator.swift",
		"Pindrop/Services/AudioRecorder.swift",
		"README.md",
	)
	defer idx.Close()

	suggestions, err := idx.Suggest("audio recordr", 3)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "Pindrop/Services/AudioRecorder.swift", suggestions[0].RelativePath)
}

func Test_WorkspaceFileIndex_SuggestAfterClose(t *testing.T) {
	idx := newTestIndex(t, "main.go")
	require.NoError(t, idx.Close())

	_, err := idx.Suggest("main", 3)
	assert.Error(t, err)
}

func Test_Build_MergesRoots(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeTree(t, first, "Pindrop/Services/AppCoordinator.swift", "README.md")
	writeTree(t, second, "lib/Button.swift", "README.md")

	idx, err := Build(context.Background(), testProvider(), []string{first, second})
	require.NoError(t, err)

	assert.Equal(t, 3, idx.FileCount(), "second README.md collides and is dropped")
	readme := idx.File("README.md")
	require.NotNil(t, readme)
	assert.Equal(t, filepath.Clean(first), readme.WorkspaceRoot)
	assert.NotNil(t, idx.File("lib/Button.swift"))
	assert.Equal(t, []string{filepath.Clean(first), filepath.Clean(second)}, idx.Roots)
}

func Test_Build_SkipsMissingRoots(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "main.go")

	idx, err := Build(context.Background(), testProvider(), []string{filepath.Join(root, "missing"), root})
	require.NoError(t, err)
	assert.Equal(t, 1, idx.FileCount())
}

func Test_Build_InvalidRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "main.go")

	_, err := Build(context.Background(), testProvider(), []string{filepath.Join(root, "main.go"), "/definitely/not/here"})
	assert.True(t, errors.Is(err, ErrInvalidRoot))

	_, err = Build(context.Background(), testProvider(), nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func Test_Build_Canceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "main.go")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, testProvider(), []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}
