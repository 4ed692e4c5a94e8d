package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/lexandro/mentionindex-mcp/workspace"
)

// ErrInvalidRoot is returned by Build when none of the roots is an existing directory.
var ErrInvalidRoot = errors.New("no usable workspace root")

var generations atomic.Uint64

// WorkspaceFileIndex is the immutable catalog of one Build call.
// Multiple roots merge into one flat collection; a rebuild produces a new value.
type WorkspaceFileIndex struct {
	Generation uint64   // Unique per build, increasing
	Roots      []string // Usable roots in the order they were merged

	files         []*IndexedFile // sorted by RelativePath
	byRelative    map[string]*IndexedFile
	byAbsolute    map[string]*IndexedFile
	byCompactStem map[string][]*IndexedFile
	extensions    map[string]bool // lowercased, without dot

	namesOnce sync.Once
	names     *nameIndex
	namesErr  error
}

// Build enumerates every usable root and merges the results into a new index.
// Roots are walked in parallel. When two roots yield the same relative or absolute
// path, the file from the earlier root wins. A root whose listing fails is treated
// as empty unless ctx was canceled.
func Build(ctx context.Context, provider workspace.Provider, roots []string) (*WorkspaceFileIndex, error) {
	var usable []string
	seenRoot := make(map[string]bool)
	for _, root := range roots {
		root = filepath.Clean(root)
		if seenRoot[root] || !provider.DirectoryExists(root) {
			continue
		}
		seenRoot[root] = true
		usable = append(usable, root)
	}
	if len(usable) == 0 {
		return nil, ErrInvalidRoot
	}

	listings := make([][]string, len(usable))
	g, gctx := errgroup.WithContext(ctx)
	for i, root := range usable {
		g.Go(func() error {
			files, err := provider.EnumerateFiles(gctx, root)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return nil
			}
			listings[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	var files []*IndexedFile
	seenRelative := make(map[string]bool)
	seenAbsolute := make(map[string]bool)
	for i, root := range usable {
		for _, absolutePath := range listings[i] {
			file, err := NewIndexedFile(root, absolutePath)
			if err != nil {
				continue
			}
			if seenRelative[file.RelativePath] || seenAbsolute[file.AbsolutePath] {
				continue
			}
			seenRelative[file.RelativePath] = true
			seenAbsolute[file.AbsolutePath] = true
			files = append(files, file)
		}
	}

	idx := NewWorkspaceFileIndex(files)
	idx.Roots = usable
	return idx, nil
}

// NewWorkspaceFileIndex assembles an index from already constructed files.
// Later duplicates of a relative path are dropped.
func NewWorkspaceFileIndex(files []*IndexedFile) *WorkspaceFileIndex {
	idx := &WorkspaceFileIndex{
		Generation:    generations.Add(1),
		byRelative:    make(map[string]*IndexedFile, len(files)),
		byAbsolute:    make(map[string]*IndexedFile, len(files)),
		byCompactStem: make(map[string][]*IndexedFile),
		extensions:    make(map[string]bool),
	}

	for _, file := range files {
		if _, exists := idx.byRelative[file.RelativePath]; exists {
			continue
		}
		idx.byRelative[file.RelativePath] = file
		if _, exists := idx.byAbsolute[file.AbsolutePath]; !exists {
			idx.byAbsolute[file.AbsolutePath] = file
		}
		idx.files = append(idx.files, file)

		compact := Compact(file.Stem)
		idx.byCompactStem[compact] = append(idx.byCompactStem[compact], file)
		if file.Extension != "" {
			idx.extensions[strings.ToLower(file.Extension)] = true
		}
	}

	sort.Slice(idx.files, func(i, j int) bool {
		return idx.files[i].RelativePath < idx.files[j].RelativePath
	})
	return idx
}

// FileCount returns the number of indexed files.
func (idx *WorkspaceFileIndex) FileCount() int {
	return len(idx.files)
}

// Files returns all indexed files sorted by relative path.
func (idx *WorkspaceFileIndex) Files() []*IndexedFile {
	out := make([]*IndexedFile, len(idx.files))
	copy(out, idx.files)
	return out
}

// File returns the file with the given relative path, or nil if not indexed.
func (idx *WorkspaceFileIndex) File(relativePath string) *IndexedFile {
	return idx.byRelative[strings.ReplaceAll(relativePath, "\\", "/")]
}

// FileByAbsolutePath returns the file with the given absolute path, or nil.
func (idx *WorkspaceFileIndex) FileByAbsolutePath(absolutePath string) *IndexedFile {
	return idx.byAbsolute[filepath.Clean(absolutePath)]
}

// HasExtension reports whether any indexed file carries ext (case-insensitive, no dot).
func (idx *WorkspaceFileIndex) HasExtension(ext string) bool {
	return idx.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// FilesWithCompactStem returns the files whose Compact(Stem) equals compact.
func (idx *WorkspaceFileIndex) FilesWithCompactStem(compact string) []*IndexedFile {
	return idx.byCompactStem[compact]
}

// LanguageCounts returns a map of language -> file count.
func (idx *WorkspaceFileIndex) LanguageCounts() map[string]int {
	counts := make(map[string]int)
	for _, file := range idx.files {
		counts[file.Language]++
	}
	return counts
}

// FileSearchResult holds a file match from a glob search.
type FileSearchResult struct {
	File *IndexedFile
}

// SearchByGlob returns files whose relative path matches a doublestar glob pattern.
func (idx *WorkspaceFileIndex) SearchByGlob(pattern string, maxResults int) ([]FileSearchResult, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []FileSearchResult
	for _, file := range idx.files {
		if len(results) >= maxResults {
			break
		}
		matched, err := doublestar.Match(pattern, file.RelativePath)
		if err != nil {
			continue
		}
		if matched {
			results = append(results, FileSearchResult{File: file})
		}
	}
	return results, nil
}

// Close releases the name suggestion index. Suggest fails after Close.
func (idx *WorkspaceFileIndex) Close() error {
	idx.namesOnce.Do(func() {
		idx.namesErr = errIndexClosed
	})
	if idx.names == nil {
		return nil
	}
	return idx.names.close()
}
