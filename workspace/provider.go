// Package workspace is the read-only filesystem boundary of the mention index.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lexandro/mentionindex-mcp/ignore"
)

// Provider lists the candidate files of a workspace root.
// Implementations apply ignore rules per file, all or nothing, and never descend into
// version-control metadata directories.
type Provider interface {
	// EnumerateFiles returns absolute paths of the indexable regular files under root.
	// It stops early and returns ctx.Err() when ctx is canceled.
	EnumerateFiles(ctx context.Context, root string) ([]string, error)
	DirectoryExists(path string) bool
	FileExists(path string) bool
}

// DiskProvider enumerates files on the local disk.
type DiskProvider struct {
	ignores *ignore.Set
	logger  *slog.Logger
}

// NewDiskProvider creates a provider that consults ignores for every root it walks.
func NewDiskProvider(ignores *ignore.Set, logger *slog.Logger) *DiskProvider {
	if ignores == nil {
		ignores = ignore.NewSet(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiskProvider{ignores: ignores, logger: logger}
}

// Ignores returns the matcher set shared with the watcher.
func (p *DiskProvider) Ignores() *ignore.Set {
	return p.ignores
}

// EnumerateFiles walks root and collects every non-ignored regular file.
// Unreadable entries are skipped: a partial listing yields a smaller index, not an error.
func (p *DiskProvider) EnumerateFiles(ctx context.Context, root string) ([]string, error) {
	root = filepath.Clean(root)
	if !p.DirectoryExists(root) {
		return nil, fmt.Errorf("enumerating %s: not a directory", root)
	}
	matcher := p.ignores.ForRoot(root)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			p.logger.Debug("skipped unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != root && matcher.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matcher.ShouldIgnore(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// DirectoryExists reports whether path names an existing directory.
func (p *DiskProvider) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists reports whether path names an existing regular file.
func (p *DiskProvider) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
