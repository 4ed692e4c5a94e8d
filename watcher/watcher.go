package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the quiet period before a batch of changes is emitted.
const DefaultInterval = 100 * time.Millisecond

// IgnoreChecker is used by the watcher to check if a path should be ignored.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher recursively watches the directories of a changing set of workspace
// roots and emits debounced batches of file changes.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	debouncer     *Debouncer
	ignoreChecker IgnoreChecker
	logger        *slog.Logger

	mu    sync.Mutex
	roots map[string]bool
}

// NewWatcher creates a watcher with no roots. Call SetRoots to start watching.
func NewWatcher(ignoreChecker IgnoreChecker, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher:     fsWatcher,
		debouncer:     NewDebouncer(DefaultInterval),
		ignoreChecker: ignoreChecker,
		logger:        logger,
		roots:         make(map[string]bool),
	}, nil
}

// SetRoots makes roots the watched set. Directories of roots no longer listed
// are unwatched; new roots are walked and every non-ignored directory is added.
func (w *Watcher) SetRoots(roots []string) {
	wanted := make(map[string]bool, len(roots))
	for _, root := range roots {
		wanted[filepath.Clean(root)] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for root := range w.roots {
		if !wanted[root] {
			w.unwatchRoot(root)
			delete(w.roots, root)
		}
	}
	for root := range wanted {
		if w.roots[root] {
			continue
		}
		w.watchTree(root)
		w.roots[root] = true
	}
}

// Roots returns the watched roots in sorted order.
func (w *Watcher) Roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	roots := make([]string, 0, len(w.roots))
	for root := range w.roots {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// watchTree adds dir and all its non-ignored subdirectories.
func (w *Watcher) watchTree(dir string) {
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := w.fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	w.logger.Debug("watching root", "root", dir)
}

// unwatchRoot removes every watched directory under root that no other root covers.
func (w *Watcher) unwatchRoot(root string) {
	prefix := root + string(filepath.Separator)
	for _, path := range w.fsWatcher.WatchList() {
		if path != root && !strings.HasPrefix(path, prefix) {
			continue
		}
		if w.coveredByOtherRoot(path, root) {
			continue
		}
		w.fsWatcher.Remove(path)
	}
	w.logger.Debug("stopped watching root", "root", root)
}

func (w *Watcher) coveredByOtherRoot(path string, except string) bool {
	for other := range w.roots {
		if other == except {
			continue
		}
		if path == other || strings.HasPrefix(path, other+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Events returns the channel that receives debounced file system events.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// Start begins listening for file system events. Call this in a goroutine.
// It runs until the watcher is closed.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single fsnotify event, converting it to a debounced event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A new directory is watched and reported, since it may already hold files
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if w.ignoreChecker.ShouldIgnoreDir(path) {
				return
			}
			w.mu.Lock()
			w.watchTree(path)
			w.mu.Unlock()
			w.debouncer.Add(path, OpCreate)
			return
		}
	}

	if w.ignoreChecker.ShouldIgnore(path) {
		return
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(path, op)
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
