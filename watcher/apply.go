package watcher

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/lexandro/mentionindex-mcp/ignore"
)

// CacheTarget receives the effects of file changes.
type CacheTarget interface {
	ClearCache()
	RecordAccess(path string) bool
}

// RuleReloader re-reads ignore rule files.
type RuleReloader interface {
	Reload()
}

// Summary counts what one batch did.
type Summary struct {
	Invalidated bool
	RulesLoaded bool
	Touched     int
}

// Apply turns one batch of changes into cache effects. Any create, remove or
// rename invalidates the index; a changed ignore rule file also reloads the
// rules; writes mark files as recently accessed.
func Apply(batch []DebouncedEvent, target CacheTarget, rules RuleReloader) Summary {
	var s Summary
	for _, event := range batch {
		if ignore.IsRuleFile(filepath.Base(event.Path)) {
			s.RulesLoaded = true
			s.Invalidated = true
			continue
		}
		if event.Op.ChangesFileSet() {
			s.Invalidated = true
			continue
		}
		if target.RecordAccess(event.Path) {
			s.Touched++
		}
	}

	if s.RulesLoaded && rules != nil {
		rules.Reload()
	}
	if s.Invalidated {
		target.ClearCache()
	}
	return s
}

// Run applies batches from events until ctx is done.
func Run(ctx context.Context, events <-chan []DebouncedEvent, target CacheTarget, rules RuleReloader, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-events:
			s := Apply(batch, target, rules)
			logger.Debug("applied file changes",
				"events", len(batch),
				"invalidated", s.Invalidated,
				"rulesReloaded", s.RulesLoaded,
				"touched", s.Touched,
			)
		}
	}
}
