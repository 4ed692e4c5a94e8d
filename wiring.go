package main

import (
	"context"

	"github.com/lexandro/mentionindex-mcp/adapters"
	"github.com/lexandro/mentionindex-mcp/ignore"
	"github.com/lexandro/mentionindex-mcp/rewrite"
	"github.com/lexandro/mentionindex-mcp/tools"
)

// loadRegistry builds the adapter registry from the built-in table and, when
// path is set, the entries of a TOML file.
func loadRegistry(path string) (*adapters.Registry, error) {
	table := adapters.DefaultTable()
	if path != "" {
		var err error
		table, err = adapters.LoadTable(path, table)
		if err != nil {
			return nil, err
		}
	}
	return adapters.NewRegistry(table), nil
}

// newResetFunc drops the cached index after reloading ignore rules, so the
// next request rebuilds with fresh rules.
func newResetFunc(service *rewrite.Service, ignores *ignore.Set) tools.ResetFunc {
	return func(clearRecency bool) ([]string, error) {
		dropped := service.Status().Roots
		ignores.Reload()
		service.ClearCache()
		if clearRecency {
			service.Resolver().ClearRecency()
		}
		return dropped, nil
	}
}

// rootSetter is the part of the watcher rootUpdates drives.
type rootSetter interface {
	SetRoots(roots []string)
}

// rootUpdates hands the latest indexed root set to the watcher. Only the most
// recent set is kept, so a slow directory walk never applies stale roots.
type rootUpdates struct {
	latest chan []string
}

func newRootUpdates() *rootUpdates {
	return &rootUpdates{latest: make(chan []string, 1)}
}

// publish replaces any pending root set with roots. It never blocks.
func (u *rootUpdates) publish(roots []string) {
	for {
		select {
		case u.latest <- roots:
			return
		default:
		}
		select {
		case <-u.latest:
		default:
		}
	}
}

// follow applies published root sets to w until ctx is done.
func (u *rootUpdates) follow(ctx context.Context, w rootSetter) {
	for {
		select {
		case <-ctx.Done():
			return
		case roots := <-u.latest:
			w.SetRoots(roots)
		}
	}
}
