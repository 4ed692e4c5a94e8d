package rewrite

import (
	"net/url"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lexandro/mentionindex-mcp/workspace"
)

// ProjectMarkers are entries whose presence makes a directory a project root.
var ProjectMarkers = []string{".git", ".hg", ".svn", ".jj"}

var urlScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

// normalizeRoots turns loosely formatted workspace hints into a sorted, de-duplicated
// set of existing directories. Hints naming neither a file nor a directory are dropped.
func normalizeRoots(hints []string, provider workspace.Provider, homeDir string) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, hint := range hints {
		root, ok := normalizeRoot(hint, provider, homeDir)
		if !ok || seen[root] {
			continue
		}
		seen[root] = true
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

func normalizeRoot(hint string, provider workspace.Provider, homeDir string) (string, bool) {
	p := stripScheme(strings.TrimSpace(hint))
	if p == "" {
		return "", false
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		if homeDir == "" {
			return "", false
		}
		p = filepath.Join(homeDir, strings.TrimPrefix(p, "~"))
	}
	p = filepath.Clean(filepath.FromSlash(p))
	if !filepath.IsAbs(p) {
		return "", false
	}

	switch {
	case provider.DirectoryExists(p):
		return p, true
	case provider.FileExists(p):
		dir := filepath.Dir(p)
		if project, ok := findProjectRoot(dir, provider, homeDir); ok {
			return project, true
		}
		return dir, true
	}
	return "", false
}

// stripScheme removes a URL scheme and authority, percent-decoding the remaining path.
// "file:///Users/me/My%20App" becomes "/Users/me/My App".
func stripScheme(hint string) string {
	loc := urlScheme.FindStringIndex(hint)
	if loc == nil {
		return hint
	}
	if u, err := url.Parse(hint); err == nil && u.Path != "" {
		if strings.EqualFold(u.Scheme, "file") || u.Host != "" {
			return u.Path
		}
	}

	rest := hint[loc[1]:]
	if !strings.HasPrefix(rest, "/") {
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[i:]
		} else {
			return ""
		}
	}
	if unescaped, err := url.PathUnescape(rest); err == nil {
		return unescaped
	}
	return rest
}

// findProjectRoot climbs from dir towards the filesystem root, stopping at the
// home directory, and returns the first directory holding a project marker.
func findProjectRoot(dir string, provider workspace.Provider, homeDir string) (string, bool) {
	for current := dir; ; {
		for _, marker := range ProjectMarkers {
			candidate := filepath.Join(current, marker)
			if provider.DirectoryExists(candidate) || provider.FileExists(candidate) {
				return current, true
			}
		}
		if homeDir != "" && current == filepath.Clean(homeDir) {
			return "", false
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}
