package ignore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// RuleFiles are the per-root ignore files honored by the matcher, in evaluation order.
var RuleFiles = []string{".gitignore", ".mentionignore"}

// Matcher decides whether a path under one workspace root is excluded from the mention index.
// It combines metadata directories, default patterns, the root's rule files and custom patterns.
// Thread-safe: Reload() acquires a write lock, ShouldIgnore()/ShouldIgnoreDir() acquire a read lock.
type Matcher struct {
	mu             sync.RWMutex
	rootDir        string
	rules          []gitignore.GitIgnore
	customPatterns []string
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir        string
	CustomPatterns []string // doublestar patterns matched against root-relative paths and basenames
}

// NewMatcher creates an ignore matcher for a single workspace root.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:        filepath.Clean(options.RootDir),
		customPatterns: options.CustomPatterns,
	}
	matcher.rules = loadRuleFiles(matcher.rootDir)
	return matcher
}

// RootDir returns the workspace root this matcher is scoped to.
func (m *Matcher) RootDir() string {
	return m.rootDir
}

// ShouldIgnore returns true if the given absolute path should be excluded from indexing.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)

	if m.matchesDefaultPatterns(relativePath) {
		return true
	}

	isDir := false
	if info, err := os.Stat(absolutePath); err == nil {
		isDir = info.IsDir()
	}

	// Relative() doesn't require the file to exist on disk
	for _, rules := range m.rules {
		match := rules.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relativePath)
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if MetadataDirs[filepath.Base(absolutePath)] {
		return true
	}
	return m.ShouldIgnore(absolutePath)
}

// matchesDefaultPatterns checks path components and the basename against DefaultIgnorePatterns.
func (m *Matcher) matchesDefaultPatterns(relativePath string) bool {
	parts := strings.Split(relativePath, "/")
	baseNameLower := strings.ToLower(parts[len(parts)-1])

	for _, part := range parts {
		if MetadataDirs[part] {
			return true
		}
	}

	for _, pattern := range DefaultIgnorePatterns {
		patternLower := strings.ToLower(pattern)
		if !strings.ContainsAny(pattern, "*?[") {
			for _, part := range parts {
				if strings.ToLower(part) == patternLower {
					return true
				}
			}
			continue
		}
		if matched, err := filepath.Match(patternLower, baseNameLower); err == nil && matched {
			return true
		}
	}
	return false
}

// matchesCustomPatterns checks if the path matches any user-provided exclude pattern.
func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.customPatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads the rule files from disk.
func (m *Matcher) Reload() {
	rules := loadRuleFiles(m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
}

func loadRuleFiles(rootDir string) []gitignore.GitIgnore {
	var rules []gitignore.GitIgnore
	for _, name := range RuleFiles {
		if gi := loadIgnoreFile(filepath.Join(rootDir, name), rootDir); gi != nil {
			rules = append(rules, gi)
		}
	}
	return rules
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}

// IsRuleFile reports whether a basename is one of the ignore rule files.
func IsRuleFile(baseName string) bool {
	for _, name := range RuleFiles {
		if baseName == name {
			return true
		}
	}
	return false
}

// Set holds one Matcher per workspace root and dispatches a path to the
// matcher of the deepest root containing it.
type Set struct {
	mu             sync.Mutex
	customPatterns []string
	matchers       map[string]*Matcher
}

// NewSet creates an empty matcher set. Custom patterns apply to every root.
func NewSet(customPatterns []string) *Set {
	return &Set{
		customPatterns: customPatterns,
		matchers:       make(map[string]*Matcher),
	}
}

// ForRoot returns the matcher for a root, creating it on first use.
func (s *Set) ForRoot(rootDir string) *Matcher {
	rootDir = filepath.Clean(rootDir)

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.matchers[rootDir]; ok {
		return m
	}
	m := NewMatcher(MatcherOptions{RootDir: rootDir, CustomPatterns: s.customPatterns})
	s.matchers[rootDir] = m
	return m
}

// ShouldIgnore applies the matcher of the deepest known root containing the path.
// Paths outside every known root are never ignored.
func (s *Set) ShouldIgnore(absolutePath string) bool {
	m := s.lookup(absolutePath)
	return m != nil && m.ShouldIgnore(absolutePath)
}

// ShouldIgnoreDir is ShouldIgnore for directories.
func (s *Set) ShouldIgnoreDir(absolutePath string) bool {
	m := s.lookup(absolutePath)
	if m == nil {
		return MetadataDirs[filepath.Base(absolutePath)]
	}
	return m.ShouldIgnoreDir(absolutePath)
}

// Reload re-reads the rule files of every root.
func (s *Set) Reload() {
	s.mu.Lock()
	matchers := make([]*Matcher, 0, len(s.matchers))
	for _, m := range s.matchers {
		matchers = append(matchers, m)
	}
	s.mu.Unlock()

	for _, m := range matchers {
		m.Reload()
	}
}

// Roots returns the known roots in sorted order.
func (s *Set) Roots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	roots := make([]string, 0, len(s.matchers))
	for root := range s.matchers {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

func (s *Set) lookup(absolutePath string) *Matcher {
	absolutePath = filepath.Clean(absolutePath)

	s.mu.Lock()
	defer s.mu.Unlock()

	var best *Matcher
	for root, m := range s.matchers {
		if absolutePath != root && !strings.HasPrefix(absolutePath, root+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(root) > len(best.rootDir) {
			best = m
		}
	}
	return best
}
