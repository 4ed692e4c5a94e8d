package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lexandro/mentionindex-mcp/adapters"
	"github.com/lexandro/mentionindex-mcp/index"
	"github.com/lexandro/mentionindex-mcp/mention"
	"github.com/lexandro/mentionindex-mcp/resolver"
	"github.com/lexandro/mentionindex-mcp/workspace"
)

// Result is the outcome of one Rewrite call.
type Result struct {
	Text           string
	RewrittenCount int
	PreservedCount int
	Spans          []Outcome
}

// DidRewrite reports whether at least one mention was replaced.
func (r Result) DidRewrite() bool {
	return r.RewrittenCount > 0
}

// Outcome pairs an extracted span with what the formatter decided for it.
type Outcome struct {
	Span   Span
	Result mention.Result
}

// Options configures a Service. Provider is required; the rest have defaults.
type Options struct {
	Provider  workspace.Provider
	Resolver  *resolver.Resolver
	Format    mention.Options
	Logger    *slog.Logger
	HomeDir   string               // "" uses os.UserHomeDir
	Now       func() time.Time     // nil uses time.Now
	OnRebuild func(roots []string) // called after a new index is installed
}

type indexCache struct {
	key     string
	roots   []string
	index   *index.WorkspaceFileIndex
	builtAt time.Time
}

// inflightBuild is the build currently allowed to install its index.
type inflightBuild struct {
	key    string
	roots  []string
	ctx    context.Context
	cancel context.CancelFunc
}

// Service turns dictated text into text with adapter-formatted file mentions.
// It owns the index cache; every failure leaves the text unchanged.
type Service struct {
	provider  workspace.Provider
	resolver  *resolver.Resolver
	format    mention.Options
	logger    *slog.Logger
	homeDir   string
	now       func() time.Time
	onRebuild func(roots []string)

	builds singleflight.Group

	mu       sync.Mutex
	cache    *indexCache
	inflight *inflightBuild
	started  time.Time
}

// NewService creates a Service from opts.
func NewService(opts Options) *Service {
	if opts.Resolver == nil {
		opts.Resolver = resolver.New(resolver.DefaultMemoSize)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HomeDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.HomeDir = home
		}
	}
	if opts.Format == (mention.Options{}) {
		opts.Format = mention.DefaultOptions()
	}

	return &Service{
		provider:  opts.Provider,
		resolver:  opts.Resolver,
		format:    opts.Format,
		logger:    opts.Logger,
		homeDir:   opts.HomeDir,
		now:       opts.Now,
		onRebuild: opts.OnRebuild,
		started:   opts.Now(),
	}
}

// Resolver returns the resolver holding the recency state.
func (s *Service) Resolver() *resolver.Resolver {
	return s.resolver
}

// NormalizeWorkspaceRoots converts root hints (paths, file:// URLs, "~/..."
// paths, file paths) into a sorted set of existing directories.
func (s *Service) NormalizeWorkspaceRoots(hints []string) []string {
	return normalizeRoots(hints, s.provider, s.homeDir)
}

// Rewrite replaces every confidently resolved file mention in text with its
// adapter-specific form. It never fails: on any problem the original text is
// returned with zero counts.
func (s *Service) Rewrite(ctx context.Context, text string, caps adapters.Capabilities, workspaceRoots []string, activeDocumentPath string) Result {
	unchanged := Result{Text: text}
	if !caps.SupportsFileMentions {
		s.logger.Debug("adapter does not support file mentions", "app", caps.DisplayName)
		return unchanged
	}

	idx, err := s.Index(ctx, workspaceRoots)
	if err != nil {
		if errors.Is(err, index.ErrInvalidRoot) || errors.Is(err, context.Canceled) {
			s.logger.Debug("skipping rewrite", "error", err)
		} else {
			s.logger.Warn("workspace index unavailable, leaving text unchanged", "error", err)
		}
		return unchanged
	}
	if idx.FileCount() == 0 || ctx.Err() != nil {
		return unchanged
	}

	spans := ExtractCandidates(text, idx)
	if len(spans) == 0 {
		return unchanged
	}

	items := make([]mention.Item, len(spans))
	for i, span := range spans {
		items[i] = mention.Item{
			Start:      span.Start,
			End:        span.End,
			Resolution: s.resolver.Resolve(span.Query, idx, activeDocumentPath),
		}
	}
	if ctx.Err() != nil {
		return unchanged
	}

	report := mention.FormatBatch(text, items, caps, s.format)
	outcomes := make([]Outcome, len(spans))
	for i, span := range spans {
		outcomes[i] = Outcome{Span: span, Result: report.Results[i]}
	}

	s.logger.Debug("rewrite finished",
		"app", caps.DisplayName,
		"spans", len(spans),
		"rewritten", report.Formatted,
		"preserved", report.Preserved,
	)
	return Result{
		Text:           report.Text,
		RewrittenCount: report.Formatted,
		PreservedCount: report.Preserved,
		Spans:          outcomes,
	}
}

// Resolve resolves a single mention against the index of workspaceRoots.
func (s *Service) Resolve(ctx context.Context, mentionText string, workspaceRoots []string, activeDocumentPath string) (resolver.Resolution, *index.WorkspaceFileIndex, error) {
	idx, err := s.Index(ctx, workspaceRoots)
	if err != nil {
		return nil, nil, err
	}
	return s.resolver.Resolve(mentionText, idx, activeDocumentPath), idx, nil
}

// Index returns the index for workspaceRoots, building it when the normalized
// root set differs from the cached one. Builds of the same root set are shared;
// asking for a different root set cancels a build in flight, and its waiters
// get an error wrapping context.Canceled.
func (s *Service) Index(ctx context.Context, workspaceRoots []string) (*index.WorkspaceFileIndex, error) {
	roots := s.NormalizeWorkspaceRoots(workspaceRoots)
	if len(roots) == 0 {
		return nil, index.ErrInvalidRoot
	}
	key := strings.Join(roots, "\x00")

	s.mu.Lock()
	if s.cache != nil && s.cache.key == key {
		idx := s.cache.index
		s.mu.Unlock()
		return idx, nil
	}
	if s.inflight != nil && s.inflight.key != key {
		s.logger.Debug("canceling superseded index build", "roots", s.inflight.roots)
		s.inflight.cancel()
		s.inflight = nil
	}
	if s.inflight == nil {
		buildCtx, cancel := context.WithCancel(context.Background())
		s.inflight = &inflightBuild{key: key, roots: roots, ctx: buildCtx, cancel: cancel}
	}
	b := s.inflight
	s.mu.Unlock()

	ch := s.builds.DoChan(key, func() (any, error) {
		return s.build(b)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*index.WorkspaceFileIndex), nil
	}
}

// build runs detached from any single caller so that one canceled request
// does not abort a build other callers are waiting on. Only the build still
// registered as in flight when it finishes may install its index.
func (s *Service) build(b *inflightBuild) (*index.WorkspaceFileIndex, error) {
	defer b.cancel()

	start := time.Now()
	idx, err := index.Build(b.ctx, s.provider, b.roots)

	s.mu.Lock()
	current := s.inflight == b
	if current {
		s.inflight = nil
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !current {
		s.mu.Unlock()
		s.closeIndex(idx, "superseded")
		return nil, fmt.Errorf("building index: %w", context.Canceled)
	}
	old := s.cache
	s.cache = &indexCache{key: b.key, roots: b.roots, index: idx, builtAt: s.now()}
	s.mu.Unlock()

	if old != nil {
		s.closeIndex(old.index, "replaced")
	}
	s.logger.Info("workspace index built",
		"roots", b.roots,
		"files", idx.FileCount(),
		"generation", idx.Generation,
		"duration", time.Since(start),
	)
	if s.onRebuild != nil {
		s.onRebuild(b.roots)
	}
	return idx, nil
}

// ClearCache drops the cached index and cancels any build in flight.
// The next request rebuilds from disk.
func (s *Service) ClearCache() {
	s.mu.Lock()
	old := s.cache
	s.cache = nil
	if s.inflight != nil {
		s.inflight.cancel()
		s.inflight = nil
	}
	s.mu.Unlock()

	if old != nil {
		s.closeIndex(old.index, "cleared")
		s.logger.Debug("workspace index cache cleared", "roots", old.roots)
	}
}

func (s *Service) closeIndex(idx *index.WorkspaceFileIndex, reason string) {
	if err := idx.Close(); err != nil {
		s.logger.Debug("closing workspace index", "reason", reason, "generation", idx.Generation, "error", err)
	}
}

// RecordAccess notes that the file at path was just opened. path may be a
// plain absolute path or a file:// URL.
func (s *Service) RecordAccess(path string) bool {
	p := stripScheme(strings.TrimSpace(path))
	if p == "" || !filepath.IsAbs(p) {
		return false
	}
	p = filepath.Clean(p)
	now := s.now()

	s.mu.Lock()
	cache := s.cache
	s.mu.Unlock()
	if cache != nil {
		if file := cache.index.FileByAbsolutePath(p); file != nil {
			s.resolver.RecordAccess(file, now)
			s.logger.Debug("access recorded", "file", file.RelativePath, "generation", cache.index.Generation)
			return true
		}
	}
	s.resolver.RecordPathAccess(p, now)
	return true
}

// Status is a snapshot of the service state.
type Status struct {
	Roots          []string
	FileCount      int
	Generation     uint64
	LanguageCounts map[string]int
	BuiltAt        time.Time
	Building       bool
	RecencyCount   int
	Uptime         time.Duration
}

// Status returns a snapshot of the cached index and recency state.
func (s *Service) Status() Status {
	s.mu.Lock()
	cache := s.cache
	building := s.inflight != nil
	s.mu.Unlock()

	st := Status{
		Building:     building,
		RecencyCount: s.resolver.RecencyCount(),
		Uptime:       s.now().Sub(s.started),
	}
	if cache != nil {
		st.Roots = append([]string(nil), cache.roots...)
		st.FileCount = cache.index.FileCount()
		st.Generation = cache.index.Generation
		st.LanguageCounts = cache.index.LanguageCounts()
		st.BuiltAt = cache.builtAt
	}
	return st
}
