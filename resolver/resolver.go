package resolver

import (
	"math"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lexandro/mentionindex-mcp/index"
)

const tieEpsilon = 1e-9

// DefaultMemoSize is the number of resolutions kept by a default Resolver.
const DefaultMemoSize = 1024

// memoKey identifies one resolution: the same index build, recency state,
// active document and mention always produce the same Resolution.
type memoKey struct {
	generation uint64
	recency    uint64
	active     string
	mention    string
}

// Resolver scores mentions against an index. It owns the recency map, which only
// RecordAccess mutates. Safe for concurrent use.
type Resolver struct {
	mu      sync.RWMutex
	recency map[string]time.Time // key: absolute path
	version uint64               // bumped on every recency change

	memo *lru.Cache[memoKey, Resolution]
}

// New creates a resolver memoizing up to memoSize resolutions. memoSize <= 0 disables memoization.
func New(memoSize int) *Resolver {
	r := &Resolver{recency: make(map[string]time.Time)}
	if memoSize > 0 {
		if memo, err := lru.New[memoKey, Resolution](memoSize); err == nil {
			r.memo = memo
		}
	}
	return r
}

// RecordAccess marks file as accessed at the given time.
func (r *Resolver) RecordAccess(file *index.IndexedFile, at time.Time) {
	if file == nil {
		return
	}
	r.RecordPathAccess(file.AbsolutePath, at)
}

// RecordPathAccess marks an absolute path as accessed. Older timestamps never replace newer ones.
func (r *Resolver) RecordPathAccess(absolutePath string, at time.Time) {
	absolutePath = filepath.Clean(absolutePath)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.recency[absolutePath]; ok && !at.After(prev) {
		return
	}
	r.recency[absolutePath] = at
	r.version++
}

// LastAccess returns the recorded access time of an absolute path.
func (r *Resolver) LastAccess(absolutePath string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	at, ok := r.recency[filepath.Clean(absolutePath)]
	return at, ok
}

// RecencyCount returns the number of paths with a recorded access.
func (r *Resolver) RecencyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recency)
}

// ClearRecency forgets every recorded access.
func (r *Resolver) ClearRecency() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recency = make(map[string]time.Time)
	r.version++
}

// Resolve maps mention onto the files of idx. activeDocumentPath, absolute or
// root-relative, breaks ties between equally scored files; "" disables that step.
// Resolve never mutates recency state.
func (r *Resolver) Resolve(mention string, idx *index.WorkspaceFileIndex, activeDocumentPath string) Resolution {
	normalized := NormalizeMention(mention)
	if normalized == "" || idx == nil || idx.FileCount() == 0 {
		return Unresolved{Query: mention}
	}

	r.mu.RLock()
	key := memoKey{generation: idx.Generation, recency: r.version, active: activeDocumentPath, mention: mention}
	recency := r.recency
	if r.memo != nil {
		if cached, ok := r.memo.Get(key); ok {
			r.mu.RUnlock()
			return cloneResolution(cached)
		}
	}
	candidates := scoreAll(newQuery(normalized), idx, recency)
	r.mu.RUnlock()

	resolution := classify(mention, candidates, activeDocumentPath)
	if r.memo != nil {
		r.memo.Add(key, cloneResolution(resolution))
	}
	return resolution
}

// scoreAll scores every file and applies the recency bonus. Candidates at or
// below zero are dropped; the rest are sorted by score, then relative path.
func scoreAll(q query, idx *index.WorkspaceFileIndex, recency map[string]time.Time) []Candidate {
	var candidates []Candidate
	for _, file := range idx.Files() {
		if s := q.score(file); s > 0 {
			candidates = append(candidates, Candidate{File: file, Score: s})
		}
	}
	applyRecency(candidates, recency)

	sort.SliceStable(candidates, func(i, j int) bool {
		if math.Abs(candidates[i].Score-candidates[j].Score) > tieEpsilon {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].File.RelativePath < candidates[j].File.RelativePath
	})
	return candidates
}

// applyRecency adds RecencyBonus plus a rank-proportional share of RecencySpread
// to candidates with a recorded access. Equal timestamps get equal bonuses.
func applyRecency(candidates []Candidate, recency map[string]time.Time) {
	if len(recency) == 0 {
		return
	}

	var stamps []int64
	seen := make(map[int64]bool)
	for _, c := range candidates {
		if at, ok := recency[c.File.AbsolutePath]; ok && !seen[at.UnixNano()] {
			seen[at.UnixNano()] = true
			stamps = append(stamps, at.UnixNano())
		}
	}
	if len(stamps) == 0 {
		return
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })
	rank := make(map[int64]int, len(stamps))
	for i, s := range stamps {
		rank[s] = i + 1
	}

	for i := range candidates {
		at, ok := recency[candidates[i].File.AbsolutePath]
		if !ok {
			continue
		}
		share := float64(rank[at.UnixNano()]) / float64(len(stamps))
		candidates[i].Score += RecencyBonus + RecencySpread*share
	}
}

func classify(mention string, candidates []Candidate, activeDocumentPath string) Resolution {
	if len(candidates) == 0 || candidates[0].Score < MinRelevance {
		return Unresolved{Query: mention}
	}

	top := candidates[:1]
	for i := 1; i < len(candidates); i++ {
		if candidates[0].Score-candidates[i].Score > tieEpsilon {
			break
		}
		top = candidates[:i+1]
	}
	if len(top) == 1 {
		return Resolved{Candidate: top[0]}
	}

	if winner, ok := disambiguate(top, activeDocumentPath); ok {
		return Resolved{Candidate: winner}
	}

	tied := make([]Candidate, len(top))
	copy(tied, top)
	return Ambiguous{Candidates: tied}
}

// disambiguate picks the only top-tier candidate sharing the active document's directory.
func disambiguate(top []Candidate, activeDocumentPath string) (Candidate, bool) {
	activeDocumentPath = strings.TrimPrefix(strings.TrimSpace(activeDocumentPath), "file://")
	if activeDocumentPath == "" {
		return Candidate{}, false
	}

	sameDir := func(file *index.IndexedFile) bool {
		if filepath.IsAbs(activeDocumentPath) {
			return filepath.Dir(file.AbsolutePath) == filepath.Dir(filepath.Clean(activeDocumentPath))
		}
		return file.Dir() == path.Dir(path.Clean(filepath.ToSlash(activeDocumentPath)))
	}

	var match Candidate
	count := 0
	for _, c := range top {
		if sameDir(c.File) {
			match = c
			count++
		}
	}
	return match, count == 1
}
