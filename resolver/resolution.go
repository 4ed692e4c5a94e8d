// Package resolver maps a spoken or typed file reference onto files of a
// workspace index with a deterministic additive score.
package resolver

import "github.com/lexandro/mentionindex-mcp/index"

// Candidate is a file scored against one mention.
type Candidate struct {
	File  *index.IndexedFile
	Score float64
}

// Resolution is the outcome of Resolve: exactly one of Resolved, Ambiguous or Unresolved.
type Resolution interface {
	isResolution()
}

// Resolved holds the single best candidate.
type Resolved struct {
	Candidate Candidate
}

// Ambiguous holds tied top candidates ordered by score descending, then relative path.
type Ambiguous struct {
	Candidates []Candidate
}

// Unresolved carries the original query when nothing scored above the relevance floor.
type Unresolved struct {
	Query string
}

func (Resolved) isResolution()   {}
func (Ambiguous) isResolution()  {}
func (Unresolved) isResolution() {}

// Best returns the top-ranked candidate of a resolution, if any.
func Best(r Resolution) (Candidate, bool) {
	switch r := r.(type) {
	case Resolved:
		return r.Candidate, true
	case Ambiguous:
		if len(r.Candidates) > 0 {
			return r.Candidates[0], true
		}
	}
	return Candidate{}, false
}

func cloneResolution(r Resolution) Resolution {
	if a, ok := r.(Ambiguous); ok {
		candidates := make([]Candidate, len(a.Candidates))
		copy(candidates, a.Candidates)
		return Ambiguous{Candidates: candidates}
	}
	return r
}
