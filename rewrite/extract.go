package rewrite

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lexandro/mentionindex-mcp/index"
	"github.com/lexandro/mentionindex-mcp/language"
	"github.com/lexandro/mentionindex-mcp/resolver"
)

// Strategy names the rule that produced a Span.
type Strategy int

const (
	StrategySpokenDot Strategy = iota // "app coordinator dot swift"
	StrategyLiteral                   // "AppCoordinator.swift", "src/main.go"
	StrategyKnownStem                 // "app coordinator" when AppCoordinator.swift is indexed
)

func (s Strategy) String() string {
	switch s {
	case StrategySpokenDot:
		return "spoken"
	case StrategyLiteral:
		return "literal"
	case StrategyKnownStem:
		return "stem"
	default:
		return "unknown"
	}
}

// Span is a byte range of the source text that probably refers to a file.
// Query is what gets resolved; it differs from Text when a spoken extension
// was canonicalized ("config dot jason" resolves as "config dot json").
type Span struct {
	Start    int
	End      int
	Text     string
	Query    string
	Strategy Strategy
}

const (
	maxSpokenWords = 6
	maxStemWords   = 4
	minStemLength  = 4
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_\-./~@#:]+`)

type word struct {
	text       string
	start, end int
}

func (w word) lower() string { return strings.ToLower(w.text) }

// plain reports whether the word can be part of a spoken name.
func (w word) plain() bool {
	return !strings.ContainsAny(w.text, "./@#:~")
}

func isConnector(w word) bool {
	l := w.lower()
	return l == "dot" || l == "slash"
}

func splitWords(text string) []word {
	var words []word
	for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		for end > start && strings.ContainsRune(".:-", rune(text[end-1])) {
			end--
		}
		if end > start {
			words = append(words, word{text: text[start:end], start: start, end: end})
		}
	}
	return words
}

// adjacent reports whether only whitespace separates words[from:to].
func adjacent(text string, words []word, from, to int) bool {
	for i := from; i+1 < to; i++ {
		if strings.TrimSpace(text[words[i].end:words[i+1].start]) != "" {
			return false
		}
	}
	return true
}

// ExtractCandidates finds the spans of text that plausibly name a file of idx.
// Overlapping spans are reduced to one (see dropOverlaps). The result is ordered by Start.
func ExtractCandidates(text string, idx *index.WorkspaceFileIndex) []Span {
	if idx == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	words := splitWords(text)

	var spans []Span
	spans = append(spans, spokenDotSpans(text, words, idx)...)
	spans = append(spans, literalSpans(words, idx)...)
	spans = append(spans, knownStemSpans(text, words, idx)...)
	return dropOverlaps(spans)
}

func spokenExtension(w word, idx *index.WorkspaceFileIndex) (string, bool) {
	if !w.plain() {
		return "", false
	}
	l := w.lower()
	if idx.HasExtension(l) {
		return l, true
	}
	return language.CanonicalExtension(l)
}

func spokenDotSpans(text string, words []word, idx *index.WorkspaceFileIndex) []Span {
	var spans []Span
	for i := 1; i+1 < len(words); i++ {
		if words[i].lower() != "dot" || isConnector(words[i-1]) || !words[i-1].plain() {
			continue
		}
		if !adjacent(text, words, i-1, i+2) {
			continue
		}
		ext, ok := spokenExtension(words[i+1], idx)
		if !ok {
			continue
		}

		first := spokenRunStart(text, words, i, idx)
		start, end := words[first].start, words[i+1].end
		query := text[start:words[i+1].start] + ext
		spans = append(spans, Span{
			Start:    start,
			End:      end,
			Text:     text[start:end],
			Query:    query,
			Strategy: StrategySpokenDot,
		})
	}
	return spans
}

// spokenRunStart picks the longest run of words before words[dot] that names
// an indexed stem, optionally qualified by spoken directories. Without a match
// only the single preceding word is taken.
func spokenRunStart(text string, words []word, dot int, idx *index.WorkspaceFileIndex) int {
	lowest := max(0, dot-maxSpokenWords)
	for k := lowest; k < dot-1; k++ {
		if isConnector(words[k]) || !adjacent(text, words, k, dot) {
			continue
		}
		run := words[k:dot]
		if !allPlain(run) {
			continue
		}
		phrase := text[run[0].start:run[len(run)-1].end]
		if namesIndexedPath(resolver.NormalizeMention(phrase), idx) {
			return k
		}
	}
	return dot - 1
}

func allPlain(run []word) bool {
	for _, w := range run {
		if !w.plain() {
			return false
		}
	}
	return true
}

// namesIndexedPath reports whether the normalized phrase equals the compact stem
// of an indexed file, or a "/"-aligned suffix of its directory plus stem.
func namesIndexedPath(normalized string, idx *index.WorkspaceFileIndex) bool {
	compact := index.Compact(normalized)
	last := compact
	if i := strings.LastIndex(compact, "/"); i >= 0 {
		last = compact[i+1:]
	}
	if last == "" {
		return false
	}
	for _, file := range idx.FilesWithCompactStem(last) {
		full := index.Compact(file.Stem)
		if dir := file.Dir(); dir != "." {
			full = index.Compact(dir + "/" + file.Stem)
		}
		if full == compact || strings.HasSuffix(full, "/"+compact) {
			return true
		}
	}
	return false
}

// literalSpans finds dotted words ending in an indexed extension. URLs and
// addresses ("me@host.json") are left alone; only a leading adapter prefix
// may carry "@".
func literalSpans(words []word, idx *index.WorkspaceFileIndex) []Span {
	var spans []Span
	for _, w := range words {
		if !strings.Contains(w.text, ".") || isURL(w.text) || strings.LastIndex(w.text, "@") > 0 {
			continue
		}
		base := w.text
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		_, ext := index.SplitFilename(base)
		if ext == "" || !idx.HasExtension(ext) {
			continue
		}
		spans = append(spans, Span{
			Start:    w.start,
			End:      w.end,
			Text:     w.text,
			Query:    w.text,
			Strategy: StrategyLiteral,
		})
	}
	return spans
}

func isURL(s string) bool {
	return urlScheme.MatchString(s) || strings.Contains(s, "://")
}

// knownStemSpans finds runs of plain words whose compact form is an indexed stem.
// A single word only counts when it carries its own word boundaries
// ("AppCoordinator", "app_coordinator"), so ordinary words stay untouched.
func knownStemSpans(text string, words []word, idx *index.WorkspaceFileIndex) []Span {
	var spans []Span
	for i := 0; i < len(words); i++ {
		for n := min(maxStemWords, len(words)-i); n >= 1; n-- {
			run := words[i : i+n]
			if !allPlain(run) || isConnector(run[0]) || isConnector(run[n-1]) || !adjacent(text, words, i, i+n) {
				continue
			}
			if n == 1 && len(index.SplitIdentifier(run[0].text)) < 2 {
				continue
			}
			phrase := text[run[0].start:run[n-1].end]
			compact := index.Compact(phrase)
			if len(compact) < minStemLength || len(idx.FilesWithCompactStem(compact)) == 0 {
				continue
			}
			spans = append(spans, Span{
				Start:    run[0].start,
				End:      run[n-1].end,
				Text:     phrase,
				Query:    phrase,
				Strategy: StrategyKnownStem,
			})
			i += n - 1
			break
		}
	}
	return spans
}

// dropOverlaps resolves overlapping spans. Spans carrying an extension (spoken
// or literal) beat known-stem spans; within the same kind the earlier start
// wins, then the longer span. The result is ordered by Start.
func dropOverlaps(spans []Span) []Span {
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if aStem, bStem := a.Strategy == StrategyKnownStem, b.Strategy == StrategyKnownStem; aStem != bStem {
			return bStem
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})

	var kept []Span
	for _, span := range spans {
		if !overlapsAny(span, kept) {
			kept = append(kept, span)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})
	return kept
}

func overlapsAny(span Span, kept []Span) bool {
	for _, k := range kept {
		if span.Start < k.End && k.Start < span.End {
			return true
		}
	}
	return false
}
