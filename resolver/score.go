package resolver

import (
	"path"
	"regexp"
	"strings"

	"github.com/lexandro/mentionindex-mcp/index"
)

// Score weights. Only their order matters: filename > stem > tokens > substring.
const (
	WeightFilename   = 1.0
	WeightStem       = 0.8
	WeightTokens     = 0.6
	WeightPathSuffix = 0.3
	WeightSubstring  = 0.1

	// RecencyBonus is added to every positively scored file with a recorded access;
	// up to RecencySpread more is distributed by recency rank.
	RecencyBonus  = 0.15
	RecencySpread = 0.05

	// MinRelevance is the floor below which a candidate is discarded.
	MinRelevance = 0.25
)

var (
	spokenDot   = regexp.MustCompile(`\s*\bdot\b\s*`)
	spokenSlash = regexp.MustCompile(`\s*\bslash\b\s*`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeMention lowercases and trims a mention and turns spoken "dot" and
// "slash" into "." and "/": "App Coordinator dot swift" becomes "app coordinator.swift".
func NormalizeMention(mention string) string {
	m := strings.ToLower(strings.TrimSpace(mention))
	m = whitespace.ReplaceAllString(m, " ")
	m = spokenDot.ReplaceAllString(m, ".")
	m = spokenSlash.ReplaceAllString(m, "/")
	return strings.Trim(m, " ")
}

// query is a normalized mention with its derived comparison forms.
type query struct {
	normalized string
	compact    string // Compact(normalized)
	lastName   string // Compact of the segment after the last "/"
	qualified  bool   // mention names a directory
	suffix     string // compact without a leading "./" or "/"
	tokens     []string
}

func newQuery(normalized string) query {
	q := query{
		normalized: normalized,
		compact:    index.Compact(normalized),
		qualified:  strings.Contains(normalized, "/"),
	}
	q.lastName = q.compact
	q.suffix = strings.TrimPrefix(strings.TrimPrefix(q.compact, "./"), "/")
	if i := strings.LastIndex(q.compact, "/"); i >= 0 {
		q.lastName = q.compact[i+1:]
	}
	q.tokens = strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == '/' || r == '.' || r == '_' || r == '-'
	})
	return q
}

// score applies the additive rules of one query to one file. Recency is not included.
// A mention qualified with directories only matches files whose path, with or
// without the extension, ends with those directories.
func (q query) score(file *index.IndexedFile) float64 {
	if q.compact == "" {
		return 0
	}

	relative := index.Compact(strings.ToLower(file.RelativePath))
	if q.qualified {
		stemPath := index.Compact(strings.ToLower(path.Join(file.Dir(), file.Stem)))
		if !hasPathSuffix(relative, q.suffix) && !hasPathSuffix(stemPath, q.suffix) {
			return 0
		}
	}

	var total float64
	if q.lastName == index.Compact(file.FilenameLower) {
		total += WeightFilename
	}
	if q.lastName == index.Compact(file.StemLower) {
		total += WeightStem
	}
	total += WeightTokens * tokenFraction(q.tokens, file.Tokens)

	if q.qualified && hasPathSuffix(relative, q.suffix) {
		total += WeightPathSuffix
	}
	if strings.Contains(relative, q.compact) {
		total += WeightSubstring
	}
	return total
}

// hasPathSuffix reports whether suffix equals p or ends it at a "/" boundary.
func hasPathSuffix(p, suffix string) bool {
	return suffix != "" && (p == suffix || strings.HasSuffix(p, "/"+suffix))
}

// tokenFraction is the share of mention tokens present among file tokens, order-insensitive.
func tokenFraction(mentionTokens []string, fileTokens []string) float64 {
	if len(mentionTokens) == 0 {
		return 0
	}
	found := 0
	for _, mt := range mentionTokens {
		for _, ft := range fileTokens {
			if mt == ft {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(mentionTokens))
}
