package mention

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lexandro/mentionindex-mcp/adapters"
	"github.com/lexandro/mentionindex-mcp/resolver"
)

// Options gate when a resolution may become a mention.
type Options struct {
	ConfidenceThreshold float64
	StrictAmbiguity     bool // preserve ambiguous resolutions instead of taking the top candidate
}

// DefaultOptions returns a 0.5 confidence threshold with strict ambiguity.
func DefaultOptions() Options {
	return Options{ConfidenceThreshold: 0.5, StrictAmbiguity: true}
}

var pathShaped = regexp.MustCompile(`^[\p{L}\p{N}_\-.~]+(/[\p{L}\p{N}_\-.~]+)*$`)

// IsAlreadyFormatted reports whether text is prefix followed by a path-shaped suffix.
func IsAlreadyFormatted(text string, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return false
	}
	suffix := text[len(prefix):]
	return suffix != "" && pathShaped.MatchString(suffix) && strings.ContainsAny(suffix, "./")
}

// Format decides the replacement for one span of original text. The checks run in
// a fixed order: adapter support, idempotence, resolution kind, then confidence.
func Format(original string, resolution resolver.Resolution, caps adapters.Capabilities, opts Options) Result {
	if !caps.SupportsFileMentions {
		return Preserved{Text: original, Reason: UnsupportedByAdapter{AppName: caps.DisplayName}}
	}
	if IsAlreadyFormatted(strings.TrimSpace(original), caps.MentionPrefix) {
		return Preserved{Text: original, Reason: AlreadyFormatted{}}
	}

	var winner resolver.Candidate
	switch r := resolution.(type) {
	case resolver.Resolved:
		winner = r.Candidate
	case resolver.Ambiguous:
		if opts.StrictAmbiguity || len(r.Candidates) == 0 {
			return Preserved{Text: original, Reason: AmbiguousInStrictMode{Count: len(r.Candidates)}}
		}
		winner = r.Candidates[0]
	default:
		return Preserved{Text: original, Reason: Unresolved{}}
	}

	if winner.File == nil {
		return Preserved{Text: original, Reason: Unresolved{}}
	}
	if winner.Score < opts.ConfidenceThreshold {
		return Preserved{Text: original, Reason: LowConfidence{Score: winner.Score, Threshold: opts.ConfidenceThreshold}}
	}

	return Formatted{
		Text:         caps.MentionPrefix + winner.File.RelativePath,
		RelativePath: winner.File.RelativePath,
		Confidence:   winner.Score,
	}
}

// Item is one span of a source text with its resolution. Start and End are byte offsets.
type Item struct {
	Start      int
	End        int
	Resolution resolver.Resolution
}

// Report is the outcome of FormatBatch.
type Report struct {
	Text      string
	Results   []Result // one per item, in the order items were given
	Formatted int
	Preserved int
}

// FormatBatch formats every item and splices the results back into source.
// Items must not overlap; out-of-range items are preserved untouched.
// Splicing runs from the rightmost span so earlier offsets stay valid.
func FormatBatch(source string, items []Item, caps adapters.Capabilities, opts Options) Report {
	report := Report{Results: make([]Result, len(items))}

	order := make([]int, len(items))
	for i := range items {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].Start > items[order[b]].Start
	})

	text := source
	for _, i := range order {
		item := items[i]
		if item.Start < 0 || item.End > len(source) || item.Start >= item.End {
			report.Results[i] = Preserved{Text: "", Reason: Unresolved{}}
			report.Preserved++
			continue
		}

		result := Format(source[item.Start:item.End], item.Resolution, caps, opts)
		report.Results[i] = result
		switch result.(type) {
		case Formatted:
			report.Formatted++
			text = text[:item.Start] + result.Output() + text[item.End:]
		case Preserved:
			report.Preserved++
		}
	}

	report.Text = text
	return report
}
