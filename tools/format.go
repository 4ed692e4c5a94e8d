package tools

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lexandro/mentionindex-mcp/adapters"
	"github.com/lexandro/mentionindex-mcp/index"
	"github.com/lexandro/mentionindex-mcp/mention"
	"github.com/lexandro/mentionindex-mcp/resolver"
	"github.com/lexandro/mentionindex-mcp/rewrite"
)

// FormatFileResults formats file search results as human-readable text.
func FormatFileResults(results []index.FileSearchResult, nameOnly bool) string {
	if len(results) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d files:\n\n", len(results)))

	for _, result := range results {
		if nameOnly {
			builder.WriteString(result.File.RelativePath)
			builder.WriteString("\n")
		} else {
			builder.WriteString(fmt.Sprintf("  %s  (%s, %s)\n",
				result.File.RelativePath,
				result.File.Language,
				result.File.WorkspaceRoot,
			))
		}
	}

	return builder.String()
}

func resolutionKind(r resolver.Resolution) string {
	switch r.(type) {
	case resolver.Resolved:
		return "resolved"
	case resolver.Ambiguous:
		return "ambiguous"
	default:
		return "unresolved"
	}
}

// FormatResolution describes a resolution and, for unresolved mentions, the
// closest file names.
func FormatResolution(r resolver.Resolution, suggestions []*index.IndexedFile) string {
	var builder strings.Builder

	switch r := r.(type) {
	case resolver.Resolved:
		builder.WriteString(fmt.Sprintf("Resolved: %s (score %.2f)\n", r.Candidate.File.RelativePath, r.Candidate.Score))
	case resolver.Ambiguous:
		builder.WriteString(fmt.Sprintf("Ambiguous: %d equally scored files\n", len(r.Candidates)))
		for _, c := range r.Candidates {
			builder.WriteString(fmt.Sprintf("  %s (score %.2f)\n", c.File.RelativePath, c.Score))
		}
	case resolver.Unresolved:
		builder.WriteString(fmt.Sprintf("Unresolved: %q\n", r.Query))
		if len(suggestions) > 0 {
			builder.WriteString("Similar names:\n")
			for _, file := range suggestions {
				builder.WriteString(fmt.Sprintf("  %s\n", file.RelativePath))
			}
		}
	}

	return builder.String()
}

// FormatRewriteReport lists what happened to every extracted span.
func FormatRewriteReport(result rewrite.Result, caps adapters.Capabilities) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s: rewritten %d, preserved %d\n",
		caps.DisplayName, result.RewrittenCount, result.PreservedCount))

	for _, outcome := range result.Spans {
		span := outcome.Span
		switch r := outcome.Result.(type) {
		case mention.Formatted:
			builder.WriteString(fmt.Sprintf("  [%d:%d] %s %q -> %s (%.2f)\n",
				span.Start, span.End, span.Strategy, span.Text, r.Text, r.Confidence))
		case mention.Preserved:
			builder.WriteString(fmt.Sprintf("  [%d:%d] %s %q kept: %s\n",
				span.Start, span.End, span.Strategy, span.Text, r.Reason))
		}
	}

	return builder.String()
}

// FormatCapabilities describes one adapter.
func FormatCapabilities(appID string, caps adapters.Capabilities, known bool) string {
	var builder strings.Builder
	if known {
		builder.WriteString(fmt.Sprintf("%s (%s)\n", caps.DisplayName, appID))
	} else {
		builder.WriteString(fmt.Sprintf("%s is not a known application, using %s\n", appID, caps.DisplayName))
	}

	prefix := caps.MentionPrefix
	if prefix == "" {
		prefix = "(none)"
	}
	builder.WriteString(fmt.Sprintf("  mention prefix: %s\n", prefix))

	flags := []struct {
		name string
		on   bool
	}{
		{"file mentions", caps.SupportsFileMentions},
		{"code context", caps.SupportsCodeContext},
		{"docs mentions", caps.SupportsDocsMentions},
		{"diff context", caps.SupportsDiffContext},
		{"web context", caps.SupportsWebContext},
		{"chat history", caps.SupportsChatHistory},
	}
	for _, f := range flags {
		builder.WriteString(fmt.Sprintf("  %-14s %s\n", f.name+":", yesNo(f.on)))
	}

	return builder.String()
}

// FormatAdapterList lists every identifier the registry knows.
func FormatAdapterList(registry *adapters.Registry) string {
	ids := registry.IDs()
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Known applications (%d):\n", len(ids)))
	for _, id := range ids {
		caps := registry.Adapter(id)
		builder.WriteString(fmt.Sprintf("  %-36s %s\n", id, caps.DisplayName))
	}
	return builder.String()
}

// FormatStatus renders the mention_status report.
func FormatStatus(s statusSnapshot) string {
	var builder strings.Builder
	st := s.Status

	builder.WriteString("=== mentionindex-mcp Status ===\n\n")
	fmt.Fprintf(&builder, "Uptime: %s\n", formatDuration(s.Uptime))
	if len(s.DefaultRoots) > 0 {
		fmt.Fprintf(&builder, "Default roots: %s\n", strings.Join(s.DefaultRoots, ", "))
	}
	if len(st.Roots) == 0 {
		builder.WriteString("Cached index: none\n")
	} else {
		fmt.Fprintf(&builder, "Cached roots: %s\n", strings.Join(st.Roots, ", "))
		fmt.Fprintf(&builder, "Indexed files: %d (generation %d, built %s ago)\n",
			st.FileCount, st.Generation, formatDuration(time.Since(st.BuiltAt)))
	}
	if st.Building {
		builder.WriteString("Index build in progress\n")
	}
	fmt.Fprintf(&builder, "Recently accessed files: %d\n", st.RecencyCount)
	fmt.Fprintf(&builder, "Known adapters: %d\n", s.AdapterCount)
	fmt.Fprintf(&builder, "Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(s.Memory.Alloc)), formatFileSize(int64(s.Memory.HeapAlloc)))

	if langs := languagesByCount(st.LanguageCounts); len(langs) > 0 {
		builder.WriteString("\nLanguages:\n")
		for _, lc := range langs {
			fmt.Fprintf(&builder, "  %-20s %d files\n", lc.name, lc.count)
		}
	}
	return builder.String()
}

type languageCount struct {
	name  string
	count int
}

// languagesByCount orders languages by file count, busiest first, then by name.
func languagesByCount(counts map[string]int) []languageCount {
	out := make([]languageCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, languageCount{name, n})
	}
	slices.SortFunc(out, func(a, b languageCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return out
}

func yesNo(on bool) string {
	if on {
		return "yes"
	}
	return "no"
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
