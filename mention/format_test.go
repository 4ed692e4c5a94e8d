package mention

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexandro/mentionindex-mcp/adapters"
	"github.com/lexandro/mentionindex-mcp/index"
	"github.com/lexandro/mentionindex-mcp/resolver"
)

var atCaps = adapters.Capabilities{DisplayName: "Cursor", MentionPrefix: "@", SupportsFileMentions: true}

func candidate(t *testing.T, rel string, score float64) resolver.Candidate {
	t.Helper()
	file, err := index.NewIndexedFile("/project", filepath.Join("/project", filepath.FromSlash(rel)))
	require.NoError(t, err)
	return resolver.Candidate{File: file, Score: score}
}

func Test_Format_Resolved(t *testing.T) {
	res := resolver.Resolved{Candidate: candidate(t, "Pindrop/Services/AppCoordinator.swift", 1.7)}

	result := Format("AppCoordinator.swift", res, atCaps, DefaultOptions())
	assert.Equal(t, Formatted{
		Text:         "@Pindrop/Services/AppCoordinator.swift",
		RelativePath: "Pindrop/Services/AppCoordinator.swift",
		Confidence:   1.7,
	}, result)
}

func Test_Format_UnsupportedAdapterWinsOverEverything(t *testing.T) {
	res := resolver.Resolved{Candidate: candidate(t, "a.go", 2)}

	result := Format("a dot go", res, adapters.Fallback, DefaultOptions())
	assert.Equal(t, Preserved{Text: "a dot go", Reason: UnsupportedByAdapter{AppName: "Unknown App"}}, result)
}

func Test_Format_AlreadyFormatted(t *testing.T) {
	res := resolver.Resolved{Candidate: candidate(t, "src/main.go", 2)}

	for _, text := range []string{"@src/main.go", "@main.go", " @src/main.go "} {
		result := Format(text, res, atCaps, DefaultOptions())
		assert.Equal(t, Preserved{Text: text, Reason: AlreadyFormatted{}}, result, text)
	}
}

func Test_IsAlreadyFormatted(t *testing.T) {
	assert.True(t, IsAlreadyFormatted("@Pindrop/Services/AppCoordinator.swift", "@"))
	assert.True(t, IsAlreadyFormatted("#file:src/main.go", "#file:"))
	assert.False(t, IsAlreadyFormatted("@channel", "@"), "a bare handle is not path-shaped")
	assert.False(t, IsAlreadyFormatted("@", "@"))
	assert.False(t, IsAlreadyFormatted("@two words.go", "@"))
	assert.False(t, IsAlreadyFormatted("main.go", "@"))
	assert.False(t, IsAlreadyFormatted("main.go", ""))
}

func Test_Format_Unresolved(t *testing.T) {
	result := Format("banana", resolver.Unresolved{Query: "banana"}, atCaps, DefaultOptions())
	assert.Equal(t, Preserved{Text: "banana", Reason: Unresolved{}}, result)
}

func Test_Format_AmbiguousStrict(t *testing.T) {
	res := resolver.Ambiguous{Candidates: []resolver.Candidate{
		candidate(t, "lib/Button.swift", 1.7),
		candidate(t, "src/views/Button.swift", 1.7),
	}}

	result := Format("Button.swift", res, atCaps, DefaultOptions())
	assert.Equal(t, Preserved{Text: "Button.swift", Reason: AmbiguousInStrictMode{Count: 2}}, result)
}

func Test_Format_AmbiguousLenientTakesTop(t *testing.T) {
	res := resolver.Ambiguous{Candidates: []resolver.Candidate{
		candidate(t, "lib/Button.swift", 1.7),
		candidate(t, "src/views/Button.swift", 1.7),
	}}
	opts := DefaultOptions()
	opts.StrictAmbiguity = false

	result := Format("Button.swift", res, atCaps, opts)
	formatted, ok := result.(Formatted)
	require.True(t, ok)
	assert.Equal(t, "@lib/Button.swift", formatted.Text)
}

func Test_Format_ConfidenceGate(t *testing.T) {
	res := resolver.Resolved{Candidate: candidate(t, "Pindrop/Services/AudioRecorder.swift", 0.3)}

	result := Format("recorder", res, atCaps, DefaultOptions())
	assert.Equal(t, Preserved{Text: "recorder", Reason: LowConfidence{Score: 0.3, Threshold: 0.5}}, result)

	opts := Options{ConfidenceThreshold: 0.25, StrictAmbiguity: true}
	assert.IsType(t, Formatted{}, Format("recorder", res, atCaps, opts))
}

func Test_Reason_Strings(t *testing.T) {
	assert.Equal(t, "low confidence (0.30 < 0.50)", LowConfidence{Score: 0.3, Threshold: 0.5}.String())
	assert.Equal(t, "ambiguous (3 candidates)", AmbiguousInStrictMode{Count: 3}.String())
	assert.Equal(t, "Slack does not support file mentions", UnsupportedByAdapter{AppName: "Slack"}.String())
	assert.Equal(t, "unresolved", Unresolved{}.String())
	assert.Equal(t, "already formatted", AlreadyFormatted{}.String())
}

func Test_FormatBatch_SplicesInOrder(t *testing.T) {
	source := "open app coordinator dot swift and fix banana dot go"
	appStart := strings.Index(source, "app coordinator dot swift")
	bananaStart := strings.Index(source, "banana dot go")

	items := []Item{
		{
			Start:      appStart,
			End:        appStart + len("app coordinator dot swift"),
			Resolution: resolver.Resolved{Candidate: candidate(t, "Pindrop/Services/AppCoordinator.swift", 1.7)},
		},
		{
			Start:      bananaStart,
			End:        bananaStart + len("banana dot go"),
			Resolution: resolver.Unresolved{Query: "banana dot go"},
		},
	}

	report := FormatBatch(source, items, atCaps, DefaultOptions())
	assert.Equal(t, "open @Pindrop/Services/AppCoordinator.swift and fix banana dot go", report.Text)
	assert.Equal(t, 1, report.Formatted)
	assert.Equal(t, 1, report.Preserved)
	require.Len(t, report.Results, 2)
	assert.IsType(t, Formatted{}, report.Results[0])
	assert.IsType(t, Preserved{}, report.Results[1])
}

func Test_FormatBatch_MultipleRewritesShiftCorrectly(t *testing.T) {
	source := "a.go then b.go"
	items := []Item{
		{Start: 0, End: 4, Resolution: resolver.Resolved{Candidate: candidate(t, "pkg/a.go", 2)}},
		{Start: 10, End: 14, Resolution: resolver.Resolved{Candidate: candidate(t, "pkg/b.go", 2)}},
	}

	report := FormatBatch(source, items, atCaps, DefaultOptions())
	assert.Equal(t, "@pkg/a.go then @pkg/b.go", report.Text)
	assert.Equal(t, 2, report.Formatted)
}

func Test_FormatBatch_OutOfRangeItemPreserved(t *testing.T) {
	report := FormatBatch("short", []Item{{Start: 2, End: 50, Resolution: resolver.Unresolved{}}}, atCaps, DefaultOptions())
	assert.Equal(t, "short", report.Text)
	assert.Equal(t, 1, report.Preserved)
}
