// Package mention turns a resolution into application mention syntax, or
// keeps the speaker's words and records why.
package mention

import "fmt"

// Result is exactly one of Formatted or Preserved.
type Result interface {
	// Output is the text that replaces the original span.
	Output() string
	isResult()
}

// Formatted is a rewritten mention.
type Formatted struct {
	Text         string
	RelativePath string
	Confidence   float64
}

// Preserved keeps the original text untouched.
type Preserved struct {
	Text   string
	Reason Reason
}

func (f Formatted) Output() string { return f.Text }
func (p Preserved) Output() string { return p.Text }
func (Formatted) isResult()        {}
func (Preserved) isResult()        {}

// Reason explains a Preserved result: one of LowConfidence, Unresolved,
// AmbiguousInStrictMode, UnsupportedByAdapter or AlreadyFormatted.
type Reason interface {
	fmt.Stringer
	isReason()
}

// LowConfidence: the winning candidate scored below the threshold.
type LowConfidence struct {
	Score     float64
	Threshold float64
}

// Unresolved: no file matched.
type Unresolved struct{}

// AmbiguousInStrictMode: Count files tied and strict ambiguity was on.
type AmbiguousInStrictMode struct {
	Count int
}

// UnsupportedByAdapter: the focused application does not accept file mentions.
type UnsupportedByAdapter struct {
	AppName string
}

// AlreadyFormatted: the text already is a mention.
type AlreadyFormatted struct{}

func (r LowConfidence) String() string {
	return fmt.Sprintf("low confidence (%.2f < %.2f)", r.Score, r.Threshold)
}
func (Unresolved) String() string { return "unresolved" }
func (r AmbiguousInStrictMode) String() string {
	return fmt.Sprintf("ambiguous (%d candidates)", r.Count)
}
func (r UnsupportedByAdapter) String() string {
	return fmt.Sprintf("%s does not support file mentions", r.AppName)
}
func (AlreadyFormatted) String() string { return "already formatted" }

func (LowConfidence) isReason()         {}
func (Unresolved) isReason()            {}
func (AmbiguousInStrictMode) isReason() {}
func (UnsupportedByAdapter) isReason()  {}
func (AlreadyFormatted) isReason()      {}
