package index

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/lexandro/mentionindex-mcp/language"
)

// IndexedFile is one file of a workspace build. Never mutated after Build.
type IndexedFile struct {
	AbsolutePath  string   // Absolute file path (OS separators)
	RelativePath  string   // Path relative to WorkspaceRoot (forward slashes)
	WorkspaceRoot string   // Root the file was enumerated under
	Filename      string   // Last path segment
	Stem          string   // Filename without its trailing extension
	Extension     string   // Trailing extension without the dot, original case
	PathSegments  []string // Directory components followed by Filename
	FilenameLower string
	StemLower     string
	Language      string   // Detected language, "Unknown" if not recognized
	Tokens        []string // Lowercased camelCase and path-segment tokens, deduplicated
}

// NewIndexedFile derives every field of an IndexedFile from its root and absolute path.
func NewIndexedFile(workspaceRoot string, absolutePath string) (*IndexedFile, error) {
	rel, err := filepath.Rel(workspaceRoot, absolutePath)
	if err != nil {
		return nil, fmt.Errorf("relativizing %s: %w", absolutePath, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return nil, fmt.Errorf("%s is not under root %s", absolutePath, workspaceRoot)
	}

	segments := strings.Split(rel, "/")
	filename := segments[len(segments)-1]
	stem, ext := SplitFilename(filename)

	file := &IndexedFile{
		AbsolutePath:  absolutePath,
		RelativePath:  rel,
		WorkspaceRoot: workspaceRoot,
		Filename:      filename,
		Stem:          stem,
		Extension:     ext,
		PathSegments:  segments,
		FilenameLower: strings.ToLower(filename),
		StemLower:     strings.ToLower(stem),
		Language:      language.DetectLanguage(filename),
	}
	file.Tokens = fileTokens(file)
	return file, nil
}

// Dir returns the root-relative directory of the file, "." for files at the root.
func (f *IndexedFile) Dir() string {
	return path.Dir(f.RelativePath)
}

// SplitFilename separates the trailing extension. Dotfiles without a second dot have no extension.
func SplitFilename(filename string) (stem string, ext string) {
	i := strings.LastIndex(filename, ".")
	if i <= 0 || i == len(filename)-1 {
		return filename, ""
	}
	return filename[:i], filename[i+1:]
}

// Compact lowercases s and drops spaces, underscores and hyphens, so that
// "app coordinator", "app_coordinator" and "AppCoordinator" compare equal.
func Compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == ' ' || r == '_' || r == '-' || r == '\t':
			continue
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// SplitIdentifier breaks an identifier into lowercased words on separators,
// camelCase humps, acronym boundaries and letter/digit changes.
// "HTTPServerV2_test" yields [http server v 2 test].
func SplitIdentifier(s string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

func fileTokens(f *IndexedFile) []string {
	seen := make(map[string]bool)
	var tokens []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			tokens = append(tokens, t)
		}
	}

	for _, t := range SplitIdentifier(f.Stem) {
		add(t)
	}
	add(Compact(f.Stem))
	add(strings.ToLower(f.Extension))
	for _, segment := range f.PathSegments[:len(f.PathSegments)-1] {
		for _, t := range SplitIdentifier(segment) {
			add(t)
		}
	}
	return tokens
}
