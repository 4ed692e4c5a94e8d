package language

import (
	"path"
	"strings"
)

// ExtensionToLanguage maps lowercased file extensions (without dot) to language names.
// It doubles as the vocabulary of words a speaker may say after "dot".
var ExtensionToLanguage = map[string]string{
	"go": "Go", "mod": "Go Module",
	"swift": "Swift", "m": "Objective-C", "mm": "Objective-C",
	"js": "JavaScript", "jsx": "JavaScript", "mjs": "JavaScript", "cjs": "JavaScript",
	"ts": "TypeScript", "tsx": "TypeScript", "mts": "TypeScript", "cts": "TypeScript",
	"py": "Python", "pyi": "Python",
	"rs": "Rust",
	"java": "Java", "kt": "Kotlin", "kts": "Kotlin",
	"c": "C", "h": "C",
	"cpp": "C++", "cc": "C++", "cxx": "C++", "hpp": "C++",
	"cs": "C#",
	"dart": "Dart",
	"rb": "Ruby", "erb": "Ruby",
	"php": "PHP",
	"sh": "Shell", "bash": "Shell", "zsh": "Shell", "fish": "Shell",
	"html": "HTML", "htm": "HTML",
	"css": "CSS", "scss": "SCSS", "sass": "Sass", "less": "Less",
	"json": "JSON", "jsonc": "JSON",
	"yaml": "YAML", "yml": "YAML",
	"toml": "TOML",
	"xml": "XML", "plist": "Property List",
	"ini": "INI",
	"env": "Env",
	"md": "Markdown", "mdx": "Markdown",
	"txt": "Text",
	"sql": "SQL",
	"graphql": "GraphQL", "gql": "GraphQL",
	"proto": "Protobuf",
	"tf": "Terraform",
	"lua": "Lua",
	"scala": "Scala",
	"ex": "Elixir", "exs": "Elixir",
	"hs": "Haskell",
	"zig": "Zig",
	"vue": "Vue", "svelte": "Svelte",
	"csv": "CSV",
	"svg": "SVG",
	"xcconfig": "Xcode Config", "storyboard": "Interface Builder", "xib": "Interface Builder",
}

// spokenExtensions maps how a speech engine tends to render an extension to the extension itself.
var spokenExtensions = map[string]string{
	"jason":    "json",
	"yammel":   "yaml",
	"yamel":    "yaml",
	"markdown": "md",
	"python":   "py",
	"ruby":     "rb",
	"rust":     "rs",
	"text":     "txt",
	"shell":    "sh",
}

// DetectLanguage returns the language for a file path based on its extension or well-known filename.
// Returns "Unknown" if neither is recognized.
func DetectLanguage(filePath string) string {
	base := strings.ToLower(path.Base(strings.ReplaceAll(filePath, "\\", "/")))
	switch base {
	case "makefile", "gnumakefile":
		return "Makefile"
	case "dockerfile":
		return "Dockerfile"
	case "package.swift":
		return "Swift"
	case "gemfile", "rakefile", "podfile":
		return "Ruby"
	}

	ext := strings.TrimPrefix(path.Ext(base), ".")
	if lang, ok := ExtensionToLanguage[ext]; ok {
		return lang
	}
	return "Unknown"
}

// CanonicalExtension maps a spoken word to the extension it names.
// The second return value is false when the word is not a recognizable extension.
func CanonicalExtension(word string) (string, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "", false
	}
	if _, ok := ExtensionToLanguage[word]; ok {
		return word, true
	}
	if ext, ok := spokenExtensions[word]; ok {
		return ext, true
	}
	return "", false
}
