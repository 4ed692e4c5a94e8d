package ignore

// MetadataDirs are directories skipped during traversal without consulting any rule file.
var MetadataDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, ".jj": true,
	"node_modules": true, "__pycache__": true, ".venv": true, "venv": true,
	".idea": true, ".vscode": true, ".vs": true,
	".next": true, ".nuxt": true, ".cache": true, ".parcel-cache": true,
	".build": true, "DerivedData": true, ".swiftpm": true, "Pods": true,
	".gradle": true, ".terraform": true,
}

// DefaultIgnorePatterns are names and globs that never make sense as a spoken mention.
// Binary assets are deliberately absent: "logo dot png" is a valid reference.
var DefaultIgnorePatterns = []string{
	// Dependencies
	"vendor",
	"bower_components",
	".npm",
	".yarn",
	".pnp.*",

	// Build output
	"dist",
	"build",
	"target",
	"obj",
	"coverage",
	".nyc_output",
	"htmlcov",

	// Editor swap files
	"*.swp",
	"*.swo",
	"*~",

	// OS files
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",

	// Compiled objects
	"*.pyc",
	"*.pyo",
	"*.o",
	"*.class",

	// Minified files and source maps
	"*.min.js",
	"*.min.css",
	"*.map",

	// Logs
	"*.log",
}
