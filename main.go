package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/mentionindex-mcp/ignore"
	"github.com/lexandro/mentionindex-mcp/mention"
	"github.com/lexandro/mentionindex-mcp/register"
	"github.com/lexandro/mentionindex-mcp/resolver"
	"github.com/lexandro/mentionindex-mcp/rewrite"
	"github.com/lexandro/mentionindex-mcp/server"
	"github.com/lexandro/mentionindex-mcp/tools"
	"github.com/lexandro/mentionindex-mcp/watcher"
	"github.com/lexandro/mentionindex-mcp/workspace"
)

// stringList is a repeatable CLI flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }
func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "register" {
		if err := register.Run(register.DeriveServerName(os.Args[0]), os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Parse CLI flags
	var roots stringList
	var excludes stringList
	var adaptersFile string
	var confidence float64
	var strictAmbiguity bool
	var watch bool
	var memoSize int
	var logLevel string
	var logFile string

	flag.Var(&roots, "root", "Default workspace root used when a request names none (repeatable)")
	flag.Var(&excludes, "exclude", "Extra ignore pattern (repeatable)")
	flag.StringVar(&adaptersFile, "adapters", "", "TOML file with extra or overriding application adapters")
	flag.Float64Var(&confidence, "confidence", 0.5, "Minimum score for a mention to be rewritten")
	flag.BoolVar(&strictAmbiguity, "strict-ambiguity", true, "Leave mentions with several equally good matches unchanged")
	flag.BoolVar(&watch, "watch", true, "Watch indexed roots and invalidate the index on changes")
	flag.IntVar(&memoSize, "memo-size", resolver.DefaultMemoSize, "Number of memoized resolutions (0 disables)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.Parse()

	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(logLevel, logFile)

	defaultRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		if abs, err := filepath.Abs(root); err == nil {
			defaultRoots = append(defaultRoots, abs)
		}
	}

	logger.Info("starting mentionindex-mcp",
		"roots", defaultRoots,
		"confidence", confidence,
		"strictAmbiguity", strictAmbiguity,
		"watch", watch,
	)

	startTime := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := loadRegistry(adaptersFile)
	if err != nil {
		logger.Error("failed to load adapters", "file", adaptersFile, "error", err)
		os.Exit(1)
	}

	ignores := ignore.NewSet(excludes)
	provider := workspace.NewDiskProvider(ignores, logger)
	rootUpdates := newRootUpdates()

	service := rewrite.NewService(rewrite.Options{
		Provider: provider,
		Resolver: resolver.New(memoSize),
		Format: mention.Options{
			ConfidenceThreshold: confidence,
			StrictAmbiguity:     strictAmbiguity,
		},
		Logger:    logger,
		OnRebuild: rootUpdates.publish,
	})

	// Start file watcher
	if watch {
		fileWatcher, err := watcher.NewWatcher(ignores, logger)
		if err != nil {
			logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
		} else {
			go fileWatcher.Start()
			go rootUpdates.follow(ctx, fileWatcher)
			go watcher.Run(ctx, fileWatcher.Events(), service, ignores, logger)
			defer fileWatcher.Close()
		}
	}

	// Warm the cache for the default roots
	if len(defaultRoots) > 0 {
		go func() {
			idx, err := service.Index(ctx, defaultRoots)
			if err != nil {
				logger.Warn("initial indexing failed", "roots", defaultRoots, "error", err)
				return
			}
			logger.Info("initial indexing complete",
				"files", idx.FileCount(),
				"duration", time.Since(startTime),
			)
		}()
	}

	// Create tool handlers
	handlers := server.Handlers{
		Rewrite:      &tools.RewriteHandler{Service: service, Adapters: registry, DefaultRoots: defaultRoots, Logger: logger},
		Resolve:      &tools.ResolveHandler{Service: service, DefaultRoots: defaultRoots, Logger: logger},
		Files:        &tools.FilesHandler{Service: service, DefaultRoots: defaultRoots, Logger: logger},
		Adapter:      &tools.AdapterHandler{Adapters: registry, Logger: logger},
		RecordAccess: &tools.RecordAccessHandler{Service: service, Logger: logger},
		Status: &tools.StatusHandler{
			Service:      service,
			Adapters:     registry,
			DefaultRoots: defaultRoots,
			StartTime:    startTime,
			Logger:       logger,
		},
		Reset: &tools.ResetHandler{DoReset: newResetFunc(service, ignores), Logger: logger},
	}

	// Setup and run MCP server on stdio
	mcpServer := server.Setup(handlers)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
	logger.Info("MCP server stopped")
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
