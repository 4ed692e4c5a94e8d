package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Target is an MCP client whose configuration file can list this server.
type Target struct {
	Key     string // top-level object holding the server entries
	Path    string // config file, relative to the project or home directory
	Project bool   // Path is relative to a project directory instead of home
	Type    string // transport type written into the entry, if the client wants one
}

// Targets are the clients the register subcommand knows how to configure.
var Targets = map[string]Target{
	"project":  {Key: "mcpServers", Path: ".mcp.json", Project: true},
	"cursor":   {Key: "mcpServers", Path: filepath.Join(".cursor", "mcp.json")},
	"windsurf": {Key: "mcpServers", Path: filepath.Join(".codeium", "windsurf", "mcp_config.json")},
	"vscode":   {Key: "servers", Path: filepath.Join(".vscode", "mcp.json"), Project: true, Type: "stdio"},
}

var errUsage = errors.New("invalid arguments")

type mcpServerEntry struct {
	Type    string   `json:"type,omitempty"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Run executes the register subcommand.
// serverName is the MCP server name (e.g. "mentionindex").
// args is os.Args[2:] (everything after "register").
func Run(serverName string, args []string) error {
	if len(args) == 0 {
		printUsage()
		return errUsage
	}

	name := args[0]
	target, ok := Targets[name]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown target %q: %w", name, errUsage)
	}

	directory, serverArgs := ".", parseServerArgs(args[1:])
	if target.Project {
		directory, serverArgs = parseProjectArgs(args[1:])
	}

	binaryPath, err := detectBinaryPath()
	if err != nil {
		return fmt.Errorf("detecting binary path: %w", err)
	}

	configPath, err := resolveConfigPath(target, directory)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	entry := buildEntry(binaryPath, serverArgs)
	entry.Type = target.Type

	if err := writeConfig(configPath, target.Key, serverName, entry); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Registered %q in %s\n", serverName, configPath)
	return nil
}

func printUsage() {
	binaryName := filepath.Base(os.Args[0])
	names := make([]string, 0, len(Targets))
	for name := range Targets {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s register <target> [directory] [-- server flags]\n", binaryName)
	fmt.Fprintf(os.Stderr, "\nTargets:\n")
	for _, name := range names {
		target := Targets[name]
		base := "~"
		if target.Project {
			base = "<directory>"
		}
		fmt.Fprintf(os.Stderr, "  %-9s -> %s\n", name, filepath.Join(base, target.Path))
	}
	fmt.Fprintf(os.Stderr, "\nExample:\n  %s register cursor -- -root ~/src/app\n", binaryName)
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

func parseProjectArgs(args []string) (directory string, serverArgs []string) {
	directory = "."
	for i, arg := range args {
		if arg == "--" {
			serverArgs = args[i+1:]
			return directory, serverArgs
		}
		// First non-separator arg is the directory
		if i == 0 {
			directory = arg
		}
	}
	return directory, nil
}

func parseServerArgs(args []string) (serverArgs []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[i+1:]
		}
	}
	return nil
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(target Target, directory string) (string, error) {
	if target.Project {
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, target.Path), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, target.Path), nil
}

func buildEntry(binaryPath string, serverArgs []string) mcpServerEntry {
	if runtime.GOOS == "windows" {
		args := []string{"/C", binaryPath}
		args = append(args, serverArgs...)
		return mcpServerEntry{
			Command: "cmd",
			Args:    args,
		}
	}
	return mcpServerEntry{
		Command: binaryPath,
		Args:    serverArgs,
	}
}

// writeConfig adds or replaces serverName under key in the JSON file at configPath,
// keeping every other setting. Missing parent directories are created.
func writeConfig(configPath string, key string, serverName string, entry mcpServerEntry) error {
	// Read existing config or start fresh
	config := map[string]any{
		key: map[string]any{},
	}

	data, err := os.ReadFile(configPath)
	if err == nil && len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	}

	servers, ok := config[key]
	if !ok {
		servers = map[string]any{}
		config[key] = servers
	}

	serversMap, ok := servers.(map[string]any)
	if !ok {
		return fmt.Errorf("%s in %s is not an object", key, configPath)
	}
	serversMap[serverName] = entry

	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", configDir, err)
	}

	// Atomic write: write to temp file in same directory, then rename
	tmpFile, err := os.CreateTemp(configDir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", configDir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(output); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, configPath, err)
	}

	return nil
}
