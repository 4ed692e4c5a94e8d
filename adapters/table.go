package adapters

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// DefaultTable lists the applications known out of the box.
func DefaultTable() []Entry {
	return []Entry{
		{
			ID:      "com.todesktop.230313mzl4w4u92",
			Aliases: []string{"com.todesktop.230313mzl4w4u92.helper", "cursor"},
			Capabilities: Capabilities{
				DisplayName:          "Cursor",
				MentionPrefix:        "@",
				SupportsFileMentions: true,
				SupportsCodeContext:  true,
				SupportsDocsMentions: true,
				SupportsDiffContext:  true,
				SupportsWebContext:   true,
				SupportsChatHistory:  true,
			},
		},
		{
			ID:      "com.exafunction.windsurf",
			Aliases: []string{"com.exafunction.windsurf.helper", "windsurf"},
			Capabilities: Capabilities{
				DisplayName:          "Windsurf",
				MentionPrefix:        "@",
				SupportsFileMentions: true,
				SupportsCodeContext:  true,
				SupportsDocsMentions: true,
				SupportsWebContext:   true,
			},
		},
		{
			ID:      "com.microsoft.vscode",
			Aliases: []string{"com.microsoft.vscodeinsiders", "com.microsoft.vscode.helper", "code"},
			Capabilities: Capabilities{
				DisplayName:          "Visual Studio Code",
				MentionPrefix:        "#file:",
				SupportsFileMentions: true,
				SupportsCodeContext:  true,
				SupportsDiffContext:  true,
			},
		},
		{
			ID:      "dev.zed.zed",
			Aliases: []string{"dev.zed.zed-preview", "zed"},
			Capabilities: Capabilities{
				DisplayName:          "Zed",
				MentionPrefix:        "@",
				SupportsFileMentions: true,
				SupportsCodeContext:  true,
				SupportsDiffContext:  true,
			},
		},
		{
			ID:      "com.apple.terminal",
			Aliases: []string{"terminal"},
			Capabilities: Capabilities{
				DisplayName:          "Terminal",
				MentionPrefix:        "@",
				SupportsFileMentions: true,
			},
		},
		{
			ID:      "com.googlecode.iterm2",
			Aliases: []string{"iterm2"},
			Capabilities: Capabilities{
				DisplayName:          "iTerm2",
				MentionPrefix:        "@",
				SupportsFileMentions: true,
			},
		},
		{
			ID:      "com.mitchellh.ghostty",
			Aliases: []string{"ghostty"},
			Capabilities: Capabilities{
				DisplayName:          "Ghostty",
				MentionPrefix:        "@",
				SupportsFileMentions: true,
			},
		},
		{
			ID:      "dev.warp.warp-stable",
			Aliases: []string{"dev.warp.warp-preview", "warp"},
			Capabilities: Capabilities{
				DisplayName:          "Warp",
				MentionPrefix:        "@",
				SupportsFileMentions: true,
				SupportsCodeContext:  true,
			},
		},
		{
			ID:      "com.openai.chat",
			Aliases: []string{"chatgpt"},
			Capabilities: Capabilities{
				DisplayName:         "ChatGPT",
				SupportsWebContext:  true,
				SupportsChatHistory: true,
			},
		},
		{
			ID:      "com.tinyspeck.slackmacgap",
			Aliases: []string{"slack"},
			Capabilities: Capabilities{
				DisplayName:         "Slack",
				SupportsChatHistory: true,
			},
		},
	}
}

// tableFile is the on-disk shape of an adapter table:
//
//	[[adapter]]
//	id = "com.example.editor"
//	aliases = ["com.example.editor-beta"]
//	display_name = "Example"
//	mention_prefix = "@"
//	file_mentions = true
type tableFile struct {
	Adapter []Entry `toml:"adapter"`
}

// LoadTable reads a TOML adapter table and appends it to base, so its entries
// override base entries with the same identifier.
func LoadTable(path string, base []Entry) ([]Entry, error) {
	var file tableFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decoding adapter table %s: %w", path, err)
	}
	for i, entry := range file.Adapter {
		if entry.ID == "" {
			return nil, fmt.Errorf("adapter table %s: entry %d has no id", path, i+1)
		}
	}

	table := make([]Entry, 0, len(base)+len(file.Adapter))
	table = append(table, base...)
	table = append(table, file.Adapter...)
	return table, nil
}
