package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry_KnownAdapter(t *testing.T) {
	r := NewRegistry(DefaultTable())

	caps := r.Adapter("com.todesktop.230313mzl4w4u92")
	assert.Equal(t, "Cursor", caps.DisplayName)
	assert.Equal(t, "@", caps.MentionPrefix)
	assert.True(t, caps.SupportsFileMentions)
	assert.True(t, r.HasAdapter("com.todesktop.230313mzl4w4u92"))
}

func Test_Registry_AliasesMatchPrimary(t *testing.T) {
	r := NewRegistry(DefaultTable())

	assert.Equal(t, r.Adapter("com.microsoft.VSCode"), r.Adapter("com.microsoft.VSCodeInsiders"))
	assert.Equal(t, r.Adapter("dev.zed.Zed"), r.Adapter("dev.zed.Zed-Preview"))
	assert.Equal(t, r.Adapter("com.todesktop.230313mzl4w4u92"), r.Adapter("com.todesktop.230313mzl4w4u92.helper"))
	assert.True(t, r.HasAdapter("dev.zed.Zed-Preview"))
}

func Test_Registry_UnknownFallsBack(t *testing.T) {
	r := NewRegistry(DefaultTable())

	caps := r.Adapter("com.example.unknown")
	assert.Equal(t, Fallback, caps)
	assert.False(t, caps.SupportsFileMentions)
	assert.False(t, r.HasAdapter("com.example.unknown"))
	assert.False(t, r.HasAdapter(""))
}

func Test_Registry_ChatAppsDoNotAcceptFileMentions(t *testing.T) {
	r := NewRegistry(DefaultTable())

	assert.True(t, r.HasAdapter("com.tinyspeck.slackmacgap"))
	assert.False(t, r.Adapter("com.tinyspeck.slackmacgap").SupportsFileMentions)
}

func Test_Registry_ReducedTable(t *testing.T) {
	r := NewRegistry([]Entry{{
		ID:           "test.editor",
		Capabilities: Capabilities{DisplayName: "Test", MentionPrefix: "@", SupportsFileMentions: true},
	}})

	assert.Equal(t, []string{"test.editor"}, r.IDs())
	assert.True(t, r.Adapter("TEST.EDITOR").SupportsFileMentions)
	assert.Equal(t, Fallback, r.Adapter("com.todesktop.230313mzl4w4u92"))
}

func Test_LoadTable_OverridesAndExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adapters.toml")
	content := `
[[adapter]]
id = "com.microsoft.VSCode"
display_name = "Code"
mention_prefix = "@"
file_mentions = true

[[adapter]]
id = "com.example.editor"
aliases = ["com.example.editor-beta"]
display_name = "Example"
mention_prefix = "@"
file_mentions = true
code_context = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadTable(path, DefaultTable())
	require.NoError(t, err)
	r := NewRegistry(table)

	vscode := r.Adapter("com.microsoft.vscode")
	assert.Equal(t, "Code", vscode.DisplayName)
	assert.Equal(t, "@", vscode.MentionPrefix)
	assert.Equal(t, vscode, r.Adapter("com.microsoft.VSCodeInsiders"), "existing aliases follow the override")

	beta := r.Adapter("com.example.editor-beta")
	assert.Equal(t, "Example", beta.DisplayName)
	assert.True(t, beta.SupportsCodeContext)
}

func Test_LoadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTable(filepath.Join(dir, "missing.toml"), nil)
	assert.Error(t, err)

	noID := filepath.Join(dir, "noid.toml")
	require.NoError(t, os.WriteFile(noID, []byte("[[adapter]]\ndisplay_name = \"x\"\n"), 0644))
	_, err = LoadTable(noID, nil)
	assert.Error(t, err)
}
