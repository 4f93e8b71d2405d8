package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactdesk/insight-cli/internal/config"
)

func setupTestConfigHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("INSIGHT_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestSettingsCmd_Use(t *testing.T) {
	assert.Equal(t, "settings", settingsCmd.Use)
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	commands := settingsCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "set-key")
	assert.Contains(t, commandNames, "check")
}

func TestSettingsShowCmd_PrintsDefaults(t *testing.T) {
	setupTestConfigHome(t)

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Embedding Model: text-embedding-3-small")
	assert.Contains(t, out, "Primary Threshold: 0.50")
	assert.Contains(t, out, "Fallback Threshold: 0.30")
}

func TestSettingsSetKeyCmd_SavesKey(t *testing.T) {
	setupTestConfigHome(t)

	rootCmd.SetIn(strings.NewReader("sk-test-key\n"))
	defer rootCmd.SetIn(nil)

	out, err := executeCommand("settings", "set-key")

	require.NoError(t, err)
	assert.Contains(t, out, "API key saved.")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-test-key", cfg.OpenAI.APIKey)
}

func TestSettingsSetKeyCmd_RejectsEmptyKey(t *testing.T) {
	setupTestConfigHome(t)

	rootCmd.SetIn(strings.NewReader("\n"))
	defer rootCmd.SetIn(nil)

	_, err := executeCommand("settings", "set-key")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no key entered")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
