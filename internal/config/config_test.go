package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)

		assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
		assert.Equal(t, 0.5, cfg.Retrieval.PrimaryThreshold)
		assert.Equal(t, 0.3, cfg.Retrieval.FallbackThreshold)
		assert.Equal(t, 5, cfg.Retrieval.Limit)
		assert.Equal(t, 1000, cfg.Retrieval.ChunkSize)
		assert.Equal(t, 100*time.Millisecond, cfg.MinInterval())
		assert.Equal(t, 3, cfg.Retry.MaxAttempts)
		assert.Equal(t, time.Second, cfg.InitialBackoff())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[openai]
api_key = "sk-test"
embedding_model = "text-embedding-3-large"

[retrieval]
primary_threshold = 0.6
limit = 10
`), 0600))

		cfg, err := LoadFrom(path)
		require.NoError(t, err)

		assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
		assert.Equal(t, "text-embedding-3-large", cfg.OpenAI.EmbeddingModel)
		assert.Equal(t, 0.6, cfg.Retrieval.PrimaryThreshold)
		assert.Equal(t, 10, cfg.Retrieval.Limit)
		// Untouched sections keep defaults.
		assert.Equal(t, 0.3, cfg.Retrieval.FallbackThreshold)
		assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.CompletionModel)
	})

	t.Run("environment key wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[openai]\napi_key = \"sk-file\"\n"), 0600))
		t.Setenv("INSIGHT_OPENAI_API_KEY", "sk-env")

		cfg, err := LoadFrom(path)
		require.NoError(t, err)
		assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	})

	t.Run("generic env key fills an empty key only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[openai]\napi_key = \"sk-file\"\n"), 0600))
		t.Setenv("INSIGHT_OPENAI_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "sk-generic")

		cfg, err := LoadFrom(path)
		require.NoError(t, err)
		assert.Equal(t, "sk-file", cfg.OpenAI.APIKey)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[retrieval]\nprimary_threshold = 1.5\n"), 0600))

		_, err := LoadFrom(path)
		assert.ErrorContains(t, err, "primary_threshold")
	})

	t.Run("fallback above primary is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[retrieval]\nprimary_threshold = 0.3\nfallback_threshold = 0.5\n"), 0600))

		_, err := LoadFrom(path)
		assert.ErrorContains(t, err, "fallback_threshold")
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.OpenAI.APIKey = "sk-saved"
	cfg.Retrieval.Limit = 7
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	t.Setenv("INSIGHT_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-saved", loaded.OpenAI.APIKey)
	assert.Equal(t, 7, loaded.Retrieval.Limit)
}

func TestHasAPIKey(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.HasAPIKey())
	cfg.OpenAI.APIKey = "sk"
	assert.True(t, cfg.HasAPIKey())
}
