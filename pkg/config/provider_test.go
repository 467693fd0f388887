package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIProvider_Load(t *testing.T) {
	t.Run("Should map CLI flags to configuration structure", func(t *testing.T) {
		provider := NewCLIProvider(map[string]any{
			"host":      "cli.example.com",
			"port":      6001,
			"store":     "postgres",
			"log-level": "debug",
			"unknown":   "ignored",
		})

		data, err := provider.Load()

		require.NoError(t, err)
		assert.Equal(t, SourceCLI, provider.Type())
		server := data["server"].(map[string]any)
		assert.Equal(t, "cli.example.com", server["host"])
		assert.Equal(t, 6001, server["port"])
		assert.Equal(t, "postgres", data["store"].(map[string]any)["driver"])
		assert.Equal(t, "debug", data["runtime"].(map[string]any)["log_level"])
		assert.NotContains(t, data, "unknown")
	})
}

func TestYAMLProvider_Load(t *testing.T) {
	t.Run("Should read nested values and drop nulls", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "floworx.yaml")
		content := "server:\n  port: 7070\n  host: ~\nstore:\n  driver: redis\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		data, err := NewYAMLProvider(path).Load()

		require.NoError(t, err)
		server := data["server"].(map[string]any)
		assert.Equal(t, 7070, server["port"])
		assert.NotContains(t, server, "host")
		assert.Equal(t, "redis", data["store"].(map[string]any)["driver"])
	})

	t.Run("Should return empty map when file is missing", func(t *testing.T) {
		data, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).Load()

		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Should fail on malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

		_, err := NewYAMLProvider(path).Load()

		require.Error(t, err)
	})
}

func TestSetNested(t *testing.T) {
	t.Run("Should report conflicts when a path segment is not a map", func(t *testing.T) {
		m := map[string]any{"server": "flat"}

		err := setNested(m, "server.host", "x")

		require.Error(t, err)
	})
}

func TestFromContext(t *testing.T) {
	t.Run("Should return attached configuration", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Port = 1234

		got := FromContext(ContextWithConfig(t.Context(), cfg))

		assert.Same(t, cfg, got)
	})

	t.Run("Should fall back to defaults when nothing attached", func(t *testing.T) {
		got := FromContext(t.Context())

		require.NotNil(t, got)
	})
}
