package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCLIFlags(t *testing.T) {
	t.Run("Should collect only changed flags with their types", func(t *testing.T) {
		cmd := &cobra.Command{Use: "x"}
		cmd.Flags().String("store", "memory", "")
		cmd.Flags().Int("port", 5080, "")
		cmd.Flags().Bool("log-json", false, "")
		cmd.Flags().String("host", "0.0.0.0", "")
		require.NoError(t, cmd.Flags().Parse([]string{"--store", "redis", "--port", "9000", "--log-json"}))
		flags := extractCLIFlags(cmd)
		assert.Equal(t, map[string]any{"store": "redis", "port": 9000, "log-json": true}, flags)
	})
}

func TestIsPathWithinDirectory(t *testing.T) {
	t.Run("Should accept nested paths", func(t *testing.T) {
		assert.True(t, isPathWithinDirectory("/srv/app/.env", "/srv/app"))
		assert.True(t, isPathWithinDirectory("/srv/app/conf/..env", "/srv/app"))
	})

	t.Run("Should reject paths that escape the directory", func(t *testing.T) {
		assert.False(t, isPathWithinDirectory("/srv/.env", "/srv/app"))
		assert.False(t, isPathWithinDirectory("/srv/app-other/.env", "/srv/app"))
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("Should load variables from a file in the working directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.env"), []byte("FLOWORX_TEST_ENV_FILE=loaded\n"), 0o600))
		t.Setenv("FLOWORX_TEST_ENV_FILE", "")
		require.NoError(t, os.Unsetenv("FLOWORX_TEST_ENV_FILE"))
		cmd := RootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--env-file", "test.env"}))
		path, err := loadEnvFile(cmd)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, "test.env"))
		assert.Equal(t, "loaded", os.Getenv("FLOWORX_TEST_ENV_FILE"))
	})

	t.Run("Should ignore a missing file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cmd := RootCmd()
		require.NoError(t, cmd.ParseFlags(nil))
		path, err := loadEnvFile(cmd)
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("Should refuse files outside the working directory", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cmd := RootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--env-file", "../outside.env"}))
		_, err := loadEnvFile(cmd)
		assert.ErrorContains(t, err, "outside the project directory")
	})
}

func TestReadPatch(t *testing.T) {
	t.Run("Should prefer inline text", func(t *testing.T) {
		data, err := readPatch(strings.NewReader("ignored"), `{"a":1}`, "")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))
	})

	t.Run("Should read stdin for a dash", func(t *testing.T) {
		data, err := readPatch(strings.NewReader(`{"b":2}`), "", "-")
		require.NoError(t, err)
		assert.Equal(t, `{"b":2}`, string(data))
	})

	t.Run("Should read a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "patch.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"c":3}`), 0o600))
		data, err := readPatch(nil, "", path)
		require.NoError(t, err)
		assert.Equal(t, `{"c":3}`, string(data))
	})

	t.Run("Should fail without a source", func(t *testing.T) {
		_, err := readPatch(nil, "  ", "")
		assert.Error(t, err)
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("Should indent without color for non-terminal writers", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, map[string]int{"version": 3}))
		assert.Equal(t, "{\n  \"version\": 3\n}\n", buf.String())
		assert.False(t, colorEnabled(&buf))
	})
}
