package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworx/floworx/engine/clientconfig"
	"github.com/floworx/floworx/pkg/config"
)

const validPatch = `{
	"client":{"name":"Acme"},
	"people":{"managers":[{"name":"Dana","email":"dana@acme.io"}]}
}`

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	root := RootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--env-file", "", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func redisArgs(mr *miniredis.Miniredis) []string {
	return []string{"--store", "redis", "--redis-addr", mr.Addr()}
}

func TestConfigCommands(t *testing.T) {
	t.Run("Should set, get and list history against a shared store", func(t *testing.T) {
		mr := miniredis.RunT(t)
		args := redisArgs(mr)

		res := runCLI(t, "", append([]string{"config", "set", "acme", "--patch", validPatch, "--actor", "ops"}, args...)...)
		require.NoError(t, res.err, res.stderr)
		var update struct {
			OK      bool `json:"ok"`
			Version int  `json:"version"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &update))
		assert.True(t, update.OK)
		assert.Equal(t, 2, update.Version)

		res = runCLI(t, "", append([]string{"config", "get", "acme"}, args...)...)
		require.NoError(t, res.err, res.stderr)
		var cfg clientconfig.ClientConfiguration
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &cfg))
		assert.Equal(t, 2, cfg.Version)
		assert.Equal(t, "Acme", cfg.Client.Name)

		res = runCLI(t, "", append([]string{"config", "history", "acme", "--format", "json"}, args...)...)
		require.NoError(t, res.err, res.stderr)
		var entries []clientconfig.HistoryEntry
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "ops", entries[0].UpdatedBy)

		res = runCLI(t, "", append([]string{"config", "history", "acme"}, args...)...)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "VERSION")
		assert.Contains(t, res.stdout, "ops")
	})

	t.Run("Should read the patch from stdin", func(t *testing.T) {
		mr := miniredis.RunT(t)
		res := runCLI(t, validPatch, append([]string{"config", "set", "acme", "-f", "-"}, redisArgs(mr)...)...)
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, `"version": 2`)
	})

	t.Run("Should print field errors when validation fails", func(t *testing.T) {
		res := runCLI(t, "", "config", "set", "acme", "--patch", `{"people":{"managers":[]}}`)
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, clientconfig.ErrValidationFailed)
		assert.Contains(t, res.stderr, "people.managers")
	})

	t.Run("Should fail fast when if-match does not match", func(t *testing.T) {
		res := runCLI(t, "", "config", "set", "acme", "--patch", validPatch, "--if-match", "5")
		assert.ErrorIs(t, res.err, clientconfig.ErrVersionConflict)
	})

	t.Run("Should reject malformed patches", func(t *testing.T) {
		res := runCLI(t, "", "config", "set", "acme", "--patch", `[1,2]`)
		assert.ErrorIs(t, res.err, clientconfig.ErrInvalidPatch)
	})

	t.Run("Should require a patch source", func(t *testing.T) {
		res := runCLI(t, "", "config", "set", "acme")
		assert.Error(t, res.err)
	})

	t.Run("Should print the configuration schema", func(t *testing.T) {
		res := runCLI(t, "", "config", "schema")
		require.NoError(t, res.err)
		var schema map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &schema))
		assert.Equal(t, "Floworx client configuration", schema["title"])
		assert.Contains(t, res.stdout, `"label_map"`)
	})

	t.Run("Should print defaults for an unknown client", func(t *testing.T) {
		res := runCLI(t, "", "config", "get", "new-co")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, `"version": 1`)
	})
}

func TestSetupGlobalConfig(t *testing.T) {
	newCmd := func(t *testing.T, args ...string) *cobra.Command {
		t.Helper()
		root := RootCmd()
		require.NoError(t, root.ParseFlags(append([]string{"--env-file", ""}, args...)))
		return root
	}

	t.Run("Should load YAML and attach the config to the context", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "floworx.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: redis\npipeline:\n  history_limit: 7\n"), 0o600))
		cmd := newCmd(t, "--config", path)
		require.NoError(t, SetupGlobalConfig(cmd))
		cfg := config.FromContext(cmd.Context())
		assert.Equal(t, "redis", cfg.Store.Driver)
		assert.Equal(t, 7, cfg.Pipeline.HistoryLimit)
	})

	t.Run("Should let flags override the YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "floworx.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: redis\n"), 0o600))
		cmd := newCmd(t, "--config", path, "--store", "memory")
		require.NoError(t, SetupGlobalConfig(cmd))
		assert.Equal(t, "memory", config.FromContext(cmd.Context()).Store.Driver)
	})

	t.Run("Should fail on invalid configuration", func(t *testing.T) {
		cmd := newCmd(t, "--store", "sqlite")
		assert.ErrorContains(t, SetupGlobalConfig(cmd), "failed to load configuration")
	})
}

func TestMigrateCmd(t *testing.T) {
	t.Run("Should reject unknown directions", func(t *testing.T) {
		res := runCLI(t, "", "migrate", "sideways")
		assert.ErrorContains(t, res.err, "invalid argument")
	})
}

func TestRootCmd(t *testing.T) {
	t.Run("Should print build information", func(t *testing.T) {
		res := runCLI(t, "", "--version")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "dev (commit unknown")
	})
}
