package postgres

import (
	"io/fs"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dataColumn = regexp.MustCompile(`(?m)^\s*data\s+(\w+)`)

func TestEmbeddedMigrations(t *testing.T) {
	t.Run("Should declare configuration data as order-preserving JSON", func(t *testing.T) {
		files, err := fs.Glob(migrationsFS, "migrations/*.sql")
		require.NoError(t, err)
		require.NotEmpty(t, files)
		var types []string
		for _, name := range files {
			body, err := fs.ReadFile(migrationsFS, name)
			require.NoError(t, err)
			for _, m := range dataColumn.FindAllStringSubmatch(string(body), -1) {
				types = append(types, m[1])
			}
		}
		assert.Equal(t, []string{"JSON", "JSON"}, types)
	})
}
