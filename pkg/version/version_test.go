package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	t.Run("Should render injected build values", func(t *testing.T) {
		info := Info{Version: "v1.2.0", CommitHash: "abc123", BuildDate: "2026-01-01T00:00:00Z"}
		assert.Equal(t, "v1.2.0 (commit abc123, built 2026-01-01T00:00:00Z)", info.String())
	})

	t.Run("Should report dev defaults", func(t *testing.T) {
		assert.Equal(t, "dev", Get().Version)
	})
}
