package postgres

import (
	"math"
	"testing"
	"time"

	"github.com/floworx/floworx/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	t.Run("Should prefer the explicit connection string", func(t *testing.T) {
		cfg := &Config{ConnString: " postgres://u@db/x ", Host: "ignored"}
		assert.Equal(t, "postgres://u@db/x", cfg.DSN())
	})

	t.Run("Should synthesize a DSN from individual fields", func(t *testing.T) {
		cfg := &Config{Host: "db", Port: "6543", User: "floworx", Password: "p@ss", DBName: "configs"}
		assert.Equal(t, "postgres://floworx:p%40ss@db:6543/configs?sslmode=disable", cfg.DSN())
	})

	t.Run("Should default host and port", func(t *testing.T) {
		assert.Equal(t, "postgres://localhost:5432/x?sslmode=require", dsn(&Config{DBName: "x", SSLMode: "require"}))
	})
}

func TestFromAppConfig(t *testing.T) {
	t.Run("Should copy settings and reveal the password", func(t *testing.T) {
		cfg := FromAppConfig(&config.DatabaseConfig{
			Host:         "db",
			Password:     config.SensitiveString("secret"),
			MaxOpenConns: 7,
			PingTimeout:  time.Second,
		})
		assert.Equal(t, "db", cfg.Host)
		assert.Equal(t, "secret", cfg.Password)
		assert.Equal(t, 7, cfg.MaxOpenConns)
		assert.Equal(t, time.Second, cfg.PingTimeout)
	})

	t.Run("Should tolerate nil", func(t *testing.T) {
		assert.NotNil(t, FromAppConfig(nil))
	})
}

func TestConnectionBounds(t *testing.T) {
	t.Run("Should apply the default max", func(t *testing.T) {
		maxConns, minConns := connectionBounds(0, 0)
		assert.Equal(t, int32(defaultMaxConns), maxConns)
		assert.Equal(t, int32(0), minConns)
	})

	t.Run("Should clamp idle connections to the max", func(t *testing.T) {
		maxConns, minConns := connectionBounds(5, 9)
		assert.Equal(t, int32(5), maxConns)
		assert.Equal(t, int32(5), minConns)
	})

	t.Run("Should clamp to int32", func(t *testing.T) {
		maxConns, _ := connectionBounds(math.MaxInt64, 0)
		assert.Equal(t, int32(math.MaxInt32), maxConns)
	})
}

func TestComputePoolLabel(t *testing.T) {
	t.Run("Should sanitize components", func(t *testing.T) {
		assert.Equal(t, "db.local-5432-client_configs", computePoolLabel(&Config{
			Host:   "DB.local",
			Port:   "5432",
			DBName: "client configs",
		}))
	})

	t.Run("Should fall back to the default label", func(t *testing.T) {
		assert.Equal(t, defaultPoolLabel, computePoolLabel(&Config{}))
		assert.Equal(t, defaultPoolLabel, computePoolLabel(nil))
	})
}
