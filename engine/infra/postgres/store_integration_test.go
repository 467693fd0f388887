//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/floworx/floworx/engine/clientconfig"
	"github.com/floworx/floworx/engine/clientconfig/uc"
)

func startPostgres(ctx context.Context, t *testing.T) *Config {
	t.Helper()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("floworx"),
		tcpostgres.WithUsername("floworx"),
		tcpostgres.WithPassword("floworx"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(terminateCtx); err != nil {
			t.Logf("Warning: failed to terminate container: %s", err)
		}
	})
	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return &Config{ConnString: connStr}
}

func openMigratedStore(ctx context.Context, t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(ctx, startPostgres(ctx, t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

func acmeConfig() clientconfig.ClientConfiguration {
	cfg := clientconfig.Default("acme")
	cfg.Client.Name = "Acme"
	cfg.People.Managers = []clientconfig.Manager{{Name: "Dana", Email: "dana@acme.io"}}
	return cfg
}

func TestStore_Integration(t *testing.T) {
	ctx := context.Background()
	store := openMigratedStore(ctx, t)

	t.Run("Should apply migrations idempotently", func(t *testing.T) {
		require.NoError(t, store.Migrate(ctx))
		var exists bool
		err := store.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
			historyTable,
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Should write, read and record history", func(t *testing.T) {
		vs := clientconfig.NewVersionStore(store.ClientConfigs())
		v, err := vs.Write(ctx, "acme", clientconfig.InitialVersion, acmeConfig(), "ops")
		require.NoError(t, err)
		assert.Equal(t, 2, v)
		v, err = vs.Write(ctx, "acme", 2, acmeConfig(), "ops")
		require.NoError(t, err)
		assert.Equal(t, 3, v)

		got, err := vs.Read(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, 3, got.Version)
		assert.Equal(t, "Acme", got.Client.Name)

		entries, err := vs.History(ctx, "acme", 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 3, entries[0].Version)
		assert.Equal(t, "ops", entries[0].UpdatedBy)
	})

	t.Run("Should store data as JSON so object key order survives", func(t *testing.T) {
		var dataType string
		err := store.pool.QueryRow(ctx,
			"SELECT data_type FROM information_schema.columns WHERE table_name = $1 AND column_name = 'data'",
			configTable,
		).Scan(&dataType)
		require.NoError(t, err)
		assert.Equal(t, "json", dataType)
	})

	t.Run("Should keep label_map order through a round trip", func(t *testing.T) {
		vs := clientconfig.NewVersionStore(store.ClientConfigs())
		cfg := acmeConfig()
		want := cfg.Channels.Email.LabelMap.Categories()
		_, err := vs.Write(ctx, "order-co", clientconfig.InitialVersion, cfg, "ops")
		require.NoError(t, err)
		got, err := vs.Read(ctx, "order-co")
		require.NoError(t, err)
		assert.Equal(t, want, got.Channels.Email.LabelMap.Categories())

		entries, err := vs.History(ctx, "order-co", 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, want, entries[0].Config.Channels.Email.LabelMap.Categories())
	})

	t.Run("Should keep the first category owning a label after a round trip", func(t *testing.T) {
		vs := clientconfig.NewVersionStore(store.ClientConfigs())
		get := uc.NewGet(vs)
		update := uc.NewUpdate(vs)
		_, err := vs.Write(ctx, "dedup-co", clientconfig.InitialVersion, acmeConfig(), "ops")
		require.NoError(t, err)

		patch := clientconfig.MustDecodePatch(`{"channels":{"email":{"label_map":{"Misc":"Sales"}}}}`)
		_, err = update.Execute(ctx, &uc.UpdateInput{ClientID: "dedup-co", Patch: patch, Actor: "ops"})
		require.NoError(t, err)

		out, err := get.Execute(ctx, &uc.GetInput{ClientID: "dedup-co"})
		require.NoError(t, err)
		labels := out.Config.Channels.Email.LabelMap
		sales, ok := labels.Get("Sales")
		require.True(t, ok)
		assert.Equal(t, "Sales", sales)
		_, ok = labels.Get("Misc")
		assert.False(t, ok)
	})

	t.Run("Should let exactly one concurrent writer win", func(t *testing.T) {
		vs := clientconfig.NewVersionStore(store.ClientConfigs())
		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			wins      int
			conflicts int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := vs.Write(ctx, "race-co", clientconfig.InitialVersion, acmeConfig(), "racer")
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					wins++
					return
				}
				assert.ErrorIs(t, err, clientconfig.ErrVersionConflict)
				conflicts++
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
		assert.Equal(t, writers-1, conflicts)
	})

	t.Run("Should report healthy", func(t *testing.T) {
		assert.NoError(t, store.HealthCheck(ctx))
	})
}
