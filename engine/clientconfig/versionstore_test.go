package clientconfig

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) Store

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			s := NewRedisStore(client, WithPrefix("test"), WithHistoryMax(5))
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestVersionStore(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Run("Should materialize defaults without persisting them", func(t *testing.T) {
				backend := factory(t)
				vs := NewVersionStore(backend)
				ctx := context.Background()
				cfg, err := vs.Read(ctx, "acme")
				require.NoError(t, err)
				assert.Equal(t, Default("acme"), cfg)
				_, err = backend.Load(ctx, "acme")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("Should land the first write at version 2", func(t *testing.T) {
				vs := NewVersionStore(factory(t))
				ctx := context.Background()
				cfg := validConfig()
				v, err := vs.Write(ctx, "acme", 1, cfg, "tester")
				require.NoError(t, err)
				assert.Equal(t, 2, v)
				got, err := vs.Read(ctx, "acme")
				require.NoError(t, err)
				assert.Equal(t, 2, got.Version)
				assert.Equal(t, "acme", got.ClientID)
				assert.Equal(t, cfg.Client, got.Client)
				assert.Equal(t, cfg.Channels.Email.LabelMap, got.Channels.Email.LabelMap)
			})

			t.Run("Should reject a stale expected version", func(t *testing.T) {
				vs := NewVersionStore(factory(t))
				ctx := context.Background()
				_, err := vs.Write(ctx, "acme", 1, validConfig(), "a")
				require.NoError(t, err)
				_, err = vs.Write(ctx, "acme", 1, validConfig(), "b")
				require.ErrorIs(t, err, ErrVersionConflict)
				var conflict *ConflictError
				require.True(t, errors.As(err, &conflict))
				assert.Equal(t, 1, conflict.Expected)
				assert.Equal(t, 2, conflict.Current)
			})

			t.Run("Should reject a write from the future on an unwritten client", func(t *testing.T) {
				vs := NewVersionStore(factory(t))
				_, err := vs.Write(context.Background(), "acme", 5, validConfig(), "a")
				assert.ErrorIs(t, err, ErrVersionConflict)
			})

			t.Run("Should keep history newest first", func(t *testing.T) {
				vs := NewVersionStore(factory(t))
				ctx := context.Background()
				cfg := validConfig()
				for expected := 1; expected <= 3; expected++ {
					cfg.Client.Website = "v" + string(rune('0'+expected+1))
					_, err := vs.Write(ctx, "acme", expected, cfg, "tester")
					require.NoError(t, err)
				}
				hist, err := vs.History(ctx, "acme", 2)
				require.NoError(t, err)
				require.Len(t, hist, 2)
				assert.Equal(t, 4, hist[0].Version)
				assert.Equal(t, "v4", hist[0].Config.Client.Website)
				assert.Equal(t, 3, hist[1].Version)
				assert.Equal(t, "tester", hist[1].UpdatedBy)
				all, err := vs.History(ctx, "acme", 0)
				require.NoError(t, err)
				assert.Len(t, all, 3)
			})

			t.Run("Should let exactly one concurrent writer win", func(t *testing.T) {
				vs := NewVersionStore(factory(t))
				ctx := context.Background()
				const writers = 8
				var wg sync.WaitGroup
				var mu sync.Mutex
				wins, conflicts := 0, 0
				for i := 0; i < writers; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, err := vs.Write(ctx, "acme", 1, validConfig(), "racer")
						mu.Lock()
						defer mu.Unlock()
						switch {
						case err == nil:
							wins++
						case errors.Is(err, ErrVersionConflict):
							conflicts++
						}
					}()
				}
				wg.Wait()
				assert.Equal(t, 1, wins)
				assert.Equal(t, writers-1, conflicts)
				got, err := vs.Read(ctx, "acme")
				require.NoError(t, err)
				assert.Equal(t, 2, got.Version)
			})

			t.Run("Should answer pings", func(t *testing.T) {
				assert.NoError(t, factory(t).Ping(context.Background()))
			})
		})
	}
}

func TestRedisStore_HistoryCap(t *testing.T) {
	t.Run("Should trim history to the configured maximum", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), WithHistoryMax(2))
		defer s.Close()
		vs := NewVersionStore(s)
		ctx := context.Background()
		for expected := 1; expected <= 4; expected++ {
			_, err := vs.Write(ctx, "acme", expected, validConfig(), "a")
			require.NoError(t, err)
		}
		hist, err := s.History(ctx, "acme", 0)
		require.NoError(t, err)
		require.Len(t, hist, 2)
		assert.Equal(t, 5, hist[0].Version)
		assert.True(t, mr.Exists("floworx:clientcfg:acme"))
	})

	t.Run("Should refuse work after close", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		_, err := s.Load(context.Background(), "acme")
		assert.Error(t, err)
	})
}

func TestVersionStore_Timestamps(t *testing.T) {
	t.Run("Should stamp writes with the store clock in UTC", func(t *testing.T) {
		backend := NewMemoryStore()
		vs := NewVersionStore(backend)
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
		vs.now = func() time.Time { return fixed }
		_, err := vs.Write(context.Background(), "acme", 1, validConfig(), "a")
		require.NoError(t, err)
		rec, err := backend.Load(context.Background(), "acme")
		require.NoError(t, err)
		assert.True(t, rec.UpdatedAt.Equal(fixed))
		assert.Equal(t, time.UTC, rec.UpdatedAt.Location())
	})
}
