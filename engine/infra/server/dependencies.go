package server

import (
	"context"
	"fmt"

	"github.com/floworx/floworx/engine/clientconfig"
	"github.com/floworx/floworx/engine/clientconfig/uc"
	"github.com/floworx/floworx/engine/infra/cache"
	"github.com/floworx/floworx/engine/infra/postgres"
	"github.com/floworx/floworx/pkg/config"
	"github.com/floworx/floworx/pkg/logger"
)

const (
	driverMemory   = "memory"
	driverPostgres = "postgres"
	driverRedis    = "redis"
)

// OpenStore builds the configuration store selected by store.driver.
func OpenStore(ctx context.Context, cfg *config.Config) (clientconfig.Store, error) {
	log := logger.FromContext(ctx).With("store_driver", cfg.Store.Driver)
	switch cfg.Store.Driver {
	case driverMemory:
		log.Warn("Using in-memory store; configurations are lost on restart")
		return clientconfig.NewMemoryStore(), nil
	case driverPostgres:
		pg, err := postgres.NewStore(ctx, postgres.FromAppConfig(&cfg.Database))
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		return pg.ClientConfigs(), nil
	case driverRedis:
		client, err := cache.NewRedis(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		var opts []clientconfig.RedisStoreOption
		if cfg.Redis.Prefix != "" {
			opts = append(opts, clientconfig.WithPrefix(cfg.Redis.Prefix))
		}
		return clientconfig.NewRedisStore(client, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// Dependencies holds the use cases served over HTTP and the CLI.
type Dependencies struct {
	Store    clientconfig.Store
	Versions *clientconfig.VersionStore
	Get      *uc.Get
	Update   *uc.Update
	History  *uc.History
	Retry    uc.RetryPolicy
}

// NewDependencies wires the use cases on top of store. observer may be nil.
func NewDependencies(cfg *config.Config, store clientconfig.Store, observer uc.Observer) *Dependencies {
	versions := clientconfig.NewVersionStore(store)
	var opts []uc.UpdateOption
	if observer != nil {
		opts = append(opts, uc.WithObserver(observer))
	}
	return &Dependencies{
		Store:    store,
		Versions: versions,
		Get:      uc.NewGet(versions),
		Update:   uc.NewUpdate(versions, opts...),
		History:  uc.NewHistory(versions, cfg.Pipeline.HistoryLimit),
		Retry: uc.RetryPolicy{
			Retries:   uint64(max(cfg.Pipeline.ConflictRetries, 0)),
			BaseDelay: cfg.Pipeline.RetryBaseDelay,
		},
	}
}

func (d *Dependencies) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
