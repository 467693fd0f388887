package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/floworx/floworx/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns           = 20
	defaultHealthCheckPeriod  = 30 * time.Second
	defaultConnectTimeout     = 5 * time.Second
	defaultPingTimeout        = 3 * time.Second
	defaultHealthCheckTimeout = 1 * time.Second
)

// Store owns the pgx pool shared by the Postgres repositories.
type Store struct {
	pool               *pgxpool.Pool
	cfg                *Config
	metrics            *poolMetrics
	healthCheckTimeout time.Duration
}

// NewStore opens the pool and verifies the connection before returning.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres: config is required")
	}
	poolCfg, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	applyPoolSettings(cfg, poolCfg)
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, durationOr(cfg.PingTimeout, defaultPingTimeout))
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	tracker, mErr := attachPoolMetrics(cfg, pool)
	if mErr != nil {
		logger.FromContext(ctx).Warn("Postgres pool metrics disabled", "error", mErr)
	}
	logger.FromContext(ctx).Info(
		"Postgres store initialized",
		"host", cfg.Host,
		"db_name", cfg.DBName,
		"max_conns", poolCfg.MaxConns,
		"min_conns", poolCfg.MinConns,
	)
	return &Store{
		pool:               pool,
		cfg:                cfg,
		metrics:            tracker,
		healthCheckTimeout: durationOr(cfg.HealthCheckTimeout, defaultHealthCheckTimeout),
	}, nil
}

// ClientConfigs returns the client configuration repository bound to the pool.
func (s *Store) ClientConfigs() *ClientConfigRepo {
	return NewClientConfigRepo(s.pool, WithHealthCheck(s.HealthCheck), WithCloser(s.Close))
}

// Migrate applies the embedded schema while holding the migration advisory lock.
func (s *Store) Migrate(ctx context.Context) error {
	return ApplyMigrationsWithLock(ctx, dsn(s.cfg))
}

// Close shuts down the connection pool.
func (s *Store) Close() error {
	s.metrics.unregister()
	s.pool.Close()
	return nil
}

// HealthCheck verifies the connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	hctx, cancel := context.WithTimeout(ctx, s.healthCheckTimeout)
	defer cancel()
	if err := s.pool.Ping(hctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

func applyPoolSettings(cfg *Config, poolCfg *pgxpool.Config) {
	maxConns, minConns := connectionBounds(cfg.MaxOpenConns, cfg.MaxIdleConns)
	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = minConns
	poolCfg.HealthCheckPeriod = durationOr(cfg.HealthCheckPeriod, defaultHealthCheckPeriod)
	poolCfg.ConnConfig.ConnectTimeout = durationOr(cfg.ConnectTimeout, defaultConnectTimeout)
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
}

// connectionBounds clamps the configured pool sizes to int32 with min <= max.
func connectionBounds(maxOpen, maxIdle int) (int32, int32) {
	maxConns := int32(defaultMaxConns)
	if maxOpen > 0 {
		maxConns = int32(min(maxOpen, math.MaxInt32))
	}
	var minConns int32
	if maxIdle > 0 {
		minConns = int32(min(maxIdle, int(maxConns)))
	}
	return maxConns, minConns
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
