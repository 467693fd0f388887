package postgres

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	monitoringmetrics "github.com/floworx/floworx/engine/infra/monitoring/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultPoolLabel  = "default"
	postgresMeterName = "floworx.postgres"
)

var (
	poolGaugesOnce sync.Once
	poolGaugesErr  error
	trackedPools   sync.Map
)

// poolMetrics exposes a pool's statistics through the shared observable gauges.
type poolMetrics struct {
	label string
	pool  atomic.Pointer[pgxpool.Pool]
}

func attachPoolMetrics(cfg *Config, pool *pgxpool.Pool) (*poolMetrics, error) {
	if err := ensurePoolGauges(); err != nil {
		return nil, err
	}
	p := &poolMetrics{label: computePoolLabel(cfg)}
	p.pool.Store(pool)
	trackedPools.Store(p, struct{}{})
	return p, nil
}

func (p *poolMetrics) unregister() {
	if p == nil {
		return
	}
	trackedPools.Delete(p)
	p.pool.Store(nil)
}

func ensurePoolGauges() error {
	poolGaugesOnce.Do(func() {
		poolGaugesErr = registerPoolGauges(otel.GetMeterProvider().Meter(postgresMeterName))
	})
	return poolGaugesErr
}

func registerPoolGauges(meter metric.Meter) error {
	open, err := meter.Int64ObservableGauge(
		monitoringmetrics.MetricNameWithSubsystem("postgres", "connections_open"),
		metric.WithDescription("Number of open Postgres connections"),
	)
	if err != nil {
		return fmt.Errorf("postgres: connections_open gauge: %w", err)
	}
	inUse, err := meter.Int64ObservableGauge(
		monitoringmetrics.MetricNameWithSubsystem("postgres", "connections_in_use"),
		metric.WithDescription("Number of Postgres connections currently in use"),
	)
	if err != nil {
		return fmt.Errorf("postgres: connections_in_use gauge: %w", err)
	}
	maxConns, err := meter.Int64ObservableGauge(
		monitoringmetrics.MetricNameWithSubsystem("postgres", "max_open_connections"),
		metric.WithDescription("Configured Postgres connection pool size"),
	)
	if err != nil {
		return fmt.Errorf("postgres: max_open_connections gauge: %w", err)
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		trackedPools.Range(func(key, _ any) bool {
			p, ok := key.(*poolMetrics)
			if !ok {
				return true
			}
			pool := p.pool.Load()
			if pool == nil {
				return true
			}
			stats := pool.Stat()
			attrs := metric.WithAttributes(attribute.String("pool", p.label))
			o.ObserveInt64(open, int64(stats.TotalConns()), attrs)
			o.ObserveInt64(inUse, int64(stats.AcquiredConns()), attrs)
			o.ObserveInt64(maxConns, int64(stats.MaxConns()), attrs)
			return true
		})
		return nil
	}, open, inUse, maxConns)
	return err
}

// computePoolLabel builds a low-cardinality pool label from host, port and database.
func computePoolLabel(cfg *Config) string {
	if cfg == nil {
		return defaultPoolLabel
	}
	parts := make([]string, 0, 3)
	for _, c := range []string{cfg.Host, cfg.Port, cfg.DBName} {
		if s := sanitizeLabelComponent(c); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return defaultPoolLabel
	}
	return strings.Join(parts, "-")
}

func sanitizeLabelComponent(component string) string {
	lower := strings.ToLower(strings.TrimSpace(component))
	mapped := strings.Map(func(r rune) rune {
		if isLabelRune(r) {
			return r
		}
		return '_'
	}, lower)
	return strings.Trim(mapped, "_")
}

func isLabelRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '.', r == ':':
		return true
	default:
		return false
	}
}
