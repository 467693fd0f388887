package monitoring

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/floworx/floworx/engine/clientconfig"
	"github.com/floworx/floworx/engine/clientconfig/uc"
	"github.com/floworx/floworx/engine/infra/monitoring/metrics"
	"github.com/floworx/floworx/pkg/logger"
)

// PipelineMetrics counts configuration updates by outcome and the overrides they carried.
type PipelineMetrics struct {
	updates   metric.Int64Counter
	overrides metric.Int64Counter
}

var _ uc.Observer = (*PipelineMetrics)(nil)

func NewPipelineMetrics(ctx context.Context, meter metric.Meter) *PipelineMetrics {
	log := logger.FromContext(ctx)
	p := &PipelineMetrics{}
	var err error
	p.updates, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("config", "updates_total"),
		metric.WithDescription("Client configuration updates by outcome"),
	)
	if err != nil {
		log.Error("Failed to create config updates counter", "error", err)
	}
	p.overrides, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("config", "overrides_total"),
		metric.WithDescription("Fields changed by policy or normalization during updates"),
	)
	if err != nil {
		log.Error("Failed to create config overrides counter", "error", err)
	}
	return p
}

func (p *PipelineMetrics) ObserveUpdate(ctx context.Context, outcome uc.Outcome, overrides []clientconfig.Override) {
	if p.updates != nil {
		p.updates.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
	}
	if p.overrides == nil || outcome != uc.OutcomeSuccess {
		return
	}
	for _, o := range overrides {
		p.overrides.Add(ctx, 1, metric.WithAttributes(attribute.String("field", o.Field)))
	}
}
