package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Outcome counts domain results (issued, consumed, expired, sent, failed...)
// under a "result" attribute. It reports through the global meter provider,
// so it is a no-op until InitTelemetry runs.
type Outcome struct {
	counter metric.Int64Counter
}

func NewOutcome(name, description string) Outcome {
	c, err := otel.Meter(instrumentationName).Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		slog.Warn("observability: counter disabled", "name", name, "err", err)
		return Outcome{counter: noop.Int64Counter{}}
	}
	return Outcome{counter: c}
}

func (o Outcome) Add(ctx context.Context, result string, attrs ...attribute.KeyValue) {
	if o.counter == nil {
		return
	}
	attrs = append(attrs, attribute.String("result", result))
	o.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
