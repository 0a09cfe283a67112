package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	transactionsRecorded metric.Int64Counter
	balanceMutations     metric.Int64Counter
	eventsPublished      metric.Int64Counter
	salesCompleted       metric.Int64Counter
	rateLimitAllowed     metric.Int64Counter
	rateLimitDenied      metric.Int64Counter
}

// NewProvider installs the global meter provider. With export disabled the
// provider is a no-op and instruments cost nothing.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, fmt.Errorf("metrics exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName(cfg)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		)),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("ledger metrics exporting",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}
	return provider, nil
}

// New registers the ledger counters on the provider's meter.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(serviceName(cfg))
	m := &Metrics{}

	counters := []struct {
		target *metric.Int64Counter
		name   string
		help   string
	}{
		{&m.transactionsRecorded, "bizledger_transactions_recorded_total", "Committed transaction writes by type and operation."},
		{&m.balanceMutations, "bizledger_balance_mutations_total", "Account balance adjustments applied by transaction writes."},
		{&m.eventsPublished, "bizledger_events_published_total", "Change events handed to the event bus."},
		{&m.salesCompleted, "bizledger_sales_completed_total", "Completed point of sale checkouts."},
		{&m.rateLimitAllowed, "bizledger_rate_limit_allowed_total", "Writes admitted by the write limiter."},
		{&m.rateLimitDenied, "bizledger_rate_limit_denied_total", "Writes rejected by the write limiter."},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.help))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.target = counter
	}
	return m, nil
}

func serviceName(cfg Config) string {
	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		return name
	}
	return "bizledger"
}

// RecordTransaction counts a committed transaction write by type and operation.
func (m *Metrics) RecordTransaction(ctx context.Context, txType, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("transaction_type", strings.TrimSpace(txType)),
		attribute.String("operation", strings.TrimSpace(operation)),
	)
	m.transactionsRecorded.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordBalanceMutation counts account balance adjustments.
func (m *Metrics) RecordBalanceMutation(ctx context.Context, operation string, accounts int) {
	if m == nil || accounts <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.balanceMutations.Add(ctx, int64(accounts), metric.WithAttributes(attrs...))
}

// RecordEventPublished counts events handed to the bus.
func (m *Metrics) RecordEventPublished(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("event_type", strings.TrimSpace(eventType)))
	m.eventsPublished.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSale counts completed point of sale checkouts.
func (m *Metrics) RecordSale(ctx context.Context) {
	if m == nil {
		return
	}
	m.salesCompleted.Add(ctx, 1)
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":         {},
	"status_code":      {},
	"transaction_type": {},
	"operation":        {},
	"event_type":       {},
	"reason":           {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
