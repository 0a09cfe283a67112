package observability

import (
	"github.com/smallbiznis/bizledger/internal/observability/logger"
	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	"github.com/smallbiznis/bizledger/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		func(cfg Config) logger.Config {
			return logger.Config{
				Service:        cfg.ServiceName,
				Environment:    cfg.Environment,
				Version:        cfg.Version,
				Business:       cfg.Business,
				Level:          cfg.LogLevel,
				Format:         cfg.LogFormat,
				StackOnError:   cfg.Debug(),
				DropDuplicates: !cfg.Debug(),
			}
		},
		func(cfg Config) logger.GormLoggerConfig {
			return logger.GormLoggerConfig{
				Level:         cfg.SQLLogLevel,
				SlowThreshold: cfg.SlowQueryThreshold,
			}
		},
		func(cfg Config) tracing.Config {
			return tracing.Config{
				Enabled:          cfg.OtelEnabled,
				ServiceName:      cfg.ServiceName,
				ServiceVersion:   cfg.Version,
				Environment:      cfg.Environment,
				ExporterEndpoint: cfg.OtelExporterEndpoint,
				ExporterProtocol: cfg.OtelExporterProtocol,
				SamplingRatio:    cfg.OtelSamplingRatio,
			}
		},
		func(cfg Config) metrics.Config {
			return metrics.Config{
				Enabled:          cfg.OtelEnabled,
				ExporterEndpoint: cfg.OtelExporterEndpoint,
				ExporterProtocol: cfg.OtelExporterProtocol,
				ServiceName:      cfg.ServiceName,
				Environment:      cfg.Environment,
			}
		},
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
		metrics.LedgerWithConfig,
	),
	// The tracer provider must be built even when nothing asks for it.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
