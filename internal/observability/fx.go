package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/spendlens/internal/observability/logger"
	"github.com/smallbiznis/spendlens/internal/observability/metrics"
	"github.com/smallbiznis/spendlens/internal/observability/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		func(cfg Config) logger.Config {
			return logger.Config{
				ServiceName:         cfg.ServiceName,
				Environment:         cfg.Environment,
				Version:             cfg.Version,
				Level:               cfg.LogLevel,
				Format:              cfg.LogFormat,
				Debug:               cfg.Debug(),
				IncludeCaller:       true,
				IncludeStackOnError: cfg.development,
			}
		},
		logger.New,
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
		tracing.NewProvider,
		func(cfg Config) metrics.Config {
			return metrics.Config{
				Enabled:          cfg.OtelEnabled,
				ExporterEndpoint: cfg.OtelExporterEndpoint,
				ExporterProtocol: cfg.OtelExporterProtocol,
				ServiceName:      cfg.ServiceName,
				Environment:      cfg.Environment,
			}
		},
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(
		// Forces the tracer provider to be built even when no handler asks for it.
		func(trace.TracerProvider) {},
		registerBuildInfo,
		logTelemetry,
	),
)

// BuildInfo is a constant 1 labelled with the running version, so dashboards
// can join deploys against request and chat metrics.
func BuildInfo(cfg Config) prometheus.Collector {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spendlens_build_info",
		Help: "Running spendlens build.",
		ConstLabels: prometheus.Labels{
			"service":     cfg.ServiceName,
			"version":     version,
			"environment": cfg.Environment,
		},
	})
	gauge.Set(1)
	return gauge
}

func registerBuildInfo(cfg Config, httpMetrics *metrics.HTTPMetrics) error {
	return httpMetrics.Register(BuildInfo(cfg))
}

func logTelemetry(cfg Config, log *zap.Logger) {
	log.Info("telemetry configured",
		zap.String("environment", cfg.Environment),
		zap.String("version", cfg.Version),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("otel_enabled", cfg.OtelEnabled),
		zap.String("otel_protocol", cfg.OtelExporterProtocol),
		zap.Float64("otel_sampling_ratio", cfg.OtelSamplingRatio),
	)
}
