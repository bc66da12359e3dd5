package otel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Signal is one telemetry stream the storefront can export over OTLP.
type Signal string

const (
	SignalTraces  Signal = "traces"
	SignalLogs    Signal = "logs"
	SignalMetrics Signal = "metrics"
)

// Config holds OpenTelemetry configuration. Signals lists the streams
// exported when Enabled; the others keep the global no-op providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	Enabled        bool
	SampleRatio    float64
	Signals        map[Signal]bool
	MetricInterval time.Duration
}

// Exports reports whether s is exported.
func (c Config) Exports(s Signal) bool {
	return c.Enabled && c.Signals[s]
}

// ConfigFromEnv reads OTEL_* variables. OTEL_TRACES_EXPORTER,
// OTEL_LOGS_EXPORTER and OTEL_METRICS_EXPORTER set to "none" switch a
// single signal off.
func ConfigFromEnv() Config {
	cfg := Config{
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "search-storefront"),
		ServiceVersion: getEnv("SERVICE_VERSION", "0.0.0"),
		Environment:    getEnv("DEPLOYMENT_ENV", "development"),
		OTLPEndpoint:   strings.TrimSuffix(getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"), "/"),
		Enabled:        getEnv("OTEL_ENABLED", "false") == "true",
		SampleRatio:    1.0,
		Signals:        map[Signal]bool{},
		MetricInterval: 15 * time.Second,
	}

	if v := os.Getenv("OTEL_TRACE_SAMPLE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.SampleRatio = f
		}
	}
	if v := os.Getenv("OTEL_METRIC_EXPORT_INTERVAL"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.MetricInterval = time.Duration(ms) * time.Millisecond
		}
	}

	exporterVars := map[Signal]string{
		SignalTraces:  "OTEL_TRACES_EXPORTER",
		SignalLogs:    "OTEL_LOGS_EXPORTER",
		SignalMetrics: "OTEL_METRICS_EXPORTER",
	}
	for signal, key := range exporterVars {
		cfg.Signals[signal] = !strings.EqualFold(getEnv(key, "otlp"), "none")
	}
	return cfg
}

// ShutdownFunc flushes and stops the providers InitProvider started.
type ShutdownFunc func(context.Context) error

// InitProvider installs a global provider for every exported signal and
// binds the storefront instruments. If a provider fails to start, the ones
// already started are shut down again.
func InitProvider(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	var shutdowns []ShutdownFunc
	shutdownAll := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Enabled {
		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(cfg.ServiceName),
				semconv.ServiceVersion(cfg.ServiceVersion),
				semconv.DeploymentEnvironment(cfg.Environment),
			),
			resource.WithHost(),
			resource.WithProcess(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}

		starters := []struct {
			signal Signal
			start  func(context.Context, Config, *resource.Resource) (ShutdownFunc, error)
		}{
			{SignalTraces, startTracing},
			{SignalLogs, startLogging},
			{SignalMetrics, startMetrics},
		}
		for _, s := range starters {
			if !cfg.Exports(s.signal) {
				continue
			}
			shutdown, err := s.start(ctx, cfg, res)
			if err != nil {
				_ = shutdownAll(ctx)
				return nil, fmt.Errorf("failed to start %s export: %w", s.signal, err)
			}
			shutdowns = append(shutdowns, shutdown)
		}
	}

	// Instruments bind to whatever meter provider is global now, no-op included.
	if err := InitMetrics(); err != nil {
		_ = shutdownAll(ctx)
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return shutdownAll, nil
}

func startTracing(ctx context.Context, cfg Config, res *resource.Resource) (ShutdownFunc, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint+"/v1/traces"),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return provider.Shutdown, nil
}

func startLogging(ctx context.Context, cfg Config, res *resource.Resource) (ShutdownFunc, error) {
	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(cfg.OTLPEndpoint+"/v1/logs"),
		otlploghttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(provider)
	return provider.Shutdown, nil
}

func startMetrics(ctx context.Context, cfg Config, res *resource.Resource) (ShutdownFunc, error) {
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(cfg.OTLPEndpoint+"/v1/metrics"),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
