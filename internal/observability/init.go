package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// meterName is the instrumentation scope for recheck instruments.
const meterName = "recheck"

// Providers holds the initialized observability providers.
type Providers struct {
	// Meter is the named meter for creating instruments.
	Meter metric.Meter

	// Logger is the structured logger.
	Logger *slog.Logger

	// Registry is the Prometheus registry collecting all OTel instruments.
	Registry *prometheus.Registry

	// Shutdown flushes all pending telemetry and releases resources.
	// Must be called before process exit.
	Shutdown func(ctx context.Context) error
}

// Init initializes metrics and structured logging. Metrics are collected into
// a private Prometheus registry; the CLI reads it at run end and the MCP mode
// can serve it as a scrape endpoint.
func Init(cfg Config) (Providers, error) {
	res, err := buildResource(cfg)
	if err != nil {
		return Providers{}, err
	}

	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return Providers{}, fmt.Errorf("create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	logger := buildLogger(cfg)

	shutdown := func(shutdownCtx context.Context) error {
		timeoutDur := time.Duration(cfg.ShutdownTimeoutSec) * time.Second
		if timeoutDur <= 0 {
			timeoutDur = time.Duration(defaultShutdownTimeoutSec) * time.Second
		}

		deadlineCtx, cancel := context.WithTimeout(shutdownCtx, timeoutDur)
		defer cancel()

		return meterProvider.Shutdown(deadlineCtx)
	}

	return Providers{
		Meter:    meterProvider.Meter(meterName),
		Logger:   logger,
		Registry: registry,
		Shutdown: shutdown,
	}, nil
}

// buildResource constructs the OTel resource describing this process.
func buildResource(cfg Config) (*resource.Resource, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	return res, nil
}

// buildLogger constructs the slog logger for the configured mode. MCP mode
// logs to stderr unconditionally because stdout carries the protocol stream.
func buildLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogJSON || cfg.Mode == ModeMCP {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
