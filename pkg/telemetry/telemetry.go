// Package telemetry configures OpenTelemetry tracing and provides span helpers.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/brief/pkg/lifecycle"
)

const shutdownTimeout = 10 * time.Second

// System owns the global tracer provider.
type System interface {
	// Start registers a shutdown hook that flushes and stops the provider.
	Start(lc *lifecycle.Coordinator) error
}

type tracing struct {
	provider *sdktrace.TracerProvider
	logger   *slog.Logger
}

type noop struct{}

func (noop) Start(*lifecycle.Coordinator) error { return nil }

// New installs an OTLP/HTTP tracer provider as the global provider.
// When tracing is disabled the global no-op provider is left in place.
func New(ctx context.Context, cfg *Config, version string, logger *slog.Logger) (System, error) {
	if !cfg.Enabled {
		return noop{}, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &tracing{
		provider: provider,
		logger:   logger.With("system", "telemetry"),
	}, nil
}

func (t *tracing) Start(lc *lifecycle.Coordinator) error {
	t.logger.Info("trace export enabled")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		t.logger.Info("flushing traces")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := t.provider.Shutdown(ctx); err != nil {
			t.logger.Error("tracer shutdown failed", "error", err)
			return
		}

		t.logger.Info("tracer shutdown complete")
	})

	return nil
}

// SetError records err on span and marks the span as failed.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}
