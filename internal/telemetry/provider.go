// Package telemetry builds the tracer provider pipeline runs report their
// step spans to.
package telemetry

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"population-pipeline/internal/config"
)

// Provider carries the tracer provider handed to the pipeline and the hook
// that flushes it on exit.
type Provider struct {
	trace.TracerProvider
	shutdown func(context.Context) error
}

// Shutdown flushes buffered spans. It is safe on a disabled provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// Enabled reports whether spans leave the process.
func (p *Provider) Enabled() bool {
	_, ok := p.TracerProvider.(*sdktrace.TracerProvider)
	return ok
}

// Setup returns a no-op provider unless OTEL_ENABLED is set together with
// OTEL_ENDPOINT. An enabled provider batches spans to the OTLP/HTTP endpoint
// and is also installed globally.
func Setup(ctx context.Context, cfg config.Telemetry) (*Provider, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return &Provider{TracerProvider: noop.NewTracerProvider()}, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Printf("📡 tracing %s to %s", cfg.ServiceName, cfg.Endpoint)
	return &Provider{TracerProvider: tp, shutdown: tp.Shutdown}, nil
}
