// Package telemetry sets up OpenTelemetry tracing and metrics providers.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// ShutdownFunc flushes and releases a provider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

func newResource(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
}

// NewTracerProvider installs a global tracer provider exporting spans over OTLP/HTTP.
// When tracing is disabled the global no-op provider is kept and the returned shutdown does nothing.
func NewTracerProvider(ctx context.Context, serviceName string, cfg config.TracesConfig) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	collectorOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.OtlpHttp.Endpoint),
		otlptracehttp.WithTimeout(cfg.OtlpHttp.Timeout),
	}
	if cfg.OtlpHttp.Insecure {
		collectorOpts = append(collectorOpts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, collectorOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp trace exporter: %w", err)
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(newResource(serviceName)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Metrics bundles the meter provider and the HTTP handler serving its Prometheus exposition.
type Metrics struct {
	Handler  http.Handler
	Shutdown ShutdownFunc
}

// NewMeterProvider installs a global meter provider backed by a Prometheus exporter on a private registry.
// When metrics are disabled the handler answers 404 and the global no-op provider is kept.
func NewMeterProvider(serviceName string, cfg config.MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{Handler: http.NotFoundHandler(), Shutdown: noopShutdown}, nil
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName)),
	)
	otel.SetMeterProvider(mp)
	return &Metrics{
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Shutdown: mp.Shutdown,
	}, nil
}
