package observability

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

const (
	tracesPath = "/v1/traces"

	// AttrEnvironment is the resource attribute carrying the deployment environment.
	AttrEnvironment = "heimdall.environment"
	// AttrMetadataPrefix prefixes user supplied resource metadata.
	AttrMetadataPrefix = "heimdall.metadata."
)

// Provider holds the OpenTelemetry providers
type Provider struct {
	TracerProvider     *trace.TracerProvider
	MeterProvider      *metric.MeterProvider
	PrometheusExporter *prometheus.Exporter

	registry *prom.Registry
}

// InitTelemetry builds the tracing and metrics pipeline. It leaves the otel
// globals alone; see InstallGlobals.
func InitTelemetry(ctx context.Context, cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tracerProvider, err := initTracing(ctx, res, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry := prom.NewRegistry()
	meterProvider, promExporter, err := initMetrics(res, registry)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return &Provider{
		TracerProvider:     tracerProvider,
		MeterProvider:      meterProvider,
		PrometheusExporter: promExporter,
		registry:           registry,
	}, nil
}

// InstallGlobals makes p the global otel tracer and meter provider and sets
// the W3C propagator used by the HTTP front. Request identity is never
// propagated this way.
func (p *Provider) InstallGlobals() {
	otel.SetTracerProvider(p.TracerProvider)
	otel.SetMeterProvider(p.MeterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func newResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String(AttrEnvironment, cfg.Environment),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	for k, v := range cfg.Metadata {
		attrs = append(attrs, attribute.String(AttrMetadataPrefix+k, v))
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", attrs...), // Use empty schema URL to inherit from Default()
	)
}

// initTracing sets up the OTLP trace exporter
func initTracing(ctx context.Context, res *resource.Resource, cfg Config) (*trace.TracerProvider, error) {
	opts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(cfg.SamplingRate)),
	}

	// Only configure OTLP exporter if endpoint is provided
	if cfg.Endpoint != "" {
		exporterOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpointURL(strings.TrimRight(cfg.Endpoint, "/") + tracesPath),
		}
		if cfg.APIKey != "" {
			exporterOpts = append(exporterOpts, otlptracehttp.WithHeaders(map[string]string{
				"Authorization": "Bearer " + cfg.APIKey,
			}))
		}

		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}

		opts = append(opts, trace.WithBatcher(exporter,
			trace.WithMaxQueueSize(cfg.MaxQueueSize),
			trace.WithMaxExportBatchSize(cfg.BatchSize),
			trace.WithBatchTimeout(cfg.FlushInterval),
		))
	}

	return trace.NewTracerProvider(opts...), nil
}

// initMetrics sets up Prometheus metrics exporter
func initMetrics(res *resource.Resource, registry *prom.Registry) (*metric.MeterProvider, *prometheus.Exporter, error) {
	promExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(promExporter),
	)

	return meterProvider, promExporter, nil
}

// MetricsHandler serves the Prometheus registry backing the meter provider.
func (p *Provider) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// ForceFlush exports all finished spans that are still queued.
func (p *Provider) ForceFlush(ctx context.Context) error {
	return p.TracerProvider.ForceFlush(ctx)
}

// Shutdown gracefully shuts down the telemetry providers
func (p *Provider) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.TracerProvider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}

	if err := p.MeterProvider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}

	return nil
}
