package heimdall

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	uatomic "go.uber.org/atomic"

	"github.com/Alijeyrad/heimdall/pkg/observability"
)

const (
	instrumentationName    = "github.com/Alijeyrad/heimdall"
	instrumentationVersion = "0.1.0"
)

var current uatomic.Pointer[Client]

// Client holds the tracer used by instrumented handlers.
type Client struct {
	cfg      observability.Config
	provider *observability.Provider
	tp       trace.TracerProvider
	tracer   trace.Tracer
	meter    metric.Meter
	enabled  bool

	opCount    metric.Int64Counter
	opDuration metric.Float64Histogram

	sessionID *uatomic.String
	userID    *uatomic.String

	shutdown func(context.Context) error
	flush    func(context.Context) error
}

// Option customizes a client built by InitWithTracerProvider.
type Option func(*Client)

// WithMeterProvider records operation metrics through mp.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Client) {
		c.meter = mp.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))
	}
}

// WithConfig attaches cfg for reporting; it does not rebuild the pipeline.
func WithConfig(cfg observability.Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// Init builds the telemetry pipeline from cfg and installs the client as
// the process-wide handle. Calling Init while a client is installed is an
// error; Shutdown or Reset it first.
func Init(ctx context.Context, cfg observability.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := newClient(cfg)
	if cfg.Enabled {
		provider, err := observability.InitTelemetry(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.provider = provider
		c.tp = provider.TracerProvider
		c.tracer = provider.TracerProvider.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
		c.meter = provider.MeterProvider.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))
		c.enabled = true
		c.shutdown = provider.Shutdown
		c.flush = provider.ForceFlush
	}

	c.initInstruments()

	if !current.CompareAndSwap(nil, c) {
		if c.provider != nil {
			_ = c.provider.Shutdown(ctx)
		}
		return nil, ErrAlreadyInitialized
	}
	if c.provider != nil {
		c.provider.InstallGlobals()
	}

	slog.Debug("heimdall client initialized",
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
		"enabled", c.enabled,
	)
	return c, nil
}

// InitWithTracerProvider installs an enabled client backed by tp. The caller
// keeps ownership of tp; Shutdown only flushes it when tp supports that.
func InitWithTracerProvider(tp trace.TracerProvider, opts ...Option) (*Client, error) {
	c := newClient(observability.DefaultConfig())
	c.tp = tp
	c.tracer = tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
	c.enabled = true
	if f, ok := tp.(interface{ ForceFlush(context.Context) error }); ok {
		c.flush = f.ForceFlush
		c.shutdown = f.ForceFlush
	}
	for _, opt := range opts {
		opt(c)
	}
	c.initInstruments()

	if !current.CompareAndSwap(nil, c) {
		return nil, ErrAlreadyInitialized
	}
	return c, nil
}

func newClient(cfg observability.Config) *Client {
	return &Client{
		cfg:       cfg,
		tp:        tracenoop.NewTracerProvider(),
		tracer:    tracenoop.NewTracerProvider().Tracer(instrumentationName),
		meter:     metricnoop.NewMeterProvider().Meter(instrumentationName),
		sessionID: uatomic.NewString(""),
		userID:    uatomic.NewString(""),
		shutdown:  func(context.Context) error { return nil },
		flush:     func(context.Context) error { return nil },
	}
}

func (c *Client) initInstruments() {
	var err error
	c.opCount, err = c.meter.Int64Counter(
		"heimdall_operation_count",
		metric.WithDescription("Total number of instrumented operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		slog.Warn("heimdall: operation counter unavailable", "error", err)
		c.opCount, _ = metricnoop.NewMeterProvider().Meter(instrumentationName).Int64Counter("heimdall_operation_count")
	}
	c.opDuration, err = c.meter.Float64Histogram(
		"heimdall_operation_duration_ms",
		metric.WithDescription("Instrumented operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		slog.Warn("heimdall: operation histogram unavailable", "error", err)
		c.opDuration, _ = metricnoop.NewMeterProvider().Meter(instrumentationName).Float64Histogram("heimdall_operation_duration_ms")
	}
}

// RecordOperation counts one finished operation and records its duration.
func (c *Client) RecordOperation(ctx context.Context, kind, name, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(observability.AttrSpanKind, kind),
		attribute.String(observability.AttrOperationName, name),
		attribute.String(observability.AttrStatus, status),
	)
	c.opCount.Add(ctx, 1, attrs)
	c.opDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// Current returns the installed client, or nil before Init.
func Current() *Client {
	return current.Load()
}

// Shutdown flushes and stops the installed client and uninstalls it.
func Shutdown(ctx context.Context) error {
	c := current.Swap(nil)
	if c == nil {
		return nil
	}
	if err := c.shutdown(ctx); err != nil {
		return fmt.Errorf("heimdall shutdown: %w", err)
	}
	slog.Debug("heimdall client shutdown complete")
	return nil
}

// Reset uninstalls the current client, shutting it down best-effort.
// Intended for tests.
func Reset(ctx context.Context) {
	if err := Shutdown(ctx); err != nil {
		slog.Warn("heimdall reset: shutdown failed", "error", err)
	}
}

// Enabled reports whether spans are recorded. It is safe on a nil client.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Config returns the configuration the client was built from.
func (c *Client) Config() observability.Config {
	return c.cfg
}

// Provider returns the telemetry pipeline built by Init, or nil.
func (c *Client) Provider() *observability.Provider {
	return c.provider
}

// Tracer returns the client's tracer; a no-op tracer when disabled.
func (c *Client) Tracer() trace.Tracer {
	return c.tracer
}

// Meter returns the client's meter; a no-op meter when metrics are not wired.
func (c *Client) Meter() metric.Meter {
	return c.meter
}

// StartSpan starts a span as a child of any span in ctx.
func (c *Client) StartSpan(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// Flush exports pending spans.
func (c *Client) Flush(ctx context.Context) error {
	return c.flush(ctx)
}

// SetSessionID sets the client-level session id used when neither an
// extractor nor the request context provides one. "" clears it.
func (c *Client) SetSessionID(id string) { c.sessionID.Store(id) }

// SessionID returns the client-level session id.
func (c *Client) SessionID() string { return c.sessionID.Load() }

// SetUserID sets the client-level user id. "" clears it.
func (c *Client) SetUserID(id string) { c.userID.Store(id) }

// UserID returns the client-level user id.
func (c *Client) UserID() string { return c.userID.Load() }

// CurrentSpan returns the span active in ctx.
func CurrentSpan(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
