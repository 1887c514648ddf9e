package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/Alijeyrad/heimdall/pkg/observability"
)

// FiberMiddleware opens an mcp.request span around every HTTP request and
// records request count and latency. Spans and instruments come from the
// global providers installed by Provider.InstallGlobals.
func FiberMiddleware(serviceName string) fiber.Handler {
	tracer := otel.Tracer(tracerName)
	meter := otel.Meter(tracerName)

	requestCounter, _ := meter.Int64Counter(
		"heimdall_http_request_count",
		metric.WithDescription("Total number of MCP HTTP requests"),
		metric.WithUnit("{request}"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"heimdall_http_request_duration_ms",
		metric.WithDescription("MCP HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return func(c fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(
			c.Context(),
			propagation.HeaderCarrier(c.GetReqHeaders()),
		)

		// The matched route is only known after c.Next; the span is renamed then.
		attrs := []attribute.KeyValue{
			attribute.String(AttrSpanKind, string(SpanKindRequest)),
			attribute.String(AttrServiceName, serviceName),
			attribute.String("http.method", c.Method()),
			attribute.String("http.target", c.Path()),
			attribute.String("http.user_agent", c.Get("User-Agent")),
			attribute.String("http.client_ip", c.IP()),
		}
		if sid := c.Get("Mcp-Session-Id"); sid != "" {
			attrs = append(attrs, attribute.String(AttrSessionID, sid))
		}

		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		c.SetContext(ctx)

		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		start := time.Now()
		err := c.Next()
		duration := float64(time.Since(start).Microseconds()) / 1000

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)

		statusCode := c.Response().StatusCode()
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", statusCode),
			attribute.Float64(AttrDurationMS, duration),
		)

		metricAttrs := metric.WithAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", statusCode),
		)
		requestCounter.Add(ctx, 1, metricAttrs)
		requestDuration.Record(ctx, duration, metricAttrs)

		if statusCode >= 500 || err != nil {
			span.SetAttributes(attribute.String(AttrStatus, string(SpanStatusError)))
			span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(statusCode))
			if err != nil {
				span.RecordError(err)
			}
		} else {
			span.SetAttributes(attribute.String(AttrStatus, string(SpanStatusOK)))
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
