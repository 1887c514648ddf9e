package observe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Alijeyrad/heimdall/pkg/heimdall"
)

func setupClient(t *testing.T) (*heimdall.Client, *tracetest.SpanRecorder) {
	t.Helper()
	heimdall.Reset(context.Background())

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	client, err := heimdall.InitWithTracerProvider(tp)
	require.NoError(t, err)

	t.Cleanup(func() {
		heimdall.Reset(context.Background())
		_ = tp.Shutdown(context.Background())
	})
	return client, recorder
}

func onlySpan(t *testing.T, recorder *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(span.Attributes()))
	for _, kv := range span.Attributes() {
		out[string(kv.Key)] = kv.Value
	}
	return out
}
