package http

import (
	"context"
	"encoding/base64"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Alijeyrad/heimdall/config"
	"github.com/Alijeyrad/heimdall/internal/mcpserver"
	"github.com/Alijeyrad/heimdall/pkg/heimdall"
	"github.com/Alijeyrad/heimdall/pkg/observability"
)

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`

func testConfig() *config.Config {
	return &config.Config{
		Heimdall: config.HeimdallConfig{ServiceName: "test-service"},
		Server: config.ServerConfig{
			Name:         "test-server",
			Version:      "1.0.0",
			Transport:    config.TransportHTTP,
			Port:         8080,
			EndpointPath: "/mcp",
		},
	}
}

func bearer(payload string) string {
	return "Bearer eyJhbGciOiJub25lIn0." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func newRecordedApp(t *testing.T) (*fiber.App, *tracetest.SpanRecorder) {
	t.Helper()
	heimdall.Reset(context.Background())

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	client, err := heimdall.InitWithTracerProvider(tp)
	require.NoError(t, err)
	t.Cleanup(func() {
		heimdall.Reset(context.Background())
		otel.SetTracerProvider(prev)
	})

	cfg := testConfig()
	return NewApp(cfg, mcpserver.New(cfg), client), recorder
}

func post(t *testing.T, app *fiber.App, body string, headers map[string]string) *nethttp.Response {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 0})
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHealthz(t *testing.T) {
	app, _ := newRecordedApp(t)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	body := readBody(t, resp)
	assert.Contains(t, body, `"status":"ok"`)
	assert.Contains(t, body, `"tracing":true`)
}

func TestWhoami(t *testing.T) {
	app, _ := newRecordedApp(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/whoami", nil)
	req.Header.Set("MCP-SESSION-ID", "session-abc123")
	req.Header.Set("Authorization", bearer(`{"sub":"user-123","user_id":"secondary"}`))
	req.Header.Set("X-Request-Id", "rid-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `"session_id":"session-abc123"`)
	assert.Contains(t, body, `"user_id":"user-123"`)
	assert.Contains(t, body, `"request_id":"rid-1"`)
	assert.Equal(t, "rid-1", resp.Header.Get("X-Request-Id"))
}

func TestMCPEndpoint_ToolCallCarriesIdentity(t *testing.T) {
	app, recorder := newRecordedApp(t)

	resp := post(t, app, initializeBody, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	sessionID := resp.Header.Get("Mcp-Session-Id")
	require.NotEmpty(t, sessionID)
	recorder.Reset()

	resp = post(t, app,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"calculate","arguments":{"operation":"add","a":2,"b":3}}}`,
		map[string]string{
			"Mcp-Session-Id": sessionID,
			"Authorization":  bearer(`{"sub":"user-123"}`),
		})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"5"`)

	var toolSpan, requestSpan sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		switch s.Name() {
		case "calculate":
			toolSpan = s
		case "POST /mcp":
			requestSpan = s
		}
	}
	require.NotNil(t, toolSpan)
	require.NotNil(t, requestSpan)
	assert.Equal(t, requestSpan.SpanContext().SpanID(), toolSpan.Parent().SpanID())

	attrs := map[string]string{}
	for _, kv := range toolSpan.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, sessionID, attrs[observability.AttrSessionID])
	assert.Equal(t, "user-123", attrs[observability.AttrUserID])
}

func TestMetricsEndpoint(t *testing.T) {
	heimdall.Reset(context.Background())
	t.Cleanup(func() { heimdall.Reset(context.Background()) })

	obs := observability.DefaultConfig()
	obs.Endpoint = ""
	client, err := heimdall.Init(context.Background(), obs)
	require.NoError(t, err)

	cfg := testConfig()
	app := NewApp(cfg, mcpserver.New(cfg), client)

	resp := post(t, app, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search","arguments":{"query":"metrics"}}}`, nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode, "stateful servers need a session")

	resp = post(t, app, initializeBody, nil)
	sessionID := resp.Header.Get("Mcp-Session-Id")
	resp = post(t, app, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"search","arguments":{"query":"metrics"}}}`,
		map[string]string{"Mcp-Session-Id": sessionID})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "heimdall_operation_count")
	assert.Contains(t, body, "heimdall_http_request_count")
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newRecordedApp(t)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/livez", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	heimdall.Reset(context.Background())
	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
}

func TestMCPEndpoint_Stateless(t *testing.T) {
	heimdall.Reset(context.Background())
	client, err := heimdall.InitWithTracerProvider(sdktrace.NewTracerProvider())
	require.NoError(t, err)
	t.Cleanup(func() { heimdall.Reset(context.Background()) })

	cfg := testConfig()
	cfg.Server.Stateless = true
	app := NewApp(cfg, mcpserver.New(cfg), client)

	resp := post(t, app, initializeBody, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Mcp-Session-Id"))

	resp = post(t, app, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"calculate","arguments":{"operation":"multiply","a":2,"b":4}}}`, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"8"`)
}
