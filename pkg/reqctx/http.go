package reqctx

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"go.opentelemetry.io/otel/trace"
)

// HTTPContextFunc attaches a RequestContext to the context of an MCP HTTP
// request. Its signature matches mcp-go's server.HTTPContextFunc.
//
// When the request reached the MCP handler through Fiber's adaptor, the
// RequestContext and active span established by Fiber middleware are reused.
func HTTPContextFunc(ctx context.Context, r *http.Request) context.Context {
	if fctx, ok := adaptor.LocalContextFromHTTPRequest(r); ok && fctx != nil {
		if span := trace.SpanFromContext(fctx); span.SpanContext().IsValid() {
			ctx = trace.ContextWithSpan(ctx, span)
		}
		if rc, ok := FromContext(fctx); ok {
			return WithRequestContext(ctx, rc)
		}
	}
	return WithRequestContext(ctx, FromHTTPHeader(r.Header))
}

// Middleware runs each request inside a scope built from its headers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := EnterContext(r.Context(), FromHTTPHeader(r.Header))
		defer scope.Exit()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FiberMiddleware runs the rest of the Fiber chain inside a scope built from
// the request headers and restores the previous user context afterwards.
func FiberMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, scope := EnterContext(c.Context(), FromMultiHeaders(c.GetReqHeaders()))
		c.SetContext(ctx)
		defer func() { c.SetContext(scope.Exit()) }()
		return c.Next()
	}
}
