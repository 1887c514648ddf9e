// Package reqctx carries per-request MCP identity through a call graph.
//
// A RequestContext holds the MCP session id, the user id resolved from the
// bearer token, the raw request headers and the decoded (unverified) token
// claims. It is attached to a context.Context, so it travels with the
// execution branch that owns the context: a goroutine sees exactly the
// request context of the ctx it was handed and never another branch's.
//
// # Scopes
//
// Enter derives a child context carrying a new RequestContext and returns a
// Scope bound to the parent. Scopes nest; Exit hands back the context that
// was active right before the matching Enter, so restoration is LIFO:
//
//	ctx, scope := reqctx.Enter(ctx, headers)
//	defer scope.Exit()
//
// WithHeaderSource wraps a handler so every call reads fresh headers and
// runs inside its own scope:
//
//	h := reqctx.WithHeaderSource(func() map[string]string {
//	    return currentHeaders()
//	}, handler)
//
// # Transports
//
// HTTPContextFunc plugs into mcp-go's streamable HTTP server, Middleware
// wraps any net/http handler and FiberMiddleware covers Fiber routes.
//
// # Headers
//
// Header names are matched case-insensitively:
//
//   - Mcp-Session-Id carries the session id
//   - Authorization carries a bearer token whose claims may yield a user id
package reqctx
