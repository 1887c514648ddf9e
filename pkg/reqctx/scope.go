package reqctx

import (
	"context"

	"go.uber.org/atomic"
)

// Scope is the handle returned by Enter. It remembers the context that was
// active before the scope began so the caller can return to it.
type Scope struct {
	prev   context.Context
	ctx    context.Context
	rc     *RequestContext
	exited atomic.Bool
}

// Enter starts a scope whose RequestContext is built from headers.
func Enter(ctx context.Context, headers map[string]string) (context.Context, *Scope) {
	return EnterContext(ctx, FromHeaders(headers))
}

// EnterContext starts a scope for an already built RequestContext. A nil rc
// shadows any outer RequestContext for the lifetime of the scope.
func EnterContext(ctx context.Context, rc *RequestContext) (context.Context, *Scope) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Scope{
		prev: ctx,
		ctx:  WithRequestContext(ctx, rc),
		rc:   rc,
	}
	return s.ctx, s
}

// Context returns the context carrying this scope's RequestContext.
func (s *Scope) Context() context.Context { return s.ctx }

// Previous returns the context that was active before Enter.
func (s *Scope) Previous() context.Context { return s.prev }

// RequestContext returns the RequestContext this scope installed.
func (s *Scope) RequestContext() *RequestContext { return s.rc }

// Active reports whether Exit has not been called yet.
func (s *Scope) Active() bool { return !s.exited.Load() }

// Exit ends the scope and returns the context that was active before it.
// Calling Exit more than once is harmless.
func (s *Scope) Exit() context.Context {
	s.exited.Store(true)
	return s.prev
}

// WithHeaderSource wraps fn so that each call reads fresh headers from
// source and runs inside its own scope. The scope is exited on every path out
// of fn, including panics.
func WithHeaderSource[In, Out any](
	source func() map[string]string,
	fn func(context.Context, In) (Out, error),
) func(context.Context, In) (Out, error) {
	return func(ctx context.Context, in In) (Out, error) {
		ctx, scope := Enter(ctx, source())
		defer scope.Exit()
		return fn(ctx, in)
	}
}
