package reqctx

import (
	"context"

	"github.com/Alijeyrad/heimdall/pkg/claims"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const (
	keyRequestContext ctxKey = iota
)

// RequestContext is the identity of one MCP request. It is never mutated
// after construction; build a new one per request.
type RequestContext struct {
	sessionID string
	userID    string
	headers   Headers
	claims    claims.Claims
}

// New builds a RequestContext from already-resolved values.
func New(sessionID, userID string, headers map[string]string, tokenClaims claims.Claims) *RequestContext {
	rc := &RequestContext{
		sessionID: sessionID,
		userID:    userID,
		headers:   NewHeaders(headers),
		claims:    claims.Claims{},
	}
	if tokenClaims != nil {
		rc.claims = tokenClaims.Clone()
	}
	return rc
}

// SessionID returns the MCP session id, or "" when the request had none.
func (rc *RequestContext) SessionID() string {
	if rc == nil {
		return ""
	}
	return rc.sessionID
}

// UserID returns the user id taken from the bearer token, or "".
func (rc *RequestContext) UserID() string {
	if rc == nil {
		return ""
	}
	return rc.userID
}

// Header returns a request header by case-insensitive name.
func (rc *RequestContext) Header(name string) (string, bool) {
	if rc == nil {
		return "", false
	}
	return rc.headers.Get(name)
}

// Headers returns a copy of the request headers.
func (rc *RequestContext) Headers() Headers {
	if rc == nil {
		return Headers{}
	}
	return rc.headers.Clone()
}

// Claims returns a copy of the decoded token claims.
func (rc *RequestContext) Claims() claims.Claims {
	if rc == nil {
		return claims.Claims{}
	}
	return rc.claims.Clone()
}

// WithRequestContext stores rc in the context.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, keyRequestContext, rc)
}

// FromContext retrieves the innermost RequestContext.
// Returns nil, false if none is set.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(keyRequestContext).(*RequestContext)
	return rc, ok && rc != nil
}

// MustFromContext retrieves the RequestContext.
// Panics if not set. Use only when middleware guarantees it's present.
func MustFromContext(ctx context.Context) *RequestContext {
	rc, ok := FromContext(ctx)
	if !ok {
		panic("reqctx: RequestContext not found in context")
	}
	return rc
}

// SessionIDFromContext returns the session id, or empty string if not set.
func SessionIDFromContext(ctx context.Context) string {
	rc, _ := FromContext(ctx)
	return rc.SessionID()
}

// UserIDFromContext returns the user id, or empty string if not set.
func UserIDFromContext(ctx context.Context) string {
	rc, _ := FromContext(ctx)
	return rc.UserID()
}
