package observe

import (
	"context"
	"log/slog"

	"github.com/Alijeyrad/heimdall/pkg/heimdall"
	"github.com/Alijeyrad/heimdall/pkg/reqctx"
)

// AnonymousUserID is recorded when no source yields a user id. An
// unresolved session id is omitted instead.
const AnonymousUserID = "anonymous"

// Extractor derives an identity value from the bound arguments of a call.
// Errors and panics are treated as "no value".
type Extractor func(ctx context.Context, args map[string]any) (string, error)

// FromArg returns an Extractor reading a string argument by name.
func FromArg(name string) Extractor {
	return func(_ context.Context, args map[string]any) (string, error) {
		v, _ := args[name].(string)
		return v, nil
	}
}

type identity struct {
	sessionID string
	userID    string
}

// resolveIdentity orders the sources: extractor, client-level store, then
// the request context carried by ctx.
func resolveIdentity(ctx context.Context, c *heimdall.Client, o *options, args map[string]any) identity {
	return identity{
		sessionID: resolve(ctx, o.sessionExtractor, args, c.SessionID, reqctx.SessionIDFromContext),
		userID:    orDefault(resolve(ctx, o.userExtractor, args, c.UserID, reqctx.UserIDFromContext), AnonymousUserID),
	}
}

func resolve(ctx context.Context, e Extractor, args map[string]any, fromClient func() string, fromContext func(context.Context) string) string {
	if v := callExtractor(ctx, e, args); v != "" {
		return v
	}
	if v := fromClient(); v != "" {
		return v
	}
	return fromContext(ctx)
}

func callExtractor(ctx context.Context, e Extractor, args map[string]any) (v string) {
	if e == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("identity extractor panicked", "panic", r)
			v = ""
		}
	}()
	v, err := e(ctx, args)
	if err != nil {
		slog.Debug("identity extractor failed", "error", err)
		return ""
	}
	return v
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
