package reqctx

import (
	"context"
	"testing"

	"github.com/Alijeyrad/heimdall/pkg/claims"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name        string
		setupCtx    func() context.Context
		wantOK      bool
		wantSession string
		wantUser    string
	}{
		{
			name:     "empty context",
			setupCtx: context.Background,
			wantOK:   false,
		},
		{
			name: "request context set",
			setupCtx: func() context.Context {
				return WithRequestContext(context.Background(), New("s1", "u1", nil, nil))
			},
			wantOK:      true,
			wantSession: "s1",
			wantUser:    "u1",
		},
		{
			name: "nil request context shadows outer",
			setupCtx: func() context.Context {
				outer := WithRequestContext(context.Background(), New("s1", "u1", nil, nil))
				return WithRequestContext(outer, nil)
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupCtx()
			_, ok := FromContext(ctx)
			if ok != tt.wantOK {
				t.Fatalf("FromContext() ok = %v, want %v", ok, tt.wantOK)
			}
			if got := SessionIDFromContext(ctx); got != tt.wantSession {
				t.Errorf("SessionIDFromContext() = %q, want %q", got, tt.wantSession)
			}
			if got := UserIDFromContext(ctx); got != tt.wantUser {
				t.Errorf("UserIDFromContext() = %q, want %q", got, tt.wantUser)
			}
		})
	}
}

func TestMustFromContext(t *testing.T) {
	t.Run("panics when missing", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic but didn't get one")
			}
		}()
		MustFromContext(context.Background())
	})

	t.Run("returns request context", func(t *testing.T) {
		rc := New("s", "u", map[string]string{"X-A": "1"}, claims.Claims{"sub": "u"})
		got := MustFromContext(WithRequestContext(context.Background(), rc))
		if got != rc {
			t.Errorf("MustFromContext() = %p, want %p", got, rc)
		}
	})
}

func TestNew_CopiesClaims(t *testing.T) {
	src := claims.Claims{"sub": "u"}
	rc := New("", "u", nil, src)
	src["sub"] = "changed"
	if rc.Claims()["sub"] != "u" {
		t.Errorf("RequestContext claims changed with source map")
	}
}
