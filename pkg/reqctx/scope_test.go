package reqctx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_Nesting(t *testing.T) {
	root := context.Background()

	ctxA, a := Enter(root, map[string]string{"Mcp-Session-Id": "A"})
	assert.Equal(t, "A", SessionIDFromContext(ctxA))

	ctxB, b := Enter(ctxA, map[string]string{"Mcp-Session-Id": "B"})
	assert.Equal(t, "B", SessionIDFromContext(ctxB))

	afterB := b.Exit()
	assert.Equal(t, "A", SessionIDFromContext(afterB))
	assert.False(t, b.Active())
	assert.True(t, a.Active())

	afterA := a.Exit()
	_, ok := FromContext(afterA)
	assert.False(t, ok)
	assert.Equal(t, root, afterA)
}

func TestScope_DeepNesting(t *testing.T) {
	const depth = 50
	ctx := context.Background()
	scopes := make([]*Scope, 0, depth)
	for i := 0; i < depth; i++ {
		var s *Scope
		ctx, s = EnterContext(ctx, New(string(rune('a'+i%26)), "", nil, nil))
		scopes = append(scopes, s)
	}

	for i := depth - 1; i >= 0; i-- {
		ctx = scopes[i].Exit()
		if i == 0 {
			_, ok := FromContext(ctx)
			assert.False(t, ok)
			continue
		}
		assert.Equal(t, string(rune('a'+(i-1)%26)), SessionIDFromContext(ctx))
	}
}

func TestScope_ExitIdempotent(t *testing.T) {
	root := context.Background()
	_, s := Enter(root, nil)
	assert.Equal(t, root, s.Exit())
	assert.Equal(t, root, s.Exit())
}

func TestScope_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is tolerated on purpose
	ctx, s := Enter(nil, map[string]string{"Mcp-Session-Id": "x"})
	require.NotNil(t, ctx)
	assert.NotNil(t, s.Previous())
	assert.Equal(t, "x", s.RequestContext().SessionID())
}

func TestScope_SiblingGoroutinesIsolated(t *testing.T) {
	root := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := string(rune('A' + i%26))
			ctx, scope := Enter(root, map[string]string{"Mcp-Session-Id": want})
			defer scope.Exit()
			for j := 0; j < 100; j++ {
				if got := SessionIDFromContext(ctx); got != want {
					errs <- errors.New("leaked session " + got + " into " + want)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	_, ok := FromContext(root)
	assert.False(t, ok)
}

func TestWithHeaderSource(t *testing.T) {
	calls := 0
	source := func() map[string]string {
		calls++
		return map[string]string{"Mcp-Session-Id": "s" + string(rune('0'+calls))}
	}

	h := WithHeaderSource(source, func(ctx context.Context, in string) (string, error) {
		return in + ":" + SessionIDFromContext(ctx), nil
	})

	out, err := h(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a:s1", out)

	out, err = h(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "b:s2", out)
}

func TestWithHeaderSource_ErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	var inner context.Context
	h := WithHeaderSource(func() map[string]string {
		return map[string]string{"Mcp-Session-Id": "s"}
	}, func(ctx context.Context, _ int) (int, error) {
		inner = ctx
		return 0, boom
	})

	outer, outerScope := Enter(context.Background(), map[string]string{"Mcp-Session-Id": "outer"})
	defer outerScope.Exit()

	_, err := h(outer, 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "s", SessionIDFromContext(inner))
	assert.Equal(t, "outer", SessionIDFromContext(outer))
}

func TestWithHeaderSource_Panic(t *testing.T) {
	h := WithHeaderSource(func() map[string]string { return nil }, func(context.Context, int) (int, error) {
		panic("kaboom")
	})

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = h(context.Background(), 1)
	})
}

func TestWithHeaderSource_ConcurrentCallsDoNotLeak(t *testing.T) {
	h := WithHeaderSource(func() map[string]string { return nil }, func(ctx context.Context, want string) (string, error) {
		inner, scope := EnterContext(ctx, New(want, "", nil, nil))
		defer scope.Exit()
		return SessionIDFromContext(inner), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := string(rune('a' + i%26))
			got, err := h(context.Background(), want)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}(i)
	}
	wg.Wait()
}
