package observe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/heimdall/pkg/heimdall"
	"github.com/Alijeyrad/heimdall/pkg/observability"
)

// Tool instruments an MCP tool handler.
func Tool[In, Out any](name string, fn func(context.Context, In) (Out, error), opts ...Option) func(context.Context, In) (Out, error) {
	return around(name, mcpOptions(observability.SpanKindTool, opts), fn)
}

// Resource instruments an MCP resource handler. name is recorded as the
// resource URI.
func Resource[In, Out any](name string, fn func(context.Context, In) (Out, error), opts ...Option) func(context.Context, In) (Out, error) {
	return around(name, mcpOptions(observability.SpanKindResource, opts), fn)
}

// Prompt instruments an MCP prompt handler.
func Prompt[In, Out any](name string, fn func(context.Context, In) (Out, error), opts ...Option) func(context.Context, In) (Out, error) {
	return around(name, mcpOptions(observability.SpanKindPrompt, opts), fn)
}

// Func instruments an arbitrary function, capturing input and output.
func Func[In, Out any](name string, fn func(context.Context, In) (Out, error)) func(context.Context, In) (Out, error) {
	return FuncWith(name, fn)
}

// FuncWith instruments an arbitrary function with explicit capture settings.
// Capture defaults to on for both directions.
func FuncWith[In, Out any](name string, fn func(context.Context, In) (Out, error), opts ...FuncOption) func(context.Context, In) (Out, error) {
	o := &options{
		kind:          observability.SpanKindInternal,
		captureInput:  true,
		captureOutput: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return around(name, o, fn)
}

// around is the single instrumentation routine behind every wrapper.
func around[In, Out any](name string, o *options, fn func(context.Context, In) (Out, error)) func(context.Context, In) (Out, error) {
	nameKey, argsKey, resultKey := o.keys()

	return func(ctx context.Context, in In) (out Out, err error) {
		client := heimdall.Current()
		if !client.Enabled() {
			return fn(ctx, in)
		}

		attrs := []attribute.KeyValue{
			attribute.String(observability.AttrOperationName, name),
			attribute.String(observability.AttrSpanKind, string(o.kind)),
			attribute.String(nameKey, name),
		}

		if o.captureInput || o.resolveIdentity {
			args, bindErr := o.bindArgs(in)
			if bindErr != nil {
				slog.Debug("argument binding failed", "operation", name, "error", bindErr)
			}
			if o.resolveIdentity {
				id := resolveIdentity(ctx, client, o, args)
				if id.sessionID != "" {
					attrs = append(attrs, attribute.String(observability.AttrSessionID, id.sessionID))
				}
				attrs = append(attrs, attribute.String(observability.AttrUserID, id.userID))
			}
			if o.captureInput && bindErr == nil {
				if s, ok := Snapshot(args); ok {
					attrs = append(attrs, attribute.String(argsKey, s))
				}
			}
		}

		ctx, span := client.StartSpan(ctx, name, o.spanKind(), attrs...)
		start := time.Now()

		returned := false
		defer func() {
			if r := recover(); r != nil {
				recordFailure(span, panicError(r))
				finish(ctx, client, span, o, name, observability.SpanStatusError, start)
				panic(r)
			}
			status := observability.SpanStatusError
			switch {
			case !returned:
				// runtime.Goexit unwound fn before it returned
				recordFailure(span, errNotReturned)
			case err != nil:
				recordFailure(span, err)
			default:
				if o.captureOutput {
					if s, ok := Snapshot(o.result(out)); ok {
						span.SetAttributes(attribute.String(resultKey, s))
					}
				}
				if ferr := o.failure(out); ferr != nil {
					recordFailure(span, ferr)
					break
				}
				status = observability.SpanStatusOK
				span.SetAttributes(attribute.String(observability.AttrStatus, string(observability.SpanStatusOK)))
				span.SetStatus(codes.Ok, "")
			}
			finish(ctx, client, span, o, name, status, start)
		}()

		out, err = fn(ctx, in)
		returned = true
		return out, err
	}
}

var errNotReturned = errors.New("operation exited without returning")

func finish(ctx context.Context, client *heimdall.Client, span trace.Span, o *options, name string, status observability.SpanStatus, start time.Time) {
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Float64(observability.AttrDurationMS, float64(elapsed.Microseconds())/1000))
	span.End()
	client.RecordOperation(context.WithoutCancel(ctx), string(o.kind), name, string(status), elapsed)
}

func recordFailure(span trace.Span, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("recording failure on span panicked", "panic", r)
		}
	}()
	span.SetAttributes(
		attribute.String(observability.AttrStatus, string(observability.SpanStatusError)),
		attribute.String(observability.AttrErrorMessage, err.Error()),
		attribute.String(observability.AttrErrorType, ErrorType(err)),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// ErrorType names the kind of err: the value of a Kind() string method when
// err has one, otherwise its dynamic Go type.
func ErrorType(err error) string {
	var k interface{ Kind() string }
	if errors.As(err, &k) {
		if kind := k.Kind(); kind != "" {
			return kind
		}
	}
	if p, ok := err.(*PanicError); ok {
		return fmt.Sprintf("%T", p.Value)
	}
	return fmt.Sprintf("%T", err)
}

// PanicError carries a recovered panic value while it is recorded on a span.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}
