package observe

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/heimdall/pkg/observability"
)

// Param declares a named input and the value it takes when the caller does
// not supply it. Params only apply to map-shaped inputs; struct inputs
// declare defaults with a `default:"..."` field tag.
type Param struct {
	Name    string
	Default any
}

type options struct {
	kind             observability.SpanKind
	userExtractor    Extractor
	sessionExtractor Extractor
	params           []Param
	captureInput     bool
	captureOutput    bool
	resolveIdentity  bool

	// bind and output override argument binding and the recorded result
	// for adapters whose input and output are protocol envelopes.
	bind   func(in any) (map[string]any, error)
	output func(out any) any

	// failed reports a result that signals failure without an error, such
	// as an MCP tool result flagged IsError.
	failed func(out any) error
}

func (o *options) bindArgs(in any) (map[string]any, error) {
	if o.bind != nil {
		return o.bind(in)
	}
	return BindArgs(in, o.params...)
}

func (o *options) result(out any) any {
	if o.output != nil {
		return o.output(out)
	}
	return out
}

func (o *options) failure(out any) error {
	if o.failed != nil {
		return o.failed(out)
	}
	return nil
}

func (o *options) spanKind() trace.SpanKind {
	if o.kind == observability.SpanKindInternal {
		return trace.SpanKindInternal
	}
	return trace.SpanKindServer
}

// nameKey, argsKey and resultKey are the kind-specific attribute keys.
func (o *options) keys() (nameKey, argsKey, resultKey string) {
	switch o.kind {
	case observability.SpanKindTool:
		return observability.AttrToolName, observability.AttrToolArguments, observability.AttrToolResult
	case observability.SpanKindResource:
		return observability.AttrResourceURI, observability.AttrResourceArguments, observability.AttrResourceResult
	case observability.SpanKindPrompt:
		return observability.AttrPromptName, observability.AttrPromptArguments, observability.AttrPromptMessages
	default:
		return observability.AttrOperationName, observability.AttrInput, observability.AttrOutput
	}
}

// Option configures Tool, Resource and Prompt wrappers.
type Option func(*options)

// WithUserExtractor resolves the user id from the bound arguments. A value it
// returns takes precedence over every other source.
func WithUserExtractor(e Extractor) Option {
	return func(o *options) { o.userExtractor = e }
}

// WithSessionExtractor resolves the session id from the bound arguments.
func WithSessionExtractor(e Extractor) Option {
	return func(o *options) { o.sessionExtractor = e }
}

// WithParams declares defaults merged into map-shaped inputs.
func WithParams(params ...Param) Option {
	return func(o *options) { o.params = append(o.params, params...) }
}

// FuncOption configures FuncWith.
type FuncOption func(*options)

// CaptureInput toggles the input snapshot.
func CaptureInput(enabled bool) FuncOption {
	return func(o *options) { o.captureInput = enabled }
}

// CaptureOutput toggles the output snapshot.
func CaptureOutput(enabled bool) FuncOption {
	return func(o *options) { o.captureOutput = enabled }
}

func mcpOptions(kind observability.SpanKind, opts []Option) *options {
	o := &options{
		kind:            kind,
		captureInput:    true,
		captureOutput:   true,
		resolveIdentity: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
