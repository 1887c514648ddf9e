package observability

// SpanKind classifies an instrumented operation.
type SpanKind string

const (
	SpanKindTool     SpanKind = "mcp.tool"
	SpanKindResource SpanKind = "mcp.resource"
	SpanKindPrompt   SpanKind = "mcp.prompt"
	SpanKindRequest  SpanKind = "mcp.request"
	SpanKindInternal SpanKind = "internal"
	SpanKindClient   SpanKind = "client"
	SpanKindServer   SpanKind = "server"
)

// SpanStatus is the value of AttrStatus.
type SpanStatus string

const (
	SpanStatusUnset SpanStatus = "unset"
	SpanStatusOK    SpanStatus = "ok"
	SpanStatusError SpanStatus = "error"
)

// Attribute keys written to spans. External backends rely on these names.
const (
	AttrToolName      = "mcp.tool.name"
	AttrToolArguments = "mcp.tool.arguments"
	AttrToolResult    = "mcp.tool.result"

	AttrResourceURI         = "mcp.resource.uri"
	AttrResourceArguments   = "mcp.resource.arguments"
	AttrResourceResult      = "mcp.resource.result"
	AttrResourceMethod      = "mcp.resource.method"
	AttrResourceContentType = "mcp.resource.content_type"

	AttrPromptName      = "mcp.prompt.name"
	AttrPromptArguments = "mcp.prompt.arguments"
	AttrPromptMessages  = "mcp.prompt.messages"

	AttrOperationName = "heimdall.operation"

	AttrSpanKind    = "heimdall.span_kind"
	AttrSessionID   = "heimdall.session_id"
	AttrUserID      = "heimdall.user_id"
	AttrServiceName = "heimdall.service_name"
	AttrInput       = "heimdall.input"
	AttrOutput      = "heimdall.output"

	AttrStatus       = "heimdall.status"
	AttrErrorMessage = "heimdall.error.message"
	AttrErrorType    = "heimdall.error.type"

	AttrDurationMS = "heimdall.duration_ms"
)
