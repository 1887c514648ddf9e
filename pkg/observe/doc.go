// Package observe wraps handlers with Heimdall spans.
//
// Every wrapper in this package shares one calling convention,
//
//	func(ctx context.Context, in In) (Out, error)
//
// and one core routine: open a span, tag it with the operation name, kind,
// resolved identity and an argument snapshot, call the handler, tag the
// result or the failure, record the duration and close the span. When no
// enabled client is installed the handler is called directly.
//
// Tool, Resource and Prompt produce MCP spans and resolve the caller's
// identity. Func and FuncWith instrument arbitrary functions without
// identity resolution. ToolHandler, ResourceHandler and PromptHandler adapt
// mcp-go server handlers.
package observe
