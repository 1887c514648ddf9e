package observe

import (
	"maps"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Alijeyrad/heimdall/pkg/observability"
)

// ToolHandler instruments an mcp-go tool handler. Arguments are taken from
// the call request and completed with the defaults declared in the tool's
// input schema.
func ToolHandler(tool mcp.Tool, h server.ToolHandlerFunc, opts ...Option) server.ToolHandlerFunc {
	o := mcpOptions(observability.SpanKindTool, opts)
	params := slices.Concat(o.params, SchemaParams(tool.InputSchema))
	o.bind = func(in any) (map[string]any, error) {
		req := in.(mcp.CallToolRequest)
		return BindArgs(req.GetArguments(), params...)
	}
	o.failed = func(out any) error {
		if res, ok := out.(*mcp.CallToolResult); ok && res != nil && res.IsError {
			return &ToolError{Message: toolErrorText(res)}
		}
		return nil
	}
	return around[mcp.CallToolRequest, *mcp.CallToolResult](tool.Name, o, h)
}

// ResourceHandler instruments an mcp-go resource handler. The resource URI
// names the span.
func ResourceHandler(resource mcp.Resource, h server.ResourceHandlerFunc, opts ...Option) server.ResourceHandlerFunc {
	o := mcpOptions(observability.SpanKindResource, opts)
	o.bind = func(in any) (map[string]any, error) {
		req := in.(mcp.ReadResourceRequest)
		args := maps.Clone(req.Params.Arguments)
		if args == nil {
			args = map[string]any{}
		}
		if _, ok := args["uri"]; !ok {
			args["uri"] = req.Params.URI
		}
		return BindArgs(args, o.params...)
	}
	return around[mcp.ReadResourceRequest, []mcp.ResourceContents](resource.URI, o, h)
}

// PromptHandler instruments an mcp-go prompt handler. The recorded result
// is the rendered message list.
func PromptHandler(prompt mcp.Prompt, h server.PromptHandlerFunc, opts ...Option) server.PromptHandlerFunc {
	o := mcpOptions(observability.SpanKindPrompt, opts)
	o.bind = func(in any) (map[string]any, error) {
		req := in.(mcp.GetPromptRequest)
		return BindArgs(req.Params.Arguments, o.params...)
	}
	o.output = func(out any) any {
		if res, ok := out.(*mcp.GetPromptResult); ok && res != nil {
			return res.Messages
		}
		return out
	}
	return around[mcp.GetPromptRequest, *mcp.GetPromptResult](prompt.Name, o, h)
}

// SchemaParams reads the "default" of every property in a tool input schema.
func SchemaParams(schema mcp.ToolInputSchema) []Param {
	var params []Param
	for name, prop := range schema.Properties {
		p, ok := prop.(map[string]any)
		if !ok {
			continue
		}
		if def, ok := p["default"]; ok {
			params = append(params, Param{Name: name, Default: def})
		}
	}
	return params
}

// ToolErrorKind is the error type recorded for tool results flagged IsError.
const ToolErrorKind = "tool_error"

// ToolError is recorded on the span when a tool reports failure in its
// result rather than as an error. The handler's return values are untouched.
type ToolError struct {
	Message string
}

func (e *ToolError) Error() string { return e.Message }

func (e *ToolError) Kind() string { return ToolErrorKind }

func toolErrorText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := mcp.AsTextContent(c); ok && tc.Text != "" {
			parts = append(parts, tc.Text)
		}
	}
	if len(parts) == 0 {
		return "tool reported an error"
	}
	return strings.Join(parts, "\n")
}
