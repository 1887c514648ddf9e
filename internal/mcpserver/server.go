// Package mcpserver is an example MCP server whose tools, resources and
// prompts are instrumented with Heimdall.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"

	"github.com/Alijeyrad/heimdall/config"
	"github.com/Alijeyrad/heimdall/pkg/observe"
)

// Module provides the MCP server to the fx graph.
var Module = fx.Module("mcp", fx.Provide(New))

// New builds the MCP server and registers every handler.
func New(cfg *config.Config) *server.MCPServer {
	s := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	idx := newIndex(defaultDocuments)

	s.AddTool(searchTool, observe.ToolHandler(searchTool, idx.handleSearch))
	s.AddTool(calculateTool, observe.ToolHandler(calculateTool, handleCalculate))
	s.AddTool(whoamiTool, observe.ToolHandler(whoamiTool, handleWhoami,
		observe.WithSessionExtractor(sessionFromClient)))

	info := serverInfo{Name: cfg.Server.Name, Version: cfg.Server.Version, Transport: cfg.Server.Transport}
	s.AddResource(infoResource, observe.ResourceHandler(infoResource, info.handle))

	s.AddPrompt(summarizePrompt, observe.PromptHandler(summarizePrompt, handleSummarize,
		observe.WithUserExtractor(observe.FromArg("author"))))

	return s
}
