package mcpserver

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
)

var infoResource = mcp.NewResource("heimdall://server/info", "server-info",
	mcp.WithResourceDescription("Name, version and transport of this server"),
	mcp.WithMIMEType("application/json"),
)

type serverInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Transport string `json:"transport"`
}

func (i serverInfo) handle(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(i)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: body},
	}, nil
}

var summarizePrompt = mcp.NewPrompt("summarize",
	mcp.WithPromptDescription("Ask for a short summary of a topic"),
	mcp.WithArgument("topic", mcp.RequiredArgument(), mcp.ArgumentDescription("What to summarize")),
	mcp.WithArgument("author", mcp.ArgumentDescription("Who is asking")),
)

func handleSummarize(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	if topic == "" {
		topic = "the Model Context Protocol"
	}
	return mcp.NewGetPromptResult("Summary request", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent("Summarize "+topic+" in three sentences.")),
	}), nil
}
