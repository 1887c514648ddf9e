package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Alijeyrad/heimdall/pkg/observe"
	"github.com/Alijeyrad/heimdall/pkg/reqctx"
)

var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrUnknownOperation = errors.New("unknown operation")
)

var searchTool = mcp.NewTool("search",
	mcp.WithDescription("Search the document index"),
	mcp.WithString("query", mcp.Required(), mcp.Description("Terms to look for")),
	mcp.WithNumber("limit", mcp.DefaultNumber(10), mcp.Description("Maximum number of hits")),
)

var calculateTool = mcp.NewTool("calculate",
	mcp.WithDescription("Apply an arithmetic operation to two numbers"),
	mcp.WithString("operation", mcp.Required(), mcp.Enum("add", "subtract", "multiply", "divide")),
	mcp.WithNumber("a", mcp.Required()),
	mcp.WithNumber("b", mcp.Required()),
)

var whoamiTool = mcp.NewTool("whoami",
	mcp.WithDescription("Report the identity Heimdall resolved for this request"),
)

type document struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var defaultDocuments = []document{
	{Title: "Tracing MCP servers", Body: "Every tool call becomes a span with arguments and results."},
	{Title: "Sessions", Body: "The Mcp-Session-Id header ties requests to one session."},
	{Title: "Users", Body: "The bearer token subject identifies the calling user."},
	{Title: "Metrics", Body: "Operation counts and latencies are exported for Prometheus."},
}

type rankQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit" default:"10"`
}

type index struct {
	docs []document
	rank func(context.Context, rankQuery) ([]document, error)
}

func newIndex(docs []document) *index {
	idx := &index{docs: docs}
	idx.rank = observe.Func("search.rank", idx.match)
	return idx
}

func (idx *index) match(_ context.Context, q rankQuery) ([]document, error) {
	terms := strings.Fields(strings.ToLower(q.Query))
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	var hits []document
	for _, d := range idx.docs {
		text := strings.ToLower(d.Title + " " + d.Body)
		for _, term := range terms {
			if strings.Contains(text, term) {
				hits = append(hits, d)
				break
			}
		}
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

func (idx *index) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hits, err := idx.rank(ctx, rankQuery{Query: query, Limit: req.GetInt("limit", 10)})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}

	var sb strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, h.Title, h.Body)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func handleCalculate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	op, err := req.RequireString("operation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := req.RequireFloat("a")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := req.RequireFloat("b")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result float64
	switch op {
	case "add":
		result = a + b
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		result = a / b
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}
	return mcp.NewToolResultText(fmt.Sprintf("%g", result)), nil
}

func handleWhoami(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rc, _ := reqctx.FromContext(ctx)
	return mcp.NewToolResultText(fmt.Sprintf("session=%q user=%q", rc.SessionID(), rc.UserID())), nil
}

// sessionFromClient falls back to the transport session when the request
// carried no Mcp-Session-Id header, as on stdio.
func sessionFromClient(ctx context.Context, _ map[string]any) (string, error) {
	if reqctx.SessionIDFromContext(ctx) != "" {
		return "", nil
	}
	if session := server.ClientSessionFromContext(ctx); session != nil {
		return session.SessionID(), nil
	}
	return "", nil
}
