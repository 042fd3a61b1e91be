package quickscroll

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/quickscroll/internal/idgen"
	"github.com/hazyhaar/quickscroll/internal/kit"
)

// RegisterMCP registers the navigator tools on an MCP server.
func (n *Navigator) RegisterMCP(srv *mcp.Server) {
	n.registerMessagesTool(srv)
	n.registerJumpTool(srv)
}

func (n *Navigator) mcpEndpoint(name string, ep kit.Endpoint) kit.Endpoint {
	withID := func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			return next(kit.WithRequestID(ctx, idgen.Request()), req)
		}
	}
	return kit.Chain(withID, kit.Logging(n.logger, name))(ep)
}

// --- messages ---

func (n *Navigator) registerMessagesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "quickscroll_messages",
		Description: "List the user's own messages in the current chat conversation, in panel order.",
		InputSchema: kit.InputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		msgs, err := n.Messages(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"site": n.adapter.Name(), "messages": msgs}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (any, error) { return nil, nil }

	kit.RegisterMCPTool(srv, tool, n.mcpEndpoint("quickscroll_messages", endpoint), decode)
}

// --- jump ---

type jumpReq struct {
	Index *int `json:"index"`
}

func (n *Navigator) registerJumpTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "quickscroll_jump",
		Description: "Scroll the conversation to a user message and highlight it briefly.",
		InputSchema: kit.InputSchema(map[string]any{
			"index": map[string]any{"type": "integer", "description": "Message index from quickscroll_messages"},
		}, []string{"index"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return n.Jump(ctx, req.(int))
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r jumpReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.Index == nil {
			return nil, fmt.Errorf("index is required")
		}
		return *r.Index, nil
	}

	kit.RegisterMCPTool(srv, tool, n.mcpEndpoint("quickscroll_jump", endpoint), decode)
}
