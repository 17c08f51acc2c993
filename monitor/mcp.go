package monitor

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/websnap/capture"
	"github.com/hazyhaar/websnap/kit"
	"github.com/hazyhaar/websnap/selector"
)

// RegisterMCP registers websnap tools on an MCP server.
func (m *Monitor) RegisterMCP(srv *mcp.Server) {
	m.registerCaptureTool(srv)
	m.registerListCapturesTool(srv)
	m.registerStatsTool(srv)
	m.registerSweepTool(srv)
}

// --- capture ---

type mcpCaptureRequest struct {
	URL      string   `json:"url"`
	Selector []string `json:"selector,omitempty"`
	FullPage bool     `json:"full_page,omitempty"`
	Format   string   `json:"format,omitempty"`
	Quality  int      `json:"quality,omitempty"`
}

func (m *Monitor) registerCaptureTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "websnap_capture",
		Description: "Visit a URL and capture a screenshot into the artifact cache. An optional selector chain narrows the capture to one element.",
		InputSchema: kit.InputSchema(map[string]any{
			"url":       map[string]any{"type": "string", "description": "Page URL to visit"},
			"selector":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Selector chain: tag names or attribute predicates (containing '=', '-' or ':')"},
			"full_page": map[string]any{"type": "boolean", "description": "Capture beyond the viewport (full-surface only)"},
			"format":    map[string]any{"type": "string", "enum": []any{"png", "jpeg"}, "description": "Image format (default png)"},
			"quality":   map[string]any{"type": "integer", "description": "JPEG quality 1-100"},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*mcpCaptureRequest)
		return m.CaptureURL(ctx, r.URL, selector.NewChain(r.Selector...), capture.ImageOptions{
			Format:   r.Format,
			Quality:  r.Quality,
			FullPage: r.FullPage,
		}), nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, func(req *mcp.CallToolRequest) (any, error) {
		var r mcpCaptureRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	})
}

// --- list_captures ---

type mcpListRequest struct {
	PageID string `json:"page_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func (m *Monitor) registerListCapturesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "websnap_list_captures",
		Description: "List recent capture attempts from the index, newest first.",
		InputSchema: kit.InputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Filter by configured page ID"},
			"limit":   map[string]any{"type": "integer", "description": "Max results (default 50)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*mcpListRequest)
		return m.Captures(ctx, r.PageID, r.Limit)
	}

	kit.RegisterMCPTool(srv, tool, endpoint, func(req *mcp.CallToolRequest) (any, error) {
		var r mcpListRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	})
}

// --- stats ---

type mcpStatsRequest struct{}

func (m *Monitor) registerStatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "websnap_stats",
		Description: "Capture index counts: total, succeeded, failed, distinct pages.",
		InputSchema: kit.InputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return m.Stats(ctx)
	}

	kit.RegisterMCPTool(srv, tool, endpoint, func(req *mcp.CallToolRequest) (any, error) {
		return &mcpStatsRequest{}, nil
	})
}

// --- sweep ---

type mcpSweepRequest struct{}

func (m *Monitor) registerSweepTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "websnap_sweep",
		Description: "Run one retention pass: delete expired artifacts and prune their index rows.",
		InputSchema: kit.InputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		removed, pruned := m.Sweep(ctx)
		return map[string]any{"removed": removed, "pruned": pruned}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, func(req *mcp.CallToolRequest) (any, error) {
		return &mcpSweepRequest{}, nil
	})
}
