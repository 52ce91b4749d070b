package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/sitpulse/core"
	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	pipeline *core.Pipeline
	mgr      contract.CacheManager
}

// reportHandler returns the tool handler computing the given report.
func (h *toolHandler) reportHandler(kind schema.ReportKind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter, err := country.ParseFilter(request.GetString("country", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid country: %v", err)), nil
		}
		if err := ctx.Err(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("request canceled: %v", err)), nil
		}

		doc, err := core.BuildReport(h.pipeline, kind, filter, h.mgr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
		}

		jsonData, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
