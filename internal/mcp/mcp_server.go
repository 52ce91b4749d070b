// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/sitpulse/core"
	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// reportTool describes one MCP tool backed by a report.
type reportTool struct {
	name        string
	kind        schema.ReportKind
	description string
}

var reportTools = []reportTool{
	{"get_growth", schema.GrowthReport, "Active homeowner, housesitter and combined members per month, with the sitter to owner ratio and the latest counts."},
	{"get_sitter_onboarding", schema.SitterOnboardingReport, "Monthly success, activity and volume of sitters in their first 30 days."},
	{"get_owner_onboarding", schema.OwnerOnboardingReport, "Monthly success, activity and volume of owners in their first 30 days."},
	{"get_network_health", schema.NetworkHealthReport, "Rolling 12-month applications per assignment, member ratio and success rates."},
}

// NewMCPServer initializes and configures the Sitpulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(p *core.Pipeline, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Sitpulse Reporting Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		pipeline: p,
		mgr:      mgr,
	}

	for _, rt := range reportTools {
		s.AddTool(mcp.NewTool(rt.name,
			mcp.WithDescription(rt.description),
			mcp.WithString("country", mcp.Description("Market to report on. Defaults to 'All'."), mcp.Enum(country.Options()...)),
		), h.reportHandler(rt.kind))
	}

	return s
}

// StartMCPServer loads the tables once and serves report tools over stdio.
func StartMCPServer(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	p, err := core.LoadPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	s := NewMCPServer(p, mgr)
	return server.ServeStdio(s)
}
